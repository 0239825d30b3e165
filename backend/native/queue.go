package native

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/triangle/gpucore"
)

// pollInterval bounds the sleep between completion polls while waiting.
const pollInterval = time.Millisecond

// inflight is a submission the GPU has not yet been seen to finish.
type inflight struct {
	index   uint64
	buffers []hal.CommandBuffer
}

// Queue submits command buffers. The HAL numbers every submission; buffers
// are freed once the queue reports their submission index completed.
type Queue struct {
	mu      sync.Mutex
	device  *Device
	hal     hal.Queue
	timeout time.Duration

	last     uint64
	inflight []inflight
}

// Submit submits the command buffers in order and returns without waiting
// for the GPU. Each ID can be submitted once.
func (q *Queue) Submit(ids ...gpucore.CommandBufferID) error {
	if len(ids) == 0 {
		return nil
	}
	bufs, err := q.device.takeCommandBuffers(ids)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	index, err := q.submitLocked(bufs)
	if err != nil {
		return err
	}
	q.retireLocked()
	slogger().Debug("native: submitted", "buffers", len(bufs), "index", index, "inflight", len(q.inflight))
	return nil
}

// submitLocked submits bufs and takes ownership of them.
func (q *Queue) submitLocked(bufs []hal.CommandBuffer) (uint64, error) {
	index, err := q.hal.Submit(bufs)
	if err != nil {
		q.free(bufs)
		return 0, fmt.Errorf("native: submit: %w", err)
	}
	q.last = index
	q.inflight = append(q.inflight, inflight{index: index, buffers: bufs})
	return index, nil
}

// retireLocked frees the buffers of completed submissions, oldest first.
func (q *Queue) retireLocked() {
	done := q.hal.PollCompleted()
	for len(q.inflight) > 0 && q.inflight[0].index <= done {
		q.free(q.inflight[0].buffers)
		q.inflight = q.inflight[1:]
	}
}

func (q *Queue) free(bufs []hal.CommandBuffer) {
	for _, cb := range bufs {
		q.device.hal.FreeCommandBuffer(cb)
	}
}

// submitAndWait submits cb and blocks until the GPU has finished it.
func (q *Queue) submitAndWait(cb hal.CommandBuffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	index, err := q.submitLocked([]hal.CommandBuffer{cb})
	if err != nil {
		return err
	}
	if err := q.waitLocked(index); err != nil {
		return err
	}
	q.retireLocked()
	return nil
}

// waitLocked polls until index is completed or the submit timeout passes.
func (q *Queue) waitLocked(index uint64) error {
	deadline := time.Now().Add(q.timeout)
	sleep := 50 * time.Microsecond
	for q.hal.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrGPUTimeout, index, q.timeout)
		}
		time.Sleep(sleep)
		if sleep < pollInterval {
			sleep *= 2
		}
	}
	return nil
}

// WaitIdle blocks until every submission has finished and frees their
// command buffers.
func (q *Queue) WaitIdle() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.last == 0 {
		return nil
	}
	if err := q.waitLocked(q.last); err != nil {
		return err
	}
	q.retireLocked()
	return nil
}

// Pending returns the number of submissions not yet retired.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}

// drain waits for the device to go idle and frees every buffer still in
// flight. It must run before objects a submission may use are destroyed.
func (q *Queue) drain() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.inflight) == 0 {
		return nil
	}
	var err error
	if werr := q.device.hal.WaitIdle(); werr != nil {
		err = fmt.Errorf("native: wait idle: %w", werr)
	}
	for _, f := range q.inflight {
		q.free(f.buffers)
	}
	q.inflight = nil
	return err
}

// HalQueue returns the underlying hal.Queue.
func (q *Queue) HalQueue() hal.Queue { return q.hal }
