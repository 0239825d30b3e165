package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/triangle/gpucore"
)

type encoderState uint8

const (
	encoderRecording encoderState = iota
	encoderLocked
	encoderFinished
)

// CommandEncoder records a render pass into a HAL command buffer.
//
// State machine:
//
//	Recording -> BeginRenderPass -> Locked
//	Locked    -> End             -> Recording
//	Recording -> Finish          -> Finished
type CommandEncoder struct {
	mu     sync.Mutex
	device *Device
	hal    hal.CommandEncoder
	label  string
	state  encoderState
}

// BeginRenderPass starts a render pass. Views are resolved through the
// device's tables.
func (e *CommandEncoder) BeginRenderPass(desc *gpucore.RenderPassDescriptor) (gpucore.RenderPassEncoder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.recording(); err != nil {
		return nil, err
	}
	if len(desc.ColorAttachments) == 0 {
		return nil, ErrNoColorAttachment
	}
	attachments := make([]hal.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, a := range desc.ColorAttachments {
		view, ok := e.device.view(a.View)
		if !ok {
			return nil, fmt.Errorf("%w: texture view %d", gpucore.ErrUnknownResource, a.View)
		}
		attachments[i] = hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     a.LoadOp,
			StoreOp:    a.StoreOp,
			ClearValue: a.ClearValue,
		}
	}

	rp := e.hal.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: attachments,
	})
	e.state = encoderLocked
	return &renderPass{encoder: e, hal: rp}, nil
}

// Finish ends encoding and registers the command buffer with the device.
func (e *CommandEncoder) Finish() (gpucore.CommandBufferID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.recording(); err != nil {
		return gpucore.InvalidID, err
	}
	e.state = encoderFinished
	cb, err := e.hal.EndEncoding()
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: end encoding %q: %w", e.label, err)
	}
	return e.device.registerCommandBuffer(cb), nil
}

// Discard abandons the recorded commands, including an open render pass.
// It is a no-op after Finish.
func (e *CommandEncoder) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == encoderFinished {
		return
	}
	e.state = encoderFinished
	e.hal.DiscardEncoding()
}

func (e *CommandEncoder) recording() error {
	switch e.state {
	case encoderLocked:
		return ErrEncoderLocked
	case encoderFinished:
		return ErrEncoderFinished
	}
	return nil
}

// renderPass records into a HAL render pass. Errors from SetPipeline and
// Draw are kept and returned by End.
type renderPass struct {
	encoder     *CommandEncoder
	hal         hal.RenderPassEncoder
	hasPipeline bool
	ended       bool
	err         error
}

func (p *renderPass) SetPipeline(id gpucore.RenderPipelineID) {
	if p.ended || p.err != nil {
		return
	}
	pipeline, ok := p.encoder.device.pipeline(id)
	if !ok {
		p.err = fmt.Errorf("%w: render pipeline %d", gpucore.ErrUnknownResource, id)
		return
	}
	p.hal.SetPipeline(pipeline)
	p.hasPipeline = true
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if p.ended || p.err != nil {
		return
	}
	if !p.hasPipeline {
		p.err = ErrNoPipeline
		return
	}
	p.hal.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) End() error {
	if p.ended {
		return ErrPassEnded
	}
	p.ended = true

	e := p.encoder
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != encoderLocked {
		// Discarded with the pass open.
		return ErrEncoderFinished
	}
	p.hal.End()
	e.state = encoderRecording
	return p.err
}
