package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/triangle/gpucore"
)

// Device is a HAL device whose objects are addressed by gpucore IDs.
//
// Device is safe for concurrent use.
type Device struct {
	mu       sync.RWMutex
	label    string
	hal      hal.Device
	queue    *Queue
	external bool // owned by the host, never destroyed here

	// nextID is shared by all resource kinds. Zero is gpucore.InvalidID.
	nextID atomic.Uint64

	modules   map[gpucore.ShaderModuleID]hal.ShaderModule
	layouts   map[gpucore.PipelineLayoutID]hal.PipelineLayout
	pipelines map[gpucore.RenderPipelineID]hal.RenderPipeline
	views     map[gpucore.TextureViewID]hal.TextureView
	commands  map[gpucore.CommandBufferID]hal.CommandBuffer
	surfaces  map[*OffscreenSurface]struct{}

	destroyed bool
	onDestroy func(*Device)
}

func newDevice(label string, device hal.Device, queue hal.Queue, timeout time.Duration, external bool) *Device {
	d := &Device{
		label:     label,
		hal:       device,
		external:  external,
		modules:   make(map[gpucore.ShaderModuleID]hal.ShaderModule),
		layouts:   make(map[gpucore.PipelineLayoutID]hal.PipelineLayout),
		pipelines: make(map[gpucore.RenderPipelineID]hal.RenderPipeline),
		views:     make(map[gpucore.TextureViewID]hal.TextureView),
		commands:  make(map[gpucore.CommandBufferID]hal.CommandBuffer),
		surfaces:  make(map[*OffscreenSurface]struct{}),
	}
	d.nextID.Store(1)
	d.queue = &Queue{device: d, hal: queue, timeout: timeout}
	return d
}

func (d *Device) newID() uint64 {
	return d.nextID.Add(1) - 1
}

// Label returns the debug label the device was requested with.
func (d *Device) Label() string { return d.label }

// HalDevice returns the underlying hal.Device.
func (d *Device) HalDevice() hal.Device { return d.hal }

// CreateShaderModule creates a shader module. WGSL source is preferred;
// SPIR-V is used when no source is given.
func (d *Device) CreateShaderModule(desc *gpucore.ShaderModuleDescriptor) (gpucore.ShaderModuleID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return gpucore.InvalidID, ErrDeviceDestroyed
	}
	src := hal.ShaderSource{WGSL: desc.WGSL}
	if desc.WGSL == "" {
		src = hal.ShaderSource{SPIRV: desc.SPIRV}
	}
	m, err := d.hal.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: src,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create shader module %q: %w", desc.Label, err)
	}
	id := gpucore.ShaderModuleID(d.newID())
	d.modules[id] = m
	return id, nil
}

// DestroyShaderModule destroys a shader module. Unknown IDs are ignored.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if m, ok := d.modules[id]; ok {
		delete(d.modules, id)
		d.hal.DestroyShaderModule(m)
	}
}

// CreatePipelineLayout creates a pipeline layout. Only layouts without
// bind groups are supported.
func (d *Device) CreatePipelineLayout(desc *gpucore.PipelineLayoutDescriptor) (gpucore.PipelineLayoutID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return gpucore.InvalidID, ErrDeviceDestroyed
	}
	if desc.BindGroupLayouts != 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: pipeline layout %q with %d bind groups",
			ErrUnsupported, desc.Label, desc.BindGroupLayouts)
	}
	l, err := d.hal.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: []hal.BindGroupLayout{},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline layout %q: %w", desc.Label, err)
	}
	id := gpucore.PipelineLayoutID(d.newID())
	d.layouts[id] = l
	return id, nil
}

// DestroyPipelineLayout destroys a pipeline layout. Unknown IDs are ignored.
func (d *Device) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l, ok := d.layouts[id]; ok {
		delete(d.layouts, id)
		d.hal.DestroyPipelineLayout(l)
	}
}

// CreateRenderPipeline creates a single-sampled render pipeline without
// vertex buffers.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipelineID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return gpucore.InvalidID, ErrDeviceDestroyed
	}
	layout, ok := d.layouts[desc.Layout]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: pipeline layout %d", gpucore.ErrUnknownResource, desc.Layout)
	}
	vs, ok := d.modules[desc.Vertex.Module]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: shader module %d", gpucore.ErrUnknownResource, desc.Vertex.Module)
	}

	halDesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
		},
		Primitive: desc.Primitive,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if f := desc.Fragment; f != nil {
		fs, ok := d.modules[f.Module]
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("%w: shader module %d", gpucore.ErrUnknownResource, f.Module)
		}
		halDesc.Fragment = &hal.FragmentState{
			Module:     fs,
			EntryPoint: f.EntryPoint,
			Targets:    f.Targets,
		}
	}

	p, err := d.hal.CreateRenderPipeline(halDesc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create render pipeline %q: %w", desc.Label, err)
	}
	id := gpucore.RenderPipelineID(d.newID())
	d.pipelines[id] = p
	return id, nil
}

// DestroyRenderPipeline destroys a render pipeline. Unknown IDs are ignored.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pipelines[id]; ok {
		delete(d.pipelines, id)
		d.hal.DestroyRenderPipeline(p)
	}
}

// CreateCommandEncoder creates an encoder in the recording state.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	d.mu.RLock()
	destroyed := d.destroyed
	d.mu.RUnlock()
	if destroyed {
		return nil, ErrDeviceDestroyed
	}

	enc, err := d.hal.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder %q: %w", label, err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("native: begin encoding %q: %w", label, err)
	}
	return &CommandEncoder{device: d, hal: enc, label: label}, nil
}

// Queue returns the device's queue.
func (d *Device) Queue() gpucore.Queue { return d.queue }

// WaitIdle blocks until all submitted work has finished, or returns
// ErrGPUTimeout after the configured submit timeout.
func (d *Device) WaitIdle() error { return d.queue.WaitIdle() }

func (d *Device) pipeline(id gpucore.RenderPipelineID) (hal.RenderPipeline, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.pipelines[id]
	return p, ok
}

func (d *Device) view(id gpucore.TextureViewID) (hal.TextureView, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.views[id]
	return v, ok
}

func (d *Device) registerView(v hal.TextureView) gpucore.TextureViewID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.TextureViewID(d.newID())
	d.views[id] = v
	return id
}

// unregisterView removes id from the table. The caller destroys the view.
func (d *Device) unregisterView(id gpucore.TextureViewID) {
	d.mu.Lock()
	delete(d.views, id)
	d.mu.Unlock()
}

func (d *Device) registerCommandBuffer(cb hal.CommandBuffer) gpucore.CommandBufferID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.CommandBufferID(d.newID())
	d.commands[id] = cb
	return id
}

// takeCommandBuffers removes all ids from the table, or none of them if
// one is unknown.
func (d *Device) takeCommandBuffers(ids []gpucore.CommandBufferID) ([]hal.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return nil, ErrDeviceDestroyed
	}
	bufs := make([]hal.CommandBuffer, 0, len(ids))
	for _, id := range ids {
		cb, ok := d.commands[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", gpucore.ErrCommandBufferConsumed, id)
		}
		bufs = append(bufs, cb)
	}
	for _, id := range ids {
		delete(d.commands, id)
	}
	return bufs, nil
}

func (d *Device) attachSurface(s *OffscreenSurface) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDeviceDestroyed
	}
	d.surfaces[s] = struct{}{}
	return nil
}

func (d *Device) detachSurface(s *OffscreenSurface) {
	d.mu.Lock()
	delete(d.surfaces, s)
	d.mu.Unlock()
}

func (d *Device) isDestroyed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.destroyed
}

// Destroy waits for submitted work, releases the textures of attached
// surfaces and every object still in the tables, and destroys the HAL
// device unless it belongs to a host. Destroy is idempotent.
func (d *Device) Destroy() {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.destroyed = true
	surfaces := make([]*OffscreenSurface, 0, len(d.surfaces))
	for s := range d.surfaces {
		surfaces = append(surfaces, s)
	}
	d.mu.Unlock()

	if err := d.queue.drain(); err != nil {
		slogger().Warn("native: queue drain", "device", d.label, "err", err)
	}
	for _, s := range surfaces {
		s.deviceLost(d)
	}

	d.mu.Lock()
	for id, cb := range d.commands {
		d.hal.FreeCommandBuffer(cb)
		delete(d.commands, id)
	}
	for id, v := range d.views {
		d.hal.DestroyTextureView(v)
		delete(d.views, id)
	}
	for id, p := range d.pipelines {
		d.hal.DestroyRenderPipeline(p)
		delete(d.pipelines, id)
	}
	for id, l := range d.layouts {
		d.hal.DestroyPipelineLayout(l)
		delete(d.layouts, id)
	}
	for id, m := range d.modules {
		d.hal.DestroyShaderModule(m)
		delete(d.modules, id)
	}
	clear(d.surfaces)
	d.mu.Unlock()

	if !d.external {
		d.hal.Destroy()
	}
	if d.onDestroy != nil {
		d.onDestroy(d)
	}
	slogger().Debug("native: device destroyed", "device", d.label, "external", d.external)
}
