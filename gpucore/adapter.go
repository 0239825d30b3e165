package gpucore

import "github.com/gogpu/gputypes"

// AdapterProvider is the entry point into a GPU implementation, the
// equivalent of navigator.gpu in a browser.
type AdapterProvider interface {
	// RequestAdapter returns a physical adapter. It returns (nil, nil) when
	// the host has no usable GPU or driver.
	RequestAdapter() (Adapter, error)

	// PreferredFormat returns the presentation format preferred by the host
	// compositor. The value is environment dependent and must be treated as
	// opaque.
	PreferredFormat() gputypes.TextureFormat
}

// Adapter is a physical GPU.
type Adapter interface {
	// Info describes the adapter.
	Info() AdapterInfo

	// RequestDevice opens a logical device on the adapter.
	RequestDevice(label string) (Device, error)
}

// AdapterInfo describes a physical adapter.
type AdapterInfo struct {
	Name       string
	Backend    string
	DeviceType gputypes.DeviceType
}

// Device is a logical GPU device.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - IDs become invalid after destruction and must not be reused
type Device interface {
	// === Shader Compilation ===

	// CreateShaderModule creates a shader module from WGSL source and/or
	// SPIR-V produced by naga.
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModuleID, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(id ShaderModuleID)

	// === Pipeline Management ===

	// CreatePipelineLayout creates a pipeline layout. An empty
	// BindGroupLayouts slice declares a pipeline without external resources.
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayoutID, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(id PipelineLayoutID)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipelineID, error)

	// DestroyRenderPipeline releases a render pipeline.
	DestroyRenderPipeline(id RenderPipelineID)

	// === Command Recording and Execution ===

	// CreateCommandEncoder opens an encoder in the recording state.
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Queue returns the device's execution queue.
	Queue() Queue

	// WaitIdle blocks until all submitted work has finished. Call it before
	// destroying objects a submission may still use.
	WaitIdle() error

	// Destroy releases the device and every resource still owned by it.
	Destroy()
}

// Queue executes finished command buffers.
type Queue interface {
	// Submit schedules the command buffers for execution. Each buffer is
	// consumed; submitting it again fails with ErrCommandBufferConsumed.
	// Submit does not wait for the GPU.
	Submit(buffers ...CommandBufferID) error
}

// CommandEncoder records GPU commands for later submission to a queue.
//
// State machine:
//
//	Recording -> BeginRenderPass -> Locked
//	Locked    -> RenderPassEncoder.End -> Recording
//	Recording -> Finish -> Finished
//	Recording, Locked -> Discard -> Finished
//
// The encoder is single-use.
type CommandEncoder interface {
	// BeginRenderPass starts a render pass and locks the encoder until the
	// pass ends.
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPassEncoder, error)

	// Finish closes the encoder and returns the recorded command buffer.
	Finish() (CommandBufferID, error)

	// Discard drops everything recorded so far. It is a no-op after Finish
	// or a previous Discard.
	Discard()
}

// RenderPassEncoder records draw commands inside a render pass.
type RenderPassEncoder interface {
	// SetPipeline binds a render pipeline for subsequent draws.
	SetPipeline(id RenderPipelineID)

	// Draw draws primitives from the currently bound pipeline.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// End finishes the pass and unlocks the parent encoder.
	End() error
}

// Surface is a presentation target.
type Surface interface {
	// Configure binds the surface to a device and pixel format. It must be
	// called before GetCurrentTexture and is idempotent.
	Configure(device Device, config *SurfaceConfiguration) error

	// GetCurrentTexture returns the frame to render into. It fails with
	// ErrSurfaceNotConfigured before Configure and with ErrSurfaceLost when
	// the surface changed since it was configured.
	GetCurrentTexture() (Frame, error)
}

// Presenter is implemented by surfaces that need an explicit present call
// after the frame's commands were submitted.
type Presenter interface {
	Present() error
}
