package gpucore

import "github.com/gogpu/gputypes"

// ShaderModuleDescriptor describes a shader module.
// At least one of WGSL or SPIRV must be set; implementations pick the form
// their backend consumes.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
	SPIRV []uint32
}

// PipelineLayoutDescriptor describes a pipeline layout.
type PipelineLayoutDescriptor struct {
	Label string

	// BindGroupLayouts is the number of bind group slots the pipeline uses.
	// The triangle pipeline declares none.
	BindGroupLayouts int
}

// ProgrammableStage names a shader module and its entry point.
type ProgrammableStage struct {
	Module     ShaderModuleID
	EntryPoint string
}

// FragmentStage is the fragment half of a render pipeline.
type FragmentStage struct {
	ProgrammableStage
	Targets []gputypes.ColorTargetState
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label     string
	Layout    PipelineLayoutID
	Vertex    ProgrammableStage
	Fragment  *FragmentStage
	Primitive gputypes.PrimitiveState
}

// ColorAttachment describes one color target of a render pass.
type ColorAttachment struct {
	View       TextureViewID
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearValue gputypes.Color
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []ColorAttachment
}

// SurfaceConfiguration binds a surface to a device.
type SurfaceConfiguration struct {
	Format    gputypes.TextureFormat
	Usage     gputypes.TextureUsage
	AlphaMode AlphaMode
}
