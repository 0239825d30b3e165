// Package gpucore defines the contracts between the triangle renderer and the
// GPU it draws with.
//
// The renderer never talks to a graphics API directly. It receives an
// [AdapterProvider] and a [Surface] from the host and drives them through a
// fixed sequence:
//
//	AdapterProvider.RequestAdapter
//	  -> Adapter.RequestDevice
//	  -> AdapterProvider.PreferredFormat
//	  -> Device.CreateShaderModule / CreatePipelineLayout / CreateRenderPipeline
//	  -> Surface.Configure -> Surface.GetCurrentTexture
//	  -> Device.CreateCommandEncoder -> BeginRenderPass -> SetPipeline -> Draw -> End
//	  -> CommandEncoder.Finish -> Queue.Submit
//
// Each step consumes a handle produced by the previous one, so no step can be
// reordered.
//
// # Resource Management
//
// GPU objects are referenced through opaque IDs ([ShaderModuleID],
// [RenderPipelineID], [TextureViewID], ...). Implementations keep the mapping
// between IDs and their backend objects. The zero ID is never valid.
//
// Command buffers are write-once: a [CommandBufferID] returned by
// [CommandEncoder.Finish] may be passed to [Queue.Submit] exactly once.
//
// # Implementations
//
//   - backend/native: gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES, noop)
//   - tests: recording stubs that log every call
package gpucore
