package gpucore

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Resource IDs
//
// These opaque IDs represent GPU resources. Each implementation maintains a
// mapping between IDs and actual backend resources.

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// RenderPipelineID is an opaque handle to a render pipeline.
type RenderPipelineID uint64

// TextureViewID is an opaque handle to a texture view.
type TextureViewID uint64

// CommandBufferID is an opaque handle to a finished, not yet submitted
// command buffer.
type CommandBufferID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// AlphaMode selects how the compositor interprets the alpha channel of a
// presented frame.
type AlphaMode uint8

const (
	// AlphaModeOpaque ignores alpha; the frame is treated as fully opaque.
	AlphaModeOpaque AlphaMode = iota

	// AlphaModePremultiplied expects color channels already multiplied by alpha.
	AlphaModePremultiplied

	// AlphaModeUnpremultiplied expects straight (non-premultiplied) alpha.
	AlphaModeUnpremultiplied
)

// String returns the WebGPU name of the alpha mode.
func (m AlphaMode) String() string {
	switch m {
	case AlphaModeOpaque:
		return "opaque"
	case AlphaModePremultiplied:
		return "premultiplied"
	case AlphaModeUnpremultiplied:
		return "unpremultiplied"
	default:
		return "unknown"
	}
}

// Frame is the texture a surface hands out for the current presentation.
// It is only valid until the frame is presented or the surface is
// reconfigured.
type Frame struct {
	View   TextureViewID
	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
}

// Errors shared by gpucore implementations.
var (
	// ErrSurfaceNotConfigured is returned by GetCurrentTexture before Configure.
	ErrSurfaceNotConfigured = errors.New("gpucore: surface is not configured")

	// ErrSurfaceLost is returned when the surface was resized or lost since it
	// was last configured.
	ErrSurfaceLost = errors.New("gpucore: surface lost")

	// ErrCommandBufferConsumed is returned when a command buffer is submitted
	// twice or was never produced by this device.
	ErrCommandBufferConsumed = errors.New("gpucore: command buffer already submitted or unknown")

	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("gpucore: unknown resource id")

	// ErrForeignDevice is returned when a device from another implementation
	// is passed to a surface.
	ErrForeignDevice = errors.New("gpucore: device belongs to a different backend")
)
