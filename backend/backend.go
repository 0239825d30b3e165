package backend

import (
	"errors"

	"github.com/gogpu/triangle/gpucore"
)

// Backend names.
const (
	BackendVulkan = "vulkan"
	BackendNoop   = "noop"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or fails to initialize.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when a backend is used before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend is a GPU implementation. It provides adapters to a
// triangle.Renderer and creates surfaces to render into.
type Backend interface {
	gpucore.AdapterProvider

	// Name returns the name the backend is registered under.
	Name() string

	// Init prepares the backend, typically by creating the API instance.
	Init() error

	// NewSurface creates an offscreen surface of the given size.
	NewSurface(width, height uint32) (gpucore.Surface, error)

	// Close releases the backend. It must not be used afterwards.
	Close()
}
