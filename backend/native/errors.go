package native

import "errors"

var (
	// ErrNoHALBackend is returned when the configured HAL backend is not
	// compiled in (see the nogpu build tag).
	ErrNoHALBackend = errors.New("native: HAL backend not available")

	// ErrProviderClosed is returned by a Provider after Close.
	ErrProviderClosed = errors.New("native: provider closed")

	// ErrDeviceDestroyed is returned when a destroyed device is used.
	ErrDeviceDestroyed = errors.New("native: device destroyed")

	// ErrEncoderLocked is returned when an encoder is used while one of its
	// render passes is open.
	ErrEncoderLocked = errors.New("native: encoder is locked (pass in progress)")

	// ErrEncoderFinished is returned when an encoder is used after Finish.
	ErrEncoderFinished = errors.New("native: encoder already finished")

	// ErrPassEnded is returned by End on a pass that has already ended.
	ErrPassEnded = errors.New("native: render pass already ended")

	// ErrNoPipeline is reported by End when Draw was called before
	// SetPipeline.
	ErrNoPipeline = errors.New("native: draw without pipeline")

	// ErrNoColorAttachment is returned for a render pass without targets.
	ErrNoColorAttachment = errors.New("native: render pass has no color attachment")

	// ErrUnsupported is returned for descriptors this backend cannot build.
	ErrUnsupported = errors.New("native: unsupported")

	// ErrInvalidDimensions is returned for a zero width or height.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrGPUTimeout is returned when a submission does not complete within
	// the submit timeout.
	ErrGPUTimeout = errors.New("native: timed out waiting for GPU")

	// ErrNoHALDevice is returned by NewHostProvider when the host does not
	// expose its HAL device and queue.
	ErrNoHALDevice = errors.New("native: provider does not expose HAL types")
)
