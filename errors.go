package triangle

import (
	"errors"
	"fmt"
)

// Error kinds returned by RenderFrame. Each is wrapped in a *StepError.
var (
	// ErrNoAdapter is returned when the host exposes no usable GPU or driver.
	ErrNoAdapter = errors.New("triangle: no GPU adapter available")

	// ErrDeviceCreation is returned when the adapter rejects the device request.
	ErrDeviceCreation = errors.New("triangle: device creation failed")

	// ErrShaderCompile is returned when the shader program cannot be compiled
	// or its entry points do not fit the pipeline.
	ErrShaderCompile = errors.New("triangle: shader compilation failed")

	// ErrPipelineCreation is returned when the render pipeline cannot be
	// built or is used with a surface of a different format.
	ErrPipelineCreation = errors.New("triangle: pipeline creation failed")

	// ErrSurfaceUnavailable is returned when the surface cannot be
	// configured or has no current frame, for example after a resize.
	ErrSurfaceUnavailable = errors.New("triangle: surface unavailable")

	// ErrSubmit is returned when recording or submitting the frame's
	// commands fails.
	ErrSubmit = errors.New("triangle: command submission failed")

	// ErrRendererClosed is returned by RenderFrame after Close.
	ErrRendererClosed = errors.New("triangle: renderer closed")
)

// Step identifies a step of the setup or per-frame sequence.
type Step uint8

const (
	StepRequestAdapter Step = iota
	StepRequestDevice
	StepPreferredFormat
	StepCompileShader
	StepCreatePipeline
	StepCheckFormat
	StepConfigureSurface
	StepAcquireFrame
	StepEncode
	StepSubmit
	StepPresent
)

var stepNames = [...]string{
	StepRequestAdapter:   "request adapter",
	StepRequestDevice:    "request device",
	StepPreferredFormat:  "query preferred format",
	StepCompileShader:    "compile shader",
	StepCreatePipeline:   "create pipeline",
	StepCheckFormat:      "check surface format",
	StepConfigureSurface: "configure surface",
	StepAcquireFrame:     "acquire frame",
	StepEncode:           "encode commands",
	StepSubmit:           "submit",
	StepPresent:          "present",
}

// String returns a human-readable step name.
func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("Step(%d)", uint8(s))
}

// StepError reports which step of RenderFrame failed.
type StepError struct {
	Step Step

	// Kind is one of the Err* sentinels of this package.
	Kind error

	// Err is the underlying cause, if any.
	Err error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v (%s)", e.Kind, e.Step)
	}
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Step, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stepError(step Step, kind, err error) *StepError {
	return &StepError{Step: step, Kind: kind, Err: err}
}

// IsEnvironmentError reports whether err stems from the host environment
// (missing GPU, driver rejection, lost surface, failed submission) rather
// than from the program itself.
func IsEnvironmentError(err error) bool {
	return errors.Is(err, ErrNoAdapter) ||
		errors.Is(err, ErrDeviceCreation) ||
		errors.Is(err, ErrSurfaceUnavailable) ||
		errors.Is(err, ErrSubmit)
}

// IsProgrammingError reports whether err is a shader or pipeline mismatch
// that no change in the environment would fix.
func IsProgrammingError(err error) bool {
	return errors.Is(err, ErrShaderCompile) || errors.Is(err, ErrPipelineCreation)
}
