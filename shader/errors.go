package shader

import (
	"errors"
	"fmt"
)

// ErrCompile matches every *CompileError via errors.Is.
var ErrCompile = errors.New("shader: compile failed")

// Phase identifies the compilation step that rejected a program.
type Phase uint8

const (
	PhaseParse Phase = iota
	PhaseLower
	PhaseValidate
	PhaseEntryPoint
	PhaseInterface
	PhaseLayout
	PhaseCodegen
	PhaseTranslate
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseLower:
		return "lower"
	case PhaseValidate:
		return "validate"
	case PhaseEntryPoint:
		return "entry-point"
	case PhaseInterface:
		return "interface"
	case PhaseLayout:
		return "layout"
	case PhaseCodegen:
		return "codegen"
	case PhaseTranslate:
		return "translate"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// CompileError reports why a program was rejected.
type CompileError struct {
	Phase Phase

	// EntryPoint is the entry point at fault, if any.
	EntryPoint string

	Err error
}

func (e *CompileError) Error() string {
	if e.EntryPoint != "" {
		return fmt.Sprintf("shader: %s: %s: %v", e.Phase, e.EntryPoint, e.Err)
	}
	return fmt.Sprintf("shader: %s: %v", e.Phase, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is reports ErrCompile as a match so callers need not know the concrete type.
func (e *CompileError) Is(target error) bool { return target == ErrCompile }

func compileErrorf(phase Phase, entry, format string, args ...any) *CompileError {
	return &CompileError{Phase: phase, EntryPoint: entry, Err: fmt.Errorf(format, args...)}
}
