package shader

import (
	"bytes"
	"sync"

	"github.com/gogpu/naga/spirv"
)

// ResourceBinding is a @group/@binding pair declared by a shader.
type ResourceBinding struct {
	Group   uint32
	Binding uint32
}

// BindLayout is the statically declared resource layout of the pipeline.
type BindLayout struct {
	Bindings []ResourceBinding
}

// Groups returns the number of bind groups the layout spans.
func (l BindLayout) Groups() int {
	n := 0
	for _, b := range l.Bindings {
		if int(b.Group)+1 > n {
			n = int(b.Group) + 1
		}
	}
	return n
}

// PipelineLayout is the layout the triangle pipeline is built with. The
// program reads no buffers, textures or samplers, so it is empty; Compile
// rejects programs that declare anything outside it.
var PipelineLayout = BindLayout{}

// Program is a compiled vertex + fragment program. It is immutable.
type Program struct {
	source   string
	vertex   string
	fragment string
	spirv    []byte
	words    []uint32
	layout   BindLayout

	// varyings are the vertex output locations consumed by the fragment stage.
	varyings []uint32
}

// Source returns the WGSL the program was compiled from.
func (p *Program) Source() string { return p.source }

// VertexEntryPoint returns the vertex stage entry point name.
func (p *Program) VertexEntryPoint() string { return p.vertex }

// FragmentEntryPoint returns the fragment stage entry point name.
func (p *Program) FragmentEntryPoint() string { return p.fragment }

// Layout returns the resource layout the program was checked against.
func (p *Program) Layout() BindLayout { return p.layout }

// Varyings returns the interface locations passed from the vertex stage to
// the fragment stage.
func (p *Program) Varyings() []uint32 {
	return append([]uint32(nil), p.varyings...)
}

// Bytes returns a copy of the SPIR-V binary.
func (p *Program) Bytes() []byte {
	return append([]byte(nil), p.spirv...)
}

// SPIRV returns a copy of the SPIR-V binary as little-endian 32-bit words.
func (p *Program) SPIRV() []uint32 {
	return append([]uint32(nil), p.words...)
}

// Equal reports whether two programs compiled to the same bytes.
func (p *Program) Equal(q *Program) bool {
	if p == nil || q == nil {
		return p == q
	}
	return bytes.Equal(p.spirv, q.spirv)
}

var (
	defaultOnce sync.Once
	defaultProg *Program
	defaultErr  error
)

// Default returns the triangle program compiled from Source. It is compiled
// once per process and shared.
func Default() (*Program, error) {
	defaultOnce.Do(func() {
		defaultProg, defaultErr = Compile(Source())
	})
	return defaultProg, defaultErr
}

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	vertex       string
	fragment     string
	validate     bool
	debug        bool
	spirvVersion spirv.Version
	layout       BindLayout
}

func defaultCompileOptions() compileOptions {
	return compileOptions{
		vertex:       VertexEntryPoint,
		fragment:     FragmentEntryPoint,
		spirvVersion: spirv.Version1_3,
		layout:       PipelineLayout,
	}
}

// WithEntryPoints overrides the entry point names Compile looks for.
func WithEntryPoints(vertex, fragment string) CompileOption {
	return func(o *compileOptions) {
		o.vertex = vertex
		o.fragment = fragment
	}
}

// WithValidation runs the naga IR validator before code generation.
func WithValidation(enabled bool) CompileOption {
	return func(o *compileOptions) {
		o.validate = enabled
	}
}

// WithDebugInfo emits SPIR-V debug names and line info.
func WithDebugInfo(enabled bool) CompileOption {
	return func(o *compileOptions) {
		o.debug = enabled
	}
}

// WithSPIRVVersion selects the SPIR-V version to generate.
func WithSPIRVVersion(v spirv.Version) CompileOption {
	return func(o *compileOptions) {
		o.spirvVersion = v
	}
}

// WithLayout allows resource bindings declared in layout.
func WithLayout(layout BindLayout) CompileOption {
	return func(o *compileOptions) {
		o.layout = layout
	}
}
