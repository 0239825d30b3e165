package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// Compile compiles WGSL source into a Program. Both entry points must be
// present with matching stages, the vertex stage must write a clip-space
// position, every fragment input must be produced by the vertex stage, and
// the fragment stage must write color target 0. Failures are *CompileError.
func Compile(source string, opts ...CompileOption) (*Program, error) {
	o := defaultCompileOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return compile(source, o)
}

func compile(source string, o compileOptions) (*Program, error) {
	module, err := lower(source)
	if err != nil {
		return nil, err
	}

	if o.validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, &CompileError{Phase: PhaseValidate, Err: err}
		}
		if len(verrs) > 0 {
			return nil, &CompileError{Phase: PhaseValidate, EntryPoint: verrs[0].Function, Err: verrs[0]}
		}
	}

	varyings, err := checkInterface(module, o.vertex, o.fragment)
	if err != nil {
		return nil, err
	}
	if err := checkLayout(module, o.layout); err != nil {
		return nil, err
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: o.spirvVersion, Debug: o.debug})
	if err != nil {
		return nil, &CompileError{Phase: PhaseCodegen, Err: err}
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, compileErrorf(PhaseCodegen, "", "SPIR-V length %d is not a whole number of words", len(code))
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}

	return &Program{
		source:   source,
		vertex:   o.vertex,
		fragment: o.fragment,
		spirv:    code,
		words:    words,
		layout:   o.layout,
		varyings: varyings,
	}, nil
}

func lower(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, &CompileError{Phase: PhaseParse, Err: err}
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, &CompileError{Phase: PhaseLower, Err: err}
	}
	return module, nil
}

var errNotFound = errors.New("entry point not found")

// findEntryPoint returns the entry point called name and checks its stage.
// Entry point functions live inline in the entry point, not in m.Functions.
func findEntryPoint(m *ir.Module, name string, stage ir.ShaderStage) (*ir.Function, error) {
	for i := range m.EntryPoints {
		ep := &m.EntryPoints[i]
		if ep.Name != name {
			continue
		}
		if ep.Stage != stage {
			return nil, compileErrorf(PhaseEntryPoint, name, "declared as %s stage, want %s", stageName(ep.Stage), stageName(stage))
		}
		return &ep.Function, nil
	}
	return nil, &CompileError{Phase: PhaseEntryPoint, EntryPoint: name, Err: errNotFound}
}

// checkInterface verifies the vertex/fragment pair and returns the
// locations passed between them. Every location the fragment stage reads
// must be written by the vertex stage with the same type and interpolation.
func checkInterface(m *ir.Module, vertex, fragment string) ([]uint32, error) {
	vs, err := findEntryPoint(m, vertex, ir.StageVertex)
	if err != nil {
		return nil, err
	}
	fs, err := findEntryPoint(m, fragment, ir.StageFragment)
	if err != nil {
		return nil, err
	}

	vsIn, vsOut := stageIO(m, vs)
	for _, b := range vsIn {
		if !b.builtin {
			return nil, compileErrorf(PhaseInterface, vertex, "reads vertex buffer attribute @location(%d); the pipeline binds no vertex buffers", b.value)
		}
	}
	if !slices.ContainsFunc(vsOut, isPosition) {
		return nil, compileErrorf(PhaseInterface, vertex, "does not write @builtin(position)")
	}

	fsIn, fsOut := stageIO(m, fs)
	var varyings []uint32
	for _, in := range fsIn {
		if in.builtin {
			continue
		}
		i := slices.IndexFunc(vsOut, func(out ioBinding) bool { return out.slot == in.slot })
		if i < 0 {
			return nil, compileErrorf(PhaseInterface, fragment, "reads @location(%d) which %s does not write", in.value, vertex)
		}
		out := vsOut[i]
		if !sameType(m, out.ty, in.ty) {
			return nil, compileErrorf(PhaseInterface, fragment, "reads @location(%d) as %s but %s writes %s",
				in.value, typeName(m, in.ty), vertex, typeName(m, out.ty))
		}
		if out.interp != in.interp {
			return nil, compileErrorf(PhaseInterface, fragment, "reads @location(%d) with %s interpolation but %s writes %s",
				in.value, interpName(in.interp), vertex, interpName(out.interp))
		}
		varyings = append(varyings, in.value)
	}
	if !slices.ContainsFunc(fsOut, func(b ioBinding) bool { return b.slot == slot{value: TargetLocation} }) {
		return nil, compileErrorf(PhaseInterface, fragment, "does not write color target @location(%d)", TargetLocation)
	}

	slices.Sort(varyings)
	return slices.Compact(varyings), nil
}

// checkLayout rejects resource bindings the pipeline layout does not declare.
func checkLayout(m *ir.Module, layout BindLayout) error {
	for _, gv := range m.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		rb := ResourceBinding{Group: gv.Binding.Group, Binding: gv.Binding.Binding}
		if !slices.Contains(layout.Bindings, rb) {
			return compileErrorf(PhaseLayout, "", "%s uses @group(%d) @binding(%d) outside the pipeline layout", gv.Name, rb.Group, rb.Binding)
		}
	}
	return nil
}

// slot is one stage interface binding: a builtin or a location.
type slot struct {
	builtin bool
	value   uint32
}

// ioBinding is a slot with the type and interpolation it carries.
type ioBinding struct {
	slot
	ty     ir.TypeHandle
	interp ir.Interpolation
}

// defaultInterpolation is what an unqualified float location gets.
var defaultInterpolation = ir.Interpolation{Kind: ir.InterpolationPerspective, Sampling: ir.SamplingCenter}

func isPosition(b ioBinding) bool {
	return b.builtin && b.value == uint32(ir.BuiltinPosition)
}

// stageIO flattens the bindings of a function's arguments and result,
// looking through struct members.
func stageIO(m *ir.Module, fn *ir.Function) (in, out []ioBinding) {
	for _, arg := range fn.Arguments {
		in = appendBindings(in, m, arg.Binding, arg.Type)
	}
	if fn.Result != nil {
		out = appendBindings(out, m, fn.Result.Binding, fn.Result.Type)
	}
	return in, out
}

func appendBindings(dst []ioBinding, m *ir.Module, b *ir.Binding, th ir.TypeHandle) []ioBinding {
	if b != nil {
		if ib, ok := toBinding(*b, th); ok {
			return append(dst, ib)
		}
		return dst
	}
	if int(th) >= len(m.Types) {
		return dst
	}
	st, ok := m.Types[th].Inner.(ir.StructType)
	if !ok {
		return dst
	}
	for _, mem := range st.Members {
		if mem.Binding == nil {
			continue
		}
		if ib, ok := toBinding(*mem.Binding, mem.Type); ok {
			dst = append(dst, ib)
		}
	}
	return dst
}

func toBinding(b ir.Binding, th ir.TypeHandle) (ioBinding, bool) {
	switch b := b.(type) {
	case ir.BuiltinBinding:
		return ioBinding{slot: slot{builtin: true, value: uint32(b.Builtin)}, ty: th}, true
	case *ir.BuiltinBinding:
		return ioBinding{slot: slot{builtin: true, value: uint32(b.Builtin)}, ty: th}, true
	case ir.LocationBinding:
		return locationBinding(b, th), true
	case *ir.LocationBinding:
		return locationBinding(*b, th), true
	}
	return ioBinding{}, false
}

func locationBinding(b ir.LocationBinding, th ir.TypeHandle) ioBinding {
	interp := defaultInterpolation
	if b.Interpolation != nil {
		interp = *b.Interpolation
	}
	return ioBinding{slot: slot{value: b.Location}, ty: th, interp: interp}
}

// sameType compares two type handles structurally, since equal types may
// be declared more than once.
func sameType(m *ir.Module, a, b ir.TypeHandle) bool {
	if a == b {
		return true
	}
	if int(a) >= len(m.Types) || int(b) >= len(m.Types) {
		return false
	}
	return reflect.DeepEqual(m.Types[a].Inner, m.Types[b].Inner)
}

func typeName(m *ir.Module, th ir.TypeHandle) string {
	if int(th) >= len(m.Types) {
		return fmt.Sprintf("type %d", th)
	}
	switch t := m.Types[th].Inner.(type) {
	case ir.ScalarType:
		return scalarName(t)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarName(t.Scalar))
	}
	if name := m.Types[th].Name; name != "" {
		return name
	}
	return fmt.Sprintf("%T", m.Types[th].Inner)
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarFloat:
		return fmt.Sprintf("f%d", s.Width*8)
	case ir.ScalarSint:
		return fmt.Sprintf("i%d", s.Width*8)
	case ir.ScalarUint:
		return fmt.Sprintf("u%d", s.Width*8)
	case ir.ScalarBool:
		return "bool"
	}
	return "scalar"
}

func interpName(i ir.Interpolation) string {
	var kind string
	switch i.Kind {
	case ir.InterpolationFlat:
		return "flat"
	case ir.InterpolationLinear:
		kind = "linear"
	default:
		kind = "perspective"
	}
	switch i.Sampling {
	case ir.SamplingCentroid:
		return kind + ", centroid"
	case ir.SamplingSample:
		return kind + ", sample"
	}
	return kind
}

func stageName(s ir.ShaderStage) string {
	switch s {
	case ir.StageVertex:
		return "vertex"
	case ir.StageFragment:
		return "fragment"
	case ir.StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}
