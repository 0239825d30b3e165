package shader

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

const spirvMagic = 0x07230203

func TestDefaultCompiles(t *testing.T) {
	prog, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	words := prog.SPIRV()
	if len(words) == 0 || words[0] != spirvMagic {
		t.Fatalf("SPIR-V magic = %#x, want %#x", first(words), spirvMagic)
	}
	if len(prog.Bytes()) != len(words)*4 {
		t.Errorf("Bytes len %d, SPIRV words %d", len(prog.Bytes()), len(words))
	}
	if prog.VertexEntryPoint() != VertexEntryPoint || prog.FragmentEntryPoint() != FragmentEntryPoint {
		t.Errorf("entry points = %q/%q", prog.VertexEntryPoint(), prog.FragmentEntryPoint())
	}
	if prog.Source() != Source() {
		t.Error("Source() differs from compiled source")
	}
	if n := prog.Layout().Groups(); n != 0 {
		t.Errorf("Layout().Groups() = %d, want 0", n)
	}
	if v := prog.Varyings(); len(v) != 1 || v[0] != ColorLocation {
		t.Errorf("Varyings() = %v, want [%d]", v, ColorLocation)
	}

	again, _ := Default()
	if again != prog {
		t.Error("Default() returned a different program on second call")
	}
}

func first(w []uint32) uint32 {
	if len(w) == 0 {
		return 0
	}
	return w[0]
}

func TestCompileDeterministic(t *testing.T) {
	a, err := Compile(Source())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compile(Source())
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("two compilations of the same source are not Equal")
	}
	if a.Equal(nil) {
		t.Error("program Equal(nil) = true")
	}
}

func TestProgramAccessorsCopy(t *testing.T) {
	prog, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	w := prog.SPIRV()
	w[0] = 0
	b := prog.Bytes()
	b[0] = 0
	if prog.SPIRV()[0] != spirvMagic {
		t.Error("SPIRV() exposes internal storage")
	}
	if prog.Bytes()[0] == 0 {
		t.Error("Bytes() exposes internal storage")
	}
}

func TestCompileRejects(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		opts  []CompileOption
		phase Phase
		entry string
	}{
		{
			name:  "syntax",
			src:   "fn vs_main( {",
			phase: PhaseParse,
		},
		{
			name: "missing fragment",
			src: `@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`,
			phase: PhaseEntryPoint,
			entry: FragmentEntryPoint,
		},
		{
			name:  "renamed entry points",
			src:   Source(),
			opts:  []CompileOption{WithEntryPoints("main_vs", FragmentEntryPoint)},
			phase: PhaseEntryPoint,
			entry: "main_vs",
		},
		{
			name:  "swapped stages",
			src:   Source(),
			opts:  []CompileOption{WithEntryPoints(FragmentEntryPoint, VertexEntryPoint)},
			phase: PhaseEntryPoint,
			entry: FragmentEntryPoint,
		},
		{
			name: "fragment reads unwritten location",
			src: `@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`,
			phase: PhaseInterface,
			entry: FragmentEntryPoint,
		},
		{
			name: "varying type mismatch",
			src: `struct VsOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) color: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> VsOut {
    var out: VsOut;
    out.pos = vec4<f32>(0.0, 0.0, 0.0, 1.0);
    out.color = vec2<f32>(1.0, 0.0);
    return out;
}

@fragment
fn fs_main(@location(0) color: vec4<u32>) -> @location(0) vec4<f32> {
    return vec4<f32>(color);
}
`,
			phase: PhaseInterface,
			entry: FragmentEntryPoint,
		},
		{
			name: "varying interpolation mismatch",
			src: `struct VsOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> VsOut {
    var out: VsOut;
    out.pos = vec4<f32>(0.0, 0.0, 0.0, 1.0);
    out.color = vec4<f32>(1.0, 0.0, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(@location(0) @interpolate(flat) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`,
			phase: PhaseInterface,
			entry: FragmentEntryPoint,
		},
		{
			name: "vertex buffer input",
			src: `@vertex
fn vs_main(@location(0) p: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(p, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`,
			phase: PhaseInterface,
			entry: VertexEntryPoint,
		},
		{
			name: "resource binding",
			src: `struct Params {
    tint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return params.tint;
}
`,
			phase: PhaseLayout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.src, tt.opts...)
			if err == nil {
				t.Fatalf("Compile succeeded, program %v", prog)
			}
			if !errors.Is(err, ErrCompile) {
				t.Errorf("error %v does not match ErrCompile", err)
			}
			var cerr *CompileError
			if !errors.As(err, &cerr) {
				t.Fatalf("error %T is not *CompileError", err)
			}
			if cerr.Phase != tt.phase {
				t.Errorf("Phase = %s, want %s (%v)", cerr.Phase, tt.phase, err)
			}
			if tt.entry != "" && cerr.EntryPoint != tt.entry {
				t.Errorf("EntryPoint = %q, want %q", cerr.EntryPoint, tt.entry)
			}
		})
	}
}

func TestCompileMatchingVaryings(t *testing.T) {
	src := `struct VsOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) color: vec4<f32>,
    @location(1) @interpolate(flat) id: u32,
}

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> VsOut {
    var out: VsOut;
    out.pos = vec4<f32>(0.0, 0.0, 0.0, 1.0);
    out.color = vec4<f32>(1.0, 0.0, 0.0, 1.0);
    out.id = i;
    return out;
}

@fragment
fn fs_main(@location(0) @interpolate(perspective, center) color: vec4<f32>, @location(1) @interpolate(flat) id: u32) -> @location(0) vec4<f32> {
    return color * f32(id);
}
`
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := prog.Varyings(); !slices.Equal(got, []uint32{0, 1}) {
		t.Errorf("Varyings() = %v, want [0 1]", got)
	}
}

func TestCompileWithLayoutAllowsDeclaredBinding(t *testing.T) {
	src := `struct Params {
    tint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return params.tint;
}
`
	layout := BindLayout{Bindings: []ResourceBinding{{Group: 0, Binding: 0}}}
	prog, err := Compile(src, WithLayout(layout))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if n := prog.Layout().Groups(); n != 1 {
		t.Errorf("Layout().Groups() = %d, want 1", n)
	}
}

func TestCompileErrorFormat(t *testing.T) {
	err := compileErrorf(PhaseInterface, "fs_main", "reads @location(%d)", 3)
	want := "shader: interface: fs_main: reads @location(3)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !strings.HasPrefix((&CompileError{Phase: PhaseParse, Err: errNotFound}).Error(), "shader: parse: ") {
		t.Error("error without entry point lacks phase prefix")
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseCodegen.String() != "codegen" {
		t.Errorf("PhaseCodegen = %q", PhaseCodegen.String())
	}
	if s := Phase(200).String(); s != "Phase(200)" {
		t.Errorf("Phase(200) = %q", s)
	}
}

func TestTranslate(t *testing.T) {
	prog, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	wgsl, err := prog.Translate(TargetWGSL)
	if err != nil {
		t.Fatal(err)
	}
	if wgsl.Vertex != Source() || wgsl.Fragment != Source() {
		t.Error("WGSL translation is not the original source")
	}

	for _, target := range []Target{TargetMSL, TargetGLSL, TargetHLSL} {
		t.Run(target.String(), func(t *testing.T) {
			tr, err := prog.Translate(target)
			if err != nil {
				t.Fatalf("Translate(%s): %v", target, err)
			}
			if tr.Target != target {
				t.Errorf("Target = %s", tr.Target)
			}
			if strings.TrimSpace(tr.Vertex) == "" || strings.TrimSpace(tr.Fragment) == "" {
				t.Errorf("empty stage output: vertex %d bytes, fragment %d bytes", len(tr.Vertex), len(tr.Fragment))
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	for _, target := range []Target{TargetWGSL, TargetMSL, TargetGLSL, TargetHLSL} {
		got, err := ParseTarget(target.String())
		if err != nil || got != target {
			t.Errorf("ParseTarget(%q) = %v, %v", target.String(), got, err)
		}
	}
	if _, err := ParseTarget("spirv"); err == nil {
		t.Error("ParseTarget(spirv) succeeded")
	}
}
