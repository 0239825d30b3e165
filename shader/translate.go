package shader

import (
	"fmt"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
)

// Target is a shading language a Program can be translated to.
type Target uint8

const (
	TargetWGSL Target = iota
	TargetMSL
	TargetGLSL
	TargetHLSL
)

// String returns the target name as accepted by ParseTarget.
func (t Target) String() string {
	switch t {
	case TargetWGSL:
		return "wgsl"
	case TargetMSL:
		return "msl"
	case TargetGLSL:
		return "glsl"
	case TargetHLSL:
		return "hlsl"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// ParseTarget maps a language name to a Target.
func ParseTarget(name string) (Target, error) {
	for t := TargetWGSL; t <= TargetHLSL; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("shader: unknown target %q", name)
}

// Translation is a Program rendered in another shading language, one source
// per stage.
type Translation struct {
	Target   Target
	Vertex   string
	Fragment string
}

// Translate renders the program for target. WGSL returns the original
// source for both stages.
func (p *Program) Translate(target Target) (Translation, error) {
	t := Translation{Target: target}
	if target == TargetWGSL {
		t.Vertex, t.Fragment = p.source, p.source
		return t, nil
	}

	var err error
	if t.Vertex, err = p.translateStage(target, p.vertex, ir.StageVertex); err != nil {
		return Translation{}, err
	}
	if t.Fragment, err = p.translateStage(target, p.fragment, ir.StageFragment); err != nil {
		return Translation{}, err
	}
	return t, nil
}

// translateStage lowers the source again for every call; the back ends
// may annotate the module they are given.
func (p *Program) translateStage(target Target, entry string, stage ir.ShaderStage) (string, error) {
	module, err := lower(p.source)
	if err != nil {
		return "", err
	}

	var out string
	switch target {
	case TargetMSL:
		out, _, err = msl.CompileWithPipeline(module, msl.DefaultOptions(), msl.PipelineOptions{
			EntryPoint: &msl.EntryPointSelector{Stage: stage, Name: entry},
		})
	case TargetGLSL:
		opts := glsl.DefaultOptions()
		opts.EntryPoint = entry
		out, _, err = glsl.Compile(module, opts)
	case TargetHLSL:
		opts := hlsl.DefaultOptions()
		opts.EntryPoint = entry
		out, _, err = hlsl.Compile(module, opts)
	default:
		return "", compileErrorf(PhaseTranslate, entry, "unsupported target %s", target)
	}
	if err != nil {
		return "", &CompileError{Phase: PhaseTranslate, EntryPoint: entry, Err: fmt.Errorf("%s: %w", target, err)}
	}
	return out, nil
}
