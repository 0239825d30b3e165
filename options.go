package triangle

import "github.com/gogpu/triangle/shader"

// Option configures a Renderer during creation.
//
// Example:
//
//	prog, err := shader.Compile(src)
//	r := triangle.NewRenderer(triangle.WithProgram(prog), triangle.WithLabel("hud"))
type Option func(*rendererOptions)

type rendererOptions struct {
	program *shader.Program
	label   string
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		program: nil, // shader.Default() on first frame
		label:   "triangle",
	}
}

// WithProgram renders with prog instead of the built-in triangle program.
// The program must expose the entry points the pipeline is built from.
func WithProgram(prog *shader.Program) Option {
	return func(o *rendererOptions) {
		o.program = prog
	}
}

// WithLabel sets the debug label prefix for every GPU object the renderer
// creates.
func WithLabel(label string) Option {
	return func(o *rendererOptions) {
		if label != "" {
			o.label = label
		}
	}
}
