package shader

import (
	"strconv"
	"strings"
	"sync"
	"text/template"
)

// Entry point names used by the render pipeline.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Interface locations shared by the two stages.
const (
	ColorLocation  = 0
	TargetLocation = 0
)

var wgslTemplate = template.Must(template.New("triangle.wgsl").Funcs(template.FuncMap{
	"f32": wgslFloat,
}).Parse(`struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location({{.ColorLocation}}) color: vec4<f32>,
}

@vertex
fn {{.Vertex}}(@builtin(vertex_index) vertexIndex: u32) -> VertexOutput {
    var positions = array<vec2<f32>, {{.Count}}>(
{{- range $i, $p := .Positions}}{{if $i}},{{end}}
        vec2<f32>({{f32 (index $p 0)}}, {{f32 (index $p 1)}})
{{- end}}
    );
    var colors = array<vec3<f32>, {{.Count}}>(
{{- range $i, $c := .Colors}}{{if $i}},{{end}}
        vec3<f32>({{f32 (index $c 0)}}, {{f32 (index $c 1)}}, {{f32 (index $c 2)}})
{{- end}}
    );
    var out: VertexOutput;
    out.position = vec4<f32>(positions[vertexIndex], 0.0, 1.0);
    out.color = vec4<f32>(colors[vertexIndex], 1.0);
    return out;
}

@fragment
fn {{.Fragment}}(@location({{.ColorLocation}}) color: vec4<f32>) -> @location({{.TargetLocation}}) vec4<f32> {
    return color;
}
`))

var (
	sourceOnce sync.Once
	source     string
)

// Source returns the WGSL for the triangle program. The text is generated
// once from the corner tables.
func Source() string {
	sourceOnce.Do(func() {
		var b strings.Builder
		err := wgslTemplate.Execute(&b, struct {
			Vertex, Fragment              string
			ColorLocation, TargetLocation int
			Count                         int
			Positions                     [VertexCount][2]float32
			Colors                        [VertexCount][3]float32
		}{
			Vertex:         VertexEntryPoint,
			Fragment:       FragmentEntryPoint,
			ColorLocation:  ColorLocation,
			TargetLocation: TargetLocation,
			Count:          VertexCount,
			Positions:      positions,
			Colors:         colors,
		})
		if err != nil {
			// The template and its data are fixed at build time.
			panic("shader: render WGSL template: " + err.Error())
		}
		source = b.String()
	})
	return source
}

// wgslFloat formats v as a WGSL f32 literal. WGSL needs a decimal point to
// keep the literal a float.
func wgslFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
