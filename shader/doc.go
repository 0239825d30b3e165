// Package shader holds the triangle's vertex and fragment program.
//
// The geometry lives in two fixed tables, [Positions] and [Colors]. The same
// tables feed the WGSL returned by [Source] and the CPU reference stages
// [VertexStage] and [FragmentStage], so the GPU program and its reference
// cannot drift apart.
//
// [Compile] runs the source through the gogpu/naga front end (parse, lower,
// optional validation) and SPIR-V back end, and checks that both entry points
// exist with compatible stage interfaces before any GPU object is created:
//
//	prog, err := shader.Default()
//	if err != nil {
//	    var cerr *shader.CompileError
//	    errors.As(err, &cerr) // cerr.Phase, cerr.EntryPoint
//	}
//
// A compiled [Program] is immutable. Its identity is its compiled bytes.
package shader
