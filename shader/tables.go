package shader

import (
	"errors"
	"fmt"
)

// VertexCount is the number of triangle corners. A draw of VertexCount
// vertices starting at 0 keeps every vertex index inside the tables.
const VertexCount = 3

// positions holds the clip-space xy position of each corner.
var positions = [VertexCount][2]float32{
	{0.0, 0.5},
	{-0.5, -0.5},
	{0.5, -0.5},
}

// colors holds the RGB color of each corner.
var colors = [VertexCount][3]float32{
	{0.0, 1.0, 1.0},
	{0.0, 0.0, 1.0},
	{1.0, 0.0, 1.0},
}

// Positions returns a copy of the corner position table.
func Positions() [VertexCount][2]float32 { return positions }

// Colors returns a copy of the corner color table.
func Colors() [VertexCount][3]float32 { return colors }

// ErrVertexIndexOutOfRange is returned by VertexStage for indices outside
// [0, VertexCount).
var ErrVertexIndexOutOfRange = errors.New("shader: vertex index out of range")

// Vec4 is a four-component float vector.
type Vec4 [4]float32

// Color is a linear RGBA color as seen by the fragment stage.
type Color = Vec4

// VertexOutput is what the vertex stage hands to the rasterizer.
type VertexOutput struct {
	Position Vec4
	Color    Color
}

// VertexStage evaluates vs_main on the CPU for one vertex index.
func VertexStage(index uint32) (VertexOutput, error) {
	if index >= VertexCount {
		return VertexOutput{}, fmt.Errorf("%w: %d", ErrVertexIndexOutOfRange, index)
	}
	p, c := positions[index], colors[index]
	return VertexOutput{
		Position: Vec4{p[0], p[1], 0, 1},
		Color:    Color{c[0], c[1], c[2], 1},
	}, nil
}

// FragmentStage evaluates fs_main on the CPU. The fragment stage passes the
// interpolated color through unchanged.
func FragmentStage(c Color) Color {
	return c
}
