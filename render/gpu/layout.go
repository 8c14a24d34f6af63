package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// VertexLayout is the closed set of vertex formats the batchers understand.
// Every layout starts with a vec3 position at location 0 and ends with the
// uint32 object handle at the last location.
type VertexLayout int

const (
	LayoutColoredNormalTransformed VertexLayout = iota
	LayoutColoredTransformed
	LayoutTexturedQuad
	LayoutAbsoluteColored
)

type Attribute struct {
	Name       string
	Components int
}

var layoutAttributes = map[VertexLayout][]Attribute{
	LayoutColoredNormalTransformed: {{"color", 3}, {"normal", 3}},
	LayoutColoredTransformed:       {{"color", 3}},
	LayoutTexturedQuad:             {{"texcoord", 2}},
	LayoutAbsoluteColored:          {{"color", 3}},
}

func (l VertexLayout) String() string {
	switch l {
	case LayoutColoredNormalTransformed:
		return "ColoredNormalTransformed"
	case LayoutColoredTransformed:
		return "ColoredTransformed"
	case LayoutTexturedQuad:
		return "TexturedQuad"
	case LayoutAbsoluteColored:
		return "AbsoluteColored"
	}
	return "Unknown"
}

// Attributes lists the per-vertex streams that follow the position.
func (l VertexLayout) Attributes() []Attribute {
	return layoutAttributes[l]
}

// Transformed reports whether vertices go through the local-to-world table.
func (l VertexLayout) Transformed() bool {
	return l == LayoutColoredNormalTransformed || l == LayoutColoredTransformed
}

// FloatsPerVertex counts the float32 components, position included.
func (l VertexLayout) FloatsPerVertex() int {
	n := 3
	for _, a := range l.Attributes() {
		n += a.Components
	}
	return n
}

// Stride is the byte size of one interleaved vertex, handle included.
func (l VertexLayout) Stride() uint64 {
	return uint64(l.FloatsPerVertex()*4 + 4)
}

func (l VertexLayout) BufferLayout() wgpu.VertexBufferLayout {
	attrs := []wgpu.VertexAttribute{{
		Format:         wgpu.VertexFormatFloat32x3,
		Offset:         0,
		ShaderLocation: 0,
	}}
	offset := uint64(12)
	for i, a := range l.Attributes() {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         floatFormat(a.Components),
			Offset:         offset,
			ShaderLocation: uint32(i + 1),
		})
		offset += uint64(a.Components * 4)
	}
	attrs = append(attrs, wgpu.VertexAttribute{
		Format:         wgpu.VertexFormatUint32,
		Offset:         offset,
		ShaderLocation: uint32(len(attrs)),
	})

	return wgpu.VertexBufferLayout{
		ArrayStride: l.Stride(),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

func floatFormat(components int) wgpu.VertexFormat {
	switch components {
	case 1:
		return wgpu.VertexFormatFloat32
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	}
	return wgpu.VertexFormatFloat32x4
}
