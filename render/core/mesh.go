package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with optional per-vertex colours and
// normals. Handle joins its vertices to the TransformTable entry written
// from Transform.
type Mesh struct {
	Handle    ObjectHandle
	Indices   []uint32
	Positions []mgl32.Vec3
	Colors    []mgl32.Vec3
	Normals   []mgl32.Vec3
	Transform *Transform
}

// Copy deep-copies the geometry and transform. The handle is cleared so the
// copy can be registered as a separate drawable.
func (m *Mesh) Copy() *Mesh {
	c := &Mesh{
		Handle:    NoHandle,
		Indices:   append([]uint32(nil), m.Indices...),
		Positions: append([]mgl32.Vec3(nil), m.Positions...),
		Colors:    append([]mgl32.Vec3(nil), m.Colors...),
		Normals:   append([]mgl32.Vec3(nil), m.Normals...),
	}
	if m.Transform != nil {
		c.Transform = m.Transform.Copy()
	} else {
		c.Transform = NewTransform()
	}
	return c
}

// Paint fills the colour stream with a single colour.
func (m *Mesh) Paint(color mgl32.Vec3) {
	m.Colors = make([]mgl32.Vec3, len(m.Positions))
	for i := range m.Colors {
		m.Colors[i] = color
	}
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Register issues a fresh handle for the mesh if it has none yet.
func (m *Mesh) Register(registry *HandleRegistry) ObjectHandle {
	if m.Handle == NoHandle {
		m.Handle = registry.Next()
	}
	return m.Handle
}
