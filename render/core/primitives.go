package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

var boxFaces = [6]struct {
	normal mgl32.Vec3
	u, v   mgl32.Vec3
}{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// Box builds an axis aligned box centred on the origin with flat per-face
// normals (24 vertices, 36 indices, counter-clockwise front faces).
func Box(width, height, depth float32) *Mesh {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	m := &Mesh{Transform: NewTransform()}

	for _, f := range boxFaces {
		base := uint32(len(m.Positions))
		center := mulElem(f.normal, half)
		du := mulElem(f.u, half)
		dv := mulElem(f.v, half)

		m.Positions = append(m.Positions,
			center.Sub(du).Sub(dv),
			center.Add(du).Sub(dv),
			center.Add(du).Add(dv),
			center.Sub(du).Add(dv),
		)
		for i := 0; i < 4; i++ {
			m.Normals = append(m.Normals, f.normal)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.Paint(mgl32.Vec3{1, 1, 1})
	return m
}

// Cube is a Box with equal sides.
func Cube(size float32) *Mesh {
	return Box(size, size, size)
}

// Rect is a flat rectangle in the XY plane with its normal facing +Z.
func Rect(center mgl32.Vec3, width, height float32) *Mesh {
	hw, hh := width/2, height/2
	m := &Mesh{
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Positions: []mgl32.Vec3{
			center.Add(mgl32.Vec3{-hw, -hh, 0}),
			center.Add(mgl32.Vec3{hw, -hh, 0}),
			center.Add(mgl32.Vec3{hw, hh, 0}),
			center.Add(mgl32.Vec3{-hw, hh, 0}),
		},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Transform: NewTransform(),
	}
	m.Paint(mgl32.Vec3{1, 1, 1})
	return m
}

// ScreenQuad covers normalized device coordinates. Texture coordinates have
// their origin at the top-left corner of the screen.
func ScreenQuad() (indices []uint32, positions []mgl32.Vec3, texCoords []mgl32.Vec2) {
	indices = []uint32{0, 1, 2, 0, 2, 3}
	positions = []mgl32.Vec3{
		{-1, -1, 0},
		{1, -1, 0},
		{1, 1, 0},
		{-1, 1, 0},
	}
	texCoords = []mgl32.Vec2{
		{0, 1},
		{1, 1},
		{1, 0},
		{0, 0},
	}
	return indices, positions, texCoords
}

// TextGridToRects turns every non-space character of a multi-line grid into
// a cell-sized rectangle, laying the grid out centred inside bounds.
func TextGridToRects(grid string, center mgl32.Vec3, width, height float32) *Mesh {
	rows := splitGrid(grid)
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	out := &Mesh{Transform: NewTransform()}
	if len(rows) == 0 || cols == 0 {
		return out
	}

	cw := width / float32(cols)
	ch := height / float32(len(rows))
	left := center.X() - width/2 + cw/2
	top := center.Y() + height/2 - ch/2

	for y, row := range rows {
		for x, c := range row {
			if c == ' ' {
				continue
			}
			cell := Rect(mgl32.Vec3{left + float32(x)*cw, top - float32(y)*ch, center.Z()}, cw, ch)
			out.Append(cell)
		}
	}
	return out
}

// Append merges other into m, rebasing its indices. Transforms are ignored.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Positions))
	for _, i := range other.Indices {
		m.Indices = append(m.Indices, base+i)
	}
	m.Positions = append(m.Positions, other.Positions...)
	m.Colors = append(m.Colors, other.Colors...)
	m.Normals = append(m.Normals, other.Normals...)
}

func splitGrid(grid string) []string {
	var rows []string
	start := 0
	for i := 0; i <= len(grid); i++ {
		if i == len(grid) || grid[i] == '\n' {
			row := grid[start:i]
			start = i + 1
			if len(rows) == 0 && len(row) == 0 {
				continue
			}
			rows = append(rows, row)
		}
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
