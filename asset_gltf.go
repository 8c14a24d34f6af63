package deferred

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// DefaultModelColor is the albedo given to imported meshes; materials are
// not read.
var DefaultModelColor = mgl32.Vec3{0.8, 0.8, 0.8}

var errNoGeometry = errors.New("gltf: no triangle geometry")

// LoadGLTF reads every triangle primitive of a .gltf or .glb file into one
// mesh. Missing normals are computed per face.
func LoadGLTF(path string) (*core.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	m, err := MeshFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func MeshFromDocument(doc *gltf.Document) (*core.Mesh, error) {
	out := &core.Mesh{Transform: core.NewTransform()}

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if err := appendPrimitive(doc, prim, out); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
			}
		}
	}
	if len(out.Indices) == 0 {
		return nil, errNoGeometry
	}
	out.Paint(DefaultModelColor)
	return out, nil
}

func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, out *core.Mesh) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	positions, err := readVec3(doc, posIdx)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = readIndices(doc, *prim.Indices); err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return fmt.Errorf("index %d out of %d positions", i, len(positions))
		}
	}

	var normals []mgl32.Vec3
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = readVec3(doc, normIdx); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
	}
	if len(normals) != len(positions) {
		normals = faceNormals(positions, indices)
	}

	base := uint32(len(out.Positions))
	for _, i := range indices {
		out.Indices = append(out.Indices, base+i)
	}
	out.Positions = append(out.Positions, positions...)
	out.Normals = append(out.Normals, normals...)
	return nil
}

// faceNormals accumulates each triangle's normal onto its vertices.
func faceNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := positions[indices[i]], positions[indices[i+1]], positions[indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, v := range indices[i : i+3] {
			normals[v] = normals[v].Add(n)
		}
	}
	for i, n := range normals {
		if n.Len() > 1e-6 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}

// accessorBytes returns the bytes of the accessor's buffer view, limited to
// the view's declared length.
func accessorBytes(doc *gltf.Document, accessorIdx int) (*gltf.Accessor, []byte, int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.BufferView == nil {
		return nil, nil, 0, errors.New("accessor has no buffer view")
	}
	viewIdx := *accessor.BufferView
	if viewIdx < 0 || viewIdx >= len(doc.BufferViews) {
		return nil, nil, 0, fmt.Errorf("buffer view %d out of range", viewIdx)
	}
	view := doc.BufferViews[viewIdx]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return nil, nil, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	buffer := doc.Buffers[view.Buffer]
	if buffer.Data == nil {
		return nil, nil, 0, errors.New("buffer has no data")
	}
	end := view.ByteOffset + view.ByteLength
	if view.ByteOffset < 0 || view.ByteLength < 0 || end > len(buffer.Data) {
		return nil, nil, 0, fmt.Errorf("buffer view %d [%d:%d] past end of %d-byte buffer", viewIdx, view.ByteOffset, end, len(buffer.Data))
	}
	if accessor.ByteOffset < 0 || accessor.Count < 0 || view.ByteStride < 0 {
		return nil, nil, 0, fmt.Errorf("accessor %d has a negative offset, count or stride", accessorIdx)
	}
	return accessor, buffer.Data[view.ByteOffset:end], view.ByteStride, nil
}

func readVec3(doc *gltf.Document, accessorIdx int) ([]mgl32.Vec3, error) {
	accessor, data, stride, err := accessorBytes(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v %v", accessor.ComponentType, accessor.Type)
	}
	if stride == 0 {
		stride = 12
	}
	out := make([]mgl32.Vec3, accessor.Count)
	for i := range out {
		off := accessor.ByteOffset + i*stride
		if off+12 > len(data) {
			return nil, fmt.Errorf("element %d past end of buffer", i)
		}
		for j := range 3 {
			out[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off+j*4:]))
		}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]uint32, error) {
	accessor, data, stride, err := accessorBytes(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component %v", accessor.ComponentType)
	}
	if stride == 0 {
		stride = size
	}

	out := make([]uint32, accessor.Count)
	for i := range out {
		off := accessor.ByteOffset + i*stride
		if off+size > len(data) {
			return nil, fmt.Errorf("index %d past end of buffer", i)
		}
		switch size {
		case 1:
			out[i] = uint32(data[off])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data[off:]))
		default:
			out[i] = binary.LittleEndian.Uint32(data[off:])
		}
	}
	return out, nil
}
