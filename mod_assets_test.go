package deferred

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(i int) *int { return &i }

// triangleDocument builds a single-triangle document with an embedded
// buffer: three float positions followed by three uint16 indices.
func triangleDocument(withIndices bool) *gltf.Document {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	data := make([]byte, 0, 42)
	for _, f := range positions {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 1, 2} {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	prim := &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: 0},
		Mode:       gltf.PrimitiveTriangles,
	}
	if withIndices {
		prim.Indices = ptr(1)
	}

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: ptr(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: ptr(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}},
	}
}

func TestMeshFromDocument(t *testing.T) {
	for _, indexed := range []bool{true, false} {
		m, err := MeshFromDocument(triangleDocument(indexed))
		require.NoError(t, err)

		assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
		assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Positions[1])
		require.Len(t, m.Normals, 3)
		assert.InDelta(t, 1.0, m.Normals[0].Z(), 1e-6, "normals computed from CCW winding")
		assert.Equal(t, DefaultModelColor, m.Colors[2])
		assert.NotNil(t, m.Transform)
	}
}

func TestMeshFromDocument_Errors(t *testing.T) {
	_, err := MeshFromDocument(&gltf.Document{})
	assert.ErrorIs(t, err, errNoGeometry)

	doc := triangleDocument(true)
	doc.Accessors[0].Count = 10
	_, err = MeshFromDocument(doc)
	assert.ErrorContains(t, err, "past end of buffer")

	doc = triangleDocument(true)
	doc.Accessors[1].ComponentType = gltf.ComponentFloat
	_, err = MeshFromDocument(doc)
	assert.ErrorContains(t, err, "unexpected index component")
}

func TestMeshFromDocument_MalformedReferences(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(doc *gltf.Document)
		want   string
	}{
		{"view past buffer", func(doc *gltf.Document) { doc.BufferViews[0].ByteOffset = 100 }, "past end of"},
		{"view length past buffer", func(doc *gltf.Document) { doc.BufferViews[1].ByteLength = 64 }, "past end of"},
		{"missing view", func(doc *gltf.Document) { doc.Accessors[0].BufferView = ptr(5) }, "buffer view 5 out of range"},
		{"missing buffer", func(doc *gltf.Document) { doc.BufferViews[0].Buffer = 3 }, "buffer 3 out of range"},
		{"missing accessor", func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Indices = ptr(9) }, "accessor 9 out of range"},
		{"negative count", func(doc *gltf.Document) { doc.Accessors[0].Count = -1 }, "negative"},
		{"index reads next view", func(doc *gltf.Document) {
			// positions view shrunk so index 2 has no bytes of its own
			doc.BufferViews[0].ByteLength = 24
		}, "past end of buffer"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc := triangleDocument(true)
			c.mutate(doc)
			var err error
			assert.NotPanics(t, func() { _, err = MeshFromDocument(doc) })
			assert.ErrorContains(t, err, c.want)
		})
	}
}

func TestLoadGLTF_MissingFile(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb"))
	assert.ErrorContains(t, err, "open gltf")
}

func TestAssetServer(t *testing.T) {
	server := NewAssetServer()
	id := server.AddMesh(core.Cube(1))
	assert.Equal(t, 1, server.Len())

	template, ok := server.Mesh(id)
	require.True(t, ok)

	inst, err := server.Instance(id)
	require.NoError(t, err)
	assert.NotSame(t, template, inst)
	assert.Equal(t, core.NoHandle, inst.Handle)
	assert.Equal(t, template.Positions, inst.Positions)

	_, err = server.Instance(AssetId("nope"))
	assert.Error(t, err)

	_, err = server.LoadMesh(filepath.Join(t.TempDir(), "missing.gltf"))
	assert.Error(t, err)
	assert.Equal(t, 1, server.Len())
}
