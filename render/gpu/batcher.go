package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrAttributeMismatch  = errors.New("vertex attributes do not match layout")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrTransformsNotBound = errors.New("local-to-world table not uploaded")
)

// BindLTWFunc builds the bind group exposing the local-to-world storage buffer.
type BindLTWFunc func(buf *wgpu.Buffer) (*wgpu.BindGroup, error)

type DrawStats struct {
	Draws    int
	Vertices int
	Indices  int
}

// Batcher aggregates every draw queued for one shader during a frame into a
// single interleaved vertex stream and a single index stream, then issues
// them as one indexed draw.
type Batcher struct {
	program    *Program
	layout     VertexLayout
	device     Device
	transforms *core.TransformTable
	bindLTW    BindLTWFunc

	vertexData  []byte
	indexData   []uint32
	vertexCount uint32
	pending     int

	vertexBuf, indexBuf, ltwBuf *wgpu.Buffer
	vertexCap, indexCap, ltwCap uint64
	ltwGroup                    *wgpu.BindGroup
}

// NewBatcher creates a batcher for program. transforms and bindLTW are only
// used by layouts that go through the local-to-world table.
func NewBatcher(device Device, program *Program, transforms *core.TransformTable, bindLTW BindLTWFunc) *Batcher {
	return &Batcher{
		program:    program,
		layout:     program.Layout(),
		device:     device,
		transforms: transforms,
		bindLTW:    bindLTW,
	}
}

func (b *Batcher) Layout() VertexLayout {
	return b.layout
}

func (b *Batcher) Transforms() *core.TransformTable {
	return b.transforms
}

// Pending returns the number of draws queued since the last DrawEverything.
func (b *Batcher) Pending() int {
	return b.pending
}

// QueueDraw appends a draw. attributes are flat float streams in layout
// order, each holding len(positions)*components values.
func (b *Batcher) QueueDraw(handle core.ObjectHandle, indices []uint32, positions []mgl32.Vec3, attributes ...[]float32) error {
	if err := b.validate(handle, indices, positions, attributes); err != nil {
		return err
	}
	b.appendDraw(handle, indices, positions, attributes)
	return nil
}

func (b *Batcher) validate(handle core.ObjectHandle, indices []uint32, positions []mgl32.Vec3, attributes [][]float32) error {
	attrs := b.layout.Attributes()
	if len(attributes) != len(attrs) {
		return fmt.Errorf("%s: got %d attribute streams, want %d: %w", b.layout, len(attributes), len(attrs), ErrAttributeMismatch)
	}
	for i, a := range attrs {
		if len(attributes[i]) != len(positions)*a.Components {
			return fmt.Errorf("%s: %s has %d floats for %d vertices: %w", b.layout, a.Name, len(attributes[i]), len(positions), ErrAttributeMismatch)
		}
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("%s: index %d with %d vertices: %w", b.layout, idx, len(positions), ErrIndexOutOfRange)
		}
	}
	if b.layout.Transformed() && !b.registryIssued(handle) {
		return fmt.Errorf("%s: queue draw for %d: %w", b.layout, handle, core.ErrUnknownHandle)
	}
	return nil
}

func (b *Batcher) appendDraw(handle core.ObjectHandle, indices []uint32, positions []mgl32.Vec3, attributes [][]float32) {
	attrs := b.layout.Attributes()
	stride := int(b.layout.Stride())
	base := len(b.vertexData)
	b.vertexData = append(b.vertexData, make([]byte, len(positions)*stride)...)
	for v, p := range positions {
		off := base + v*stride
		off = putFloats(b.vertexData, off, p[0], p[1], p[2])
		for i, a := range attrs {
			off = putFloats(b.vertexData, off, attributes[i][v*a.Components:(v+1)*a.Components]...)
		}
		binary.LittleEndian.PutUint32(b.vertexData[off:], uint32(handle))
	}

	for _, idx := range indices {
		b.indexData = append(b.indexData, b.vertexCount+idx)
	}
	b.vertexCount += uint32(len(positions))
	b.pending++
}

// DefaultAlbedo fills the colour stream of meshes that have none.
var DefaultAlbedo = mgl32.Vec3{1, 1, 1}

// QueueMesh queues m using its colour and normal streams as the layout
// requires and records its local-to-world matrix once the draw is accepted.
// A mesh without colours is drawn in DefaultAlbedo; one without normals
// gets zero normals, which the shaders leave unlit by direct light.
func (b *Batcher) QueueMesh(m *core.Mesh) error {
	var streams [][]float32
	for _, a := range b.layout.Attributes() {
		switch a.Name {
		case "color":
			if len(m.Colors) == 0 {
				streams = append(streams, fillVec3(len(m.Positions), DefaultAlbedo))
			} else {
				streams = append(streams, Vec3s(m.Colors))
			}
		case "normal":
			if len(m.Normals) == 0 {
				streams = append(streams, make([]float32, 3*len(m.Positions)))
			} else {
				streams = append(streams, Vec3s(m.Normals))
			}
		default:
			return fmt.Errorf("%s: mesh has no %s stream: %w", b.layout, a.Name, ErrAttributeMismatch)
		}
	}
	if err := b.validate(m.Handle, m.Indices, m.Positions, streams); err != nil {
		return err
	}
	if b.layout.Transformed() && m.Transform != nil {
		if err := b.SetTransform(m.Handle, m.Transform.LocalToWorld()); err != nil {
			return err
		}
	}
	b.appendDraw(m.Handle, m.Indices, m.Positions, streams)
	return nil
}

func fillVec3(n int, v mgl32.Vec3) []float32 {
	out := make([]float32, 0, 3*n)
	for i := 0; i < n; i++ {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func (b *Batcher) SetTransform(h core.ObjectHandle, m mgl32.Mat4) error {
	if b.transforms == nil {
		return fmt.Errorf("%s: layout has no transform table", b.layout)
	}
	return b.transforms.Set(h, m)
}

// UploadLTWMatrices pushes the whole transform table to the GPU. It must run
// after this frame's transform writes and before DrawEverything.
func (b *Batcher) UploadLTWMatrices() error {
	if !b.layout.Transformed() || b.transforms == nil {
		return nil
	}
	size := uint64(b.transforms.Len() * core.MatrixBytes)
	grown, err := ensureBuffer(b.device, b.layout.String()+" LTW", &b.ltwBuf, &b.ltwCap, size, wgpu.BufferUsageStorage)
	if err != nil {
		return fmt.Errorf("%s: ltw buffer: %w", b.layout, err)
	}
	rebind := grown || b.ltwGroup == nil
	if !rebind && !b.transforms.Dirty() {
		return nil
	}
	if rebind {
		if b.bindLTW == nil {
			return fmt.Errorf("%s: %w", b.layout, ErrTransformsNotBound)
		}
		b.ltwGroup, err = b.bindLTW(b.ltwBuf)
		if err != nil {
			return fmt.Errorf("%s: bind ltw: %w", b.layout, err)
		}
	}
	if err := b.device.WriteBuffer(b.ltwBuf, 0, b.transforms.Bytes()); err != nil {
		return fmt.Errorf("%s: write ltw: %w", b.layout, err)
	}
	b.transforms.MarkClean()
	return nil
}

// DrawEverything records one indexed draw for everything queued and empties
// the queue, also on error. An empty queue records nothing.
func (b *Batcher) DrawEverything(pass PassEncoder) (DrawStats, error) {
	defer b.reset()

	if b.pending == 0 || len(b.indexData) == 0 {
		return DrawStats{}, nil
	}
	if b.layout.Transformed() && b.ltwGroup == nil {
		return DrawStats{}, fmt.Errorf("%s: %w", b.layout, ErrTransformsNotBound)
	}

	vertexBytes := b.vertexData
	indexBytes := uint32Bytes(b.indexData)

	if _, err := ensureBuffer(b.device, b.layout.String()+" VB", &b.vertexBuf, &b.vertexCap, uint64(len(vertexBytes)), wgpu.BufferUsageVertex); err != nil {
		return DrawStats{}, fmt.Errorf("%s: vertex buffer: %w", b.layout, err)
	}
	if _, err := ensureBuffer(b.device, b.layout.String()+" IB", &b.indexBuf, &b.indexCap, uint64(len(indexBytes)), wgpu.BufferUsageIndex); err != nil {
		return DrawStats{}, fmt.Errorf("%s: index buffer: %w", b.layout, err)
	}
	if err := b.device.WriteBuffer(b.vertexBuf, 0, vertexBytes); err != nil {
		return DrawStats{}, fmt.Errorf("%s: write vertices: %w", b.layout, err)
	}
	if err := b.device.WriteBuffer(b.indexBuf, 0, indexBytes); err != nil {
		return DrawStats{}, fmt.Errorf("%s: write indices: %w", b.layout, err)
	}

	pass.SetPipeline(b.program.Pipeline)
	for i, g := range b.program.BindGroups {
		pass.SetBindGroup(uint32(i), g, nil)
	}
	if b.layout.Transformed() {
		pass.SetBindGroup(uint32(len(b.program.BindGroups)), b.ltwGroup, nil)
	}
	pass.SetVertexBuffer(0, b.vertexBuf, 0, uint64(len(vertexBytes)))
	pass.SetIndexBuffer(b.indexBuf, wgpu.IndexFormatUint32, 0, uint64(len(indexBytes)))
	pass.DrawIndexed(uint32(len(b.indexData)), 1, 0, 0, 0)

	return DrawStats{
		Draws:    b.pending,
		Vertices: int(b.vertexCount),
		Indices:  len(b.indexData),
	}, nil
}

// Discard drops everything queued without drawing it.
func (b *Batcher) Discard() {
	b.reset()
}

func (b *Batcher) reset() {
	b.vertexData = b.vertexData[:0]
	b.indexData = b.indexData[:0]
	b.vertexCount = 0
	b.pending = 0
}

func (b *Batcher) registryIssued(h core.ObjectHandle) bool {
	if b.transforms == nil {
		return false
	}
	return b.transforms.Issued(h)
}

// Vec3s flattens v into xyz triples.
func Vec3s(v []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, e := range v {
		out = append(out, e[0], e[1], e[2])
	}
	return out
}

// Vec2s flattens v into xy pairs.
func Vec2s(v []mgl32.Vec2) []float32 {
	out := make([]float32, 0, len(v)*2)
	for _, e := range v {
		out = append(out, e[0], e[1])
	}
	return out
}

func putFloats(buf []byte, off int, values ...float32) int {
	for _, f := range values {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	return off
}

func uint32Bytes(values []uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
