package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Logger is the subset of the application logger the render packages use.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// Device allocates and fills GPU buffers.
type Device interface {
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error
	ReleaseBuffer(buf *wgpu.Buffer)
}

// PassEncoder records draw commands into an open render pass.
type PassEncoder interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(index uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buf *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End() error
}

// Frame is the command recording context of one presented frame.
type Frame interface {
	SurfaceView() *wgpu.TextureView
	SurfaceDepthView() *wgpu.TextureView
	BeginRenderPass(desc *wgpu.RenderPassDescriptor) PassEncoder
	CopyTextureToTexture(src, dst *wgpu.Texture, width, height uint32) error
}

// alignTo4 rounds n up to the copy alignment WebGPU requires for buffer writes.
func alignTo4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// ensureBuffer makes sure *buf can hold size bytes. Undersized buffers are
// released and replaced with one 50% larger than requested. Reports whether
// a new buffer was created.
func ensureBuffer(device Device, label string, buf **wgpu.Buffer, capacity *uint64, size uint64, usage wgpu.BufferUsage) (bool, error) {
	size = alignTo4(size)
	if *buf != nil && *capacity >= size {
		return false, nil
	}
	if *buf != nil {
		device.ReleaseBuffer(*buf)
		*buf = nil
	}
	newCap := alignTo4(size + size/2)
	b, err := device.CreateBuffer(label, newCap, usage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return false, err
	}
	*buf = b
	*capacity = newCap
	return true, nil
}
