// Package gputest provides recording fakes of the render/gpu interfaces so
// batchers, passes and frames can be tested without a GPU.
package gputest

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/deferred/render/gpu"
)

type CreatedBuffer struct {
	Buffer *wgpu.Buffer
	Label  string
	Size   uint64
	Usage  wgpu.BufferUsage
}

type BufferWrite struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// Device records every buffer it creates and every write made to it.
type Device struct {
	Created  []CreatedBuffer
	Writes   []BufferWrite
	Released []*wgpu.Buffer

	CreateErr error
	WriteErr  error
}

func NewDevice() *Device {
	return &Device{}
}

func (d *Device) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	b := &wgpu.Buffer{}
	d.Created = append(d.Created, CreatedBuffer{Buffer: b, Label: label, Size: size, Usage: usage})
	return b, nil
}

func (d *Device) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	if d.WriteErr != nil {
		return d.WriteErr
	}
	d.Writes = append(d.Writes, BufferWrite{Buffer: buf, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}

func (d *Device) ReleaseBuffer(buf *wgpu.Buffer) {
	d.Released = append(d.Released, buf)
}

// Label returns the label buf was created with.
func (d *Device) Label(buf *wgpu.Buffer) string {
	for _, c := range d.Created {
		if c.Buffer == buf {
			return c.Label
		}
	}
	return ""
}

// LastWrite returns the most recent write to a buffer whose label is label.
func (d *Device) LastWrite(label string) (BufferWrite, bool) {
	for i := len(d.Writes) - 1; i >= 0; i-- {
		if d.Label(d.Writes[i].Buffer) == label {
			return d.Writes[i], true
		}
	}
	return BufferWrite{}, false
}

// WritesTo returns every write to buffers labelled label, oldest first.
func (d *Device) WritesTo(label string) []BufferWrite {
	var out []BufferWrite
	for _, w := range d.Writes {
		if d.Label(w.Buffer) == label {
			out = append(out, w)
		}
	}
	return out
}

type DrawCall struct {
	IndexCount    uint32
	InstanceCount uint32
}

// Pass records the commands issued on one render pass.
type Pass struct {
	Label      string
	Calls      []string
	Draws      []DrawCall
	BindGroups map[uint32]*wgpu.BindGroup
	Ended      bool
	EndErr     error
}

func NewPass(label string) *Pass {
	return &Pass{Label: label, BindGroups: make(map[uint32]*wgpu.BindGroup)}
}

func (p *Pass) SetPipeline(*wgpu.RenderPipeline) {
	p.Calls = append(p.Calls, "SetPipeline")
}

func (p *Pass) SetBindGroup(index uint32, group *wgpu.BindGroup, _ []uint32) {
	p.Calls = append(p.Calls, fmt.Sprintf("SetBindGroup(%d)", index))
	p.BindGroups[index] = group
}

func (p *Pass) SetVertexBuffer(slot uint32, _ *wgpu.Buffer, _, size uint64) {
	p.Calls = append(p.Calls, fmt.Sprintf("SetVertexBuffer(%d)", slot))
}

func (p *Pass) SetIndexBuffer(_ *wgpu.Buffer, _ wgpu.IndexFormat, _, _ uint64) {
	p.Calls = append(p.Calls, "SetIndexBuffer")
}

func (p *Pass) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, _ uint32) {
	p.Calls = append(p.Calls, "DrawIndexed")
	p.Draws = append(p.Draws, DrawCall{IndexCount: indexCount, InstanceCount: instanceCount})
}

func (p *Pass) End() error {
	p.Calls = append(p.Calls, "End")
	p.Ended = true
	return p.EndErr
}

type Copy struct {
	Src, Dst      *wgpu.Texture
	Width, Height uint32
}

// Frame records passes and texture copies in submission order. Events holds
// one entry per pass ("pass:<label>") or copy ("copy").
type Frame struct {
	Passes      []*Pass
	Descriptors []*wgpu.RenderPassDescriptor
	Copies      []Copy
	Events      []string

	CopyErr error

	view      *wgpu.TextureView
	depthView *wgpu.TextureView
}

func NewFrame() *Frame {
	return &Frame{view: &wgpu.TextureView{}, depthView: &wgpu.TextureView{}}
}

func (f *Frame) SurfaceView() *wgpu.TextureView      { return f.view }
func (f *Frame) SurfaceDepthView() *wgpu.TextureView { return f.depthView }

func (f *Frame) BeginRenderPass(desc *wgpu.RenderPassDescriptor) gpu.PassEncoder {
	p := NewPass(desc.Label)
	f.Passes = append(f.Passes, p)
	f.Descriptors = append(f.Descriptors, desc)
	f.Events = append(f.Events, "pass:"+desc.Label)
	return p
}

func (f *Frame) CopyTextureToTexture(src, dst *wgpu.Texture, width, height uint32) error {
	if f.CopyErr != nil {
		return f.CopyErr
	}
	f.Copies = append(f.Copies, Copy{Src: src, Dst: dst, Width: width, Height: height})
	f.Events = append(f.Events, "copy")
	return nil
}

var (
	_ gpu.Device      = (*Device)(nil)
	_ gpu.PassEncoder = (*Pass)(nil)
	_ gpu.Frame       = (*Frame)(nil)
)
