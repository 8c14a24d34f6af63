package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Context owns the wgpu device, queue and the window surface, plus the
// depth texture overlays test against after the depth handoff.
type Context struct {
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Surface *wgpu.Surface
	Adapter *wgpu.Adapter
	Config  *wgpu.SurfaceConfiguration

	SurfaceDepth     *wgpu.Texture
	surfaceDepthView *wgpu.TextureView
}

func NewContext(device *wgpu.Device, queue *wgpu.Queue, surface *wgpu.Surface, adapter *wgpu.Adapter, config *wgpu.SurfaceConfiguration) (*Context, error) {
	c := &Context{
		Device:  device,
		Queue:   queue,
		Surface: surface,
		Adapter: adapter,
		Config:  config,
	}
	var err error
	c.SurfaceDepth, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Surface Depth",
		Size: wgpu.Extent3D{
			Width:              config.Width,
			Height:             config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create surface depth: %w", err)
	}
	c.surfaceDepthView, err = c.SurfaceDepth.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("create surface depth view: %w", err)
	}
	return c, nil
}

func (c *Context) Width() uint32  { return c.Config.Width }
func (c *Context) Height() uint32 { return c.Config.Height }

func (c *Context) SurfaceFormat() wgpu.TextureFormat {
	return c.Config.Format
}

func (c *Context) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
}

func (c *Context) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	return c.Queue.WriteBuffer(buf, offset, data)
}

func (c *Context) ReleaseBuffer(buf *wgpu.Buffer) {
	buf.Release()
}

// AcquireFrame grabs the next surface texture and opens a command encoder.
func (c *Context) AcquireFrame() (Frame, error) {
	texture, err := c.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("get current texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("create surface view: %w", err)
	}
	encoder, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	return &wgpuFrame{
		ctx:     c,
		texture: texture,
		view:    view,
		encoder: encoder,
	}, nil
}

// Present submits everything recorded into f and shows the surface texture.
func (c *Context) Present(f Frame) error {
	frame, ok := f.(*wgpuFrame)
	if !ok {
		return fmt.Errorf("present: frame %T was not acquired from this context", f)
	}
	defer frame.release()

	cmd, err := frame.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}

	c.Queue.Submit(cmd)
	c.Surface.Present()
	return nil
}

type wgpuFrame struct {
	ctx     *Context
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
}

func (f *wgpuFrame) SurfaceView() *wgpu.TextureView {
	return f.view
}

func (f *wgpuFrame) SurfaceDepthView() *wgpu.TextureView {
	return f.ctx.surfaceDepthView
}

func (f *wgpuFrame) BeginRenderPass(desc *wgpu.RenderPassDescriptor) PassEncoder {
	return &wgpuPass{pass: f.encoder.BeginRenderPass(desc)}
}

func (f *wgpuFrame) CopyTextureToTexture(src, dst *wgpu.Texture, width, height uint32) error {
	f.encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{
			Texture:  src,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyTexture{
			Texture:  dst,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	return nil
}

func (f *wgpuFrame) release() {
	f.encoder.Release()
	f.view.Release()
	f.texture.Release()
}

type wgpuPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuPass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.pass.SetPipeline(pipeline)
}

func (p *wgpuPass) SetBindGroup(index uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.pass.SetBindGroup(index, group, dynamicOffsets)
}

func (p *wgpuPass) SetVertexBuffer(slot uint32, buf *wgpu.Buffer, offset, size uint64) {
	p.pass.SetVertexBuffer(slot, buf, offset, size)
}

func (p *wgpuPass) SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
	p.pass.SetIndexBuffer(buf, format, offset, size)
}

func (p *wgpuPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuPass) End() error {
	return p.pass.End()
}
