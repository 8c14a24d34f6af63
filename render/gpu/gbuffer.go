package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is shared by the G-buffer depth and the surface depth so the
// depth handoff can copy one into the other texel for texel.
const DepthFormat = wgpu.TextureFormatDepth32Float

var ErrIncompleteTarget = errors.New("render target incomplete")

// G-buffer attachment indices. They double as the fragment output locations
// of the geometry shader and the bindings the lighting shader samples.
const (
	PositionAttachment = 0
	NormalAttachment   = 1
	AlbedoAttachment   = 2
)

type AttachmentSpec struct {
	Label  string
	Format wgpu.TextureFormat
	Width  uint32
	Height uint32
}

var renderableColorFormats = map[wgpu.TextureFormat]bool{
	wgpu.TextureFormatRGBA8Unorm:     true,
	wgpu.TextureFormatRGBA8UnormSrgb: true,
	wgpu.TextureFormatBGRA8Unorm:     true,
	wgpu.TextureFormatRGBA16Float:    true,
	wgpu.TextureFormatRGBA32Float:    true,
}

// GBufferSpecs describes the three colour attachments, in attachment order,
// and the depth attachment.
func GBufferSpecs(width, height uint32) ([]AttachmentSpec, AttachmentSpec) {
	colors := []AttachmentSpec{
		PositionAttachment: {Label: "GBuffer Position", Format: wgpu.TextureFormatRGBA16Float, Width: width, Height: height},
		NormalAttachment:   {Label: "GBuffer Normal", Format: wgpu.TextureFormatRGBA16Float, Width: width, Height: height},
		AlbedoAttachment:   {Label: "GBuffer Albedo", Format: wgpu.TextureFormatRGBA8Unorm, Width: width, Height: height},
	}
	depth := AttachmentSpec{Label: "GBuffer Depth", Format: DepthFormat, Width: width, Height: height}
	return colors, depth
}

// CheckComplete validates an attachment set the way a framebuffer
// completeness check would: at least one colour attachment, renderable
// formats, non-zero and identical extents.
func CheckComplete(colors []AttachmentSpec, depth AttachmentSpec) error {
	if len(colors) == 0 {
		return fmt.Errorf("no colour attachments: %w", ErrIncompleteTarget)
	}
	w, h := depth.Width, depth.Height
	if w == 0 || h == 0 {
		return fmt.Errorf("%s has zero extent %dx%d: %w", depth.Label, w, h, ErrIncompleteTarget)
	}
	if depth.Format != DepthFormat {
		return fmt.Errorf("%s uses %v, want %v: %w", depth.Label, depth.Format, DepthFormat, ErrIncompleteTarget)
	}
	for _, c := range colors {
		if !renderableColorFormats[c.Format] {
			return fmt.Errorf("%s format %v is not colour renderable: %w", c.Label, c.Format, ErrIncompleteTarget)
		}
		if c.Width != w || c.Height != h {
			return fmt.Errorf("%s is %dx%d, depth is %dx%d: %w", c.Label, c.Width, c.Height, w, h, ErrIncompleteTarget)
		}
	}
	return nil
}

// GBufferTarget is the offscreen multi-attachment target of the geometry
// pass. It is sized once and never resized.
type GBufferTarget struct {
	Width, Height uint32

	colorSpecs []AttachmentSpec
	Colors     []*wgpu.Texture
	ColorViews []*wgpu.TextureView
	Depth      *wgpu.Texture
	DepthView  *wgpu.TextureView
}

// NewGBufferTarget allocates the attachments. An incomplete configuration is
// logged as a warning and creation carries on.
func NewGBufferTarget(device *wgpu.Device, width, height uint32, logger Logger) (*GBufferTarget, error) {
	logger = OrNop(logger)
	colors, depth := GBufferSpecs(width, height)
	if err := CheckComplete(colors, depth); err != nil {
		logger.Warnf("g-buffer: %v", err)
	}

	g := &GBufferTarget{Width: width, Height: height, colorSpecs: colors}
	for _, spec := range colors {
		tex, view, err := createAttachment(device, spec, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
		if err != nil {
			return nil, err
		}
		g.Colors = append(g.Colors, tex)
		g.ColorViews = append(g.ColorViews, view)
	}

	var err error
	g.Depth, g.DepthView, err = createAttachment(device, depth, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	logger.Infof("g-buffer created %dx%d", width, height)
	return g, nil
}

func createAttachment(device *wgpu.Device, spec AttachmentSpec, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: spec.Label,
		Size: wgpu.Extent3D{
			Width:              spec.Width,
			Height:             spec.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        spec.Format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", spec.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s view: %w", spec.Label, err)
	}
	return tex, view, nil
}

// ColorAttachments clears every G-buffer colour target to zero.
func (g *GBufferTarget) ColorAttachments() []wgpu.RenderPassColorAttachment {
	out := make([]wgpu.RenderPassColorAttachment, len(g.ColorViews))
	for i, v := range g.ColorViews {
		out[i] = wgpu.RenderPassColorAttachment{
			View:       v,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
		}
	}
	return out
}

// DepthAttachment clears to the far plane and keeps the result for the
// depth handoff.
func (g *GBufferTarget) DepthAttachment() *wgpu.RenderPassDepthStencilAttachment {
	return &wgpu.RenderPassDepthStencilAttachment{
		View:            g.DepthView,
		DepthLoadOp:     wgpu.LoadOpClear,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: 1.0,
	}
}

// ColorTargets are the fragment targets the geometry pipeline writes.
func (g *GBufferTarget) ColorTargets() []wgpu.ColorTargetState {
	out := make([]wgpu.ColorTargetState, len(g.colorSpecs))
	for i, spec := range g.colorSpecs {
		out[i] = wgpu.ColorTargetState{
			Format:    spec.Format,
			WriteMask: wgpu.ColorWriteMaskAll,
		}
	}
	return out
}
