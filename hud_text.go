package deferred

import (
	"image"

	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextMesher rasterizes strings with a bitmap face and turns every lit
// pixel into a square, so HUD text goes through the same solid-colour
// batcher as the crosshair.
type TextMesher struct {
	Face      font.Face
	PixelSize float32
}

func NewTextMesher(pixelSize float32) *TextMesher {
	return &TextMesher{
		Face:      basicfont.Face7x13,
		PixelSize: pixelSize,
	}
}

// Rasterize draws text into an alpha mask sized to fit it.
func (t *TextMesher) Rasterize(text string) *image.Alpha {
	metrics := t.Face.Metrics()
	width := font.MeasureString(t.Face, text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	img := image.NewAlpha(image.Rect(0, 0, max(width, 1), max(height, 1)))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: t.Face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	return img
}

// Size returns the extent of the mesh Mesh would build for text.
func (t *TextMesher) Size(text string) (float32, float32) {
	b := t.Rasterize(text).Bounds()
	return float32(b.Dx()) * t.PixelSize, float32(b.Dy()) * t.PixelSize
}

// Mesh lays text out with its top-left corner at topLeft.
func (t *TextMesher) Mesh(text string, topLeft mgl32.Vec2, color mgl32.Vec3) *core.Mesh {
	img := t.Rasterize(text)
	out := &core.Mesh{Transform: core.NewTransform()}
	ps := t.PixelSize
	b := img.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.AlphaAt(x, y).A == 0 {
				continue
			}
			center := mgl32.Vec3{
				topLeft.X() + (float32(x)+0.5)*ps,
				topLeft.Y() - (float32(y)+0.5)*ps,
				0,
			}
			out.Append(core.Rect(center, ps, ps))
		}
	}
	out.Paint(color)
	return out
}
