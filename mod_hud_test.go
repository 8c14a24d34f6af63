package deferred

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextMesher_Mesh(t *testing.T) {
	tm := NewTextMesher(0.01)

	img := tm.Rasterize("8")
	lit := 0
	for _, a := range img.Pix {
		if a != 0 {
			lit++
		}
	}
	require.Positive(t, lit)

	m := tm.Mesh("8", mgl32.Vec2{-1, 1}, hudTextColor)
	assert.Len(t, m.Positions, lit*4)
	assert.Len(t, m.Indices, lit*6)
	assert.Len(t, m.Colors, len(m.Positions))

	w, h := tm.Size("8")
	for _, p := range m.Positions {
		assert.GreaterOrEqual(t, p.X(), float32(-1)-1e-6)
		assert.LessOrEqual(t, p.X(), -1+w+1e-6)
		assert.LessOrEqual(t, p.Y(), float32(1)+1e-6)
		assert.GreaterOrEqual(t, p.Y(), 1-h-1e-6)
	}
}

func TestTextMesher_Empty(t *testing.T) {
	m := NewTextMesher(0.01).Mesh("", mgl32.Vec2{}, hudTextColor)
	assert.Empty(t, m.Indices)
}

func TestHud_Toggles(t *testing.T) {
	hud := NewHud(1280, 720, false, false)
	assert.InDelta(t, 720.0/1280.0, hud.Aspect, 1e-6)

	overlay := hud.Overlay(60, mgl32.Vec3{})
	require.Len(t, overlay, 1, "crosshair only")
	assert.Equal(t, crosshairColor, overlay[0].Colors[0])

	signals := NewSignals()
	signals.Publish(SignalToggleFPS)
	signals.Publish(SignalTogglePosition)
	hud.Update(signals)
	assert.True(t, hud.ShowFPS)
	assert.True(t, hud.ShowPosition)

	overlay = hud.Overlay(59.9, mgl32.Vec3{1, 2, 3})
	assert.Len(t, overlay, 3)

	again := hud.Overlay(59.9, mgl32.Vec3{1, 2, 3})
	assert.Same(t, overlay[1], again[1], "unchanged readouts reuse their mesh")

	signals.Drain()
	signals.Publish(SignalToggleFPS)
	hud.Update(signals)
	assert.Len(t, hud.Overlay(60, mgl32.Vec3{}), 2)
}

func TestHud_FPSAnchoredRight(t *testing.T) {
	hud := NewHud(800, 800, true, false)
	overlay := hud.Overlay(123.4, mgl32.Vec3{})
	require.Len(t, overlay, 2)

	maxX := float32(-10)
	for _, p := range overlay[1].Positions {
		maxX = max(maxX, p.X())
	}
	assert.LessOrEqual(t, maxX, float32(1-hudMargin+1e-5))
	assert.Greater(t, maxX, float32(1-hudMargin-3*hudPixelSize))
}

func TestHud_CrosshairCentered(t *testing.T) {
	hud := NewHud(0, 0, false, false)
	assert.Equal(t, float32(1), hud.Aspect)

	var sum mgl32.Vec3
	for _, p := range hud.crosshair.Positions {
		sum = sum.Add(p)
	}
	centroid := sum.Mul(1 / float32(len(hud.crosshair.Positions)))
	assert.InDelta(t, 0, centroid.X(), 1e-5)
	assert.InDelta(t, 0, centroid.Y(), 1e-5)
}

func TestHud_PositionAnchoredBottomLeft(t *testing.T) {
	hud := NewHud(800, 800, false, true)
	overlay := hud.Overlay(0, mgl32.Vec3{1, 2, 3})
	require.Len(t, overlay, 2)

	minX, minY := float32(10), float32(10)
	for _, p := range overlay[1].Positions {
		minX = min(minX, p.X())
		minY = min(minY, p.Y())
	}
	assert.GreaterOrEqual(t, minX, float32(-1+hudMargin-1e-5))
	assert.Less(t, minX, float32(-1+hudMargin+6*hudPixelSize))
	assert.GreaterOrEqual(t, minY, float32(-1+hudMargin-1e-5))
	assert.Less(t, minY, float32(0), "readout sits in the lower half")
}
