package deferred

import (
	"fmt"

	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

const crosshairGrid = `
  *  
  *  
*****
  *  
  *  
`

var (
	crosshairColor = mgl32.Vec3{0, 1, 0}
	hudTextColor   = mgl32.Vec3{1, 1, 1}
)

const (
	hudMargin    = 0.02
	hudPixelSize = 0.004
)

// Hud builds the overlay meshes: a crosshair, an optional FPS readout in the
// top-right corner and an optional camera position in the bottom-left one.
type Hud struct {
	ShowFPS      bool
	ShowPosition bool

	// Aspect is height/width; overlay x coordinates are scaled by it.
	Aspect float32

	crosshair *core.Mesh
	text      *TextMesher
	cache     map[string]*core.Mesh
}

func NewHud(width, height int, showFPS, showPosition bool) *Hud {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(height) / float32(width)
	}
	crosshair := core.TextGridToRects(crosshairGrid, mgl32.Vec3{}, 0.1, 0.1)
	crosshair.Paint(crosshairColor)
	return &Hud{
		ShowFPS:      showFPS,
		ShowPosition: showPosition,
		Aspect:       aspect,
		crosshair:    crosshair,
		text:         NewTextMesher(hudPixelSize),
		cache:        make(map[string]*core.Mesh),
	}
}

// Update applies toggle signals.
func (h *Hud) Update(signals *Signals) {
	if signals.Occurred(SignalToggleFPS) {
		h.ShowFPS = !h.ShowFPS
	}
	if signals.Occurred(SignalTogglePosition) {
		h.ShowPosition = !h.ShowPosition
	}
}

// Overlay returns the meshes to draw this frame.
func (h *Hud) Overlay(measuredHz float64, cameraPos mgl32.Vec3) []*core.Mesh {
	out := []*core.Mesh{h.crosshair}
	right := 1 / h.Aspect

	if h.ShowFPS {
		label := fmt.Sprintf("%.1f", measuredHz)
		w, _ := h.text.Size(label)
		out = append(out, h.textMesh(label, mgl32.Vec2{right - hudMargin - w, 1 - hudMargin}))
	}
	if h.ShowPosition {
		label := fmt.Sprintf("(%.2f, %.2f, %.2f)", cameraPos.X(), cameraPos.Y(), cameraPos.Z())
		_, th := h.text.Size(label)
		out = append(out, h.textMesh(label, mgl32.Vec2{-right + hudMargin, -1 + hudMargin + th}))
	}
	return out
}

func (h *Hud) textMesh(label string, topLeft mgl32.Vec2) *core.Mesh {
	key := fmt.Sprintf("%s@%v", label, topLeft)
	if m, ok := h.cache[key]; ok {
		return m
	}
	// readouts change every frame; keep the cache from growing without bound
	if len(h.cache) > 64 {
		clear(h.cache)
	}
	m := h.text.Mesh(label, topLeft, hudTextColor)
	h.cache[key] = m
	return m
}

type HudModule struct {
	ShowFPS      bool
	ShowPosition bool
}

func (m HudModule) Install(app *App, cmd *Commands) {
	width, height := 0, 0
	if ws, ok := Resource[*WindowState](app); ok {
		width, height = ws.WindowWidth, ws.WindowHeight
	}
	cmd.AddResources(NewHud(width, height, m.ShowFPS, m.ShowPosition))
	app.UseSystem(System(hudSystem).InStage(PreRender))
}

func hudSystem(hud *Hud, signals *Signals, stats *LoopStats, r *DeferredRenderer) {
	hud.Update(signals)
	r.Scene.Overlay = hud.Overlay(stats.MeasuredHz, r.Camera.Position)
}
