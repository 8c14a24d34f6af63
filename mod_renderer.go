package deferred

import (
	"fmt"

	"github.com/gekko3d/deferred/render/core"
	"github.com/gekko3d/deferred/render/frame"
	"github.com/gekko3d/deferred/render/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// MarkerSize is the edge length of the cube drawn at every light.
const MarkerSize = 0.2

// DeferredRenderer is the resource systems use to populate the frame.
type DeferredRenderer struct {
	Registry *core.HandleRegistry
	Camera   *core.Camera
	Lights   *core.LightList
	Scene    *frame.Scene
	Stats    frame.Stats

	renderer *frame.Renderer
}

func newDeferredRenderer(registry *core.HandleRegistry, camera *core.Camera, lights *core.LightList) *DeferredRenderer {
	return &DeferredRenderer{
		Registry: registry,
		Camera:   camera,
		Lights:   lights,
		Scene:    &frame.Scene{},
	}
}

// AddMesh registers m and draws it through the deferred path every frame.
func (r *DeferredRenderer) AddMesh(m *core.Mesh) core.ObjectHandle {
	h := m.Register(r.Registry)
	r.Scene.Meshes = append(r.Scene.Meshes, m)
	return h
}

// AddLight appends l to the light list and, unless it sits at the origin,
// adds a marker cube painted in the light colour.
func (r *DeferredRenderer) AddLight(l core.Light) error {
	if err := r.Lights.Add(l); err != nil {
		return err
	}
	if l.Position == (mgl32.Vec3{}) {
		return nil
	}
	marker := core.Cube(MarkerSize)
	marker.Transform.Position = l.Position
	marker.Paint(l.Color)
	marker.Register(r.Registry)
	r.Scene.Markers = append(r.Scene.Markers, marker)
	return nil
}

// DeferredRendererModule sets up the G-buffer, the shader programs and one
// batcher per shader, then renders the DeferredRenderer scene every tick.
type DeferredRendererModule struct {
	Lights []core.Light
}

func (m DeferredRendererModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[*WindowState](app)
	if !ok {
		panic("DeferredRendererModule requires a PlatformWindowModule installed before it")
	}
	logger := app.Logger()
	if err := claimSurface(app, "deferred"); err != nil {
		panic(err)
	}

	ctx, err := createGpuContext(ws)
	if err != nil {
		panic(fmt.Sprintf("gpu: %v", err))
	}
	gbuffer, err := gpu.NewGBufferTarget(ctx.Device, ctx.Width(), ctx.Height(), logger)
	if err != nil {
		panic(fmt.Sprintf("g-buffer: %v", err))
	}
	programs, err := gpu.BuildPrograms(ctx, gbuffer, logger)
	if err != nil {
		panic(fmt.Sprintf("programs: %v", err))
	}

	registry := core.NewHandleRegistry()
	batchers := make(map[gpu.ShaderType]*gpu.Batcher)
	for _, s := range []gpu.ShaderType{gpu.ShaderGeometryDeferred, gpu.ShaderDeferredLighting, gpu.ShaderColoredTransformed, gpu.ShaderAbsoluteColored} {
		b, err := programs.NewBatcher(s, registry)
		if err != nil {
			panic(fmt.Sprintf("batcher %s: %v", s, err))
		}
		batchers[s] = b
	}

	camera := core.NewCamera()
	dr := newDeferredRenderer(registry, camera, &core.LightList{})
	for _, l := range m.Lights {
		if err := dr.AddLight(l); err != nil {
			logger.Warnf("light dropped: %v", err)
		}
	}

	dr.renderer, err = frame.NewRenderer(frame.Config{
		Backend: ctx,
		Cache:   programs.Cache,
		GBuffer: gbuffer,
		Handoff: &gpu.DepthHandoff{
			Source: gbuffer.Depth,
			Target: ctx.SurfaceDepth,
			Width:  ctx.Width(),
			Height: ctx.Height(),
		},
		Camera:   camera,
		Lights:   dr.Lights,
		Geometry: batchers[gpu.ShaderGeometryDeferred],
		Lighting: batchers[gpu.ShaderDeferredLighting],
		Markers:  batchers[gpu.ShaderColoredTransformed],
		Overlay:  batchers[gpu.ShaderAbsoluteColored],
		Width:    int(ctx.Width()),
		Height:   int(ctx.Height()),
		Logger:   logger,
	})
	if err != nil {
		panic(err)
	}
	if logger.DebugEnabled() {
		dr.renderer.OnStage = func(s frame.Stage) { logger.Debugf("stage %s done", s) }
	}

	cmd.AddResources(dr, camera)
	app.UseSystem(System(renderSystem).InStage(Render))
	logger.Infof("deferred renderer ready: %d lights", dr.Lights.Count())
}

// renderSystem aborts the process on any frame error.
func renderSystem(r *DeferredRenderer) {
	stats, err := r.renderer.RenderFrame(r.Scene)
	if err != nil {
		panic(fmt.Sprintf("render frame: %v", err))
	}
	r.Stats = stats
}
