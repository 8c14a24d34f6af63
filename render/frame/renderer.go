package frame

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/deferred/render/core"
	"github.com/gekko3d/deferred/render/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Stage is one step of a rendered frame, in execution order.
type Stage int

const (
	GeometryPass Stage = iota
	LightingResolve
	DepthHandoff
	ForwardOverlays
	Present
)

func (s Stage) String() string {
	switch s {
	case GeometryPass:
		return "GeometryPass"
	case LightingResolve:
		return "LightingResolve"
	case DepthHandoff:
		return "DepthHandoff"
	case ForwardOverlays:
		return "ForwardOverlays"
	case Present:
		return "Present"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Backend hands out frames to record into and presents them.
type Backend interface {
	AcquireFrame() (gpu.Frame, error)
	Present(frame gpu.Frame) error
}

// GBuffer is the geometry pass target.
type GBuffer interface {
	ColorAttachments() []wgpu.RenderPassColorAttachment
	DepthAttachment() *wgpu.RenderPassDepthStencilAttachment
}

// Scene is what one frame draws. Meshes go through the deferred path,
// Markers are forward shaded in world space and Overlay is drawn in
// absolute screen coordinates on top of everything.
type Scene struct {
	Meshes  []*core.Mesh
	Markers []*core.Mesh
	Overlay []*core.Mesh
}

type Stats struct {
	Geometry gpu.DrawStats
	Lighting gpu.DrawStats
	Markers  gpu.DrawStats
	Overlay  gpu.DrawStats
}

type Config struct {
	Backend Backend
	Cache   *gpu.ShaderCache
	GBuffer GBuffer
	Handoff *gpu.DepthHandoff
	Camera  *core.Camera
	Lights  *core.LightList

	Geometry *gpu.Batcher
	Lighting *gpu.Batcher
	Markers  *gpu.Batcher
	Overlay  *gpu.Batcher

	Width, Height int
	Logger        gpu.Logger
}

// Renderer runs the deferred frame: geometry into the G-buffer, lighting
// resolve into the surface, depth handoff, forward overlays, present.
type Renderer struct {
	cfg     Config
	resolve *gpu.LightingResolve
	logger  gpu.Logger

	// OnStage, if set, is called after each stage completes.
	OnStage func(Stage)
}

func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Backend == nil || cfg.Cache == nil || cfg.GBuffer == nil || cfg.Handoff == nil || cfg.Camera == nil || cfg.Lights == nil {
		return nil, errors.New("renderer: incomplete config")
	}
	if cfg.Geometry == nil || cfg.Lighting == nil || cfg.Markers == nil || cfg.Overlay == nil {
		return nil, errors.New("renderer: missing batcher")
	}

	resolve, err := gpu.NewLightingResolve(cfg.Cache, cfg.Lighting, cfg.Lights)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	r := &Renderer{cfg: cfg, resolve: resolve, logger: gpu.OrNop(cfg.Logger)}

	aspect := mgl32.Vec2{float32(cfg.Height) / float32(max(cfg.Width, 1)), 1}
	if err := cfg.Cache.SetUniform(gpu.ShaderAbsoluteColored, gpu.AspectRatio, aspect); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	if err := r.uploadProjection(); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	cfg.Camera.FOV.Subscribe(func(fov float32) {
		if err := r.uploadProjection(); err != nil {
			r.logger.Warnf("fov %.1f: %v", fov, err)
		}
	})
	return r, nil
}

var cameraShaders = []gpu.ShaderType{gpu.ShaderGeometryDeferred, gpu.ShaderColoredTransformed}

func (r *Renderer) uploadProjection() error {
	proj := r.cfg.Camera.ProjectionMatrix(r.cfg.Width, r.cfg.Height)
	for _, s := range cameraShaders {
		if err := r.cfg.Cache.SetUniform(s, gpu.CameraToClip, proj); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) uploadView() error {
	view := r.cfg.Camera.ViewMatrix()
	for _, s := range cameraShaders {
		if err := r.cfg.Cache.SetUniform(s, gpu.WorldToCamera, view); err != nil {
			return err
		}
	}
	return nil
}

// RenderFrame records and presents one frame. A failing stage aborts the
// frame and the error names the stage.
func (r *Renderer) RenderFrame(scene *Scene) (Stats, error) {
	var stats Stats
	if scene == nil {
		scene = &Scene{}
	}

	frame, err := r.cfg.Backend.AcquireFrame()
	if err != nil {
		return stats, fmt.Errorf("acquire frame: %w", err)
	}
	if err := r.uploadProjection(); err != nil {
		return stats, fmt.Errorf("camera: %w", err)
	}
	if err := r.uploadView(); err != nil {
		return stats, fmt.Errorf("camera: %w", err)
	}

	stages := []struct {
		stage Stage
		run   func() error
	}{
		{GeometryPass, func() error { return r.geometryPass(frame, scene, &stats) }},
		{LightingResolve, func() error { return r.lightingPass(frame, &stats) }},
		{DepthHandoff, func() error { return r.cfg.Handoff.Record(frame) }},
		{ForwardOverlays, func() error { return r.overlayPass(frame, scene, &stats) }},
		{Present, func() error { return r.cfg.Backend.Present(frame) }},
	}
	for _, s := range stages {
		if err := s.run(); err != nil {
			return stats, fmt.Errorf("%s: %w", s.stage, err)
		}
		if r.OnStage != nil {
			r.OnStage(s.stage)
		}
	}
	return stats, nil
}

func (r *Renderer) geometryPass(frame gpu.Frame, scene *Scene, stats *Stats) (err error) {
	pass := frame.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:                  "Geometry",
		ColorAttachments:       r.cfg.GBuffer.ColorAttachments(),
		DepthStencilAttachment: r.cfg.GBuffer.DepthAttachment(),
	})
	defer endPass(pass, &err)

	b := r.cfg.Geometry
	for _, m := range scene.Meshes {
		if err := b.QueueMesh(m); err != nil {
			b.Discard()
			return err
		}
	}
	if err := b.UploadLTWMatrices(); err != nil {
		b.Discard()
		return err
	}
	stats.Geometry, err = b.DrawEverything(pass)
	return err
}

func (r *Renderer) lightingPass(frame gpu.Frame, stats *Stats) (err error) {
	pass := frame.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Lighting",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       frame.SurfaceView(),
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	defer endPass(pass, &err)

	stats.Lighting, err = r.resolve.Record(pass, r.cfg.Camera.Position)
	return err
}

func (r *Renderer) overlayPass(frame gpu.Frame, scene *Scene, stats *Stats) (err error) {
	pass := frame.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Overlays",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    frame.SurfaceView(),
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         frame.SurfaceDepthView(),
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		},
	})
	defer endPass(pass, &err)

	markers := r.cfg.Markers
	for _, m := range scene.Markers {
		if err := markers.QueueMesh(m); err != nil {
			markers.Discard()
			return err
		}
	}
	if err := markers.UploadLTWMatrices(); err != nil {
		markers.Discard()
		return err
	}
	if stats.Markers, err = markers.DrawEverything(pass); err != nil {
		return err
	}

	overlay := r.cfg.Overlay
	for _, m := range scene.Overlay {
		if err := overlay.QueueDraw(core.NoHandle, m.Indices, m.Positions, gpu.Vec3s(m.Colors)); err != nil {
			overlay.Discard()
			return err
		}
	}
	stats.Overlay, err = overlay.DrawEverything(pass)
	return err
}

func endPass(pass gpu.PassEncoder, err *error) {
	if endErr := pass.End(); endErr != nil && *err == nil {
		*err = fmt.Errorf("end pass: %w", endErr)
	}
}
