package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/gekko3d/deferred"
	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	settingsPath := flag.String("settings", "", "YAML settings file")
	model := flag.String("model", "", "glTF/GLB model placed at the centre of the scene")
	debug := flag.Bool("debug", false, "log every frame stage")
	flag.Parse()

	settings := deferred.DefaultSettings()
	if *settingsPath != "" {
		var err error
		if settings, err = deferred.LoadSettings(*settingsPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *model != "" {
		settings.Model = *model
	}
	settings.Debug = settings.Debug || *debug

	rng := rand.New(rand.NewSource(settings.Seed))

	deferred.NewAppBuilder().
		UseFrequency(settings.Hz).
		UseModule(
			deferred.LoggingModule{Prefix: "deferred", Debug: settings.Debug},
			deferred.TimeModule{},
			deferred.SignalsModule{},
			deferred.NewPlatformWindow(settings.Width, settings.Height, settings.Title),
			deferred.InputModule{},
			deferred.AssetServerModule{},
			deferred.DeferredRendererModule{Lights: core.RandomLights(rng, settings.LightCount)},
			deferred.FlyingCameraModule{},
			deferred.HudModule{ShowFPS: settings.ShowFPS, ShowPosition: settings.ShowPos},
			demoSceneModule{model: settings.Model},
		).
		Build().
		Run()
}

type demoSceneModule struct {
	model string
}

func (m demoSceneModule) Install(app *deferred.App, cmd *deferred.Commands) {
	r, ok := deferred.Resource[*deferred.DeferredRenderer](app)
	if !ok {
		panic("demo scene requires the deferred renderer")
	}
	assets, _ := deferred.Resource[*deferred.AssetServer](app)

	floor := core.Box(20, 0.2, 20)
	floor.Transform.Position = mgl32.Vec3{0, -0.1, 0}
	floor.Paint(mgl32.Vec3{0.6, 0.6, 0.6})
	r.AddMesh(floor)

	for i, c := range []mgl32.Vec3{{0.9, 0.3, 0.3}, {0.3, 0.9, 0.3}, {0.3, 0.3, 0.9}} {
		cube := core.Cube(1)
		cube.Transform.Position = mgl32.Vec3{float32(i-1) * 3, 0.5, 0}
		cube.Transform.Rotate(mgl32.QuatRotate(mgl32.DegToRad(float32(i)*30), mgl32.Vec3{0, 1, 0}))
		cube.Paint(c)
		r.AddMesh(cube)
	}

	pillar := core.Box(0.5, 3, 0.5)
	pillar.Transform.Position = mgl32.Vec3{0, 1.5, -4}
	pillar.Paint(mgl32.Vec3{0.8, 0.8, 0.5})
	r.AddMesh(pillar)

	if m.model == "" || assets == nil {
		return
	}
	id, err := assets.LoadMesh(m.model)
	if err != nil {
		app.Logger().Warnf("model %s not loaded: %v", m.model, err)
		return
	}
	inst, err := assets.Instance(id)
	if err != nil {
		app.Logger().Warnf("model instance: %v", err)
		return
	}
	inst.Transform.Position = mgl32.Vec3{0, 0, 3}
	r.AddMesh(inst)
}
