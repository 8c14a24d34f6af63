package deferred

import (
	"github.com/charmbracelet/harmonica"
	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

// FlyingCamera drives the renderer camera from keyboard and mouse. Holding
// the right mouse button eases the field of view towards ZoomFOV.
type FlyingCamera struct {
	Speed       float32
	Sensitivity float32
	BaseFOV     float32
	ZoomFOV     float32

	spring harmonica.Spring
	fov    float64
	fovVel float64
}

type FlyingCameraModule struct {
	Hz float64
}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	hz := m.Hz
	if hz <= 0 {
		hz = app.hz
	}
	cmd.AddResources(NewFlyingCamera(hz))
	app.UseSystem(
		System(FlyingCameraControlSystem).
			InStage(Update),
	)
}

func NewFlyingCamera(hz float64) *FlyingCamera {
	return &FlyingCamera{
		Speed:       5.0,
		Sensitivity: 0.1,
		BaseFOV:     90,
		ZoomFOV:     30,
		spring:      harmonica.NewSpring(harmonica.FPS(int(hz)), 6.0, 1.0),
		fov:         90,
	}
}

// Zoom advances the FOV spring one step and publishes the result on the
// camera observable.
func (fly *FlyingCamera) Zoom(cam *core.Camera, zoomed bool) {
	target := float64(fly.BaseFOV)
	if zoomed {
		target = float64(fly.ZoomFOV)
	}
	fly.fov, fly.fovVel = fly.spring.Update(fly.fov, fly.fovVel, target)
	cam.FOV.Set(float32(fly.fov))
}

// Move applies one tick of look and translation input.
func (fly *FlyingCamera) Move(cam *core.Camera, input *Input, dt float32) {
	if input.MouseCaptured {
		cam.Yaw += float32(input.MouseDeltaX) * fly.Sensitivity
		cam.Pitch -= float32(input.MouseDeltaY) * fly.Sensitivity
		cam.ClampPitch()
	}

	forward := cam.Forward()
	right := cam.Right()
	up := mgl32.Vec3{0, 1, 0}

	move := mgl32.Vec3{}
	if input.Pressed[KeyW] {
		move = move.Add(forward)
	}
	if input.Pressed[KeyS] {
		move = move.Sub(forward)
	}
	if input.Pressed[KeyD] {
		move = move.Add(right)
	}
	if input.Pressed[KeyA] {
		move = move.Sub(right)
	}
	if input.Pressed[KeySpace] {
		move = move.Add(up)
	}
	if input.Pressed[KeyShift] {
		move = move.Sub(up)
	}
	if move.Len() > 0 {
		cam.Position = cam.Position.Add(move.Normalize().Mul(fly.Speed * dt))
	}
}

func FlyingCameraControlSystem(fly *FlyingCamera, cam *core.Camera, input *Input, t *Time) {
	dt := t.Seconds()
	if dt <= 0 {
		return
	}
	fly.Move(cam, input, dt)
	fly.Zoom(cam, input.Pressed[MouseButtonRight])
}
