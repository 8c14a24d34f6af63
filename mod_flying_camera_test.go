package deferred

import (
	"testing"

	"github.com/gekko3d/deferred/render/core"
	"github.com/stretchr/testify/assert"
)

func TestFlyingCamera_ZoomEasesTowardsTarget(t *testing.T) {
	fly := NewFlyingCamera(60)
	cam := core.NewCamera()

	var published []float32
	cam.FOV.Subscribe(func(v float32) { published = append(published, v) })

	for i := 0; i < 5; i++ {
		fly.Zoom(cam, true)
	}
	mid := cam.FOV.Get()
	assert.Less(t, mid, fly.BaseFOV)
	assert.Greater(t, mid, fly.ZoomFOV)

	for i := 0; i < 600; i++ {
		fly.Zoom(cam, true)
	}
	assert.InDelta(t, fly.ZoomFOV, cam.FOV.Get(), 0.5)
	assert.NotEmpty(t, published)

	for i := 0; i < 600; i++ {
		fly.Zoom(cam, false)
	}
	assert.InDelta(t, fly.BaseFOV, cam.FOV.Get(), 0.5)
}

func TestFlyingCamera_Move(t *testing.T) {
	fly := NewFlyingCamera(60)
	cam := core.NewCamera()
	start := cam.Position
	input := &Input{}

	input.Press(KeyW, true)
	fly.Move(cam, input, 1)
	moved := cam.Position.Sub(start)
	assert.InDelta(t, fly.Speed, moved.Len(), 1e-4)
	assert.InDelta(t, 0, moved.Sub(cam.Forward().Mul(fly.Speed)).Len(), 1e-4)

	input.Press(KeyW, false)
	input.Press(KeySpace, true)
	before := cam.Position
	fly.Move(cam, input, 0.5)
	assert.InDelta(t, before.Y()+fly.Speed*0.5, cam.Position.Y(), 1e-4)
}

func TestFlyingCamera_LookOnlyWhenCaptured(t *testing.T) {
	fly := NewFlyingCamera(60)
	cam := core.NewCamera()
	input := &Input{MouseDeltaX: 100, MouseDeltaY: 50}

	fly.Move(cam, input, 0.1)
	assert.Zero(t, cam.Yaw)

	input.MouseCaptured = true
	fly.Move(cam, input, 0.1)
	assert.InDelta(t, 10, cam.Yaw, 1e-4)
	assert.InDelta(t, -5, cam.Pitch, 1e-4)
}
