package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// glToClip remaps OpenGL clip depth [-1,1] to the WebGPU range [0,1].
var glToClip = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera is a Y-up first person camera. Yaw and Pitch are in degrees, FOV
// is the vertical field of view in degrees.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Near     float32
	Far      float32
	FOV      *Observable[float32]
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 2, 10},
		Near:     0.1,
		Far:      100,
		FOV:      NewObservable[float32](90),
	}
}

func (c *Camera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.Forward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix(width, height int) mgl32.Mat4 {
	aspect := float32(width) / float32(max(height, 1))
	proj := mgl32.Perspective(mgl32.DegToRad(c.FOV.Get()), aspect, c.Near, c.Far)
	return glToClip.Mul4(proj)
}

// ClampPitch keeps the camera from flipping over the poles.
func (c *Camera) ClampPitch() {
	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}
