package deferred

import (
	"testing"

	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeferredRenderer() *DeferredRenderer {
	return newDeferredRenderer(core.NewHandleRegistry(), core.NewCamera(), &core.LightList{})
}

func TestDeferredRenderer_AddLightMarkers(t *testing.T) {
	r := testDeferredRenderer()

	require.NoError(t, r.AddLight(core.Light{Position: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{1, 0, 0}}))
	require.NoError(t, r.AddLight(core.Light{Color: mgl32.Vec3{0, 1, 0}}))

	assert.Equal(t, 2, r.Lights.Count())
	require.Len(t, r.Scene.Markers, 1, "lights at the origin get no marker")

	marker := r.Scene.Markers[0]
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, marker.Transform.Position)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, marker.Colors[0])
	assert.NotEqual(t, core.NoHandle, marker.Handle)
}

func TestDeferredRenderer_AddLightOverflow(t *testing.T) {
	r := testDeferredRenderer()
	for i := 0; i < core.MaxLights; i++ {
		require.NoError(t, r.AddLight(core.Light{Position: mgl32.Vec3{float32(i + 1), 0, 0}, Color: mgl32.Vec3{1, 1, 1}}))
	}

	err := r.AddLight(core.Light{Position: mgl32.Vec3{99, 0, 0}, Color: mgl32.Vec3{1, 1, 1}})
	assert.ErrorIs(t, err, core.ErrLightCapacity)
	assert.Len(t, r.Scene.Markers, core.MaxLights)
}

func TestDeferredRenderer_AddMesh(t *testing.T) {
	r := testDeferredRenderer()
	a := r.AddMesh(core.Cube(1))
	b := r.AddMesh(core.Box(2, 1, 2))

	assert.NotEqual(t, a, b)
	assert.Len(t, r.Scene.Meshes, 2)
	assert.Equal(t, b, r.Registry.Last())
}
