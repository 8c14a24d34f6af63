package gpu_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/deferred/render/core"
	"github.com/gekko3d/deferred/render/gpu"
	"github.com/gekko3d/deferred/render/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCacheWithPrograms(device *gputest.Device, shaders ...gpu.ShaderType) *gpu.ShaderCache {
	cache := gpu.NewShaderCache(device, nil)
	for _, s := range shaders {
		buf, _ := device.CreateBuffer(s.String()+" Uniforms", 2048, wgpu.BufferUsageUniform)
		cache.Register(&gpu.Program{Type: s, UniformBuffer: buf})
	}
	return cache
}

func TestShaderCache_WritesBoundUniforms(t *testing.T) {
	device := gputest.NewDevice()
	cache := newCacheWithPrograms(device, gpu.ShaderGeometryDeferred)

	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, cache.SetUniform(gpu.ShaderGeometryDeferred, gpu.WorldToCamera, view))

	w, ok := device.LastWrite("GeometryDeferred Uniforms")
	require.True(t, ok)
	assert.Equal(t, uint64(64), w.Offset)
	require.Len(t, w.Data, 64)
	assert.Equal(t, view[14], math.Float32frombits(binary.LittleEndian.Uint32(w.Data[56:])))

	v, ok := cache.Uniform(gpu.ShaderGeometryDeferred, gpu.WorldToCamera)
	require.True(t, ok)
	assert.Equal(t, view, v)
}

func TestShaderCache_SkipsUnboundUniforms(t *testing.T) {
	device := gputest.NewDevice()
	cache := newCacheWithPrograms(device, gpu.ShaderDeferredLighting)

	require.NoError(t, cache.SetUniform(gpu.ShaderDeferredLighting, gpu.PositionTexture, 0))
	require.NoError(t, cache.SetUniform(gpu.ShaderAbsoluteColored, gpu.AspectRatio, mgl32.Vec2{0.75, 1}))
	assert.Empty(t, device.Writes)

	v, ok := cache.Uniform(gpu.ShaderDeferredLighting, gpu.PositionTexture)
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestShaderCache_LightsAndCameraPosition(t *testing.T) {
	device := gputest.NewDevice()
	cache := newCacheWithPrograms(device, gpu.ShaderDeferredLighting)
	lights, err := core.NewLightList(core.Light{Position: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{1, 1, 1}})
	require.NoError(t, err)

	require.NoError(t, cache.SetUniform(gpu.ShaderDeferredLighting, gpu.CameraPosition, mgl32.Vec3{4, 5, 6}))
	require.NoError(t, cache.SetUniform(gpu.ShaderDeferredLighting, gpu.Lights, lights))

	writes := device.WritesTo("DeferredLighting Uniforms")
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Len(t, writes[0].Data, 16)
	assert.Equal(t, uint64(16), writes[1].Offset)
	assert.Len(t, writes[1].Data, core.MaxLights*core.LightBytes)
}

func TestShaderCache_RejectsWrongType(t *testing.T) {
	device := gputest.NewDevice()
	cache := newCacheWithPrograms(device, gpu.ShaderGeometryDeferred)

	assert.Error(t, cache.SetUniform(gpu.ShaderGeometryDeferred, gpu.CameraToClip, mgl32.Vec3{}))
	assert.Error(t, cache.SetUniform(gpu.ShaderGeometryDeferred, gpu.CameraToClip, "nope"))
	assert.Empty(t, device.Writes)
}

func TestShaderType_Layout(t *testing.T) {
	assert.Equal(t, gpu.LayoutColoredNormalTransformed, gpu.ShaderGeometryDeferred.Layout())
	assert.Equal(t, gpu.LayoutTexturedQuad, gpu.ShaderDeferredLighting.Layout())
	assert.Equal(t, gpu.LayoutColoredTransformed, gpu.ShaderColoredTransformed.Layout())
	assert.Equal(t, gpu.LayoutAbsoluteColored, gpu.ShaderAbsoluteColored.Layout())
}

func TestVertexLayout_BufferLayout(t *testing.T) {
	l := gpu.LayoutColoredNormalTransformed.BufferLayout()
	assert.Equal(t, uint64(40), l.ArrayStride)
	require.Len(t, l.Attributes, 4)
	assert.Equal(t, wgpu.VertexFormatUint32, l.Attributes[3].Format)
	assert.Equal(t, uint64(36), l.Attributes[3].Offset)
	assert.Equal(t, uint32(3), l.Attributes[3].ShaderLocation)

	quad := gpu.LayoutTexturedQuad.BufferLayout()
	assert.Equal(t, uint64(24), quad.ArrayStride)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, quad.Attributes[1].Format)
	assert.False(t, gpu.LayoutTexturedQuad.Transformed())
}
