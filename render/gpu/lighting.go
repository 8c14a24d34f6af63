package gpu

import (
	"fmt"

	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

// LightingResolve shades the G-buffer with a fullscreen quad. The G-buffer
// textures sit at bindings PositionAttachment, NormalAttachment and
// AlbedoAttachment of group 1, bound once when the program is built.
type LightingResolve struct {
	cache   *ShaderCache
	batcher *Batcher
	lights  *core.LightList

	quadIndices   []uint32
	quadPositions []mgl32.Vec3
	quadTexCoords []float32
}

func NewLightingResolve(cache *ShaderCache, batcher *Batcher, lights *core.LightList) (*LightingResolve, error) {
	units := map[UniformName]int{
		PositionTexture: PositionAttachment,
		NormalTexture:   NormalAttachment,
		ColorTexture:    AlbedoAttachment,
	}
	for name, unit := range units {
		if err := cache.SetUniform(ShaderDeferredLighting, name, unit); err != nil {
			return nil, err
		}
	}

	indices, positions, texCoords := core.ScreenQuad()
	return &LightingResolve{
		cache:         cache,
		batcher:       batcher,
		lights:        lights,
		quadIndices:   indices,
		quadPositions: positions,
		quadTexCoords: Vec2s(texCoords),
	}, nil
}

func (r *LightingResolve) Lights() *core.LightList {
	return r.lights
}

// Record uploads the viewer position and all MaxLights lights, then draws
// the quad into pass.
func (r *LightingResolve) Record(pass PassEncoder, viewPos mgl32.Vec3) (DrawStats, error) {
	if err := r.cache.SetUniform(ShaderDeferredLighting, CameraPosition, viewPos); err != nil {
		return DrawStats{}, err
	}
	if err := r.cache.SetUniform(ShaderDeferredLighting, Lights, r.lights); err != nil {
		return DrawStats{}, err
	}
	if err := r.batcher.QueueDraw(core.NoHandle, r.quadIndices, r.quadPositions, r.quadTexCoords); err != nil {
		return DrawStats{}, fmt.Errorf("queue lighting quad: %w", err)
	}
	return r.batcher.DrawEverything(pass)
}
