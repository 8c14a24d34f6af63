package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/deferred/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

type ShaderType int

const (
	ShaderGeometryDeferred ShaderType = iota
	ShaderDeferredLighting
	ShaderColoredTransformed
	ShaderAbsoluteColored
)

func (s ShaderType) String() string {
	switch s {
	case ShaderGeometryDeferred:
		return "GeometryDeferred"
	case ShaderDeferredLighting:
		return "DeferredLighting"
	case ShaderColoredTransformed:
		return "ColoredTransformed"
	case ShaderAbsoluteColored:
		return "AbsoluteColored"
	}
	return fmt.Sprintf("ShaderType(%d)", int(s))
}

// Layout returns the vertex layout the shader consumes.
func (s ShaderType) Layout() VertexLayout {
	switch s {
	case ShaderDeferredLighting:
		return LayoutTexturedQuad
	case ShaderColoredTransformed:
		return LayoutColoredTransformed
	case ShaderAbsoluteColored:
		return LayoutAbsoluteColored
	}
	return LayoutColoredNormalTransformed
}

type UniformName int

const (
	CameraToClip UniformName = iota
	WorldToCamera
	AspectRatio
	CameraPosition
	Lights
	PositionTexture
	NormalTexture
	ColorTexture
)

func (u UniformName) String() string {
	switch u {
	case CameraToClip:
		return "camera_to_clip"
	case WorldToCamera:
		return "world_to_camera"
	case AspectRatio:
		return "aspect_ratio"
	case CameraPosition:
		return "camera_position"
	case Lights:
		return "lights"
	case PositionTexture:
		return "position_texture"
	case NormalTexture:
		return "normal_texture"
	case ColorTexture:
		return "color_texture"
	}
	return fmt.Sprintf("UniformName(%d)", int(u))
}

// uniformSlot is the byte range of a uniform inside the program's uniform
// buffer at group 0, binding 0.
type uniformSlot struct {
	offset uint64
	size   uint64
}

type uniformLayout struct {
	size  uint64
	slots map[UniformName]uniformSlot
}

// Offsets mirror the uniform structs declared in the WGSL sources.
var uniformLayouts = map[ShaderType]uniformLayout{
	ShaderGeometryDeferred: {
		size: 128,
		slots: map[UniformName]uniformSlot{
			CameraToClip:  {0, 64},
			WorldToCamera: {64, 64},
		},
	},
	ShaderColoredTransformed: {
		size: 128,
		slots: map[UniformName]uniformSlot{
			CameraToClip:  {0, 64},
			WorldToCamera: {64, 64},
		},
	},
	ShaderDeferredLighting: {
		size: 16 + core.MaxLights*core.LightBytes,
		slots: map[UniformName]uniformSlot{
			CameraPosition: {0, 16},
			Lights:         {16, core.MaxLights * core.LightBytes},
		},
	},
	ShaderAbsoluteColored: {
		size: 16,
		slots: map[UniformName]uniformSlot{
			AspectRatio: {0, 8},
		},
	},
}

// Program is a compiled pipeline plus the bind groups that stay fixed for
// its lifetime. BindGroups[i] is bound at group i; a transformed batcher
// binds its local-to-world table right after them.
type Program struct {
	Type          ShaderType
	Pipeline      *wgpu.RenderPipeline
	BindGroups    []*wgpu.BindGroup
	UniformBuffer *wgpu.Buffer
}

func (p *Program) Layout() VertexLayout {
	return p.Type.Layout()
}

type uniformKey struct {
	shader ShaderType
	name   UniformName
}

// ShaderCache owns every Program and remembers the last value set for each
// (shader, uniform) pair.
type ShaderCache struct {
	device   Device
	logger   Logger
	programs map[ShaderType]*Program
	values   map[uniformKey]any
}

func NewShaderCache(device Device, logger Logger) *ShaderCache {
	return &ShaderCache{
		device:   device,
		logger:   OrNop(logger),
		programs: make(map[ShaderType]*Program),
		values:   make(map[uniformKey]any),
	}
}

func (c *ShaderCache) Register(p *Program) {
	c.programs[p.Type] = p
}

func (c *ShaderCache) GetShaderProgram(shader ShaderType) (*Program, bool) {
	p, ok := c.programs[shader]
	return p, ok
}

// Uniform returns the last value set for the pair.
func (c *ShaderCache) Uniform(shader ShaderType, name UniformName) (any, bool) {
	v, ok := c.values[uniformKey{shader, name}]
	return v, ok
}

// SetUniform records value and writes it into the program's uniform buffer.
// Uniforms the shader does not expose are recorded but skipped silently.
func (c *ShaderCache) SetUniform(shader ShaderType, name UniformName, value any) error {
	c.values[uniformKey{shader, name}] = value

	p, ok := c.programs[shader]
	if !ok || p.UniformBuffer == nil {
		c.logger.Debugf("uniform %s of %s skipped: no program", name, shader)
		return nil
	}
	slot, ok := uniformLayouts[shader].slots[name]
	if !ok {
		c.logger.Debugf("uniform %s of %s skipped: not bound", name, shader)
		return nil
	}

	data, err := encodeUniform(value)
	if err != nil {
		return fmt.Errorf("uniform %s of %s: %w", name, shader, err)
	}
	if uint64(len(data)) != slot.size {
		return fmt.Errorf("uniform %s of %s: got %d bytes, slot holds %d", name, shader, len(data), slot.size)
	}
	return c.device.WriteBuffer(p.UniformBuffer, slot.offset, data)
}

type uniformEncoder interface {
	UniformBytes() []byte
}

func encodeUniform(value any) ([]byte, error) {
	switch v := value.(type) {
	case mgl32.Mat4:
		return floatBytes(v[:]...), nil
	case mgl32.Vec3:
		return floatBytes(v[0], v[1], v[2], 0), nil
	case mgl32.Vec2:
		return floatBytes(v[0], v[1]), nil
	case float32:
		return floatBytes(v), nil
	case int:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
		return buf, nil
	case uniformEncoder:
		return v.UniformBytes(), nil
	}
	return nil, fmt.Errorf("unsupported uniform type %T", value)
}

func floatBytes(values ...float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
