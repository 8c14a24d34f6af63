package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the capacity of the light array uploaded to the lighting
// resolve shader. It must match MAX_LIGHTS in deferred_lighting.wgsl.
const MaxLights = 32

// LightBytes is the std140-like size of one light: two vec3 padded to vec4.
const LightBytes = 32

var ErrLightCapacity = errors.New("light list is full")

type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// LightList holds exactly MaxLights lights. Slots past Count are the zero
// light, which contributes nothing to shading.
type LightList struct {
	lights [MaxLights]Light
	count  int
}

func NewLightList(lights ...Light) (*LightList, error) {
	l := &LightList{}
	for _, light := range lights {
		if err := l.Add(light); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add appends a light. A full list is left unchanged and ErrLightCapacity
// is returned.
func (l *LightList) Add(light Light) error {
	if l.count >= MaxLights {
		return fmt.Errorf("add light %d: %w", l.count+1, ErrLightCapacity)
	}
	l.lights[l.count] = light
	l.count++
	return nil
}

func (l *LightList) Set(i int, light Light) error {
	if i < 0 || i >= l.count {
		return fmt.Errorf("light index %d out of range [0,%d)", i, l.count)
	}
	l.lights[i] = light
	return nil
}

func (l *LightList) Count() int {
	return l.count
}

// Active returns the lights that were added, without padding.
func (l *LightList) Active() []Light {
	return l.lights[:l.count]
}

// All returns the full fixed-size array including zero padding.
func (l *LightList) All() [MaxLights]Light {
	return l.lights
}

func (l *LightList) Reset() {
	l.lights = [MaxLights]Light{}
	l.count = 0
}

// UniformBytes encodes all MaxLights slots, padded entries included, as
// {position.xyz, pad, color.rgb, pad} little-endian float32.
func (l *LightList) UniformBytes() []byte {
	buf := make([]byte, MaxLights*LightBytes)
	for i, light := range l.lights {
		base := i * LightBytes
		putVec3(buf[base:], light.Position)
		putVec3(buf[base+16:], light.Color)
	}
	return buf
}

func putVec3(buf []byte, v mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}

// RandomLights scatters n lights over the demo floor: x and z in [-10,10],
// y in [0,5], every colour channel in [0.5,1].
func RandomLights(rng *rand.Rand, n int) []Light {
	lights := make([]Light, n)
	for i := range lights {
		lights[i] = Light{
			Position: mgl32.Vec3{
				randRange(rng, -10, 10),
				randRange(rng, 0, 5),
				randRange(rng, -10, 10),
			},
			Color: mgl32.Vec3{
				randRange(rng, 0.5, 1),
				randRange(rng, 0.5, 1),
				randRange(rng, 0.5, 1),
			},
		}
	}
	return lights
}

func randRange(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}

// Shading constants shared with deferred_lighting.wgsl.
const (
	AmbientFactor    = 0.1
	SpecularStrength = 0.5
	Shininess        = 16.0
	AttenLinear      = 0.09
	AttenQuadratic   = 0.032
	minVectorLength  = 1e-6
)

// Shade evaluates the lighting resolve for one fragment on the CPU. It is
// the reference for deferred_lighting.wgsl.
func Shade(lights *LightList, fragPos, normal, albedo, viewPos mgl32.Vec3) mgl32.Vec3 {
	result := albedo.Mul(AmbientFactor)
	n := safeNormalize(normal)
	viewDir := safeNormalize(viewPos.Sub(fragPos))

	for _, light := range lights.All() {
		if light.Color == (mgl32.Vec3{}) {
			continue
		}
		toLight := light.Position.Sub(fragPos)
		dist := toLight.Len()
		lightDir := safeNormalize(toLight)

		diffuse := max(n.Dot(lightDir), 0)
		halfway := safeNormalize(lightDir.Add(viewDir))
		spec := float32(math.Pow(float64(max(n.Dot(halfway), 0)), Shininess)) * SpecularStrength
		atten := 1 / (1 + AttenLinear*dist + AttenQuadratic*dist*dist)

		d := mulElem(albedo, light.Color).Mul(diffuse * atten)
		s := light.Color.Mul(spec * atten)
		result = result.Add(d).Add(s)
	}
	return result
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < minVectorLength {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
