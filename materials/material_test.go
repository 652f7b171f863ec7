package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scene-editor/math"
)

func TestDefaults(t *testing.T) {
	p := DefaultPhong()
	assert.Equal(t, math.Splat(0.2), p.Ambient)
	assert.Equal(t, float32(32), p.Shininess)

	m := DefaultPBR()
	assert.Equal(t, math.Splat(0.2), m.Albedo)
	assert.Equal(t, float32(0.5), m.Roughness)
	assert.False(t, m.PackEnabled)
	assert.Zero(t, m.Pack)

	assert.Equal(t, math.Vec3One, LightPhong().Ambient)
}

func TestWithAmplitude(t *testing.T) {
	p := DefaultPhong()
	assert.Equal(t, p, p.WithAmplitude(0))

	loud := p.WithAmplitude(7000)
	assert.InDelta(t, 0.3, loud.Ambient.X, 1e-6)
	assert.Equal(t, p.Diffuse, loud.Diffuse)
	assert.Equal(t, math.Splat(0.2), p.Ambient, "receiver must not change")
}

func TestClamp(t *testing.T) {
	p := Phong{Ambient: math.Splat(20), Diffuse: math.Splat(-1), Specular: math.Splat(2), Shininess: 500}.Clamp()
	assert.Equal(t, math.Splat(10), p.Ambient)
	assert.Equal(t, math.Splat(0), p.Diffuse)
	assert.Equal(t, math.Splat(1), p.Specular)
	assert.Equal(t, float32(128), p.Shininess)

	m := PBR{Albedo: math.Splat(3), Metalness: -2, Roughness: 4, AO: 0.25}.Clamp()
	assert.Equal(t, math.Splat(1), m.Albedo)
	assert.Equal(t, float32(0), m.Metalness)
	assert.Equal(t, float32(1), m.Roughness)
	assert.Equal(t, float32(0.25), m.AO)
}
