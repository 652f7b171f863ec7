package materials

import (
	"scene-editor/math"
	"scene-editor/textures"
)

// Phong drives the Glowy, Phong and Light shading kinds. Light shapes use
// Ambient as their emitted color.
type Phong struct {
	Ambient   math.Vec3
	Diffuse   math.Vec3
	Specular  math.Vec3
	Shininess float32
}

// PBR is the metal/roughness material. When PackEnabled is set and Pack
// resolves, the per-channel textures override the scalars they cover.
type PBR struct {
	Albedo      math.Vec3
	Metalness   float32
	Roughness   float32
	AO          float32
	Pack        textures.PackID
	PackEnabled bool
}

func DefaultPhong() Phong {
	return Phong{
		Ambient:   math.Splat(0.2),
		Diffuse:   math.Splat(0.5),
		Specular:  math.Splat(0.5),
		Shininess: 32,
	}
}

func DefaultPBR() PBR {
	return PBR{
		Albedo:    math.Splat(0.2),
		Metalness: 0.5,
		Roughness: 0.5,
		AO:        0.5,
	}
}

// LightPhong is the material a light source starts with: full white.
func LightPhong() Phong {
	p := DefaultPhong()
	p.Ambient = math.Vec3One
	return p
}

// WithAmplitude returns a copy whose ambient term is raised by the current
// audio amplitude.
func (p Phong) WithAmplitude(amp int16) Phong {
	p.Ambient = p.Ambient.Add(math.Splat(float32(amp) / 70000))
	return p
}

// Clamp keeps every scalar in its valid range. Shininess stays in [0, 128]
// and colors in [0, 10] so overdriven glow remains possible.
func (p Phong) Clamp() Phong {
	p.Ambient = clampVec(p.Ambient, 0, 10)
	p.Diffuse = clampVec(p.Diffuse, 0, 1)
	p.Specular = clampVec(p.Specular, 0, 1)
	p.Shininess = math.Clamp(p.Shininess, 0, 128)
	return p
}

func (m PBR) Clamp() PBR {
	m.Albedo = clampVec(m.Albedo, 0, 1)
	m.Metalness = math.Clamp(m.Metalness, 0, 1)
	m.Roughness = math.Clamp(m.Roughness, 0, 1)
	m.AO = math.Clamp(m.AO, 0, 1)
	return m
}

func clampVec(v math.Vec3, lo, hi float32) math.Vec3 {
	return math.Vec3{X: math.Clamp(v.X, lo, hi), Y: math.Clamp(v.Y, lo, hi), Z: math.Clamp(v.Z, lo, hi)}
}
