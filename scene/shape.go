package scene

import (
	"fmt"

	"scene-editor/core"
	"scene-editor/materials"
	"scene-editor/math"
	"scene-editor/textures"
)

type GeometryKind int

const (
	Cube GeometryKind = iota
	Sphere
	Quad
	numGeometryKinds
)

var geometryNames = [...]string{"Cube", "Sphere", "Quad"}

func (g GeometryKind) String() string {
	if g < 0 || g >= numGeometryKinds {
		return fmt.Sprintf("GeometryKind(%d)", int(g))
	}
	return geometryNames[g]
}

// Next cycles through the geometry kinds.
func (g GeometryKind) Next() GeometryKind {
	return (g + 1) % numGeometryKinds
}

func (g GeometryKind) Valid() bool { return g >= 0 && g < numGeometryKinds }

// ShadingKind selects the material model a shape is drawn with.
type ShadingKind int

const (
	Glowy ShadingKind = iota
	Phong
	PBR
	Light
	numShadingKinds
)

var shadingNames = [...]string{"Glowy", "Phong", "PBR", "Light"}

func (s ShadingKind) String() string {
	if s < 0 || s >= numShadingKinds {
		return fmt.Sprintf("ShadingKind(%d)", int(s))
	}
	return shadingNames[s]
}

func (s ShadingKind) Next() ShadingKind {
	return (s + 1) % numShadingKinds
}

func (s ShadingKind) Valid() bool { return s >= 0 && s < numShadingKinds }

// ParseShadingKind maps a name such as "PBR" back to its kind.
func ParseShadingKind(name string) (ShadingKind, error) {
	for i, n := range shadingNames {
		if n == name {
			return ShadingKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shading kind %q", name)
}

func ParseGeometryKind(name string) (GeometryKind, error) {
	for i, n := range geometryNames {
		if n == name {
			return GeometryKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown geometry kind %q", name)
}

// Shape is one placed object. Both material blocks always exist; Shading
// decides which one is read.
type Shape struct {
	Geometry  GeometryKind
	Shading   ShadingKind
	Transform core.Transform
	Phong     materials.Phong
	PBR       materials.PBR
	Texture   textures.TextureID
	Selected  bool
}

const lightScale = 0.02

// NewShape returns a shape with the editor's starting values.
func NewShape(shading ShadingKind, geometry GeometryKind) *Shape {
	s := &Shape{
		Geometry: geometry,
		Shading:  shading,
		Transform: core.Transform{
			Scale:    math.Splat(0.5),
			Rotation: math.Splat(30),
		},
		Phong: materials.DefaultPhong(),
		PBR:   materials.DefaultPBR(),
	}
	if shading == Light {
		s.Transform.Scale = math.Splat(lightScale)
		s.Phong = materials.LightPhong()
	}
	return s
}

// ModelMatrix is the shape's world transform for this frame. Light markers
// pulse with the audio amplitude; the stored transform is never changed.
func (s *Shape) ModelMatrix(amplitude int16) math.Mat4 {
	t := s.Transform
	if s.Shading == Light {
		t = t.Scaled(float32(amplitude) / 100000)
	}
	return t.Matrix()
}

// LightColor is the emitted color of a Light shape.
func (s *Shape) LightColor() math.Vec3 {
	return s.Phong.Ambient
}

// BoundingRadius is a conservative world-space radius for picking.
func (s *Shape) BoundingRadius() float32 {
	r := s.Transform.Scale.MaxComponent()
	switch s.Geometry {
	case Cube:
		return r * 0.8660254 // half-diagonal of the unit cube
	case Quad:
		return r * 0.7071068
	}
	return r * 0.5
}
