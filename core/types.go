package core

import (
	"scene-editor/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// RGB drops alpha.
func (c Color) RGB() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Vertex is the interleaved layout every mesh uploads with.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// Transform places a shape. Rotation holds Euler angles in degrees.
type Transform struct {
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Scale:    math.Vec3One,
	}
}

func (t Transform) Matrix() math.Mat4 {
	return math.Mat4Model(t.Position, t.Rotation, t.Scale)
}

// Scaled returns a copy with every scale component grown by d.
func (t Transform) Scaled(d float32) Transform {
	t.Scale = t.Scale.Add(math.Splat(d))
	return t
}
