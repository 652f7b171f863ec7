package scene

import (
	"scene-editor/core"
	"scene-editor/math"
)

// Mesh is CPU-side geometry of a loaded model, optionally with a diffuse
// image. GPU upload is done by the renderer.
type Mesh struct {
	Name    string
	Data    core.MeshData
	Diffuse *Image
}

// Model is a named set of meshes loaded from one file. It is drawn with a
// single transform.
type Model struct {
	Name      string
	Meshes    []*Mesh
	Transform core.Transform
}

// Bounds returns the model-space bounding box of every mesh.
func (m *Model) Bounds() (min, max math.Vec3) {
	first := true
	for _, mesh := range m.Meshes {
		for _, v := range mesh.Data.Vertices {
			p := v.Position
			if first {
				min, max, first = p, p, false
				continue
			}
			min = math.Vec3{X: min32(min.X, p.X), Y: min32(min.Y, p.Y), Z: min32(min.Z, p.Z)}
			max = math.Vec3{X: max32(max.X, p.X), Y: max32(max.Y, p.Y), Z: max32(max.Z, p.Z)}
		}
	}
	return min, max
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
