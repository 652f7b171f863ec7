package renderer

import (
	"fmt"

	"scene-editor/core"
	"scene-editor/internal/gpu"
	"scene-editor/scene"
)

// Geometry keeps the primitive meshes resident on the GPU. They are
// uploaded once and shared by every shape.
type Geometry struct {
	dev    gpu.Device
	shapes [3]gpu.Mesh // indexed by scene.GeometryKind
	Screen gpu.Mesh
	Skybox gpu.Mesh
}

func NewGeometry(dev gpu.Device) (*Geometry, error) {
	g := &Geometry{dev: dev}
	upload := func(name string, data core.MeshData) (gpu.Mesh, error) {
		m, err := dev.UploadMesh(data)
		if err != nil {
			g.Close()
			return 0, fmt.Errorf("%s mesh: %w", name, err)
		}
		return m, nil
	}

	var err error
	for _, kind := range []scene.GeometryKind{scene.Cube, scene.Sphere, scene.Quad} {
		if g.shapes[kind], err = upload(kind.String(), scene.CreateGeometry(kind)); err != nil {
			return nil, err
		}
	}
	if g.Screen, err = upload("screen", scene.CreateScreenQuad()); err != nil {
		return nil, err
	}
	if g.Skybox, err = upload("skybox", scene.CreateSkyboxCube()); err != nil {
		return nil, err
	}
	return g, nil
}

// Mesh returns the mesh for kind, falling back to the cube.
func (g *Geometry) Mesh(kind scene.GeometryKind) gpu.Mesh {
	if !kind.Valid() {
		return g.shapes[scene.Cube]
	}
	return g.shapes[kind]
}

func (g *Geometry) Close() {
	for i, m := range g.shapes {
		if m != 0 {
			g.dev.DeleteMesh(m)
			g.shapes[i] = 0
		}
	}
	for _, m := range []*gpu.Mesh{&g.Screen, &g.Skybox} {
		if *m != 0 {
			g.dev.DeleteMesh(*m)
			*m = 0
		}
	}
}
