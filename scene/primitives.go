package scene

import (
	stdmath "math"

	"scene-editor/core"
	"scene-editor/math"
)

// CreateCube returns a cube of edge length size centred on the origin, with
// per-face normals and UVs.
func CreateCube(size float32) core.MeshData {
	s := size / 2
	faces := []struct {
		normal, u, v math.Vec3
	}{
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	var data core.MeshData
	for _, f := range faces {
		base := uint32(len(data.Vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(s)
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       math.Vec2{X: (c[0] + 1) / 2, Y: (c[1] + 1) / 2},
			})
		}
		data.Indices = append(data.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return data
}

// CreateSphere generates a UV sphere.
func CreateSphere(radius float32, segments, rings int) core.MeshData {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var data core.MeshData
	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		sinPhi, cosPhi := float32(stdmath.Sin(phi)), float32(stdmath.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2 * stdmath.Pi / float64(segments)
			sinTheta, cosTheta := float32(stdmath.Sin(theta)), float32(stdmath.Cos(theta))

			n := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: 1 - float32(ring)/float32(rings)},
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			cur := uint32(ring*(segments+1) + seg)
			next := cur + uint32(segments+1)
			data.Indices = append(data.Indices, cur, cur+1, next, cur+1, next+1, next)
		}
	}
	return data
}

// CreateQuad is a unit square in the XY plane facing +Z.
func CreateQuad() core.MeshData {
	n := math.Vec3{Z: 1}
	return core.MeshData{
		Vertices: []core.Vertex{
			{Position: math.Vec3{X: -0.5, Y: -0.5}, Normal: n, UV: math.Vec2{X: 0, Y: 0}},
			{Position: math.Vec3{X: 0.5, Y: -0.5}, Normal: n, UV: math.Vec2{X: 1, Y: 0}},
			{Position: math.Vec3{X: 0.5, Y: 0.5}, Normal: n, UV: math.Vec2{X: 1, Y: 1}},
			{Position: math.Vec3{X: -0.5, Y: 0.5}, Normal: n, UV: math.Vec2{X: 0, Y: 1}},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

// CreateScreenQuad covers clip space; UVs run 0..1 across the screen.
func CreateScreenQuad() core.MeshData {
	return core.MeshData{
		Vertices: []core.Vertex{
			{Position: math.Vec3{X: -1, Y: -1}, UV: math.Vec2{X: 0, Y: 0}},
			{Position: math.Vec3{X: 1, Y: -1}, UV: math.Vec2{X: 1, Y: 0}},
			{Position: math.Vec3{X: 1, Y: 1}, UV: math.Vec2{X: 1, Y: 1}},
			{Position: math.Vec3{X: -1, Y: 1}, UV: math.Vec2{X: 0, Y: 1}},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

// skyboxVerts is a 2x2x2 cube wound to be seen from inside.
var skyboxVerts = [...]float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
	-1, -1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1,
	1, -1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1,
	-1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1, 1,
	-1, 1, -1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, 1, 1, -1, 1, -1,
	-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1, 1, 1, -1, 1,
}

// CreateSkyboxCube returns the 36 unindexed positions of the background
// cube.
func CreateSkyboxCube() core.MeshData {
	var data core.MeshData
	for i := 0; i < len(skyboxVerts); i += 3 {
		data.Vertices = append(data.Vertices, core.Vertex{
			Position: math.Vec3{X: skyboxVerts[i], Y: skyboxVerts[i+1], Z: skyboxVerts[i+2]},
		})
	}
	return data
}

// CreateGeometry builds the mesh for a shape geometry kind. Every kind fits
// a unit box centred on the origin.
func CreateGeometry(kind GeometryKind) core.MeshData {
	switch kind {
	case Sphere:
		return CreateSphere(0.5, 48, 24)
	case Quad:
		return CreateQuad()
	}
	return CreateCube(1)
}
