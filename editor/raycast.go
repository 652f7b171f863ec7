package editor

import (
	stdmath "math"

	"scene-editor/math"
	"scene-editor/scene"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// Hit is the closest shape a ray met.
type Hit struct {
	Name     string
	Distance float32
}

// ScreenToRay converts a cursor position in window pixels to a world-space
// ray through the near and far planes.
func ScreenToRay(mouseX, mouseY float32, width, height int, view, proj math.Mat4) Ray {
	ndcX := 2*mouseX/float32(width) - 1
	ndcY := 1 - 2*mouseY/float32(height) // flip Y

	inv := view.Mul(proj).Inverse()
	near := inv.MulPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := inv.MulPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// IntersectSphere returns the distance along r to the first hit with the
// sphere, if any. A ray starting inside reports the exit point.
func (r Ray) IntersectSphere(center math.Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(stdmath.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Pick returns the closest shape whose bounding sphere r hits.
func Pick(r Ray, store *scene.Store) (Hit, bool) {
	best := Hit{Distance: float32(stdmath.MaxFloat32)}
	found := false
	for _, name := range store.Names() {
		sh, _ := store.Shape(name)
		t, ok := r.IntersectSphere(sh.Transform.Position, sh.BoundingRadius())
		if ok && t < best.Distance {
			best = Hit{Name: name, Distance: t}
			found = true
		}
	}
	return best, found
}
