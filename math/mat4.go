package math

import "math"

// Mat4 is a row-vector matrix: points transform as v*M and translation lives
// in the last row. Uploaded to GL untransposed it reads as the usual
// column-major matrix.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m followed by other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return v.MulMat(m)
}

// MulPoint transforms a position (w=1) and applies the perspective divide.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.MulVec(v.ToVec4(1)).ToVec3DivW()
}

// MulDir transforms a direction (w=0).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return m.MulVec(v.ToVec4(0)).ToVec3()
}

func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// WithoutTranslation keeps the upper 3x3 block. Used for the skybox view so
// the background stays centred on the camera.
func (m Mat4) WithoutTranslation() Mat4 {
	out := m
	out[3][0], out[3][1], out[3][2] = 0, 0, 0
	out[0][3], out[1][3], out[2][3] = 0, 0, 0
	out[3][3] = 1
	return out
}

func Mat4Translation(t Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = t.X
	m[3][1] = t.Y
	m[3][2] = t.Z
	return m
}

func Mat4Scale(s Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = s.X
	m[1][1] = s.Y
	m[2][2] = s.Z
	return m
}

func Mat4RotationX(angle float32) Mat4 {
	c, s := sincos(angle)
	return Mat4{
		{1, 0, 0, 0},
		{0, c, s, 0},
		{0, -s, c, 0},
		{0, 0, 0, 1},
	}
}

func Mat4RotationY(angle float32) Mat4 {
	c, s := sincos(angle)
	return Mat4{
		{c, 0, -s, 0},
		{0, 1, 0, 0},
		{s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

func Mat4RotationZ(angle float32) Mat4 {
	c, s := sincos(angle)
	return Mat4{
		{c, s, 0, 0},
		{-s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mat4Perspective builds a right-handed projection with clip z in [-1, 1].
// fovY is in radians.
func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / float32(math.Tan(float64(fovY)/2))
	var m Mat4
	m[0][0] = f / aspect
	m[1][1] = f
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

func Mat4LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return Mat4{
		{x.X, y.X, z.X, 0},
		{x.Y, y.Y, z.Y, 0},
		{x.Z, y.Z, z.Z, 0},
		{-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1},
	}
}

// Mat4Model composes a shape transform: rotate about Z, then Y, then X
// (degrees), scale, and finally translate.
func Mat4Model(position, rotationDeg, scale Vec3) Mat4 {
	return Mat4RotationZ(Radians(rotationDeg.Z)).
		Mul(Mat4RotationY(Radians(rotationDeg.Y))).
		Mul(Mat4RotationX(Radians(rotationDeg.X))).
		Mul(Mat4Scale(scale)).
		Mul(Mat4Translation(position))
}

// CubeFaceViews returns the six view matrices for rendering into a cubemap
// centred at eye, in +X, -X, +Y, -Y, +Z, -Z order.
func CubeFaceViews(eye Vec3) [6]Mat4 {
	dirs := [6]struct{ fwd, up Vec3 }{
		{Vec3{1, 0, 0}, Vec3{0, -1, 0}},
		{Vec3{-1, 0, 0}, Vec3{0, -1, 0}},
		{Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{Vec3{0, -1, 0}, Vec3{0, 0, -1}},
		{Vec3{0, 0, 1}, Vec3{0, -1, 0}},
		{Vec3{0, 0, -1}, Vec3{0, -1, 0}},
	}
	var views [6]Mat4
	for i, d := range dirs {
		views[i] = Mat4LookAt(eye, eye.Add(d.fwd), d.up)
	}
	return views
}

// Inverse returns the inverse of m, or identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	// Gauss-Jordan on an augmented copy.
	a := m
	inv := Mat4Identity()
	for col := 0; col < 4; col++ {
		pivot := col
		best := abs32(a[col][col])
		for r := col + 1; r < 4; r++ {
			if v := abs32(a[r][col]); v > best {
				pivot, best = r, v
			}
		}
		if best < 1e-12 {
			return Mat4Identity()
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		p := 1 / a[col][col]
		for j := 0; j < 4; j++ {
			a[col][j] *= p
			inv[col][j] *= p
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			for j := 0; j < 4; j++ {
				a[r][j] -= f * a[col][j]
				inv[r][j] -= f * inv[col][j]
			}
		}
	}
	return inv
}

func sincos(angle float32) (float32, float32) {
	s, c := math.Sincos(float64(angle))
	return float32(c), float32(s)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
