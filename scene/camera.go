package scene

import (
	reMath "scene-editor/math"
)

type CameraMovement int

const (
	Forward CameraMovement = iota
	Backward
	Left
	Right
)

const (
	defaultYaw         = -90
	defaultPitch       = 0
	defaultSpeed       = 2.5
	defaultSensitivity = 0.1
	defaultZoom        = 45

	NearPlane = 0.1
	FarPlane  = 100
)

// Camera is a yaw/pitch fly camera. Angles are in degrees; Zoom is the
// vertical field of view.
type Camera struct {
	Position reMath.Vec3
	WorldUp  reMath.Vec3
	Yaw      float32
	Pitch    float32

	Speed       float32
	Sensitivity float32
	Zoom        float32

	front reMath.Vec3
	right reMath.Vec3
	up    reMath.Vec3
}

func NewCamera(position reMath.Vec3) *Camera {
	c := &Camera{
		Position:    position,
		WorldUp:     reMath.Vec3Up,
		Yaw:         defaultYaw,
		Pitch:       defaultPitch,
		Speed:       defaultSpeed,
		Sensitivity: defaultSensitivity,
		Zoom:        defaultZoom,
	}
	c.Update()
	return c
}

// Update recomputes the basis vectors from Yaw and Pitch. Call it after
// changing either field directly.
func (c *Camera) Update() {
	yaw, pitch := reMath.Radians(c.Yaw), reMath.Radians(c.Pitch)
	c.front = reMath.Vec3{
		X: reMath.Cos(yaw) * reMath.Cos(pitch),
		Y: reMath.Sin(pitch),
		Z: reMath.Sin(yaw) * reMath.Cos(pitch),
	}.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

func (c *Camera) Front() reMath.Vec3 { return c.front }
func (c *Camera) Right() reMath.Vec3 { return c.right }
func (c *Camera) Up() reMath.Vec3    { return c.up }

func (c *Camera) ViewMatrix() reMath.Mat4 {
	return reMath.Mat4LookAt(c.Position, c.Position.Add(c.front), c.up)
}

func (c *Camera) ProjectionMatrix(aspect float32) reMath.Mat4 {
	return reMath.Mat4Perspective(reMath.Radians(c.Zoom), aspect, NearPlane, FarPlane)
}

func (c *Camera) ProcessKeyboard(dir CameraMovement, dt float32) {
	v := c.Speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.front.Mul(v))
	case Backward:
		c.Position = c.Position.Sub(c.front.Mul(v))
	case Left:
		c.Position = c.Position.Sub(c.right.Mul(v))
	case Right:
		c.Position = c.Position.Add(c.right.Mul(v))
	}
}

// ProcessMouse turns the camera by a cursor offset. Pitch is held within
// 89 degrees so the view never flips.
func (c *Camera) ProcessMouse(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch = reMath.Clamp(c.Pitch+dy*c.Sensitivity, -89, 89)
	c.Update()
}

func (c *Camera) ProcessScroll(dy float32) {
	c.Zoom = reMath.Clamp(c.Zoom-dy, 1, 120)
}
