package background

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	cameraNear = 0.1
	cameraFar  = 1000
)

var up = mgl32.Vec3{0, 1, 0}

// Camera is a perspective camera. FOV is vertical, in degrees.
type Camera struct {
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3

	projection mgl32.Mat4
}

func NewCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.UpdateProjection()
	return c
}

// SetAspect changes the aspect ratio and recomputes the projection.
func (c *Camera) SetAspect(aspect float32) {
	if aspect == c.Aspect {
		return
	}
	c.Aspect = aspect
	c.UpdateProjection()
}

func (c *Camera) UpdateProjection() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *Camera) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, up)
}

// LookAt aims the camera at p.
func (c *Camera) LookAt(p mgl32.Vec3) {
	c.Target = p
}

// EaseToward moves the camera's x and y a fraction k of the way to target.
func (c *Camera) EaseToward(target mgl32.Vec2, k float32) {
	c.Position[0] += (target.X() - c.Position.X()) * k
	c.Position[1] += (target.Y() - c.Position.Y()) * k
}
