package render

import (
	"math"

	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/vectors"
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective pinhole camera attached to a scene node.
type Camera struct {
	Node   *scene.Node
	FOV    float64 // vertical, degrees
	Aspect float64
	Near   float64
	Far    float64
	// Up is the world up hint used by LookAt.
	Up vectors.Vec3

	target     vectors.Vec3
	forward    vectors.Vec3
	right      vectors.Vec3
	up         vectors.Vec3
	tanHalfFOV float64
	view       mgl64.Mat4
	projection mgl64.Mat4
}

// NewCamera creates a camera on node (a fresh node when nil) looking down -Z.
func NewCamera(node *scene.Node, fovDeg, aspect, near, far float64) *Camera {
	if node == nil {
		node = scene.NewNode(scene.NameCamera)
	}
	c := &Camera{
		Node:   node,
		FOV:    fovDeg,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     vectors.New(0, 1, 0),
	}
	c.UpdateProjectionMatrix()
	c.LookAt(node.Position.Add(vectors.New(0, 0, -1)))
	return c
}

func (c *Camera) Position() vectors.Vec3 {
	return c.Node.Position
}

// SetPosition moves the camera without changing its orientation matrices;
// call LookAt afterwards.
func (c *Camera) SetPosition(p vectors.Vec3) {
	c.Node.Position = p
}

func (c *Camera) Target() vectors.Vec3 {
	return c.target
}

func (c *Camera) Forward() vectors.Vec3 {
	return c.forward
}

// LookAt orients the camera toward target and rebuilds the view matrix.
func (c *Camera) LookAt(target vectors.Vec3) {
	c.target = target
	pos := c.Node.Position

	fwd := target.Sub(pos).Normalize()
	if fwd.Norm() == 0 {
		fwd = vectors.New(0, 0, -1)
	}
	right := fwd.Cross(c.Up)
	if right.Norm() < 1e-9 {
		right = vectors.New(1, 0, 0) // looking straight along Up
	}
	right = right.Normalize()
	up := right.Cross(fwd).Normalize()

	c.forward, c.right, c.up = fwd, right, up
	c.view = mgl64.LookAtV(pos.MGL(), pos.Add(fwd).MGL(), up.MGL())
}

// UpdateProjectionMatrix must be called after changing FOV, Aspect, Near
// or Far.
func (c *Camera) UpdateProjectionMatrix() {
	fov := mgl64.DegToRad(c.FOV)
	c.tanHalfFOV = math.Tan(fov / 2)
	c.projection = mgl64.Perspective(fov, c.Aspect, c.Near, c.Far)
}

// Project maps a world point to normalized device coordinates. Points
// behind the camera come out mirrored, as with any perspective divide.
func (c *Camera) Project(world vectors.Vec3) vectors.Vec3 {
	clip := c.projection.Mul4(c.view).Mul4x1(world.MGL().Vec4(1))
	w := clip.W()
	if w == 0 {
		return vectors.New(0, 0, math.Inf(1))
	}
	return vectors.New(clip.X()/w, clip.Y()/w, clip.Z()/w)
}

// InFront reports whether world lies on the viewing side of the camera.
func (c *Camera) InFront(world vectors.Vec3) bool {
	return world.Sub(c.Node.Position).Dot(c.forward) > 0
}

// ComputeRay returns the normalized viewing direction through the image
// point (x, y) of a width×height frame. x and y are continuous pixel
// coordinates, so pixel centres sit at +0.5.
func (c *Camera) ComputeRay(x, y float64, width, height int) vectors.Vec3 {
	xNDC := 2*x/float64(width) - 1
	yNDC := 1 - 2*y/float64(height)

	xPlane := xNDC * c.tanHalfFOV * c.Aspect
	yPlane := yNDC * c.tanHalfFOV

	dir := c.right.Scale(xPlane).
		Add(c.up.Scale(yPlane)).
		Add(c.forward)

	return dir.Normalize()
}
