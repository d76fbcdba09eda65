// Package scene holds the object graph that the renderer draws: a tree of
// positioned, oriented nodes carrying geometry, materials, lights or a camera.
package scene

import (
	"github.com/echoflaresat/earthglow/vectors"
	"github.com/go-gl/mathgl/mgl64"
)

// Euler is a rotation in radians applied in X, Y, Z order: the local
// matrix is Rx·Ry·Rz, so Z acts on a point first.
type Euler struct {
	X, Y, Z float64
}

// Node is one object in the scene graph.
type Node struct {
	Name     string
	Position vectors.Vec3
	Rotation Euler
	Scale    vectors.Vec3
	Visible  bool

	Geometry Geometry
	Material *Material
	Light    *Light

	Children []*Node
	parent   *Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Scale:   vectors.New(1, 1, 1),
		Visible: true,
	}
}

// NewMesh returns a node drawing geometry with material.
func NewMesh(name string, g Geometry, m *Material) *Node {
	n := NewNode(name)
	n.Geometry = g
	n.Material = m
	return n
}

// Add attaches children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
}

func (n *Node) Remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// LocalMatrix returns T·Rx·Ry·Rz·S.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(n.Position.X, n.Position.Y, n.Position.Z).
		Mul4(mgl64.HomogRotate3DX(n.Rotation.X)).
		Mul4(mgl64.HomogRotate3DY(n.Rotation.Y)).
		Mul4(mgl64.HomogRotate3DZ(n.Rotation.Z)).
		Mul4(mgl64.Scale3D(n.Scale.X, n.Scale.Y, n.Scale.Z))
}

// WorldMatrix composes the local matrices from the root down.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() vectors.Vec3 {
	return n.ToWorld(vectors.Zero())
}

// ToWorld maps a point from the node's frame to world space.
func (n *Node) ToWorld(local vectors.Vec3) vectors.Vec3 {
	return vectors.FromMGL(mgl64.TransformCoordinate(local.MGL(), n.WorldMatrix()))
}

// ToLocal maps a world-space point into the node's frame.
func (n *Node) ToLocal(world vectors.Vec3) vectors.Vec3 {
	return vectors.FromMGL(mgl64.TransformCoordinate(world.MGL(), n.WorldMatrix().Inv()))
}
