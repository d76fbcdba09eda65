package scene

import (
	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

// Side selects which faces of a geometry are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Geometry is the shape of a mesh.
type Geometry interface {
	// BoundingRadius is the radius of a sphere around the local origin
	// containing the shape.
	BoundingRadius() float64
}

// SphereGeometry is a sphere centred on the local origin.
type SphereGeometry struct {
	Radius float64
}

func (g SphereGeometry) BoundingRadius() float64 { return g.Radius }

// RingGeometry is a flat annulus in the local XY plane.
type RingGeometry struct {
	Inner, Outer float64
}

func (g RingGeometry) BoundingRadius() float64 { return g.Outer }

// LightKind distinguishes light sources.
type LightKind int

const (
	AmbientLight LightKind = iota
	DirectionalLight
)

type Light struct {
	Kind      LightKind
	Color     colors.Color4
	Intensity float64
}

// Uniform is a named value handed to a shading function.
type Uniform struct {
	Value any
}

// Uniforms is the parameter block of a material.
type Uniforms map[string]*Uniform

func (u Uniforms) Set(name string, v any) {
	if cur, ok := u[name]; ok {
		cur.Value = v
		return
	}
	u[name] = &Uniform{Value: v}
}

func (u Uniforms) Vec3(name string) vectors.Vec3 {
	if cur, ok := u[name]; ok {
		if v, ok := cur.Value.(vectors.Vec3); ok {
			return v
		}
	}
	return vectors.Vec3{}
}

func (u Uniforms) Color(name string) colors.Color4 {
	if cur, ok := u[name]; ok {
		if v, ok := cur.Value.(colors.Color4); ok {
			return v
		}
	}
	return colors.Black()
}

func (u Uniforms) Float(name string) float64 {
	if cur, ok := u[name]; ok {
		if v, ok := cur.Value.(float64); ok {
			return v
		}
	}
	return 0
}

// Texture returns the slot bound to name, or nil.
func (u Uniforms) Texture(name string) *texture.Slot {
	if cur, ok := u[name]; ok {
		if v, ok := cur.Value.(*texture.Slot); ok {
			return v
		}
	}
	return nil
}

// Material describes how a mesh is shaded.
type Material struct {
	Name        string
	Side        Side
	Transparent bool
	Opacity     float64
	Color       colors.Color4
	Uniforms    Uniforms
}

func NewMaterial(name string) *Material {
	return &Material{
		Name:     name,
		Opacity:  1,
		Color:    colors.White(),
		Uniforms: Uniforms{},
	}
}
