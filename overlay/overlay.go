// Package overlay implements the decorative logo drawn over the globe.
//
// Two variants exist: Orbiting follows a tilted orbit around the Earth,
// projected through the camera every frame; Spinning sits in the top-right
// corner and rotates on its own clock. Both pause on click.
package overlay

import (
	"fmt"
	"image/draw"
	"math"

	"github.com/echoflaresat/earthglow/config"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

// Variant names accepted by New.
const (
	VariantOrbiting = "orbiting"
	VariantSpinning = "spinning"
	VariantNone     = "none"
)

// Projector maps world points to normalized device coordinates.
type Projector interface {
	Project(world vectors.Vec3) vectors.Vec3
}

// Frame is the per-tick input of an overlay.
type Frame struct {
	Elapsed float64 // seconds since the loop started
	Delta   float64 // seconds since the previous tick
	Width   float64 // viewport, logical pixels
	Height  float64
	Camera  Projector
}

// Placement is where and how the element is drawn, in logical pixels.
type Placement struct {
	X, Y     float64 // top-left before scaling
	Size     float64
	Visible  bool
	Behind   bool
	Opacity  float64
	Scale    float64
	Rotation float64 // radians, clockwise on screen
	Title    string
}

// Center returns the middle of the element.
func (p Placement) Center() (float64, float64) {
	return p.X + p.Size/2, p.Y + p.Size/2
}

// Contains reports whether (x, y) hits the drawn element.
func (p Placement) Contains(x, y float64) bool {
	if !p.Visible {
		return false
	}
	cx, cy := p.Center()
	half := p.Size * p.Scale / 2
	return math.Abs(x-cx) <= half && math.Abs(y-cy) <= half
}

// Overlay is a decorative element layered over the rendered frame.
type Overlay interface {
	Update(f Frame)
	Toggle()
	Active() bool
	Contains(x, y float64) bool
	Placement() Placement
	Draw(dst draw.Image, pixelRatio float64)
}

// New builds the overlay selected by cfg.Variant. It returns nil for "none".
func New(cfg config.OverlayConfig, sc *scene.Scene) (Overlay, error) {
	var logo *texture.Slot
	var helper *scene.Node
	if sc != nil {
		logo = sc.Texture(scene.TexLogo)
		helper = sc.LogoHelper
	}
	switch cfg.Variant {
	case VariantOrbiting:
		return NewOrbiting(OrbitingOptions{
			Radius:       cfg.Radius,
			Speed:        cfg.Speed,
			Tilt:         cfg.TiltDeg * math.Pi / 180,
			Margin:       cfg.Margin,
			BehindDepth:  cfg.BehindDepth,
			Size:         cfg.Size,
			CompactSize:  cfg.CompactSize,
			CompactWidth: cfg.CompactWidth,
			Title:        cfg.Title,
			Logo:         logo,
			Helper:       helper,
		}), nil
	case VariantSpinning:
		return NewSpinning(SpinningOptions{
			Size:         cfg.Size,
			CompactSize:  cfg.CompactSize,
			CompactWidth: cfg.CompactWidth,
			Period:       cfg.SpinPeriod.Seconds(),
			Title:        cfg.Title,
			Logo:         logo,
		}), nil
	case VariantNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown overlay variant %q", cfg.Variant)
	}
}

// ElementSize is the element width for a viewport width: compact on narrow
// viewports.
func ElementSize(viewportWidth, size, compactSize, compactWidth float64) float64 {
	if viewportWidth <= compactWidth {
		return compactSize
	}
	return size
}
