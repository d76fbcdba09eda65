package overlay

import (
	"image/draw"
	"math"

	"github.com/echoflaresat/earthglow/texture"
)

// spinMargin is the distance from the top-right corner, logical pixels.
const spinMargin = 20

type SpinningOptions struct {
	Size         float64
	CompactSize  float64
	CompactWidth float64
	Period       float64 // seconds per turn
	Title        string
	Logo         *texture.Slot
}

// Spinning is a corner logo turning on its own animation clock. Pausing
// freezes that clock; the scene keeps running.
type Spinning struct {
	opts      SpinningOptions
	running   bool
	animTime  float64
	placement Placement
	badge     *logoImage
}

func NewSpinning(opts SpinningOptions) *Spinning {
	if opts.Period <= 0 {
		opts.Period = 8
	}
	s := &Spinning{opts: opts, running: true, badge: newLogoImage(opts.Logo)}
	s.placement = Placement{Opacity: opacityFront, Scale: 1, Title: s.title()}
	return s
}

func (s *Spinning) Update(f Frame) {
	if s.running {
		s.animTime += f.Delta
	}
	size := ElementSize(f.Width, s.opts.Size, s.opts.CompactSize, s.opts.CompactWidth)
	s.placement = Placement{
		X:        f.Width - spinMargin - size,
		Y:        spinMargin,
		Size:     size,
		Visible:  true,
		Opacity:  opacityFront,
		Scale:    1,
		Rotation: s.Rotation(),
		Title:    s.title(),
	}
}

// Rotation is the current angle, one full turn per period.
func (s *Spinning) Rotation() float64 {
	return 2 * math.Pi * math.Mod(s.animTime, s.opts.Period) / s.opts.Period
}

func (s *Spinning) Toggle() {
	s.running = !s.running
	s.placement.Title = s.title()
}

func (s *Spinning) Active() bool {
	return s.running
}

func (s *Spinning) Contains(x, y float64) bool {
	return s.placement.Contains(x, y)
}

func (s *Spinning) Placement() Placement {
	return s.placement
}

func (s *Spinning) Draw(dst draw.Image, pixelRatio float64) {
	drawPlacement(dst, s.badge.image(), s.placement, pixelRatio)
}

func (s *Spinning) title() string {
	if s.running {
		return s.opts.Title + " - click to pause"
	}
	return s.opts.Title + " - click to resume"
}
