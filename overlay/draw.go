package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/echoflaresat/earthglow/texture"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const badgeSize = 64

// logoImage resolves the logo texture, falling back to a generated badge
// until the texture has loaded.
type logoImage struct {
	slot      *texture.Slot
	badgeOnce sync.Once
	badge     image.Image
}

func newLogoImage(slot *texture.Slot) *logoImage {
	return &logoImage{slot: slot}
}

func (l *logoImage) image() image.Image {
	if t := l.slot.Get(); t != nil {
		return t.Image()
	}
	l.badgeOnce.Do(func() { l.badge = Badge(badgeSize) })
	return l.badge
}

// Badge draws a placeholder logo: a light rounded card with a blue ring.
func Badge(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	corner := s * 0.1
	card := color.NRGBA{R: 255, G: 255, B: 255, A: 242}
	ring := color.NRGBA{R: 47, G: 111, B: 214, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if !insideRounded(fx, fy, s, corner) {
				continue
			}
			img.SetNRGBA(x, y, card)
			d := math.Hypot(fx-s/2, fy-s/2)
			if d > s*0.22 && d < s*0.36 {
				img.SetNRGBA(x, y, ring)
			}
		}
	}
	return img
}

func insideRounded(x, y, size, r float64) bool {
	cx := math.Max(r, math.Min(size-r, x))
	cy := math.Max(r, math.Min(size-r, y))
	return math.Hypot(x-cx, y-cy) <= r
}

// Transform returns the source-to-destination matrix that scales src to
// size device pixels, rotates it by angle and centres it on (cx, cy).
func Transform(src image.Rectangle, size, angle, cx, cy float64) f64.Aff3 {
	k := size / float64(max(src.Dx(), src.Dy()))
	c, s := math.Cos(angle), math.Sin(angle)
	scx := float64(src.Min.X) + float64(src.Dx())/2
	scy := float64(src.Min.Y) + float64(src.Dy())/2
	a, b := k*c, -k*s
	d, e := k*s, k*c
	return f64.Aff3{
		a, b, cx - (a*scx + b*scy),
		d, e, cy - (d*scx + e*scy),
	}
}

func drawPlacement(dst draw.Image, src image.Image, p Placement, pixelRatio float64) {
	if !p.Visible || src == nil || p.Size <= 0 {
		return
	}
	cx, cy := p.Center()
	m := Transform(src.Bounds(), p.Size*p.Scale*pixelRatio, p.Rotation, cx*pixelRatio, cy*pixelRatio)
	alpha := uint8(math.Round(255 * math.Max(0, math.Min(1, p.Opacity))))
	xdraw.BiLinear.Transform(dst, m, src, src.Bounds(), xdraw.Over, &xdraw.Options{
		SrcMask: image.NewUniform(color.Alpha{A: alpha}),
	})
}
