package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// creditsMargin is the distance of the label from the bottom-left corner,
// in logical pixels.
const creditsMargin = 10

// DrawCredits writes the credits label into the bottom-left corner of dst.
func (r *Renderer) DrawCredits(dst draw.Image) {
	if r.opts.Credits == "" {
		return
	}
	DrawLabel(dst, r.opts.Credits, r.pixelRatio)
}

// CreditsBounds returns the label rectangle in device pixels.
func CreditsBounds(dst image.Rectangle, text string, pixelRatio float64) image.Rectangle {
	face := basicfont.Face7x13
	margin := int(math.Round(creditsMargin * pixelRatio))
	width := font.MeasureString(face, text).Ceil()
	bottom := dst.Max.Y - margin
	return image.Rect(dst.Min.X+margin, bottom-face.Height, dst.Min.X+margin+width, bottom)
}

// DrawLabel draws white text anchored bottom-left with the credits margin.
func DrawLabel(dst draw.Image, text string, pixelRatio float64) {
	face := basicfont.Face7x13
	r := CreditsBounds(dst.Bounds(), text, pixelRatio)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(r.Min.X, r.Max.Y-face.Descent),
	}
	d.DrawString(text)
}
