package render

import (
	"image"
	"math"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

// flareElement is one sprite of the lens flare. Distance 0 sits on the sun,
// 1 is mirrored through the frame centre. Size is a fraction of frame height.
type flareElement struct {
	slot     string
	size     float64
	distance float64
	tint     colors.Color4
}

var flareElements = []flareElement{
	{scene.TexFlare0, 0.7, 0, colors.FromHex(0xffffff)},
	{scene.TexFlare1, 0.06, 0.6, colors.FromHex(0xffffff)},
	{scene.TexFlare1, 0.07, 0.7, colors.FromHex(0xffffff)},
	{scene.TexFlare1, 0.12, 0.9, colors.FromHex(0xffffff)},
	{scene.TexFlare1, 0.07, 1.0, colors.FromHex(0xffffff)},
}

// SunVisible reports whether the sun marker position is on screen side of
// the camera and not hidden behind the globe. It returns the NDC position.
func SunVisible(sc *scene.Scene, cam *Camera) (vectors.Vec3, bool) {
	sun := sc.DebugSun.WorldPosition()
	if !cam.InFront(sun) {
		return vectors.Vec3{}, false
	}
	ndc := cam.Project(sun)
	if math.Abs(ndc.X) > 1 || math.Abs(ndc.Y) > 1 {
		return ndc, false
	}
	toSun := sun.Sub(cam.Position())
	dist := toSun.Norm()
	if t := intersectSphere(cam.Position(), toSun.Normalize(), sc.Earth.Geometry.BoundingRadius()); t > 0 && t < dist {
		return ndc, false
	}
	return ndc, true
}

func drawLensFlare(dst *image.NRGBA, sc *scene.Scene, cam *Camera) {
	ndc, ok := SunVisible(sc, cam)
	if !ok {
		return
	}
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	for _, el := range flareElements {
		slot := sc.Texture(el.slot)
		if !slot.Loaded() {
			continue
		}
		x := ndc.X * (1 - 2*el.distance)
		y := ndc.Y * (1 - 2*el.distance)
		cx := (x*0.5 + 0.5) * w
		cy := (-y*0.5 + 0.5) * h
		addSprite(dst, slot, cx, cy, el.size*h, el.tint)
	}
}

// addSprite adds a square texture centred on (cx, cy) to dst in linear light.
func addSprite(dst *image.NRGBA, slot *texture.Slot, cx, cy, size float64, tint colors.Color4) {
	half := size / 2
	r := image.Rect(int(cx-half), int(cy-half), int(math.Ceil(cx+half)), int(math.Ceil(cy+half))).Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		v := (float64(y) + 0.5 - (cy - half)) / size
		for x := r.Min.X; x < r.Max.X; x++ {
			u := (float64(x) + 0.5 - (cx - half)) / size
			if u < 0 || u >= 1 || v < 0 || v >= 1 {
				continue
			}
			s := slot.SampleUV(u, v).Mul(tint)
			if s.A == 0 {
				continue
			}
			base := colors.FromStandardColor(dst.NRGBAAt(x, y)).ToLinear()
			out := base.AddRGB(s.ScaleRGB(s.A)).ToSRGB().WithAlpha(base.A)
			dst.SetNRGBA(x, y, out.ToNRGBA())
		}
	}
}
