package colors

import (
	"image/color"
	"math"
)

// Color4 is a linear RGBA color with float64 components in [0,1].
type Color4 struct {
	R, G, B, A float64
}

func New(r, g, b, a float64) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

// FromHex converts a 0xRRGGBB sRGB literal into an opaque linear color.
func FromHex(hex uint32) Color4 {
	return From8BitRgb(byte(hex>>16), byte(hex>>8), byte(hex), 255).ToLinear()
}

// RGBA implements color.Color with pre-multiplied 16-bit channels.
func (c Color4) RGBA() (r, g, b, a uint32) {
	rf := clamp01(c.R)
	gf := clamp01(c.G)
	bf := clamp01(c.B)
	af := clamp01(c.A)

	return uint32(rf * af * 65535),
		uint32(gf * af * 65535),
		uint32(bf * af * 65535),
		uint32(af * 65535)
}

func FromStandardColor(c color.Color) Color4 {
	// Fast path: already a Color4
	if c4, ok := c.(Color4); ok {
		return c4
	}

	r16, g16, b16, a16 := c.RGBA()
	if a16 == 0 {
		return Color4{}
	}

	// De-premultiply and normalize to [0,1]
	invA := float64(0xFFFF) / float64(a16)
	return Color4{
		R: float64(r16) * invA / 65535.0,
		G: float64(g16) * invA / 65535.0,
		B: float64(b16) * invA / 65535.0,
		A: float64(a16) / 65535.0,
	}
}

func From8BitRgb(r, g, b, a byte) Color4 {
	return Color4{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
		A: float64(a) / 255.0,
	}
}

func White() Color4 {
	return Color4{R: 1, G: 1, B: 1, A: 1}
}

func Black() Color4 {
	return Color4{R: 0, G: 0, B: 0, A: 1}
}

// Transparent is the color of an unloaded texture.
func Transparent() Color4 {
	return Color4{}
}

// Add returns c + o (component-wise).
func (c Color4) Add(o Color4) Color4 {
	return Color4{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// AddRGB adds the color channels of o, leaving alpha untouched.
func (c Color4) AddRGB(o Color4) Color4 {
	return Color4{c.R + o.R, c.G + o.G, c.B + o.B, c.A}
}

// Mul returns c * o (component-wise).
func (c Color4) Mul(o Color4) Color4 {
	return Color4{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale returns c * s (scalar).
func (c Color4) Scale(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A * s}
}

// ScaleRGB scales the color channels only.
func (c Color4) ScaleRGB(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A}
}

// Mix returns lerp(c, o, t) = c*(1-t) + o*t.
func (c Color4) Mix(o Color4, t float64) Color4 {
	return Color4{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
		A: c.A*(1-t) + o.A*t,
	}
}

// Over composites c (straight alpha) over an opaque base.
func (c Color4) Over(base Color4) Color4 {
	a := clamp01(c.A)
	return Color4{
		R: c.R*a + base.R*(1-a),
		G: c.G*a + base.G*(1-a),
		B: c.B*a + base.B*(1-a),
		A: base.A,
	}
}

func (c Color4) WithAlpha(a float64) Color4 {
	return Color4{R: c.R, G: c.G, B: c.B, A: a}
}

// ToLinear converts sRGB-encoded channels to linear light.
func (c Color4) ToLinear() Color4 {
	return Color4{R: srgbToLinear(c.R), G: srgbToLinear(c.G), B: srgbToLinear(c.B), A: c.A}
}

// ToSRGB converts linear channels to sRGB encoding.
func (c Color4) ToSRGB() Color4 {
	return Color4{R: linearToSrgb(clamp01(c.R)), G: linearToSrgb(clamp01(c.G)), B: linearToSrgb(clamp01(c.B)), A: c.A}
}

// ToNRGBA truncates each clamped channel to 8 bits.
func (c Color4) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8bit(c.R),
		G: to8bit(c.G),
		B: to8bit(c.B),
		A: to8bit(c.A),
	}
}

// --- helpers ---

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8bit(x float64) uint8 {
	return uint8(255.0 * clamp01(x))
}

// IEC 61966-2-1 sRGB <-> linear
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSrgb(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}
