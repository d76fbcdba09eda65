package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/texture/tiff"
	"github.com/echoflaresat/earthglow/vectors"
	"go.uber.org/zap"
	xtiff "golang.org/x/image/tiff"

	_ "image/gif"  // register GIF format with image.Decode
	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
)

// ColorSpace tells the sampler how texel values are encoded.
type ColorSpace int

const (
	// Linear marks data textures (masks, bump and metalness maps).
	Linear ColorSpace = iota
	// SRGB marks color textures; samples are converted to linear light.
	SRGB
)

type Filter int

const (
	Nearest Filter = iota
	Bilinear
)

// MaxAnisotropy is the highest anisotropy the loader will assign.
const MaxAnisotropy = 8

// Texture is a decoded image sampled by UV coordinates in [0,1].
type Texture struct {
	Width      int
	Height     int
	ColorSpace ColorSpace
	Filter     Filter
	Anisotropy int
	img        image.Image
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	return &Texture{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Anisotropy: 1,
		img:        img,
	}
}

// Load decodes the texture at path. Uncompressed and tiled TIFFs are memory
// mapped; everything else goes through the registered image codecs.
func Load(path string, log *zap.Logger) (*Texture, error) {
	img, err := LoadImage(path, log)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}
	return FromImage(img), nil
}

// LoadImage returns the decoded image at path.
func LoadImage(path string, log *zap.Logger) (image.Image, error) {
	if log == nil {
		log = zap.NewNop()
	}

	img, err := tiff.LoadStripedTiff(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) {
		log.Debug("striped TIFF reader declined", zap.String("path", path), zap.Error(err))
	}

	img, err = tiff.LoadTiledTiff(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) {
		log.Debug("tiled TIFF reader declined", zap.String("path", path), zap.Error(err))
	}

	// fallback to image codecs
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err == nil {
		return decoded, nil
	}
	if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return nil, err
	}
	if decoded, terr := xtiff.Decode(f); terr == nil {
		return decoded, nil
	}
	return nil, err
}

// Image returns the underlying image.
func (t *Texture) Image() image.Image {
	return t.img
}

// Close releases a memory mapping held by the texture, if any.
func (t *Texture) Close() error {
	if c, ok := t.img.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SampleUV returns the texel at (u, v); u wraps around, v clamps.
// v = 0 is the top row of the image.
func (t *Texture) SampleUV(u, v float64) colors.Color4 {
	if t.Width == 0 || t.Height == 0 {
		return colors.Transparent()
	}

	u -= math.Floor(u)
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	var c colors.Color4
	if t.Filter == Bilinear || t.Anisotropy > 1 {
		x0, y0 := math.Floor(fx), math.Floor(fy)
		tx, ty := fx-x0, fy-y0
		ix, iy := int(x0), int(y0)
		top := t.texel(ix, iy).Mix(t.texel(ix+1, iy), tx)
		bottom := t.texel(ix, iy+1).Mix(t.texel(ix+1, iy+1), tx)
		c = top.Mix(bottom, ty)
	} else {
		c = t.texel(int(math.Round(fx)), int(math.Round(fy)))
	}

	if t.ColorSpace == SRGB {
		return c.ToLinear()
	}
	return c
}

// SampleSphere samples the texture at a point given in the sphere's local frame.
func (t *Texture) SampleSphere(local vectors.Vec3) colors.Color4 {
	return t.SampleUV(SphereUV(local))
}

// texel wraps x and clamps y.
func (t *Texture) texel(x, y int) colors.Color4 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}

	b := t.img.Bounds()
	x += b.Min.X
	y += b.Min.Y

	switch img := t.img.(type) {
	case *image.NRGBA:
		i := img.PixOffset(x, y)
		p := img.Pix[i : i+4 : i+4]
		return colors.From8BitRgb(p[0], p[1], p[2], p[3])
	case *image.RGBA:
		i := img.PixOffset(x, y)
		p := img.Pix[i : i+4 : i+4]
		if p[3] == 255 {
			return colors.From8BitRgb(p[0], p[1], p[2], 255)
		}
	case *image.Gray:
		v := img.Pix[img.PixOffset(x, y)]
		return colors.From8BitRgb(v, v, v, 255)
	}
	return fromColor(t.img.At(x, y))
}

func fromColor(c color.Color) colors.Color4 {
	if rgba, ok := c.(color.RGBA); ok && rgba.A == 255 {
		return colors.From8BitRgb(rgba.R, rgba.G, rgba.B, 255)
	}
	return colors.FromStandardColor(c)
}

// SphereUV maps a point in a Y-up sphere's local frame to texture
// coordinates: the seam is on -X, u grows toward +Z, v = 0 at the north pole.
func SphereUV(p vectors.Vec3) (u, v float64) {
	n := p.Normalize()
	// u is undefined on the axis; pin it to the seam.
	if n.X == 0 && n.Z == 0 {
		u = 0
	} else {
		u = math.Atan2(n.Z, -n.X) / (2 * math.Pi)
		if u < 0 {
			u += 1
		}
	}
	y := math.Max(-1, math.Min(1, n.Y))
	v = math.Acos(y) / math.Pi
	return u, v
}
