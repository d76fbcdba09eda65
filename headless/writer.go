package headless

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// FrameWriter stores rendered frames.
type FrameWriter interface {
	WriteFrame(index int, img image.Image) error
	Close() error
}

// NewFrameWriter returns a writer for format ("png" or "gif") rooted at out.
// PNG frames go to out/frame_0000.png...; a GIF goes to out itself when it
// ends in .gif, else to out/earthglow.gif.
func NewFrameWriter(format, out string, fps float64) (FrameWriter, error) {
	switch strings.ToLower(format) {
	case "png", "":
		if err := os.MkdirAll(out, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", out, err)
		}
		return &pngWriter{dir: out}, nil
	case "gif":
		path := out
		if !strings.EqualFold(filepath.Ext(out), ".gif") {
			if err := os.MkdirAll(out, 0o755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", out, err)
			}
			path = filepath.Join(out, "earthglow.gif")
		}
		delay := 100 / 30
		if fps > 0 {
			delay = max(int(100/fps+0.5), 1)
		}
		return &gifWriter{path: path, delay: delay}, nil
	default:
		return nil, fmt.Errorf("unsupported frame format %q", format)
	}
}

type pngWriter struct {
	dir string
}

// FramePath is the file name of PNG frame index.
func FramePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%04d.png", index))
}

func (w *pngWriter) WriteFrame(index int, img image.Image) error {
	f, err := os.Create(FramePath(w.dir, index))
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}

func (w *pngWriter) Close() error { return nil }

// gifWriter buffers paletted frames and encodes them on Close.
type gifWriter struct {
	path  string
	delay int // hundredths of a second
	anim  gif.GIF
}

func (w *gifWriter) WriteFrame(_ int, img image.Image) error {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	xdraw.FloydSteinberg.Draw(p, b, img, b.Min)
	w.anim.Image = append(w.anim.Image, p)
	w.anim.Delay = append(w.anim.Delay, w.delay)
	return nil
}

func (w *gifWriter) Close() error {
	if len(w.anim.Image) == 0 {
		return nil
	}
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &w.anim); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", w.path, err)
	}
	return f.Close()
}
