// Package render ray traces the Earth scene into RGBA frames.
package render

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"
	"sort"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/vectors"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// MaxPixelRatio caps the device pixel ratio used for the output buffer.
const MaxPixelRatio = 2.0

// Options configures a Renderer.
type Options struct {
	MaxPixelRatio float64
	// Scale is the traced resolution relative to the output buffer; the
	// traced frame is upscaled bilinearly.
	Scale       float64
	Supersample int
	Workers     int
	LensFlare   bool
	Credits     string
}

func DefaultOptions() Options {
	return Options{
		MaxPixelRatio: MaxPixelRatio,
		Scale:         1,
		Supersample:   1,
		LensFlare:     true,
		Credits:       "Credits",
	}
}

// Renderer owns the output size and draws frames of a scene.
type Renderer struct {
	opts       Options
	log        *zap.Logger
	width      int
	height     int
	pixelRatio float64
	offsets    [][2]float64
}

func NewRenderer(opts Options, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxPixelRatio <= 0 {
		opts.MaxPixelRatio = MaxPixelRatio
	}
	if opts.Scale <= 0 || opts.Scale > 1 {
		opts.Scale = 1
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Renderer{
		opts:       opts,
		log:        log,
		width:      1,
		height:     1,
		pixelRatio: 1,
		offsets:    GenerateSupersamplingOffsets(opts.Supersample),
	}
}

// SetSize sets the viewport size in logical pixels.
func (r *Renderer) SetSize(width, height int) {
	r.width = max(width, 1)
	r.height = max(height, 1)
}

// SetPixelRatio sets the device pixel ratio, clamped to the configured
// maximum.
func (r *Renderer) SetPixelRatio(ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	r.pixelRatio = math.Min(ratio, r.opts.MaxPixelRatio)
}

func (r *Renderer) PixelRatio() float64 {
	return r.pixelRatio
}

// Size returns the viewport in logical pixels.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// OutputSize returns the frame buffer size in device pixels.
func (r *Renderer) OutputSize() (int, int) {
	w := int(math.Round(float64(r.width) * r.pixelRatio))
	h := int(math.Round(float64(r.height) * r.pixelRatio))
	return max(w, 1), max(h, 1)
}

// Render traces one frame of sc as seen by cam. Rows are traced in parallel;
// a cancelled ctx aborts the frame.
func (r *Renderer) Render(ctx context.Context, sc *scene.Scene, cam *Camera) (*image.NRGBA, error) {
	if sc == nil || cam == nil {
		return nil, fmt.Errorf("render: nil scene or camera")
	}
	outW, outH := r.OutputSize()
	w := max(int(math.Round(float64(outW)*r.opts.Scale)), 1)
	h := max(int(math.Round(float64(outH)*r.opts.Scale)), 1)

	fs := newFrameState(sc, cam)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.traceRow(fs, cam, img, y, w, h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render %dx%d: %w", w, h, err)
	}

	out := img
	if w != outW || h != outH {
		out = image.NewNRGBA(image.Rect(0, 0, outW, outH))
		xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}

	if r.opts.LensFlare {
		drawLensFlare(out, sc, cam)
	}
	return out, nil
}

func (r *Renderer) traceRow(fs *frameState, cam *Camera, img *image.NRGBA, y, w, h int) {
	rc := newRayContext(fs)
	n := float64(len(r.offsets))
	for x := 0; x < w; x++ {
		accum := colors.Color4{}
		for _, off := range r.offsets {
			dir := cam.ComputeRay(float64(x)+0.5+off[0], float64(y)+0.5+off[1], w, h)
			accum = accum.Add(tracePixel(rc, dir))
		}
		c := accum.Scale(1.0 / n).ToSRGB()
		img.SetNRGBA(x, y, c.ToNRGBA())
	}
}

type layer struct {
	t     float64
	color colors.Color4
}

// tracePixel returns the linear color seen along dir: the nearest opaque
// surface with every translucent surface in front of it composited on top.
func tracePixel(rc *RayContext, dir vectors.Vec3) colors.Color4 {
	fs := rc.frame
	rc.SetRayDirection(dir)

	tOpaque := math.Inf(1)
	color := fs.background
	if rc.T > 0 {
		tOpaque = rc.T
		color = RenderEarthSurface(rc)
	}

	if fs.markerVisible {
		if hit, t0, _ := intersectSphereFull(rc.Origin, dir, fs.markerCenter, fs.markerRadius); hit && t0 > 0 && t0 < tOpaque {
			tOpaque = t0
			color = fs.markerColor.WithAlpha(1)
		}
	}

	var layers []layer
	if fs.atmoVisible {
		// Back faces only: the far crossing of the shell.
		if hit, _, t1 := intersectSphereFull(rc.Origin, dir, vectors.Zero(), fs.atmoRadius); hit && t1 > 0 && t1 < tOpaque {
			p := rc.Origin.Add(dir.Scale(t1))
			layers = append(layers, layer{t1, shadeAtmosphere(fs, dir, p)})
		}
	}
	if fs.ringVisible {
		if t := intersectRing(rc.Origin, dir, fs.ringCenter, fs.ringNormal, fs.ringInner, fs.ringOuter); t > 0 && t < tOpaque {
			layers = append(layers, layer{t, fs.ringColor})
		}
	}
	if len(layers) > 1 {
		sort.Slice(layers, func(i, j int) bool { return layers[i].t > layers[j].t })
	}
	for _, l := range layers {
		color = l.color.Over(color)
	}
	return color
}

func transformDirection(v vectors.Vec3, m mgl64.Mat4) vectors.Vec3 {
	return vectors.FromMGL(mgl64.TransformNormal(v.MGL(), m))
}
