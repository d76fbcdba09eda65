// Package window runs the interactive desktop driver on ebiten.
package window

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/echoflaresat/earthglow/app"
	"github.com/echoflaresat/earthglow/config"
	"github.com/echoflaresat/earthglow/stats"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// dragThreshold separates a click from the start of a drag, logical pixels.
const dragThreshold = 4.0

// Host toggles ebiten's fullscreen mode.
type Host struct{}

func (Host) SetFullscreen(on bool) error {
	ebiten.SetFullscreen(on)
	return nil
}

func (Host) IsFullscreen() bool {
	return ebiten.IsFullscreen()
}

// DeviceScaleFactor is the pixel ratio of the primary monitor.
func DeviceScaleFactor() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// Game adapts an app.State to ebiten's game loop.
type Game struct {
	ctx   context.Context
	state *app.State
	log   *zap.Logger
	cfg   config.WindowConfig

	clicks  app.DoubleClickDetector
	pressed bool
	moved   bool
	pressX  float64
	pressY  float64
	lastX   float64
	lastY   float64

	width  int
	height int
	dpr    float64

	img *ebiten.Image
}

// Run opens the window and blocks until it closes or ctx is done.
func Run(ctx context.Context, state *app.State, cfg config.WindowConfig, log *zap.Logger) error {
	w, h := state.Viewport()
	g := &Game{
		ctx:    ctx,
		state:  state,
		log:    log,
		cfg:    cfg,
		width:  w,
		height: h,
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	if cfg.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.pollInput()

	if err := g.state.Tick(g.ctx); err != nil {
		stats.TickError()
		g.log.Warn("tick failed", zap.Error(err))
	}

	if g.cfg.ShowFPS {
		ebiten.SetWindowTitle(fmt.Sprintf("%s - %.0f FPS", g.cfg.Title, ebiten.ActualFPS()))
	}
	return nil
}

func (g *Game) pollInput() {
	q := g.state.Queue()
	dpr := g.dpr
	if dpr <= 0 {
		dpr = 1
	}
	sx, sy := ebiten.CursorPosition()
	x, y := float64(sx)/dpr, float64(sy)/dpr

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.pressed, g.moved = true, false
		g.pressX, g.pressY = x, y
		g.lastX, g.lastY = x, y
	}
	if g.pressed && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if dx, dy := x-g.lastX, y-g.lastY; dx != 0 || dy != 0 {
			q.Push(app.Drag{DX: dx, DY: dy})
			g.lastX, g.lastY = x, y
		}
		if math.Hypot(x-g.pressX, y-g.pressY) > dragThreshold {
			g.moved = true
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.pressed {
		g.pressed = false
		if !g.moved {
			q.Push(app.Click{X: x, Y: y})
			if g.clicks.Click(time.Now(), x, y) {
				q.Push(app.ToggleFullscreen{})
			}
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		q.Push(app.Zoom{Delta: -wy})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		q.Push(app.ToggleFullscreen{})
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	frame := g.state.Frame()
	if frame == nil {
		return
	}
	fb := frame.Bounds()
	if g.img == nil || g.img.Bounds().Dx() != fb.Dx() || g.img.Bounds().Dy() != fb.Dy() {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(fb.Dx(), fb.Dy())
	}
	g.img.WritePixels(frame.Pix)

	sb := screen.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sb.Dx())/float64(fb.Dx()), float64(sb.Dy())/float64(fb.Dy()))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.img, op)
}

// Layout reports the screen in device pixels and queues a resize whenever the
// window size or pixel ratio changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := DeviceScaleFactor()
	if outsideWidth != g.width || outsideHeight != g.height || dpr != g.dpr {
		g.width, g.height, g.dpr = outsideWidth, outsideHeight, dpr
		g.state.Queue().Push(app.Resize{Width: outsideWidth, Height: outsideHeight, PixelRatio: dpr})
	}
	return int(math.Ceil(float64(outsideWidth) * dpr)), int(math.Ceil(float64(outsideHeight) * dpr))
}
