package app

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/echoflaresat/earthglow/earth"
	"github.com/echoflaresat/earthglow/overlay"
	"go.uber.org/zap"
)

// Tick runs one frame: apply queued commands, advance time, spin the Earth,
// update the overlay and controls, render and present. An error ends this
// tick only; the caller decides whether to keep ticking.
func (s *State) Tick(ctx context.Context) error {
	start := time.Now()

	// Every drained command is applied even if an earlier one fails.
	var cmdErr error
	for _, cmd := range s.queue.Drain() {
		if err := s.handle(ctx, cmd); err != nil && cmdErr == nil {
			cmdErr = fmt.Errorf("applying %T: %w", cmd, err)
		}
	}
	if cmdErr != nil {
		return cmdErr
	}

	elapsed := s.clock.Elapsed().Seconds()
	delta := elapsed - s.lastElapsed
	if delta < 0 {
		delta = 0
	}
	s.lastElapsed = elapsed

	s.Scene.SetEarthSpin(earth.SpinAngleAt(elapsed, s.spinRate))

	if s.Overlay != nil {
		s.Overlay.Update(overlay.Frame{
			Elapsed: elapsed,
			Delta:   delta,
			Width:   float64(s.width),
			Height:  float64(s.height),
			Camera:  s.Camera,
		})
	}

	s.Controls.Update()

	frame, err := s.renderFrame(ctx)
	if err != nil {
		return err
	}
	s.show(frame)

	if s.meter != nil {
		s.meter.Frame(time.Since(start))
	}
	return nil
}

// Resize applies a new viewport immediately and presents one frame right
// away, outside the tick schedule.
func (s *State) Resize(ctx context.Context, width, height int, pixelRatio float64) error {
	s.applySize(width, height, pixelRatio)
	frame, err := s.renderFrame(ctx)
	if err != nil {
		return err
	}
	s.show(frame)
	return nil
}

func (s *State) handle(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case Resize:
		return s.Resize(ctx, c.Width, c.Height, c.PixelRatio)
	case ToggleFullscreen:
		s.toggleFullscreen()
	case Click:
		s.click(c.X, c.Y)
	case Drag:
		s.Controls.Rotate(c.DX, c.DY)
	case Zoom:
		s.Controls.Zoom(c.Delta)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func (s *State) applySize(width, height int, pixelRatio float64) {
	s.width, s.height = max(width, 1), max(height, 1)
	s.Camera.Aspect = float64(s.width) / float64(s.height)
	s.Camera.UpdateProjectionMatrix()
	s.Renderer.SetSize(s.width, s.height)
	s.Renderer.SetPixelRatio(pixelRatio)
	s.Controls.SetViewportHeight(float64(s.height))
}

func (s *State) toggleFullscreen() {
	want := !s.host.IsFullscreen()
	if err := s.host.SetFullscreen(want); err != nil {
		s.log.Debug("fullscreen request failed", zap.Bool("fullscreen", want), zap.Error(err))
	}
}

func (s *State) click(x, y float64) {
	if s.Overlay == nil || !s.Overlay.Contains(x, y) {
		return
	}
	s.Overlay.Toggle()
	s.log.Debug("overlay toggled", zap.Bool("active", s.Overlay.Active()))
}

// renderFrame traces the scene and layers the overlay and credits on top.
// A logo behind the globe goes beneath the credits label.
func (s *State) renderFrame(ctx context.Context) (*image.NRGBA, error) {
	frame, err := s.Renderer.Render(ctx, s.Scene, s.Camera)
	if err != nil {
		return nil, err
	}
	pr := s.Renderer.PixelRatio()
	if s.Overlay != nil && s.Overlay.Placement().Behind {
		s.Overlay.Draw(frame, pr)
		s.Renderer.DrawCredits(frame)
	} else {
		s.Renderer.DrawCredits(frame)
		if s.Overlay != nil {
			s.Overlay.Draw(frame, pr)
		}
	}
	return frame, nil
}

func (s *State) show(frame *image.NRGBA) {
	s.frame = frame
	if s.present != nil {
		s.present(frame)
	}
}
