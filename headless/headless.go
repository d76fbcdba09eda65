// Package headless renders a fixed number of frames without a window.
package headless

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/echoflaresat/earthglow/app"
	"github.com/echoflaresat/earthglow/config"
	"github.com/echoflaresat/earthglow/stats"
	"go.uber.org/zap"
)

// Result summarizes a run.
type Result struct {
	Written int
	Failed  int
}

// ParseScript turns the configured per-frame command strings into commands.
func ParseScript(script map[int][]string) (map[int][]app.Command, error) {
	out := make(map[int][]app.Command, len(script))
	frames := make([]int, 0, len(script))
	for f := range script {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	for _, f := range frames {
		for _, line := range script[f] {
			cmd, err := app.ParseCommand(line)
			if err != nil {
				return nil, fmt.Errorf("script frame %d: %w", f, err)
			}
			out[f] = append(out[f], cmd)
		}
	}
	return out, nil
}

// Run ticks state cfg.Frames times on clock at cfg.FPS and writes every
// frame. waitAssets, when non-nil and enabled, is called before the first
// frame. A failed tick is logged and its frame skipped.
func Run(ctx context.Context, state *app.State, clock *app.ManualClock, cfg config.HeadlessConfig, waitAssets func(), log *zap.Logger) (Result, error) {
	var res Result
	script, err := ParseScript(cfg.Script)
	if err != nil {
		return res, err
	}
	w, err := NewFrameWriter(cfg.Format, cfg.Out, cfg.FPS)
	if err != nil {
		return res, err
	}

	if cfg.WaitAssets && waitAssets != nil {
		start := time.Now()
		waitAssets()
		log.Info("assets ready", zap.Duration("took", time.Since(start)))
	}

	step := time.Duration(float64(time.Second) / cfg.FPS)
	for i := 0; i < cfg.Frames; i++ {
		if err := ctx.Err(); err != nil {
			w.Close()
			return res, err
		}
		if i > 0 {
			clock.Advance(step)
		}
		state.Queue().Push(script[i]...)

		if err := state.Tick(ctx); err != nil {
			res.Failed++
			stats.TickError()
			log.Warn("tick failed", zap.Int("frame", i), zap.Error(err))
			continue
		}
		if err := w.WriteFrame(i, state.Frame()); err != nil {
			w.Close()
			return res, fmt.Errorf("writing frame %d: %w", i, err)
		}
		res.Written++
		log.Debug("frame written", zap.Int("frame", i))
	}
	if err := w.Close(); err != nil {
		return res, err
	}
	log.Info("headless run finished",
		zap.Int("written", res.Written),
		zap.Int("failed", res.Failed),
		zap.String("out", cfg.Out),
		zap.String("format", cfg.Format),
	)
	return res, nil
}
