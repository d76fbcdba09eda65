// Package stats measures frame rate and exports it as Prometheus metrics.
package stats

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Snapshot is a point-in-time view of a Meter.
type Snapshot struct {
	FPS       float64
	MinFPS    float64
	MaxFPS    float64
	FrameTime time.Duration
	Frames    uint64
}

// Meter tracks frames per second over one-second windows, like the classic
// FPS panel.
type Meter struct {
	mu          sync.Mutex
	now         func() time.Time
	window      time.Duration
	windowStart time.Time
	windowCount int
	snap        Snapshot
}

func NewMeter() *Meter {
	return newMeterWithClock(time.Now)
}

func newMeterWithClock(now func() time.Time) *Meter {
	return &Meter{
		now:         now,
		window:      time.Second,
		windowStart: now(),
		snap:        Snapshot{MinFPS: math.Inf(1)},
	}
}

// Frame records one rendered frame that took frameTime.
func (m *Meter) Frame(frameTime time.Duration) {
	framesTotal.Inc()
	frameSeconds.Observe(frameTime.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Frames++
	m.snap.FrameTime = frameTime
	m.windowCount++

	now := m.now()
	if elapsed := now.Sub(m.windowStart); elapsed >= m.window {
		fps := float64(m.windowCount) / elapsed.Seconds()
		m.snap.FPS = fps
		m.snap.MinFPS = math.Min(m.snap.MinFPS, fps)
		m.snap.MaxFPS = math.Max(m.snap.MaxFPS, fps)
		m.windowStart = now
		m.windowCount = 0
	}
}

func (m *Meter) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snap
	if math.IsInf(s.MinFPS, 1) {
		s.MinFPS = 0
	}
	return s
}

// Report logs a snapshot every interval until ctx is done.
func (m *Meter) Report(ctx context.Context, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s := m.Snapshot()
			log.Info("frame stats",
				zap.Float64("fps", math.Round(s.FPS*10)/10),
				zap.Float64("min_fps", math.Round(s.MinFPS*10)/10),
				zap.Float64("max_fps", math.Round(s.MaxFPS*10)/10),
				zap.Duration("frame_time", s.FrameTime),
				zap.Uint64("frames", s.Frames),
			)
		}
	}
}
