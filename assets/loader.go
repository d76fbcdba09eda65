// Package assets loads scene textures in the background.
package assets

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/echoflaresat/earthglow/config"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/texture"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Request asks for the texture at Path to be published into Slot.
type Request struct {
	Name       string
	Path       string
	ColorSpace texture.ColorSpace
	// Anisotropy above 1 selects filtered sampling.
	Anisotropy int
	Slot       *texture.Slot
}

// Requests lists the textures of the stock scene.
func Requests(cfg config.AssetsConfig, sc *scene.Scene) []Request {
	aniso := cfg.Anisotropy
	req := func(name, path string, cs texture.ColorSpace, a int) Request {
		return Request{Name: name, Path: path, ColorSpace: cs, Anisotropy: a, Slot: sc.Texture(name)}
	}
	return []Request{
		req(scene.TexDay, cfg.Day, texture.SRGB, aniso),
		req(scene.TexNight, cfg.Night, texture.SRGB, aniso),
		req(scene.TexSpecularClouds, cfg.SpecularClouds, texture.Linear, aniso),
		req(scene.TexBump, cfg.Bump, texture.Linear, aniso),
		req(scene.TexMetalness, cfg.Metalness, texture.Linear, aniso),
		req(scene.TexFlare0, cfg.Flare0, texture.SRGB, 1),
		req(scene.TexFlare1, cfg.Flare1, texture.SRGB, 1),
		req(scene.TexLogo, cfg.Logo, texture.SRGB, 1),
	}
}

// Loader decodes textures concurrently and publishes them as they finish.
// Failures are logged and leave the slot empty.
type Loader struct {
	log           *zap.Logger
	workers       int
	maxAnisotropy int

	mu     sync.Mutex
	errs   map[string]error
	done   chan struct{}
	loaded []*texture.Texture
}

func NewLoader(workers, maxAnisotropy int, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Loader{
		log:           log,
		workers:       workers,
		maxAnisotropy: maxAnisotropy,
		errs:          map[string]error{},
	}
}

// Start begins loading and returns immediately.
func (l *Loader) Start(ctx context.Context, reqs []Request) {
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		var g errgroup.Group
		g.SetLimit(l.workers)
		for _, r := range reqs {
			g.Go(func() error {
				l.load(ctx, r)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// Wait blocks until every request started by Start has finished.
func (l *Loader) Wait() {
	if l.done != nil {
		<-l.done
	}
}

// Err returns the failure recorded for the named request, if any.
func (l *Loader) Err(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errs[name]
}

// Close waits for running loads, then releases memory-mapped textures.
// Call only after the frame loop stops.
func (l *Loader) Close() {
	l.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.loaded {
		if err := t.Close(); err != nil {
			l.log.Debug("closing texture", zap.Error(err))
		}
	}
	l.loaded = nil
}

func (l *Loader) load(ctx context.Context, r Request) {
	if r.Path == "" || r.Slot == nil {
		l.log.Debug("texture not configured", zap.String("name", r.Name))
		return
	}
	if err := ctx.Err(); err != nil {
		l.fail(r, err)
		return
	}

	start := time.Now()
	tex, err := texture.Load(r.Path, l.log)
	if err != nil {
		l.fail(r, err)
		return
	}
	tex.ColorSpace = r.ColorSpace
	tex.Anisotropy = l.anisotropy(r.Anisotropy)
	if tex.Anisotropy > 1 {
		tex.Filter = texture.Bilinear
	}
	r.Slot.Set(tex)

	l.mu.Lock()
	l.loaded = append(l.loaded, tex)
	l.mu.Unlock()

	l.log.Info("texture loaded",
		zap.String("name", r.Name),
		zap.String("path", r.Path),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
		zap.String("size", humanize.Bytes(uint64(tex.Width)*uint64(tex.Height)*4)),
		zap.Duration("took", time.Since(start)),
	)
}

func (l *Loader) fail(r Request, err error) {
	l.mu.Lock()
	l.errs[r.Name] = err
	l.mu.Unlock()
	l.log.Warn("texture load failed", zap.String("name", r.Name), zap.String("path", r.Path), zap.Error(err))
}

func (l *Loader) anisotropy(requested int) int {
	a := min(requested, texture.MaxAnisotropy)
	if l.maxAnisotropy > 0 {
		a = min(a, l.maxAnisotropy)
	}
	return max(a, 1)
}
