// Package app holds the application state and the per-frame update loop
// shared by the window and headless drivers.
package app

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/config"
	"github.com/echoflaresat/earthglow/controls"
	"github.com/echoflaresat/earthglow/earth"
	"github.com/echoflaresat/earthglow/overlay"
	"github.com/echoflaresat/earthglow/render"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/stats"
	"github.com/echoflaresat/earthglow/vectors"
	"go.uber.org/zap"
)

// Options carries the collaborators of a State. Zero values are replaced
// with defaults.
type Options struct {
	Clock  Clock
	Host   Host
	Queue  *Queue
	Meter  *stats.Meter
	Logger *zap.Logger
	// Present receives every finished frame, including the one rendered
	// immediately on resize.
	Present func(frame *image.NRGBA)
	// PixelRatio is the initial device pixel ratio.
	PixelRatio float64
}

// State is everything the frame loop reads and mutates.
type State struct {
	Scene    *scene.Scene
	Camera   *render.Camera
	Controls *controls.OrbitControls
	Renderer *render.Renderer
	Overlay  overlay.Overlay // nil when disabled

	cfg      *config.Config
	log      *zap.Logger
	clock    Clock
	host     Host
	queue    *Queue
	meter    *stats.Meter
	present  func(*image.NRGBA)
	spinRate float64

	width       int
	height      int
	lastElapsed float64
	frame       *image.NRGBA
	sunDir      vectors.Vec3
}

// New builds the scene, camera, controls, renderer and overlay from cfg.
func New(cfg *config.Config, opts Options) (*State, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = NewRealClock()
	}
	if opts.Host == nil {
		opts.Host = &nopHost{}
	}
	if opts.Queue == nil {
		opts.Queue = NewQueue()
	}
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 1
	}

	s := &State{
		cfg:      cfg,
		log:      opts.Logger,
		clock:    opts.Clock,
		host:     opts.Host,
		queue:    opts.Queue,
		meter:    opts.Meter,
		present:  opts.Present,
		spinRate: cfg.Earth.SpinRate,
	}

	s.Scene = scene.Build(sceneOptions(cfg))

	sun, err := sunSpherical(cfg.Sun)
	if err != nil {
		return nil, err
	}
	s.sunDir = s.Scene.UpdateSun(sun)

	width, height := cfg.Window.Width, cfg.Window.Height
	s.Camera = render.NewCamera(s.Scene.Camera, cfg.Camera.FOV, float64(width)/float64(height), cfg.Camera.Near, cfg.Camera.Far)
	pos := vectors.New(cfg.Camera.Position[0], cfg.Camera.Position[1], cfg.Camera.Position[2])
	if cfg.Camera.NormalizePosition {
		pos = pos.Normalize()
	}
	s.Camera.SetPosition(pos)
	s.Camera.LookAt(vectors.Zero())

	s.Controls = controls.New(s.Camera, controls.Options{
		MinDistance:   cfg.Controls.MinDistance,
		MaxDistance:   cfg.Controls.MaxDistance,
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		EnableDamping: cfg.Controls.EnableDamping,
		DampingFactor: cfg.Controls.DampingFactor,
		RotateSpeed:   cfg.Controls.RotateSpeed,
		ZoomSpeed:     cfg.Controls.ZoomSpeed,
	})

	s.Renderer = render.NewRenderer(render.Options{
		MaxPixelRatio: cfg.Render.MaxPixelRatio,
		Scale:         cfg.Render.Scale,
		Supersample:   cfg.Render.Supersample,
		Workers:       cfg.Render.Workers,
		LensFlare:     cfg.Render.LensFlare,
		Credits:       cfg.Render.Credits,
	}, s.log.Named("render"))

	s.Overlay, err = overlay.New(cfg.Overlay, s.Scene)
	if err != nil {
		return nil, err
	}

	s.applySize(width, height, opts.PixelRatio)

	s.log.Info("scene ready",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("overlay", cfg.Overlay.Variant),
		zap.Stringer("sun", vecStringer(s.sunDir)),
	)
	return s, nil
}

func sceneOptions(cfg *config.Config) scene.Options {
	opts := scene.DefaultOptions()
	opts.Tilt = cfg.Earth.TiltDeg * math.Pi / 180
	opts.BumpScale = cfg.Earth.BumpScale
	opts.Metalness = cfg.Earth.Metalness
	opts.Roughness = cfg.Earth.Roughness
	opts.AtmosphereScale = cfg.Atmosphere.Scale
	opts.AtmosphereDay = colors.FromHex(uint32(cfg.Atmosphere.DayColor))
	opts.AtmosphereNight = colors.FromHex(uint32(cfg.Atmosphere.TwilightColor))
	opts.MarkerDistance = cfg.Sun.MarkerDist
	opts.ShowMarker = cfg.Sun.ShowMarker
	if cfg.Overlay.Variant == overlay.VariantOrbiting && cfg.Overlay.ShowTrail {
		opts.Trail = &scene.TrailOptions{
			Radius: cfg.Overlay.Radius,
			Tilt:   cfg.Overlay.TiltDeg * math.Pi / 180,
		}
	}
	return opts
}

// sunSpherical returns the configured sun, or the real sun at cfg.At.
func sunSpherical(cfg config.SunConfig) (vectors.Spherical, error) {
	if cfg.At == "" {
		return vectors.Spherical{Radius: 1, Phi: cfg.Phi, Theta: cfg.Theta}, nil
	}
	t, err := time.Parse(time.RFC3339, cfg.At)
	if err != nil {
		return vectors.Spherical{}, fmt.Errorf("sun.at: %w", err)
	}
	return earth.SunSphericalAt(t), nil
}

// Queue returns the command queue input producers push to.
func (s *State) Queue() *Queue {
	return s.queue
}

// Frame returns the last presented frame, or nil before the first one.
func (s *State) Frame() *image.NRGBA {
	return s.frame
}

// Viewport returns the logical viewport size.
func (s *State) Viewport() (int, int) {
	return s.width, s.height
}

func (s *State) Fullscreen() bool {
	return s.host.IsFullscreen()
}

// SunDirection is the unit vector pushed into the shaders.
func (s *State) SunDirection() vectors.Vec3 {
	return s.sunDir
}

type vecStringer vectors.Vec3

func (v vecStringer) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
