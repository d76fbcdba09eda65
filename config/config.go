// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Render     RenderConfig     `yaml:"render"`
	Camera     CameraConfig     `yaml:"camera"`
	Controls   ControlsConfig   `yaml:"controls"`
	Earth      EarthConfig      `yaml:"earth"`
	Sun        SunConfig        `yaml:"sun"`
	Atmosphere AtmosphereConfig `yaml:"atmosphere"`
	Overlay    OverlayConfig    `yaml:"overlay"`
	Assets     AssetsConfig     `yaml:"assets"`
	Headless   HeadlessConfig   `yaml:"headless"`
	Stats      StatsConfig      `yaml:"stats"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds interactive window settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	TPS        int    `yaml:"tps"`
	ShowFPS    bool   `yaml:"show_fps"`
}

// RenderConfig holds ray tracer settings.
type RenderConfig struct {
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"`
	// Scale shrinks the traced resolution relative to the viewport.
	Scale       float64 `yaml:"scale"`
	Supersample int     `yaml:"supersample"`
	Workers     int     `yaml:"workers"` // 0 means GOMAXPROCS
	Credits     string  `yaml:"credits"`
	LensFlare   bool    `yaml:"lens_flare"`
}

// CameraConfig holds the perspective camera.
type CameraConfig struct {
	FOV      float64    `yaml:"fov"` // vertical, degrees
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Position [3]float64 `yaml:"position"`
	// NormalizePosition scales Position to unit length before use.
	NormalizePosition bool `yaml:"normalize_position"`
}

// ControlsConfig holds orbit control settings.
type ControlsConfig struct {
	MinDistance   float64 `yaml:"min_distance"`
	MaxDistance   float64 `yaml:"max_distance"`
	EnableDamping bool    `yaml:"enable_damping"`
	DampingFactor float64 `yaml:"damping_factor"`
	RotateSpeed   float64 `yaml:"rotate_speed"`
	ZoomSpeed     float64 `yaml:"zoom_speed"`
}

// EarthConfig holds globe material settings.
type EarthConfig struct {
	TiltDeg   float64 `yaml:"tilt_deg"`
	SpinRate  float64 `yaml:"spin_rate"`
	BumpScale float64 `yaml:"bump_scale"`
	Metalness float64 `yaml:"metalness"`
	Roughness float64 `yaml:"roughness"`
}

// SunConfig positions the light.
type SunConfig struct {
	Phi   float64 `yaml:"phi"`   // polar angle from +Y, radians
	Theta float64 `yaml:"theta"` // azimuth, radians
	// At, when set (RFC3339), replaces Phi/Theta with the real sun position.
	At         string  `yaml:"at"`
	ShowMarker bool    `yaml:"show_marker"`
	MarkerDist float64 `yaml:"marker_distance"`
}

// AtmosphereConfig holds the glow shell.
type AtmosphereConfig struct {
	DayColor      HexColor `yaml:"day_color"`
	TwilightColor HexColor `yaml:"twilight_color"`
	Scale         float64  `yaml:"scale"`
}

// OverlayConfig selects and tunes the decorative logo.
type OverlayConfig struct {
	Variant      string        `yaml:"variant"` // orbiting, spinning or none
	Title        string        `yaml:"title"`
	Radius       float64       `yaml:"radius"`
	Speed        float64       `yaml:"speed"`
	TiltDeg      float64       `yaml:"tilt_deg"`
	Margin       float64       `yaml:"margin"`
	BehindDepth  float64       `yaml:"behind_depth"`
	Size         float64       `yaml:"size"`
	CompactSize  float64       `yaml:"compact_size"`
	CompactWidth float64       `yaml:"compact_width"`
	SpinPeriod   time.Duration `yaml:"spin_period"`
	ShowTrail    bool          `yaml:"show_trail"`
}

// AssetsConfig lists texture paths.
type AssetsConfig struct {
	Day            string `yaml:"day"`
	Night          string `yaml:"night"`
	SpecularClouds string `yaml:"specular_clouds"`
	Bump           string `yaml:"bump"`
	Metalness      string `yaml:"metalness"`
	Flare0         string `yaml:"flare0"`
	Flare1         string `yaml:"flare1"`
	Logo           string `yaml:"logo"`
	Workers        int    `yaml:"workers"`
	Anisotropy     int    `yaml:"anisotropy"`
}

// HeadlessConfig drives the batch renderer.
type HeadlessConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Frames     int     `yaml:"frames"`
	FPS        float64 `yaml:"fps"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	PixelRatio float64 `yaml:"pixel_ratio"`
	Out        string  `yaml:"out"`
	Format     string  `yaml:"format"` // png or gif
	WaitAssets bool    `yaml:"wait_assets"`
	// Script maps a frame index to commands applied before that frame,
	// e.g. {30: ["click 400 300", "zoom 1"]}.
	Script map[int][]string `yaml:"script"`
}

// StatsConfig holds frame statistics settings.
type StatsConfig struct {
	Listen      string        `yaml:"listen"`
	LogInterval time.Duration `yaml:"log_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock scene.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Earth",
			Width:  960,
			Height: 640,
			TPS:    60,
		},
		Render: RenderConfig{
			MaxPixelRatio: 2,
			Scale:         0.5,
			Supersample:   1,
			Credits:       "Credits",
			LensFlare:     true,
		},
		Camera: CameraConfig{
			FOV:               45,
			Near:              0.1,
			Far:               1000,
			Position:          [3]float64{-3.2, 2.9, -1.2},
			NormalizePosition: true,
		},
		Controls: ControlsConfig{
			MinDistance:   3,
			MaxDistance:   10,
			EnableDamping: true,
			DampingFactor: 0.05,
			RotateSpeed:   1,
			ZoomSpeed:     1,
		},
		Earth: EarthConfig{
			TiltDeg:   23.5,
			SpinRate:  0.1,
			BumpScale: 3.0,
			Metalness: 0.1,
			Roughness: 0.6,
		},
		Sun: SunConfig{
			Phi:        math.Pi * 0.5,
			Theta:      0.5,
			ShowMarker: true,
			MarkerDist: 5,
		},
		Atmosphere: AtmosphereConfig{
			DayColor:      0x9fd8ff,
			TwilightColor: 0x050c1f,
			Scale:         1.025,
		},
		Overlay: OverlayConfig{
			Variant:      "orbiting",
			Title:        "Logo",
			Radius:       2.5,
			Speed:        0.3,
			TiltDeg:      36,
			Margin:       100,
			BehindDepth:  0.1,
			Size:         80,
			CompactSize:  60,
			CompactWidth: 768,
			SpinPeriod:   8 * time.Second,
			ShowTrail:    true,
		},
		Assets: AssetsConfig{
			Day:            "textures/2k_earth_daymap.jpg",
			Night:          "textures/night.jpg",
			SpecularClouds: "textures/earth/specularClouds.jpg",
			Bump:           "textures/8081_earthbump4k.jpg",
			Metalness:      "textures/8081_earthspec4k.jpg",
			Flare0:         "textures/lensflare0.png",
			Flare1:         "textures/lensflare1.png",
			Logo:           "textures/logo.png",
			Workers:        4,
			Anisotropy:     8,
		},
		Headless: HeadlessConfig{
			Frames:     90,
			FPS:        30,
			Width:      640,
			Height:     480,
			PixelRatio: 1,
			Out:        "frames",
			Format:     "png",
			WaitAssets: true,
		},
		Stats: StatsConfig{
			LogInterval: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	check(c.Render.MaxPixelRatio > 0, "render.max_pixel_ratio must be positive")
	check(c.Render.Scale > 0 && c.Render.Scale <= 4, "render.scale must be in (0,4], got %v", c.Render.Scale)
	check(c.Render.Supersample >= 1, "render.supersample must be at least 1")
	check(c.Render.Workers >= 0, "render.workers must not be negative")
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov must be in (0,180), got %v", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera near/far must satisfy 0 < near < far")
	check(c.Controls.MinDistance > 0, "controls.min_distance must be positive")
	check(c.Controls.MaxDistance >= c.Controls.MinDistance, "controls.max_distance %v is below min_distance %v", c.Controls.MaxDistance, c.Controls.MinDistance)
	check(c.Controls.DampingFactor >= 0 && c.Controls.DampingFactor <= 1, "controls.damping_factor must be in [0,1]")
	check(c.Atmosphere.Scale >= 1, "atmosphere.scale must be at least 1")
	switch c.Overlay.Variant {
	case "orbiting", "spinning", "none":
	default:
		check(false, "unknown overlay.variant %q", c.Overlay.Variant)
	}
	check(c.Overlay.SpinPeriod > 0, "overlay.spin_period must be positive")
	check(c.Overlay.Size > 0, "overlay.size must be positive")
	if c.Sun.At != "" {
		_, err := time.Parse(time.RFC3339, c.Sun.At)
		check(err == nil, "sun.at: %v", err)
	}
	if c.Headless.Enabled {
		check(c.Headless.Frames > 0, "headless.frames must be positive")
		check(c.Headless.FPS > 0, "headless.fps must be positive")
		check(c.Headless.Width > 0 && c.Headless.Height > 0, "headless size must be positive")
		check(c.Headless.Format == "png" || c.Headless.Format == "gif", "headless.format must be png or gif, got %q", c.Headless.Format)
	}
	return errors.Join(errs...)
}

// HexColor is an sRGB color written as "#rrggbb" or 0xrrggbb.
type HexColor uint32

func (h *HexColor) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0xffffff {
		return fmt.Errorf("line %d: invalid color %q", value.Line, value.Value)
	}
	*h = HexColor(v)
	return nil
}

func (h HexColor) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%06x", uint32(h)), nil
}
