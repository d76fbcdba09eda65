package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and the FPS readout")
	flagFullscreen = flag.Bool("fullscreen", false, "Start in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window or headless frame width")
	flagHeight     = flag.Int("height", 0, "Window or headless frame height")
	flagVariant    = flag.String("overlay", "", "Overlay variant: orbiting, spinning or none")
	flagSunAt      = flag.String("sun-at", "", "Light the globe as at this RFC3339 time")
	flagHeadless   = flag.Bool("headless", false, "Render frames to disk instead of opening a window")
	flagFrames     = flag.Int("frames", 0, "Number of headless frames")
	flagOut        = flag.String("out", "", "Headless output directory or .gif file")
	flagFormat     = flag.String("format", "", "Headless output format: png or gif")
	flagMetrics    = flag.String("metrics", "", "Serve Prometheus metrics on this address")
	flagDumpConfig = flag.String("dump-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// DumpPath returns the -dump-config target, if any.
func DumpPath() string {
	return *flagDumpConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Window.ShowFPS = true
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagHeadless {
		cfg.Headless.Enabled = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
		cfg.Headless.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
		cfg.Headless.Height = *flagHeight
	}
	if *flagVariant != "" {
		cfg.Overlay.Variant = *flagVariant
	}
	if *flagSunAt != "" {
		cfg.Sun.At = *flagSunAt
	}
	if *flagFrames > 0 {
		cfg.Headless.Frames = *flagFrames
	}
	if *flagOut != "" {
		cfg.Headless.Out = *flagOut
	}
	if *flagFormat != "" {
		cfg.Headless.Format = *flagFormat
	}
	if *flagMetrics != "" {
		cfg.Stats.Listen = *flagMetrics
	}
}
