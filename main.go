package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/echoflaresat/earthglow/app"
	"github.com/echoflaresat/earthglow/assets"
	"github.com/echoflaresat/earthglow/config"
	"github.com/echoflaresat/earthglow/headless"
	"github.com/echoflaresat/earthglow/logger"
	"github.com/echoflaresat/earthglow/stats"
	"github.com/echoflaresat/earthglow/window"
	"go.uber.org/zap"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.DumpPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "writing %s: %v\n", path, err)
			os.Exit(1)
		}
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Log.Error("exiting", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Log
	meter := stats.NewMeter()

	opts := app.Options{
		Meter:  meter,
		Logger: logger.Named("app"),
	}
	var clock *app.ManualClock
	if cfg.Headless.Enabled {
		cfg.Window.Width = cfg.Headless.Width
		cfg.Window.Height = cfg.Headless.Height
		clock = &app.ManualClock{}
		opts.Clock = clock
		opts.PixelRatio = cfg.Headless.PixelRatio
	} else {
		opts.Host = window.Host{}
		opts.PixelRatio = window.DeviceScaleFactor()
	}

	state, err := app.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}

	loader := assets.NewLoader(cfg.Assets.Workers, cfg.Assets.Anisotropy, logger.Named("assets"))
	defer loader.Close()
	loader.Start(ctx, assets.Requests(cfg.Assets, state.Scene))

	if cfg.Stats.Listen != "" {
		go func() {
			if err := stats.Serve(ctx, cfg.Stats.Listen, logger.Named("stats")); err != nil {
				log.Error("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}
	go meter.Report(ctx, cfg.Stats.LogInterval, logger.Named("stats"))

	if cfg.Headless.Enabled {
		_, err := headless.Run(ctx, state, clock, cfg.Headless, loader.Wait, logger.Named("headless"))
		return err
	}
	return window.Run(ctx, state, cfg.Window, logger.Named("window"))
}
