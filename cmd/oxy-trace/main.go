package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-trace/config"
	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-trace/engine/logger"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oxy-trace: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "oxy-trace: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("oxy-trace exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg config.Config, log *zap.Logger) (err error) {
	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, win.Close())
	}()

	// ── GPU ─────────────────────────────────────────────────────────────
	gpuCtx, err := wgpu_backend.New(win.SurfaceDescriptor(),
		wgpu_backend.WithPresentMode(cfg.PresentMode()),
		wgpu_backend.WithForceFallbackAdapter(cfg.Render.ForceFallbackAdapter),
		wgpu_backend.WithDeviceLabel(cfg.Window.Title+" Device"),
		wgpu_backend.WithLogger(log.Named("gpu")),
	)
	if err != nil {
		return err
	}

	// ── Engine ──────────────────────────────────────────────────────────
	options := []engine.EngineBuilderOption{
		engine.WithLogger(log.Named("engine")),
		engine.WithCameraOptions(
			camera.WithDistance(cfg.Camera.Distance),
			camera.WithMinDistance(cfg.Camera.MinDistance),
			camera.WithMaxDistance(cfg.Camera.MaxDistance),
			camera.WithZoomSpeed(cfg.Camera.ZoomSpeed),
		),
		engine.WithControllerOptions(camera.WithPanScale(cfg.Camera.PanScale)),
		engine.WithZoom(cfg.Camera.ZoomSensitivity, cfg.Camera.ZoomTimeStep),
		engine.WithClearColor(cfg.ClearColor()),
	}
	if cfg.Profiler.Enabled {
		options = append(options, engine.WithProfiler(profiler.NewProfiler(
			profiler.WithLogger(log.Named("profiler")),
			profiler.WithInterval(cfg.Profiler.Interval.Duration),
		)))
	}

	eng, err := engine.NewEngine(gpuCtx, uint32(max(win.Width(), 0)), uint32(max(win.Height(), 0)), options...)
	if err != nil {
		gpuCtx.Release()
		return err
	}
	defer eng.Release()

	// ── Run ─────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return eng.Run(ctx, win)
}
