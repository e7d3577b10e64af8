// Command gpulife runs Conway's Game of Life on the GPU.
//
// It drives the simulation headless at a fixed cadence and can write every
// presented frame as an annotated PNG:
//
//	gpulife -width 64 -height 64 -ticks 50 -out frames
//	gpulife -config life.toml -backend software
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gogpu/gpulife"
	"github.com/gogpu/gpulife/gpu"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "TOML config file")
		backend     = flag.String("backend", "", "pipeline: gpu or software (default gpu when available)")
		width       = flag.Int("width", gpulife.DefaultGridSize, "grid width in cells")
		height      = flag.Int("height", gpulife.DefaultGridSize, "grid height in cells")
		frameWidth  = flag.Int("frame-width", gpulife.DefaultFrameSize, "frame width in pixels")
		frameHeight = flag.Int("frame-height", gpulife.DefaultFrameSize, "frame height in pixels")
		interval    = flag.Duration("interval", gpulife.DefaultInterval, "delay between generations")
		density     = flag.Float64("density", gpulife.DefaultDensity, "fraction of cells alive at start")
		seed        = flag.Uint64("seed", 0, "random seed (default: time based)")
		ticks       = flag.Uint64("ticks", 0, "stop after this many generations (0 runs until interrupted)")
		static      = flag.Bool("static", false, "render the first generation once and exit")
		out         = flag.String("out", "", "directory for PNG snapshots")
		validate    = flag.Bool("validate-shaders", false, "compile the WGSL programs with naga and exit")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gpulife.SetLogger(logger)

	if *validate {
		if err := gpu.ValidateShaders(); err != nil {
			logger.Error("shader validation failed", "err", err)
			return 1
		}
		logger.Info("shaders ok")
		return 0
	}

	cfg := &gpulife.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = gpulife.LoadConfig(*configPath); err != nil {
			logger.Error("load config", "err", err)
			return 1
		}
	}

	// Flags given on the command line override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "frame-width":
			cfg.Frame.Width = *frameWidth
		case "frame-height":
			cfg.Frame.Height = *frameHeight
		case "interval":
			cfg.Interval = gpulife.Duration{Duration: *interval}
		case "density":
			cfg.Density = density
		case "seed":
			cfg.Seed = seed
		case "ticks":
			cfg.Ticks = *ticks
		case "static":
			cfg.Static = *static
		case "out":
			cfg.Output = *out
		}
	})

	var sim *gpulife.Simulation
	snap := snapshotter{dir: cfg.Output, logger: logger}
	opts := cfg.Options()
	if snap.dir != "" {
		if err := os.MkdirAll(snap.dir, 0o750); err != nil {
			logger.Error("create output directory", "err", err)
			return 1
		}
		opts = append(opts, gpulife.WithFrameHandler(func(fi gpulife.FrameInfo) {
			snap.write(sim, fi.Generation, fi.Frame)
		}))
	}

	sim, err := gpulife.New(opts...)
	if errors.Is(err, gpulife.ErrNoAdapter) && cfg.Backend == "" {
		logger.Warn("no GPU adapter, falling back to the software pipeline", "err", err)
		sim, err = gpulife.New(append(opts, gpulife.WithPipelineName(gpulife.PipelineSoftware))...)
	}
	if err != nil {
		logger.Error("create simulation", "err", err)
		return 1
	}
	defer sim.Close()

	start := time.Now()
	if cfg.Static {
		if err := sim.RenderOnce(); err != nil {
			logger.Error("render", "err", err)
			return 1
		}
		snap.write(sim, sim.Generation(), sim.Frame())
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("run", "err", err)
			return 1
		}
	}

	printStats(sim, time.Since(start))
	return 0
}

// snapshotter writes annotated frames into dir. An empty dir disables it.
type snapshotter struct {
	dir    string
	logger *slog.Logger
}

func (s snapshotter) write(sim *gpulife.Simulation, generation uint64, frame image.Image) {
	if s.dir == "" || frame == nil {
		return
	}
	cells, err := sim.Cells()
	if err != nil {
		s.logger.Warn("snapshot: read cells", "err", err)
		return
	}
	img := gpulife.Annotate(frame, gpulife.Label(generation, gpulife.Population(cells)))
	path := filepath.Join(s.dir, fmt.Sprintf("gen_%06d.png", generation))
	if err := savePNG(path, img); err != nil {
		s.logger.Warn("snapshot: save", "path", path, "err", err)
		return
	}
	s.logger.Debug("snapshot saved", "path", path)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is built from the output flag
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printStats(sim *gpulife.Simulation, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	alive := -1
	if cells, err := sim.Cells(); err == nil {
		alive = gpulife.Population(cells)
	}
	g := sim.Grid()
	p.Printf("pipeline %s  grid %dx%d  seed %d\n", sim.Pipeline().Name(), g.Width, g.Height, sim.Seed())
	p.Printf("generations %d  alive %d of %d  elapsed %v\n",
		sim.Generation(), alive, g.CellCount(), elapsed.Round(time.Millisecond))
}
