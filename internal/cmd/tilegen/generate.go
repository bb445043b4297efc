// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"honnef.co/go/tilegen"
	"honnef.co/go/tilegen/engine/wgpu_engine"
	"honnef.co/go/tilegen/internal/config"
	"honnef.co/go/tilegen/internal/preview"
	"honnef.co/go/tilegen/primitive"
	"honnef.co/go/tilegen/profiler"
	"honnef.co/go/tilegen/renderer"
	"honnef.co/go/tilegen/scene"
)

type generateFlags struct {
	config      string
	steps       int
	preview     string
	metricsAddr string
	interval    time.Duration
	profile     bool
	gpu         bool
	verbose     bool
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve a grid and report the exported boxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("steps") {
				cfg.Solver.MaxSteps = f.steps
			}
			if cmd.Flags().Changed("interval") {
				cfg.Solver.StepInterval = f.interval
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return generate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), &cfg, &f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "Path to the configuration `file`; defaults are used if empty")
	fl.IntVar(&f.steps, "steps", 0, "Stop after `n` resolved cells, 0 for no limit")
	fl.StringVar(&f.preview, "preview", "", "Write a top-down PNG preview to `file`")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on `addr`")
	fl.DurationVar(&f.interval, "interval", 0, "Pause between steps")
	fl.BoolVar(&f.profile, "profile", false, "Print per-step timings")
	fl.BoolVar(&f.gpu, "gpu", false, "Upload the boxes to a headless WebGPU device")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Be verbose")
	return cmd
}

func generate(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, f *generateFlags) error {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	tilegen.SetLogger(logger)
	defer tilegen.SetLogger(nil)

	ts := cfg.BuildTiles()
	seed, ok := ts.Lookup(cfg.Seed.Tile)
	if !ok {
		return fmt.Errorf("seed tile %q not found", cfg.Seed.Tile)
	}

	sc := scene.New(cfg.Grid.X, cfg.Grid.Y, cfg.Grid.Z,
		scene.WithChooser(scene.NewChooser(cfg.Solver.RandSeed)),
		scene.WithExport(cfg.Style(ts)),
		scene.WithLogger(logger),
	)
	for _, p := range ts.Prototypes {
		sc.InsertBlockCase(p)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	opts := []tilegen.GeneratorOption{
		tilegen.WithChooser(scene.NewChooser(cfg.Solver.RandSeed + 1)),
		tilegen.WithMetrics(tilegen.NewMetrics(reg)),
	}
	prof := profiler.NewNop()
	if f.profile {
		prof = profiler.New()
	}
	opts = append(opts, tilegen.WithProfiler(prof))

	if f.metricsAddr != "" {
		shutdown, err := serveMetrics(f.metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	g := tilegen.New(sc, opts...)
	var (
		rec   renderer.Recording
		boxes []primitive.AABB
	)
	seedBoxes := g.Seed(seed, cfg.Seed.Coord)
	boxes = append(boxes, seedBoxes...)
	g.Record(&rec, seedBoxes)

	var tick <-chan time.Time
	if cfg.Solver.StepInterval > 0 {
		t := time.NewTicker(cfg.Solver.StepInterval)
		defer t.Stop()
		tick = t.C
	}
	n, err := g.Run(ctx, cfg.Solver.MaxSteps, func(res tilegen.StepResult) error {
		boxes = append(boxes, res.Boxes...)
		g.Record(&rec, res.Boxes)
		if tick == nil {
			return nil
		}
		select {
		case <-tick:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	st := g.Stats()
	var uploaded int
	for _, c := range rec.Commands {
		if up, ok := c.(*renderer.Upload); ok {
			uploaded += len(up.Data)
		}
	}
	fmt.Fprintf(stdout, "run %s\n", g.RunID())
	fmt.Fprintf(stdout, "steps: %d\nknown: %d\nband: %d (stuck %d)\nfar: %d\n", n, st.Known, st.Band, st.Stuck, st.Far)
	fmt.Fprintf(stdout, "candidates: mean %.2f, stddev %.2f\n", st.MeanCandidates, st.StdDevCandidates)
	fmt.Fprintf(stdout, "boxes: %d (%d bytes in %d uploads)\n", len(boxes), uploaded, len(rec.Commands))

	if f.gpu {
		if err := uploadToGPU(stdout, &rec, prof, g.Steps(), logger); err != nil {
			return err
		}
	}
	if f.profile {
		if err := profiler.Print(stdout, prof.Collect()); err != nil {
			return err
		}
	}
	if f.preview != "" {
		if err := preview.WriteFile(f.preview, boxes, preview.DefaultOptions()); err != nil {
			return err
		}
		logger.Info("wrote preview", "path", f.preview)
	}
	return nil
}

// uploadToGPU runs rec on a fresh headless device and reports what stays
// resident.
func uploadToGPU(w io.Writer, rec *renderer.Recording, prof *profiler.Profiler, tag uint64, logger *slog.Logger) error {
	eng, queue, err := wgpu_engine.NewHeadless(logger)
	if err != nil {
		return fmt.Errorf("gpu: %w", err)
	}
	defer eng.Release()

	pg := prof.Start(tag)
	eng.RunRecording(queue, rec, "tilegen boxes", pg)
	pg.End()
	fmt.Fprintf(w, "gpu: %d live buffers, %d bytes\n", eng.LiveBuffers(), eng.LiveBytes())
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
