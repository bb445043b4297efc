// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package tilegen drives the resolution of a [scene.Scene]: seeding it,
// repeatedly resolving one of the band cells with the fewest candidates and
// collecting the boxes the resolved cells export.
package tilegen

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"honnef.co/go/tilegen/primitive"
	"honnef.co/go/tilegen/profiler"
	"honnef.co/go/tilegen/renderer"
	"honnef.co/go/tilegen/scene"
)

type Generator struct {
	scene    *scene.Scene
	chooser  scene.Chooser
	logger   *slog.Logger
	metrics  *Metrics
	profiler *profiler.Profiler

	runID uuid.UUID
	steps uint64
}

type GeneratorOption func(*Generator)

// WithChooser sets the source used to pick among equally constrained cells.
// The scene picks each cell's prototype from its own chooser (see
// [scene.WithChooser]); a run is only reproducible if both are seeded, e.g.
// with [scene.NewChooser].
func WithChooser(c scene.Chooser) GeneratorOption {
	return func(g *Generator) { g.chooser = c }
}

func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

func WithMetrics(m *Metrics) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

// WithProfiler records a group per step, tagged with the step number.
func WithProfiler(p *profiler.Profiler) GeneratorOption {
	return func(g *Generator) { g.profiler = p }
}

func New(sc *scene.Scene, opts ...GeneratorOption) *Generator {
	g := &Generator{
		scene: sc,
		runID: uuid.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.chooser == nil {
		g.chooser = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.logger == nil {
		g.logger = Logger()
	}
	g.logger = g.logger.With("run", g.runID.String())
	return g
}

func (g *Generator) RunID() uuid.UUID { return g.runID }

func (g *Generator) Scene() *scene.Scene { return g.scene }

// Steps returns the number of cells resolved by Step so far.
func (g *Generator) Steps() uint64 { return g.steps }

// Seed resolves the cell at coord to prototype id and pulls its neighbors
// into the band. It returns the seed's boxes.
func (g *Generator) Seed(id uint32, coord [3]uint32) []primitive.AABB {
	g.scene.AddSeedPoint(id, coord)
	g.scene.ExpandBandCoord(coord)
	if g.metrics != nil {
		g.metrics.CellsKnown.Inc()
	}
	g.updateGauges()
	g.logger.Info("seeded generator", "prototype", id, "coord", coord, "band", g.scene.BandLen())
	return g.scene.AABBData()
}

type StepResult struct {
	Index     uint32
	Coord     [3]uint32
	Prototype uint32
	// Ties is the number of cells that were equally good choices.
	Ties  int
	Boxes []primitive.AABB
}

// Step resolves one band cell. It reports false once the band is empty or
// only holds cells without candidates.
func (g *Generator) Step() (StepResult, bool) {
	pg := g.profiler.Start(g.steps)
	defer pg.End()
	start := time.Now()

	sel := pg.Nest("select")
	next, ok := g.scene.FindNextKnownCandidates()
	sel.End()
	if !ok || len(next) == 0 {
		return StepResult{}, false
	}

	index := next[g.chooser.IntN(len(next))]
	res := pg.Nest("resolve")
	proto := g.scene.MakeKnown(index)
	res.End()

	g.steps++
	if g.metrics != nil {
		g.metrics.Steps.Inc()
		g.metrics.CellsKnown.Inc()
		g.metrics.StepDuration.Observe(time.Since(start).Seconds())
	}
	g.updateGauges()

	return StepResult{
		Index:     index,
		Coord:     g.scene.Coord(index),
		Prototype: proto,
		Ties:      len(next),
		Boxes:     g.scene.AABBData(),
	}, true
}

// Run calls Step until it reports false, maxSteps steps have been taken or ctx
// is done. A maxSteps of zero or less means no limit. If fn is not nil it is
// called after every step and may end the run by returning an error. Run
// returns the number of steps taken.
func (g *Generator) Run(ctx context.Context, maxSteps int, fn func(StepResult) error) (int, error) {
	n := 0
	for maxSteps <= 0 || n < maxSteps {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		res, ok := g.Step()
		if !ok {
			break
		}
		n++
		if fn != nil {
			if err := fn(res); err != nil {
				return n, fmt.Errorf("step %d: %w", g.steps, err)
			}
		}
	}

	st := g.Stats()
	g.logger.Info("generation finished", "steps", n, "known", st.Known, "band", st.Band, "far", st.Far)
	if st.Stuck > 0 {
		g.logger.Warn("cells left without candidates", "stuck", st.Stuck)
	}
	return n, nil
}

// Record appends an upload of boxes to rec, named after the current step.
func (g *Generator) Record(rec *renderer.Recording, boxes []primitive.AABB) renderer.BufferProxy {
	return rec.UploadAABBs(fmt.Sprintf("tilegen boxes %d", g.steps), boxes)
}

type Stats struct {
	Steps uint64
	Known int
	Band  int
	Stuck int
	Far   int
	// Mean and standard deviation of the band's candidate counts.
	MeanCandidates   float64
	StdDevCandidates float64
}

func (g *Generator) Stats() Stats {
	entries := g.scene.BandEntries()
	st := Stats{
		Steps: g.steps,
		Known: g.scene.KnownCount(),
		Band:  len(entries),
	}
	st.Far = g.scene.NumCells() - st.Known - st.Band

	counts := make([]float64, len(entries))
	for i, e := range entries {
		counts[i] = float64(e.Count)
		if e.Count == 0 {
			st.Stuck++
		}
	}
	switch len(counts) {
	case 0:
	case 1:
		st.MeanCandidates = counts[0]
	default:
		st.MeanCandidates, st.StdDevCandidates = stat.MeanStdDev(counts, nil)
	}
	if math.IsNaN(st.StdDevCandidates) {
		st.StdDevCandidates = 0
	}
	return st
}

func (g *Generator) updateGauges() {
	if g.metrics == nil {
		return
	}
	g.metrics.BandSize.Set(float64(g.scene.BandLen()))
	g.metrics.BandStuck.Set(float64(len(g.scene.Stuck())))
}
