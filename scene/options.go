// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package scene

import (
	"log/slog"
	"math/rand/v2"

	"honnef.co/go/tilegen/primitive"
)

// Chooser draws the uniform random numbers used to pick among candidates.
// *rand.Rand satisfies it.
type Chooser interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(n int) int

func (fn ChooserFunc) IntN(n int) int { return fn(n) }

// First always picks the first choice. Runs using it are fully deterministic.
var First Chooser = ChooserFunc(func(int) int { return 0 })

// NewChooser returns a PCG-backed chooser. Equal seeds produce equal
// sequences.
func NewChooser(seed uint64) Chooser {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type Option func(*Scene)

// WithChooser sets the source used to pick a prototype among a cell's
// candidates. A Generator driving the scene draws from its own chooser to
// pick among tied cells; a run is only reproducible if both are seeded.
func WithChooser(c Chooser) Option {
	return func(s *Scene) { s.chooser = c }
}

func WithExport(style primitive.Style) Option {
	return func(s *Scene) { s.style = style }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scene) { s.logger = l }
}
