// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/tilegen/jmath"
	"honnef.co/go/tilegen/primitive"
)

const sample = `
grid:
  x: 3
  y: 1
  z: 1
seed:
  tile: right
  coord: [0, 0, 0]
solver:
  rand_seed: 7
  max_steps: 10
  step_interval: 16ms
export:
  scale: 1
  color: [1, 0, 0]
tiles:
  - name: right
    points: [[2, 0, 0]]
    color: [0, 1, 0, 0.5]
  - name: left
    points: [[-2, 0, 0]]
  - name: floor
    shape: floor
    rotations: [identity, rot90y, rot90y, rot180y]
`

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	ts := cfg.BuildTiles()
	// Ten shapes in four orientations each.
	assert.Len(t, ts.Prototypes, 40)
	_, ok := ts.Lookup("stair/rot270y")
	assert.True(t, ok)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, GridConfig{X: 3, Y: 1, Z: 1, TileDimension: 5}, cfg.Grid)
	assert.Equal(t, SolverConfig{RandSeed: 7, MaxSteps: 10, StepInterval: 16 * time.Millisecond}, cfg.Solver)
	require.Len(t, cfg.Tiles, 3)
	assert.Equal(t, []jmath.Vec3{{2, 0, 0}}, cfg.Tiles[0].Points)

	ts := cfg.BuildTiles()
	want := []string{"right", "left", "floor", "floor/rot90y", "floor/rot180y"}
	if diff := cmp.Diff(want, ts.Names); diff != "" {
		t.Errorf("tile names mismatch (-want +got):\n%s", diff)
	}
	for i, p := range ts.Prototypes {
		assert.Equal(t, uint32(i), p.ID)
		id, ok := ts.Lookup(ts.Names[i])
		require.True(t, ok)
		assert.Equal(t, uint32(i), id)
	}
	// The floor slab is symmetric under turns about y.
	assert.Equal(t, ts.Prototypes[2].Identity(), ts.Prototypes[3].Identity())

	style := cfg.Style(ts)
	assert.Equal(t, float32(1), style.Scale)
	assert.Equal(t, uint32(0xFF0000FF), style.DefaultColor)
	assert.Equal(t, map[uint32]uint32{0: 0x00FF0080}, style.Colors)
}

func TestStyleWithoutColors(t *testing.T) {
	cfg := Default()
	style := cfg.Style(cfg.BuildTiles())
	assert.Equal(t, primitive.DefaultStyle(), style)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		errs []string
	}{
		{
			name: "zero grid",
			yaml: "grid: {x: 0}",
			errs: []string{"dimensions must be positive"},
		},
		{
			name: "seed outside grid",
			yaml: "seed: {tile: floor, coord: [8, 0, 0]}",
			errs: []string{"outside grid"},
		},
		{
			name: "unknown seed tile",
			yaml: "seed: {tile: nope}",
			errs: []string{`unknown tile "nope"`},
		},
		{
			name: "several problems",
			yaml: "solver: {max_steps: -1}\nexport: {scale: 0, color: [2, 0, 0]}",
			errs: []string{"max_steps", "scale must be positive", "outside [0, 1]"},
		},
		{
			name: "bad tiles",
			yaml: `
seed: {tile: a}
tiles:
  - name: a
    shape: floor
    points: [[0, 0, 0]]
  - name: b
    shape: nope
  - name: c
    rotations: [mirrorx]
  - name: d
    rotations: [rot45y]
  - name: e
  - name: e
  - shape: floor
`,
			errs: []string{
				"mutually exclusive",
				`unknown shape "nope"`,
				"not a rotation",
				"rot45y",
				`duplicate tile "e"`,
				"name is required",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			for _, want := range tt.errs {
				assert.ErrorContains(t, err, want)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("grid: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "right", cfg.Seed.Tile)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
