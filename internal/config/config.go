// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package config loads the YAML configuration of the tilegen command.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"honnef.co/go/tilegen/gfx"
	"honnef.co/go/tilegen/jmath"
	"honnef.co/go/tilegen/primitive"
	"honnef.co/go/tilegen/tile"
)

type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Seed   SeedConfig   `yaml:"seed"`
	Solver SolverConfig `yaml:"solver"`
	Export ExportConfig `yaml:"export"`
	Tiles  []TileConfig `yaml:"tiles"`
}

type GridConfig struct {
	X uint32 `yaml:"x"`
	Y uint32 `yaml:"y"`
	Z uint32 `yaml:"z"`
	// TileDimension is the footprint shared by all tiles.
	TileDimension uint32 `yaml:"tile_dimension"`
}

type SeedConfig struct {
	// Tile names a materialized tile, e.g. "floor" or "floor/rot90y".
	Tile  string    `yaml:"tile"`
	Coord [3]uint32 `yaml:"coord"`
}

type SolverConfig struct {
	RandSeed uint64 `yaml:"rand_seed"`
	// MaxSteps limits the number of resolved cells. Zero means no limit.
	MaxSteps int `yaml:"max_steps"`
	// StepInterval paces steps, e.g. "16ms" for one step per frame.
	StepInterval time.Duration `yaml:"step_interval"`
}

type ExportConfig struct {
	Scale float32 `yaml:"scale"`
	// Color is an sRGB color as [r, g, b] or [r, g, b, a] in [0, 1].
	Color []float64 `yaml:"color"`
}

type TileConfig struct {
	Name string `yaml:"name"`
	// Shape names a built-in shape. It is mutually exclusive with Points.
	Shape  string       `yaml:"shape"`
	Points []jmath.Vec3 `yaml:"points"`
	// Rotations lists operation names such as "rot90y". Every entry adds an
	// independent tile named "<name>/<op>". The unrotated tile is always
	// included.
	Rotations []string  `yaml:"rotations"`
	Color     []float64 `yaml:"color"`
}

var yRotations = []string{"rot90y", "rot180y", "rot270y"}

func Default() Config {
	tiles := make([]TileConfig, 0, len(tile.Shapes))
	for _, name := range tile.ShapeNames() {
		tiles = append(tiles, TileConfig{
			Name:      name,
			Shape:     name,
			Rotations: yRotations,
		})
	}
	return Config{
		Grid: GridConfig{
			X:             8,
			Y:             4,
			Z:             8,
			TileDimension: tile.ShapeDimension,
		},
		Seed: SeedConfig{
			Tile: "floor",
		},
		Solver: SolverConfig{
			RandSeed: 1,
		},
		Export: ExportConfig{
			Scale: primitive.DefaultStyle().Scale,
		},
		Tiles: tiles,
	}
}

// Load reads the file at path over the defaults and validates the result. An
// empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. A tiles list
// in data replaces the default tiles entirely.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Grid.X == 0 || c.Grid.Y == 0 || c.Grid.Z == 0 {
		errs = append(errs, fmt.Errorf("grid: dimensions must be positive, got %dx%dx%d", c.Grid.X, c.Grid.Y, c.Grid.Z))
	}
	if c.Grid.TileDimension == 0 {
		errs = append(errs, errors.New("grid: tile_dimension must be positive"))
	}
	for i, v := range c.Seed.Coord {
		dim := [3]uint32{c.Grid.X, c.Grid.Y, c.Grid.Z}[i]
		if dim != 0 && v >= dim {
			errs = append(errs, fmt.Errorf("seed: coordinate %v outside grid", c.Seed.Coord))
			break
		}
	}
	if c.Solver.MaxSteps < 0 {
		errs = append(errs, errors.New("solver: max_steps must not be negative"))
	}
	if c.Solver.StepInterval < 0 {
		errs = append(errs, errors.New("solver: step_interval must not be negative"))
	}
	if c.Export.Scale <= 0 {
		errs = append(errs, errors.New("export: scale must be positive"))
	}
	if err := validateColor(c.Export.Color); err != nil {
		errs = append(errs, fmt.Errorf("export: %w", err))
	}

	if len(c.Tiles) == 0 {
		errs = append(errs, errors.New("tiles: at least one tile is required"))
	}
	seen := make(map[string]bool)
	for i, t := range c.Tiles {
		if err := t.validate(); err != nil {
			errs = append(errs, fmt.Errorf("tiles[%d]: %w", i, err))
			continue
		}
		for _, name := range t.names() {
			if seen[name] {
				errs = append(errs, fmt.Errorf("tiles[%d]: duplicate tile %q", i, name))
			}
			seen[name] = true
		}
	}
	if c.Seed.Tile == "" {
		errs = append(errs, errors.New("seed: tile is required"))
	} else if len(seen) > 0 && !seen[c.Seed.Tile] {
		errs = append(errs, fmt.Errorf("seed: unknown tile %q", c.Seed.Tile))
	}
	return errors.Join(errs...)
}

func (t *TileConfig) validate() error {
	if t.Name == "" {
		return errors.New("name is required")
	}
	switch {
	case t.Shape != "" && t.Points != nil:
		return fmt.Errorf("%s: shape and points are mutually exclusive", t.Name)
	case t.Shape != "":
		if _, ok := tile.Shapes[t.Shape]; !ok {
			return fmt.Errorf("%s: unknown shape %q", t.Name, t.Shape)
		}
	}
	for _, r := range t.Rotations {
		op, err := jmath.ParseOp(r)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		if op > jmath.Rot270Z {
			return fmt.Errorf("%s: %s is a mirror, not a rotation", t.Name, op)
		}
	}
	if err := validateColor(t.Color); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	return nil
}

// names returns the names of all tiles t materializes, in id order.
func (t *TileConfig) names() []string {
	out := []string{t.Name}
	for _, r := range t.Rotations {
		op, _ := jmath.ParseOp(r)
		if op == jmath.Identity {
			continue
		}
		name := t.Name + "/" + op.String()
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func validateColor(c []float64) error {
	if c == nil {
		return nil
	}
	if len(c) != 3 && len(c) != 4 {
		return fmt.Errorf("color needs 3 or 4 components, got %d", len(c))
	}
	for _, v := range c {
		if v < 0 || v > 1 {
			return fmt.Errorf("color component %v outside [0, 1]", v)
		}
	}
	return nil
}

func packColor(c []float64) uint32 {
	a := 1.0
	if len(c) == 4 {
		a = c[3]
	}
	return gfx.RGBA8(c[0], c[1], c[2], a)
}

// TileSet is the list of prototypes a configuration materializes.
type TileSet struct {
	Prototypes []*tile.Prototype
	Names      []string
	// Colors holds per-prototype colors for tiles that set one.
	Colors map[uint32]uint32

	ids map[string]uint32
}

func (ts *TileSet) Lookup(name string) (uint32, bool) {
	id, ok := ts.ids[name]
	return id, ok
}

// BuildTiles materializes every configured tile and its rotations as
// independent prototypes with dense ids. The configuration must be valid.
func (c *Config) BuildTiles() *TileSet {
	ts := &TileSet{
		Colors: make(map[uint32]uint32),
		ids:    make(map[string]uint32),
	}
	add := func(name string, p *tile.Prototype, color []float64) {
		ts.ids[name] = p.ID
		ts.Names = append(ts.Names, name)
		ts.Prototypes = append(ts.Prototypes, p)
		if color != nil {
			ts.Colors[p.ID] = packColor(color)
		}
	}
	for _, t := range c.Tiles {
		points := t.Points
		if t.Shape != "" {
			points = tile.Shapes[t.Shape]()
		}
		base := tile.New(uint32(len(ts.Prototypes)), c.Grid.TileDimension, points, nil)
		names := t.names()
		add(names[0], base, t.Color)
		for _, name := range names[1:] {
			op, _ := jmath.ParseOp(name[len(t.Name)+1:])
			add(name, base.CreateRotation(op.Bit(), uint32(len(ts.Prototypes))), t.Color)
		}
	}
	return ts
}

// Style returns the export style for a tile set built from c.
func (c *Config) Style(ts *TileSet) primitive.Style {
	s := primitive.DefaultStyle()
	s.Scale = c.Export.Scale
	if c.Export.Color != nil {
		s.DefaultColor = packColor(c.Export.Color)
	}
	if len(ts.Colors) > 0 {
		s.Colors = ts.Colors
	}
	return s
}
