// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"honnef.co/go/tilegen/internal/config"
	"honnef.co/go/tilegen/jmath"
	"honnef.co/go/tilegen/tile"
)

func newTilesCmd() *cobra.Command {
	var (
		path    string
		rotated bool
	)
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "List the configured tiles and how they connect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			return printTiles(cmd.OutOrStdout(), &cfg, rotated)
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "Path to the configuration `file`; defaults are used if empty")
	cmd.Flags().BoolVar(&rotated, "rotated", false, "Also list neighbors for every rotation a tile may be placed in")
	return cmd
}

func printTiles(w io.Writer, cfg *config.Config, rotated bool) error {
	ts := cfg.BuildTiles()
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOINTS\tx+\tx-\ty+\ty-\tz+\tz-")
	for i, p := range ts.Prototypes {
		fmt.Fprintf(tw, "%d\t%s\t%d", p.ID, ts.Names[i], len(p.ConnectionPoints))
		for _, d := range tile.Directions {
			fmt.Fprintf(tw, "\t%d", len(p.Face(d)))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Base tiles against each other, one bit per rotation of the neighbor.
	rules := make([]*tile.Rules, len(cfg.Tiles))
	for i, t := range cfg.Tiles {
		points := t.Points
		if t.Shape != "" {
			points = tile.Shapes[t.Shape]()
		}
		mask := jmath.Identity.Bit()
		for _, r := range t.Rotations {
			op, _ := jmath.ParseOp(r)
			mask |= op.Bit()
		}
		rules[i] = tile.NewRules(tile.New(uint32(i), cfg.Grid.TileDimension, points, nil), mask)
	}
	for _, r := range rules {
		for _, other := range rules {
			r.AddRules(other)
		}
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TILE\tAS\tNEIGHBOR\tROTATIONS\tx+\tx-\ty+\ty-\tz+\tz-")
	for i, r := range rules {
		placements := []jmath.Op{jmath.Identity}
		if rotated {
			placements = r.Rotations.Ops()
		}
		for _, op := range placements {
			neighbors := r.PossibleNeighbors(op.Bit())
			for _, id := range slices.Sorted(maps.Keys(neighbors)) {
				c := neighbors[id]
				if !c.Any() {
					continue
				}
				other := rules[id]
				n := other.Rotations.Count()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s", cfg.Tiles[i].Name, op, cfg.Tiles[id].Name, opNames(other.Rotations))
				for _, d := range tile.Directions {
					fmt.Fprintf(tw, "\t%0*b", n, c[d])
				}
				fmt.Fprintln(tw)
			}
		}
	}
	return tw.Flush()
}

func opNames(m jmath.Mask) string {
	var names []string
	for _, op := range m.Ops() {
		names = append(names, op.String())
	}
	return strings.Join(names, ",")
}

func newShapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the built-in shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range tile.ShapeNames() {
				p := tile.New(0, tile.ShapeDimension, tile.Shapes[name](), nil)
				fmt.Fprintf(w, "%-14s %3d points\n", name, len(p.ConnectionPoints))
			}
			return nil
		},
	}
}
