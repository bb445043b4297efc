// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tile

import (
	"slices"

	"honnef.co/go/tilegen/jmath"
)

// ShapeDimension is the footprint every built-in shape is authored for. Faces
// lie at ±2.
const ShapeDimension = 5

// Shapes holds the built-in connection point sets, keyed by name.
var Shapes = map[string]func() []jmath.Vec3{
	"empty":         Empty,
	"floor":         Floor,
	"floor_corner":  FloorCorner,
	"floor_corner2": FloorCorner2,
	"floor_corner3": FloorCorner3,
	"wall":          Wall,
	"wall_back":     WallBack,
	"pillar":        Pillar,
	"pillar2":       Pillar2,
	"stair":         Stair,
}

func ShapeNames() []string {
	names := make([]string, 0, len(Shapes))
	for name := range Shapes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// shapeBuilder accumulates unique points in insertion order.
type shapeBuilder struct {
	seen   map[jmath.Vec3]struct{}
	points []jmath.Vec3
}

func (b *shapeBuilder) add(x, y, z int) {
	p := jmath.Vec3{float32(x), float32(y), float32(z)}
	if b.seen == nil {
		b.seen = make(map[jmath.Vec3]struct{})
	}
	if _, ok := b.seen[p]; ok {
		return
	}
	b.seen[p] = struct{}{}
	b.points = append(b.points, p)
}

// plane adds every point with the fixed coordinate on axis set to at, the
// other two ranging over [lo0, hi0] and [lo1, hi1].
func (b *shapeBuilder) plane(axis, at, lo0, hi0, lo1, hi1 int) {
	for u := lo0; u <= hi0; u++ {
		for v := lo1; v <= hi1; v++ {
			switch axis {
			case 0:
				b.add(at, u, v)
			case 1:
				b.add(u, at, v)
			case 2:
				b.add(u, v, at)
			}
		}
	}
}

// column adds a vertical run of points at (x, y, z) for y in [lo, hi].
func (b *shapeBuilder) column(x, z, lo, hi int) {
	for y := lo; y <= hi; y++ {
		b.add(x, y, z)
	}
}

func Empty() []jmath.Vec3 { return nil }

// Floor is a full slab on the y- face.
func Floor() []jmath.Vec3 {
	var b shapeBuilder
	b.plane(1, -2, -2, 2, -2, 2)
	return b.points
}

func FloorCorner() []jmath.Vec3 {
	var b shapeBuilder
	b.plane(1, -2, -2, 2, -2, 2)
	b.column(2, -2, -1, 2)
	return b.points
}

func FloorCorner2() []jmath.Vec3 {
	var b shapeBuilder
	b.plane(1, -2, -2, 2, -2, 2)
	b.column(2, -2, -1, 2)
	b.column(-2, -2, -1, 2)
	return b.points
}

func FloorCorner3() []jmath.Vec3 {
	var b shapeBuilder
	b.plane(1, -2, -2, 2, -2, 2)
	b.column(2, -2, -1, 2)
	b.column(-2, -2, -1, 2)
	b.column(-2, 2, -1, 2)
	return b.points
}

// Wall is a full slab on the x+ face.
func Wall() []jmath.Vec3 {
	var b shapeBuilder
	b.plane(0, 2, -2, 2, -2, 2)
	return b.points
}

// WallBack is a wall plus a partial slab on the z- face.
func WallBack() []jmath.Vec3 {
	var b shapeBuilder
	b.plane(0, 2, -2, 1, -2, 1)
	b.plane(2, -2, -2, 1, -2, 1)
	b.plane(0, 2, -2, 2, -2, 2)
	return b.points
}

// Pillar is a single vertical edge.
func Pillar() []jmath.Vec3 {
	var b shapeBuilder
	b.column(2, -2, -2, 2)
	return b.points
}

func Pillar2() []jmath.Vec3 {
	var b shapeBuilder
	b.column(2, -2, -2, 2)
	b.column(-2, -2, -2, 2)
	return b.points
}

// Stair is a floor missing its x+ row joined to a full x+ wall.
func Stair() []jmath.Vec3 {
	var b shapeBuilder
	b.plane(1, -2, -2, 1, -2, 2)
	b.plane(0, 2, -2, 2, -2, 2)
	return b.points
}
