// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package primitive builds the axis-aligned boxes that resolved cells are
// exported as.
package primitive

import (
	"fmt"
	"structs"

	"honnef.co/go/tilegen/gfx"
	"honnef.co/go/tilegen/jmath"
)

// AABB matches the layout the box renderer reads from its storage buffer: two
// vec4<f32>, with the packed RGBA8 color stored as float bits in both w
// channels.
type AABB struct {
	_ structs.HostLayout

	Min [4]float32
	Max [4]float32
}

func NewAABB(lo, hi jmath.Vec3, rgba uint32) AABB {
	c := gfx.Bits(rgba)
	return AABB{
		Min: [4]float32{lo[0], lo[1], lo[2], c},
		Max: [4]float32{hi[0], hi[1], hi[2], c},
	}
}

func (b AABB) Lo() jmath.Vec3 { return jmath.Vec3{b.Min[0], b.Min[1], b.Min[2]} }
func (b AABB) Hi() jmath.Vec3 { return jmath.Vec3{b.Max[0], b.Max[1], b.Max[2]} }

func (b AABB) Color() uint32 { return gfx.FromBits(b.Min[3]) }

func (b AABB) String() string {
	return fmt.Sprintf("[%v %v #%08x]", b.Lo(), b.Hi(), b.Color())
}

const DefaultColor = 0x0F00FFFF

// Style controls how resolved cells turn into boxes.
type Style struct {
	// Scale is applied once to place the cell and once more to the whole box.
	Scale        float32
	DefaultColor uint32
	// Colors overrides DefaultColor per prototype id.
	Colors map[uint32]uint32
}

func DefaultStyle() Style {
	return Style{
		Scale:        0.8,
		DefaultColor: DefaultColor,
	}
}

func (s Style) ColorOf(protoID uint32) uint32 {
	if c, ok := s.Colors[protoID]; ok {
		return c
	}
	return s.DefaultColor
}

// CellBoxes emits one unit box per connection point of a prototype placed at
// coord. The cell origin is coord * Scale * dimension; each point p spans
// [(origin+p) * Scale, (origin+p+1) * Scale].
func (s Style) CellBoxes(protoID, dimension uint32, coord [3]uint32, points []jmath.Vec3) []AABB {
	if len(points) == 0 {
		return nil
	}
	f := s.Scale * float32(dimension)
	base := jmath.Vec3{float32(coord[0]) * f, float32(coord[1]) * f, float32(coord[2]) * f}
	rgba := s.ColorOf(protoID)
	out := make([]AABB, len(points))
	for i, p := range points {
		o := base.Add(p)
		out[i] = NewAABB(
			o.Scale(s.Scale),
			o.Add(jmath.Vec3{1, 1, 1}).Scale(s.Scale),
			rgba,
		)
	}
	return out
}
