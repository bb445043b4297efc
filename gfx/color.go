// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package gfx converts colors into the packed forms the export boxes carry.
package gfx

import (
	"math"

	"honnef.co/go/color"
)

// PackRGBA8 converts c to sRGB and packs it as 0xRRGGBBAA, with every channel
// clamped to [0, 1] first. Alpha is not premultiplied.
func PackRGBA8(c *color.Color) uint32 {
	cc := c.Convert(color.SRGB)
	r := unorm8(cc.Values[0])
	g := unorm8(cc.Values[1])
	b := unorm8(cc.Values[2])
	a := unorm8(cc.Alpha)
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
}

// RGBA8 packs sRGB components given in [0, 1].
func RGBA8(r, g, b, a float64) uint32 {
	c := color.Make(color.SRGB, r, g, b, a)
	return PackRGBA8(&c)
}

func UnpackRGBA8(v uint32) [4]uint8 {
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Bits reinterprets a packed color as the float32 with the same bit pattern,
// which is how colors travel in the w channel of GPU-side vectors.
func Bits(rgba uint32) float32 {
	return math.Float32frombits(rgba)
}

func FromBits(f float32) uint32 {
	return math.Float32bits(f)
}

func unorm8(v float64) uint8 {
	v = min(max(v, 0), 1)
	return uint8(math.Round(v * 255))
}
