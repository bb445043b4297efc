// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package jmath contains the small amount of vector math tilegen needs: point
// types, the half-integer snapping rule and the 13 symmetry operations used to
// orient tiles.
package jmath

import (
	"cmp"
	"math"
)

type Vec3 [3]float32

type Vec4 [4]float32

// IVec3 is an integer grid point. Face signatures are compared as IVec3 so
// that float noise can't affect equality.
type IVec3 [3]int32

// RoundHalfUp snaps v onto the half-integer grid tiles are authored on. It
// computes ceil(floor(2v) / 2).
func RoundHalfUp(v float32) float32 {
	return float32(math.Ceil(math.Floor(2*float64(v)) * 0.5))
}

func (v Vec3) Vec4(w float32) Vec4 { return Vec4{v[0], v[1], v[2], w} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// Int truncates every coordinate towards zero.
func (v Vec3) Int() IVec3 {
	return IVec3{int32(v[0]), int32(v[1]), int32(v[2])}
}

func (v Vec4) XYZ() Vec3 { return Vec3{v[0], v[1], v[2]} }

// Compare orders points lexicographically on (x, y, z).
func (p IVec3) Compare(o IVec3) int {
	if c := cmp.Compare(p[0], o[0]); c != 0 {
		return c
	}
	if c := cmp.Compare(p[1], o[1]); c != 0 {
		return c
	}
	return cmp.Compare(p[2], o[2])
}

func AlignUp64(len uint64, alignment uint64) uint64 {
	return (len + alignment - 1) & -alignment
}
