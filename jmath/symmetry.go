// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package jmath

import (
	"fmt"
	"math/bits"
	"strings"
)

// Op is one of the 13 symmetry operations. The numeric value of an Op is its
// bit position in a Mask; the order is fixed and starts with Identity.
type Op uint8

const (
	Identity Op = iota
	Rot90X
	Rot180X
	Rot270X
	Rot90Y
	Rot180Y
	Rot270Y
	Rot90Z
	Rot180Z
	Rot270Z
	MirrorX
	MirrorY
	MirrorZ

	NumOps = 13
)

var opNames = [NumOps]string{
	Identity: "identity",
	Rot90X:   "rot90x",
	Rot180X:  "rot180x",
	Rot270X:  "rot270x",
	Rot90Y:   "rot90y",
	Rot180Y:  "rot180y",
	Rot270Y:  "rot270y",
	Rot90Z:   "rot90z",
	Rot180Z:  "rot180z",
	Rot270Z:  "rot270z",
	MirrorX:  "mirrorx",
	MirrorY:  "mirrory",
	MirrorZ:  "mirrorz",
}

// opTable holds the linear part of every operation. The fourth channel is
// passed through.
var opTable = [NumOps]func(Vec4) Vec4{
	Identity: func(v Vec4) Vec4 { return v },
	Rot90X:   func(v Vec4) Vec4 { return Vec4{v[0], -v[2], v[1], v[3]} },
	Rot180X:  func(v Vec4) Vec4 { return Vec4{v[0], -v[1], -v[2], v[3]} },
	Rot270X:  func(v Vec4) Vec4 { return Vec4{v[0], v[2], -v[1], v[3]} },
	Rot90Y:   func(v Vec4) Vec4 { return Vec4{v[2], v[1], -v[0], v[3]} },
	Rot180Y:  func(v Vec4) Vec4 { return Vec4{-v[0], v[1], -v[2], v[3]} },
	Rot270Y:  func(v Vec4) Vec4 { return Vec4{-v[2], v[1], v[0], v[3]} },
	Rot90Z:   func(v Vec4) Vec4 { return Vec4{-v[1], v[0], v[2], v[3]} },
	Rot180Z:  func(v Vec4) Vec4 { return Vec4{-v[0], -v[1], v[2], v[3]} },
	Rot270Z:  func(v Vec4) Vec4 { return Vec4{v[1], -v[0], v[2], v[3]} },
	MirrorX:  func(v Vec4) Vec4 { return Vec4{-v[0], v[1], v[2], v[3]} },
	MirrorY:  func(v Vec4) Vec4 { return Vec4{v[0], -v[1], v[2], v[3]} },
	MirrorZ:  func(v Vec4) Vec4 { return Vec4{v[0], v[1], -v[2], v[3]} },
}

func (op Op) String() string {
	if int(op) >= NumOps {
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
	return opNames[op]
}

func (op Op) Bit() Mask { return 1 << op }

// Apply4 transforms v. The identity returns v untouched; all other operations
// snap x, y and z with RoundHalfUp. The fourth channel often holds packed bits
// and is passed through.
func (op Op) Apply4(v Vec4) Vec4 {
	if int(op) >= NumOps {
		panic(fmt.Sprintf("invalid symmetry operation %d", uint8(op)))
	}
	if op == Identity {
		return v
	}
	out := opTable[op](v)
	for i := range 3 {
		out[i] = RoundHalfUp(out[i])
	}
	return out
}

func (op Op) Apply(v Vec3) Vec3 {
	return op.Apply4(v.Vec4(0)).XYZ()
}

// ParseOp accepts the names printed by Op.String, case-insensitively.
func ParseOp(name string) (Op, error) {
	for i, n := range opNames {
		if strings.EqualFold(n, name) {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("unknown symmetry operation %q", name)
}

// Mask selects a subset of the 13 operations, bit i enabling Op(i).
type Mask uint32

const (
	// AllRotations enables the identity and the nine axis rotations.
	AllRotations Mask = 1<<(Rot270Z+1) - 1
	AllOps       Mask = 1<<NumOps - 1
)

func MaskOf(ops ...Op) Mask {
	var m Mask
	for _, op := range ops {
		m |= op.Bit()
	}
	return m
}

func (m Mask) Valid() bool { return m&^AllOps == 0 }

func (m Mask) Count() int { return bits.OnesCount32(uint32(m & AllOps)) }

func (m Mask) Has(op Op) bool { return m&op.Bit() != 0 }

// Ops returns the enabled operations in bit order.
func (m Mask) Ops() []Op {
	out := make([]Op, 0, m.Count())
	for op := Op(0); op < NumOps; op++ {
		if m.Has(op) {
			out = append(out, op)
		}
	}
	return out
}

func (m Mask) String() string {
	ops := m.Ops()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Enumerate applies every operation enabled in mask to all of points and
// returns one transformed set per operation, in bit order. An empty mask
// produces an empty result.
func Enumerate(mask Mask, points []Vec3) [][]Vec3 {
	out := make([][]Vec3, 0, mask.Count())
	for _, op := range mask.Ops() {
		set := make([]Vec3, len(points))
		for i, p := range points {
			set[i] = op.Apply(p)
		}
		out = append(out, set)
	}
	return out
}

// Enumerate4 is like Enumerate for points that carry a fourth channel.
func Enumerate4(mask Mask, points []Vec4) [][]Vec4 {
	out := make([][]Vec4, 0, mask.Count())
	for _, op := range mask.Ops() {
		set := make([]Vec4, len(points))
		for i, p := range points {
			set[i] = op.Apply4(p)
		}
		out = append(out, set)
	}
	return out
}
