// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tile

import (
	"fmt"
	"maps"

	"honnef.co/go/tilegen/jmath"
)

// Compatibility holds one rotation bitmask per direction. Bit r of slot d is
// set when the r-th enabled rotation of the neighbor fits on the d side.
type Compatibility [NumDirections]uint32

func (c Compatibility) Allows(d Direction, rotation int) bool {
	return c[d]&(1<<rotation) != 0
}

// Any reports whether at least one rotation fits in any direction.
func (c Compatibility) Any() bool {
	for _, m := range c {
		if m != 0 {
			return true
		}
	}
	return false
}

// CheckConnections compares the raw connection points of a tile with every
// rotation of a neighbor enabled in neighborMask. Unlike Prototype.Matches it
// works on plain point sets so it can be used for ad hoc comparisons.
func CheckConnections(self, neighbor []jmath.Vec3, neighborMask jmath.Mask, halfExtent int32) Compatibility {
	var own [NumDirections]Signature
	for _, d := range Directions {
		own[d] = faceSignature(self, d, halfExtent, false)
	}

	var out Compatibility
	for r, rotated := range jmath.Enumerate(neighborMask, neighbor) {
		for _, d := range Directions {
			if faceSignature(rotated, d.Opposite(), halfExtent, true).Equal(own[d]) {
				out[d] |= 1 << r
			}
		}
	}
	return out
}

// Rules tracks which neighbors, in which rotations, a base tile accepts.
type Rules struct {
	Prototype *Prototype
	// Rotations lists the orientations this tile may be placed in. Only the
	// identity and the nine axis rotations are allowed.
	Rotations jmath.Mask

	neighbors map[uint32]Compatibility
}

func NewRules(p *Prototype, rotations jmath.Mask) *Rules {
	if rotations&^jmath.AllRotations != 0 {
		panic(fmt.Sprintf("tile: rotation mask %v contains mirror operations", rotations))
	}
	return &Rules{
		Prototype: p,
		Rotations: rotations,
		neighbors: make(map[uint32]Compatibility),
	}
}

// AddRules records how other, in each of its legal rotations, fits around r.
func (r *Rules) AddRules(other *Rules) {
	if r.Prototype.Dimension != other.Prototype.Dimension {
		panic(fmt.Sprintf("tile: mixing dimensions %d and %d", r.Prototype.Dimension, other.Prototype.Dimension))
	}
	r.neighbors[other.Prototype.ID] = CheckConnections(
		r.Prototype.ConnectionPoints,
		other.Prototype.ConnectionPoints,
		other.Rotations,
		r.Prototype.HalfExtent(),
	)
}

func (r *Rules) Neighbors() map[uint32]Compatibility {
	return maps.Clone(r.neighbors)
}

// rotationPermutations maps, for the identity and each axis rotation, which
// unrotated direction slot ends up in each output slot.
var rotationPermutations = [jmath.Rot270Z + 1][NumDirections]Direction{
	jmath.Identity: {XPos, XNeg, YPos, YNeg, ZPos, ZNeg},
	jmath.Rot90X:   {XPos, XNeg, ZNeg, ZPos, YPos, YNeg},
	jmath.Rot180X:  {XPos, XNeg, YNeg, YPos, ZNeg, ZPos},
	jmath.Rot270X:  {XPos, XNeg, ZPos, ZNeg, YNeg, YPos},
	jmath.Rot90Y:   {ZPos, ZNeg, YPos, YNeg, XNeg, XPos},
	jmath.Rot180Y:  {XNeg, XPos, YPos, YNeg, ZNeg, ZPos},
	jmath.Rot270Y:  {ZNeg, ZPos, YPos, YNeg, XPos, XNeg},
	jmath.Rot90Z:   {YNeg, YPos, XPos, XNeg, ZPos, ZNeg},
	jmath.Rot180Z:  {XNeg, XPos, YNeg, YPos, ZPos, ZNeg},
	jmath.Rot270Z:  {YPos, YNeg, XNeg, XPos, ZPos, ZNeg},
}

// PossibleNeighbors returns the neighbor table as seen by r placed in the
// given rotation. The lowest enabled rotation bit decides; mirrors are not
// supported.
func (r *Rules) PossibleNeighbors(rotation jmath.Mask) map[uint32]Compatibility {
	perm, ok := permutationFor(rotation)
	if !ok {
		panic(fmt.Sprintf("tile: rotation %v not supported", rotation))
	}
	out := make(map[uint32]Compatibility, len(r.neighbors))
	for id, c := range r.neighbors {
		var pc Compatibility
		for slot, from := range perm {
			pc[slot] = c[from]
		}
		out[id] = pc
	}
	return out
}

func permutationFor(rotation jmath.Mask) ([NumDirections]Direction, bool) {
	for op := jmath.Identity; op <= jmath.Rot270Z; op++ {
		if rotation.Has(op) {
			return rotationPermutations[op], true
		}
	}
	return [NumDirections]Direction{}, false
}

// AllRotations returns the connection points under every one of the 13
// operations, in operation order.
func (r *Rules) AllRotations() [][]jmath.Vec3 {
	return jmath.Enumerate(jmath.AllOps, r.Prototype.ConnectionPoints)
}
