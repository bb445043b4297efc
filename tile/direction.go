// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tile

import "fmt"

// Direction names one of the six axis-aligned faces of a cell. The order
// matches both compatibility table slots and grid neighbor slots.
type Direction uint8

const (
	XPos Direction = iota
	XNeg
	YPos
	YNeg
	ZPos
	ZNeg

	NumDirections = 6
)

var Directions = [NumDirections]Direction{XPos, XNeg, YPos, YNeg, ZPos, ZNeg}

var directionNames = [NumDirections]string{"x+", "x-", "y+", "y-", "z+", "z-"}

func (d Direction) String() string {
	if d >= NumDirections {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Opposite returns the face on the other side of the same axis.
func (d Direction) Opposite() Direction { return d ^ 1 }

// Axis returns 0, 1 or 2 for X, Y and Z.
func (d Direction) Axis() int { return int(d) >> 1 }

func (d Direction) Sign() int32 {
	if d&1 == 0 {
		return 1
	}
	return -1
}

// Offset is the grid step towards the neighbor behind this face.
func (d Direction) Offset() [3]int32 {
	var off [3]int32
	off[d.Axis()] = d.Sign()
	return off
}
