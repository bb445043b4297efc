// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package scene

import (
	"fmt"
)

// CellState is one of *Far, *Band or *Known. Cells only ever move forward
// through that sequence.
type CellState interface {
	isCellState()
	String() string
}

func (*Far) isCellState()   {}
func (*Band) isCellState()  {}
func (*Known) isCellState() {}

// Far is a cell with no resolved neighbor.
type Far struct{}

// Band is a cell next to at least one resolved cell, still waiting to be
// resolved itself.
type Band struct {
	// Candidates are the prototype ids consistent with every resolved
	// neighbor, in ascending order. It may be empty, in which case the cell
	// can never be resolved.
	Candidates []uint32
}

// Known is a resolved cell.
type Known struct {
	Prototype uint32
}

var far = &Far{}

func (*Far) String() string    { return "far" }
func (b *Band) String() string { return fmt.Sprintf("band%v", b.Candidates) }
func (k *Known) String() string {
	return fmt.Sprintf("known(%d)", k.Prototype)
}

// BandEntry pairs a band cell with the size of its candidate set.
type BandEntry struct {
	Count uint32
	Index uint32
}

// Neighbor is a grid neighbor slot. Valid is false when the slot lies outside
// the grid.
type Neighbor struct {
	Index uint32
	Valid bool
}
