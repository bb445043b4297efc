// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package scene assigns tile prototypes to the cells of a 3D grid.
//
// Resolution starts from a seed cell and grows outwards. Cells adjacent to
// resolved cells form the band; each band cell tracks the prototypes that fit
// all of its resolved neighbors. The driver repeatedly resolves one of the
// band cells with the fewest candidates until the band runs dry. There is no
// backtracking: a band cell whose candidate set becomes empty stays in the
// band forever and is never selected.
//
// A Scene is not safe for concurrent use.
package scene

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"honnef.co/go/tilegen/mem"
	"honnef.co/go/tilegen/primitive"
	"honnef.co/go/tilegen/tile"
)

type Scene struct {
	dims  [3]uint32
	cells []CellState

	prototypes []*tile.Prototype

	// band maps cell index to candidate count.
	band  mem.SortedMap[uint32, uint32]
	known int

	boxes []primitive.AABB
	style primitive.Style

	chooser Chooser
	logger  *slog.Logger

	// scratch for UpdateBandNode
	counts []uint32
}

// New returns a scene of dimX × dimY × dimZ Far cells.
func New(dimX, dimY, dimZ uint32, opts ...Option) *Scene {
	if dimX == 0 || dimY == 0 || dimZ == 0 {
		panic(fmt.Sprintf("scene: invalid dimensions %dx%dx%d", dimX, dimY, dimZ))
	}
	n := uint64(dimX) * uint64(dimY) * uint64(dimZ)
	if n > 1<<32-1 {
		panic(fmt.Sprintf("scene: %dx%dx%d cells do not fit 32-bit indices", dimX, dimY, dimZ))
	}
	s := &Scene{
		dims:  [3]uint32{dimX, dimY, dimZ},
		cells: make([]CellState, n),
		style: primitive.DefaultStyle(),
	}
	for i := range s.cells {
		s.cells[i] = far
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chooser == nil {
		s.chooser = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// InsertBlockCase registers a prototype and returns its id. Ids are handed
// out densely starting at 0, and p.ID must equal the id it is about to get.
// All prototypes of a scene share one dimension.
func (s *Scene) InsertBlockCase(p *tile.Prototype) uint32 {
	id := uint32(len(s.prototypes))
	if p.ID != id {
		panic(fmt.Sprintf("scene: prototype has id %d, expected %d", p.ID, id))
	}
	if len(s.prototypes) > 0 && s.prototypes[0].Dimension != p.Dimension {
		panic(fmt.Sprintf("scene: prototype dimension %d differs from %d", p.Dimension, s.prototypes[0].Dimension))
	}
	s.prototypes = append(s.prototypes, p)
	return id
}

func (s *Scene) Prototype(id uint32) *tile.Prototype {
	if int(id) >= len(s.prototypes) {
		panic(fmt.Sprintf("scene: unknown prototype %d", id))
	}
	return s.prototypes[id]
}

func (s *Scene) NumPrototypes() int { return len(s.prototypes) }

func (s *Scene) Dimensions() [3]uint32 { return s.dims }

func (s *Scene) NumCells() int { return len(s.cells) }

// Index returns the linear index of coord. It panics if coord lies outside
// the grid.
func (s *Scene) Index(coord [3]uint32) uint32 {
	if coord[0] >= s.dims[0] || coord[1] >= s.dims[1] || coord[2] >= s.dims[2] {
		panic(fmt.Sprintf("scene: coordinate %v out of bounds %v", coord, s.dims))
	}
	return coord[0] + coord[1]*s.dims[0] + coord[2]*s.dims[0]*s.dims[1]
}

func (s *Scene) Coord(index uint32) [3]uint32 {
	if int(index) >= len(s.cells) {
		panic(fmt.Sprintf("scene: index %d out of bounds", index))
	}
	plane := s.dims[0] * s.dims[1]
	return [3]uint32{
		index % s.dims[0],
		index % plane / s.dims[0],
		index / plane,
	}
}

func (s *Scene) Cell(index uint32) CellState {
	if int(index) >= len(s.cells) {
		panic(fmt.Sprintf("scene: index %d out of bounds", index))
	}
	return s.cells[index]
}

func (s *Scene) CellAt(coord [3]uint32) CellState { return s.cells[s.Index(coord)] }

// FindNeighborIndices returns the six axis neighbors of coord in
// tile.Directions order.
func (s *Scene) FindNeighborIndices(coord [3]uint32) [tile.NumDirections]Neighbor {
	// Validate coord.
	s.Index(coord)

	var out [tile.NumDirections]Neighbor
	for _, d := range tile.Directions {
		off := d.Offset()
		var n [3]uint32
		ok := true
		for axis := range 3 {
			v := int64(coord[axis]) + int64(off[axis])
			if v < 0 || v >= int64(s.dims[axis]) {
				ok = false
				break
			}
			n[axis] = uint32(v)
		}
		if ok {
			out[d] = Neighbor{Index: s.Index(n), Valid: true}
		}
	}
	return out
}

func (s *Scene) FindNeighborIndicesOf(index uint32) [tile.NumDirections]Neighbor {
	return s.FindNeighborIndices(s.Coord(index))
}

// AddSeedPoint resolves the cell at coord to prototype id directly. It may
// only be called while the band is empty.
func (s *Scene) AddSeedPoint(id uint32, coord [3]uint32) {
	if s.band.Len() != 0 {
		panic("scene: seeding requires an empty band")
	}
	idx := s.Index(coord)
	p := s.Prototype(id)
	if _, ok := s.cells[idx].(*Known); ok {
		panic(fmt.Sprintf("scene: cell %v is already resolved", coord))
	}
	s.cells[idx] = &Known{Prototype: id}
	s.known++
	s.emit(p, coord)
	s.logger.Info("seeded cell", "coord", coord, "prototype", id)
}

// UpdateBandNode recomputes the candidate set of the cell at index from its
// resolved neighbors and records the cell in the band.
func (s *Scene) UpdateBandNode(index uint32) {
	if _, ok := s.Cell(index).(*Known); ok {
		panic(fmt.Sprintf("scene: cell %d is already resolved", index))
	}

	if cap(s.counts) < len(s.prototypes) {
		s.counts = make([]uint32, len(s.prototypes))
	}
	counts := s.counts[:len(s.prototypes)]
	clear(counts)

	var known uint32
	for d, n := range s.FindNeighborIndicesOf(index) {
		if !n.Valid {
			continue
		}
		k, ok := s.cells[n.Index].(*Known)
		if !ok {
			continue
		}
		known++
		neighbor := s.prototypes[k.Prototype]
		for x, p := range s.prototypes {
			if p.Matches(neighbor, tile.Direction(d)) {
				counts[x]++
			}
		}
	}

	var candidates []uint32
	if known > 0 {
		for x, c := range counts {
			if c == known {
				candidates = append(candidates, uint32(x))
			}
		}
	}

	s.cells[index] = &Band{Candidates: candidates}
	s.band.Insert(index, uint32(len(candidates)))
	if len(candidates) == 0 {
		s.logger.Debug("band cell has no candidates", "coord", s.Coord(index))
	}
}

// ExpandBand pulls the unresolved neighbors of index into the band and
// refreshes the ones already in it.
func (s *Scene) ExpandBand(index uint32) {
	for _, n := range s.FindNeighborIndicesOf(index) {
		if !n.Valid {
			continue
		}
		switch s.cells[n.Index].(type) {
		case *Far, *Band:
			s.UpdateBandNode(n.Index)
		case *Known:
			// resolved cells stay untouched
		default:
			panic(fmt.Sprintf("unhandled type %T", s.cells[n.Index]))
		}
	}
}

func (s *Scene) ExpandBandCoord(coord [3]uint32) { s.ExpandBand(s.Index(coord)) }

// FindNextKnownCandidates returns every band cell whose candidate count equals
// the smallest nonzero count, in ascending index order. Cells without
// candidates are never returned. The result is empty but ok when only such
// cells remain, and ok is false iff the band is empty.
func (s *Scene) FindNextKnownCandidates() ([]uint32, bool) {
	if s.band.Len() == 0 {
		return nil, false
	}
	out := []uint32{}
	var best uint32
	for index, count := range s.band.All() {
		if count == 0 {
			continue
		}
		switch {
		case best == 0 || count < best:
			best = count
			out = append(out[:0], index)
		case count == best:
			out = append(out, index)
		}
	}
	return out, true
}

// MakeKnown resolves a band cell to one of its candidates, chosen uniformly,
// and propagates the new constraint to its neighbors. It returns the chosen
// prototype id.
func (s *Scene) MakeKnown(index uint32) uint32 {
	b, ok := s.Cell(index).(*Band)
	if !ok {
		panic(fmt.Sprintf("scene: cell %d is %s, not in the band", index, s.cells[index]))
	}
	if len(b.Candidates) == 0 {
		panic(fmt.Sprintf("scene: cell %d has no candidates", index))
	}
	id := b.Candidates[s.chooser.IntN(len(b.Candidates))]
	s.cells[index] = &Known{Prototype: id}
	s.band.Delete(index)
	s.known++

	coord := s.Coord(index)
	s.emit(s.prototypes[id], coord)
	s.logger.Debug("resolved cell", "coord", coord, "prototype", id, "choices", len(b.Candidates))

	s.ExpandBand(index)
	return id
}

func (s *Scene) emit(p *tile.Prototype, coord [3]uint32) {
	s.boxes = append(s.boxes, s.style.CellBoxes(p.ID, p.Dimension, coord, p.ConnectionPoints)...)
}

// AABBData returns the boxes emitted since the last call and forgets them.
func (s *Scene) AABBData() []primitive.AABB {
	out := s.boxes
	s.boxes = nil
	return out
}

func (s *Scene) BandLen() int { return s.band.Len() }

func (s *Scene) BandEntries() []BandEntry {
	out := make([]BandEntry, 0, s.band.Len())
	for index, count := range s.band.All() {
		out = append(out, BandEntry{Count: count, Index: index})
	}
	return out
}

func (s *Scene) KnownCount() int { return s.known }

// Stuck returns the band cells without candidates.
func (s *Scene) Stuck() []uint32 {
	var out []uint32
	for index, count := range s.band.All() {
		if count == 0 {
			out = append(out, index)
		}
	}
	return out
}
