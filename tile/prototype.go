// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package tile describes tile prototypes and decides which of them may sit
// next to each other.
//
// A prototype is authored as a set of connection points inside a cube of
// Dimension units centred on the origin. The points lying on a face of that
// cube form the face's signature; two prototypes may be neighbors along an
// axis if the facing signatures mirror each other.
package tile

import (
	"fmt"
	"math/bits"
	"slices"

	"honnef.co/go/tilegen/jmath"
)

// Signature is the sorted list of points lying on one face of a prototype.
type Signature []jmath.IVec3

func (s Signature) Equal(o Signature) bool { return slices.Equal(s, o) }

type Prototype struct {
	ID uint32
	// Dimension is the edge length of the tile's footprint. Faces lie at
	// ±Dimension/2.
	Dimension        uint32
	ConnectionPoints []jmath.Vec3
	// RenderData is carried along for the rendering layer and never
	// interpreted by tilegen.
	RenderData []jmath.Vec4

	identity Signature
	faces    [NumDirections]Signature
	inverted [NumDirections]Signature
}

// New builds a prototype and precomputes its face signatures.
func New(id uint32, dimension uint32, points []jmath.Vec3, renderData []jmath.Vec4) *Prototype {
	if dimension == 0 {
		panic("tile: prototype dimension must be positive")
	}
	p := &Prototype{
		ID:               id,
		Dimension:        dimension,
		ConnectionPoints: points,
		RenderData:       renderData,
	}
	half := p.HalfExtent()

	p.identity = make(Signature, len(points))
	for i, pt := range points {
		p.identity[i] = pt.Int()
	}
	slices.SortFunc(p.identity, jmath.IVec3.Compare)

	for _, d := range Directions {
		p.faces[d] = faceSignature(points, d, half, false)
		// A neighbor in direction d touches us with its opposite face.
		p.inverted[d] = faceSignature(points, d.Opposite(), half, true)
	}
	return p
}

func (p *Prototype) HalfExtent() int32 { return int32(p.Dimension / 2) }

// Identity returns all connection points as a sorted signature.
func (p *Prototype) Identity() Signature { return p.identity }

func (p *Prototype) Face(d Direction) Signature { return p.faces[d] }

// InvertedFace returns the face opposite d with its d-axis coordinate negated,
// i.e. what a prototype sitting on p's d side has to present.
func (p *Prototype) InvertedFace(d Direction) Signature { return p.inverted[d] }

// Matches reports whether p may sit next to other with other lying in
// direction d of p.
func (p *Prototype) Matches(other *Prototype, d Direction) bool {
	if p.Dimension != other.Dimension {
		panic(fmt.Sprintf("tile: comparing prototypes of dimension %d and %d", p.Dimension, other.Dimension))
	}
	return p.faces[d].Equal(other.inverted[d])
}

// CreateRotation returns a new, independent prototype whose connection points
// and render data are p's transformed by the single operation in rotation.
func (p *Prototype) CreateRotation(rotation jmath.Mask, id uint32) *Prototype {
	if !rotation.Valid() || bits.OnesCount32(uint32(rotation)) != 1 {
		panic(fmt.Sprintf("tile: CreateRotation needs exactly one operation, got mask %#b", uint32(rotation)))
	}
	sets := jmath.Enumerate(rotation, p.ConnectionPoints)
	var render []jmath.Vec4
	if p.RenderData != nil {
		render = jmath.Enumerate4(rotation, p.RenderData)[0]
	}
	return New(id, p.Dimension, sets[0], render)
}

func (p *Prototype) String() string {
	return fmt.Sprintf("prototype %d (dim %d, %d points)", p.ID, p.Dimension, len(p.ConnectionPoints))
}

// faceSignature collects the points on face d, optionally negating their
// coordinate along d's axis, and sorts them.
func faceSignature(points []jmath.Vec3, d Direction, half int32, negate bool) Signature {
	axis := d.Axis()
	want := float32(d.Sign() * half)
	var sig Signature
	for _, pt := range points {
		if pt[axis] != want {
			continue
		}
		ip := pt.Int()
		if negate {
			ip[axis] = -ip[axis]
		}
		sig = append(sig, ip)
	}
	slices.SortFunc(sig, jmath.IVec3.Compare)
	return sig
}
