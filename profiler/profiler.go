// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package profiler records nested wall-clock timings.
package profiler

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type ProfilerGroup interface {
	Start(label string) ProfilerGroup
	End()
}

// Profiler hands out top-level groups. A nil *Profiler is valid and records
// nothing.
type Profiler struct {
	groups []*Group
	// free list of groups
	freeGroups []*Group
	// free list of results
	results []Result

	now func() time.Time
}

func New() *Profiler {
	return &Profiler{now: time.Now}
}

func NewNop() *Profiler {
	return nil
}

// Start begins a top-level group identified by tag.
func (p *Profiler) Start(tag uint64) *Group {
	if p == nil {
		return nil
	}
	g := p.getGroup()
	g.profiler = p
	g.Tag = tag
	g.start = p.now()
	p.groups = append(p.groups, g)
	return g
}

func (p *Profiler) getGroup() *Group {
	if len(p.freeGroups) > 0 {
		g := p.freeGroups[len(p.freeGroups)-1]
		p.freeGroups = p.freeGroups[:len(p.freeGroups)-1]
		clear(g.children)
		g.children = g.children[:0]
		g.end = time.Time{}
		g.parent = nil
		g.Label = ""
		g.Tag = 0
		return g
	} else {
		return &Group{}
	}
}

type Group struct {
	Tag      uint64
	Label    string
	start    time.Time
	end      time.Time
	children []*Group
	profiler *Profiler
	parent   *Group
}

func (g *Group) End() {
	if g == nil {
		return
	}
	if !g.end.IsZero() {
		panic("trying to end same group twice")
	}
	g.end = g.profiler.now()
}

func (g *Group) Start(label string) ProfilerGroup {
	if g == nil {
		return (*Group)(nil)
	}
	return g.Nest(label)
}

func (g *Group) Nest(label string) *Group {
	if g == nil {
		return nil
	}
	cg := g.profiler.getGroup()
	cg.profiler = g.profiler
	cg.Label = label
	cg.start = g.profiler.now()
	cg.parent = g
	g.children = append(g.children, cg)
	return cg
}

type Result struct {
	Tag      uint64
	Label    string
	Start    time.Time
	End      time.Time
	Children []Result
}

func (r *Result) Duration() time.Duration { return r.End.Sub(r.Start) }

func populateResult(g *Group, res *Result) {
	// Don't use *res = Result{...} so that we reuse res.Children.
	res.Tag = g.Tag
	res.Label = g.Label
	res.Start = g.start
	res.End = g.end
	if cap(res.Children) >= len(g.children) {
		res.Children = res.Children[:len(g.children)]
	} else {
		res.Children = make([]Result, len(g.children))
	}
	for ci, c := range g.children {
		populateResult(c, &res.Children[ci])
	}
}

// Collect returns the results of all ended top-level groups in order of
// creation, stopping at the first group still running. The return value is
// only valid until the next call to Collect.
func (p *Profiler) Collect() []Result {
	if p == nil {
		return nil
	}
	out := p.results[:0]

	var returnGroups func(gs ...*Group)
	returnGroups = func(gs ...*Group) {
		p.freeGroups = append(p.freeGroups, gs...)
		for _, g := range gs {
			returnGroups(g.children...)
		}
	}

	n := 0
	for _, g := range p.groups {
		if g.end.IsZero() {
			break
		}
		if cap(out) > len(out) {
			out = out[:len(out)+1]
		} else {
			out = append(out, Result{})
		}
		populateResult(g, &out[len(out)-1])
		n++
	}
	returnGroups(p.groups[:n]...)
	copy(p.groups, p.groups[n:])
	clear(p.groups[len(p.groups)-n:])
	p.groups = p.groups[:len(p.groups)-n]
	p.results = out[:0]
	return out
}

// Print writes results as an indented tree.
func Print(w io.Writer, results []Result) error {
	var printOne func(r *Result, depth int) error
	printOne = func(r *Result, depth int) error {
		label := r.Label
		if depth == 0 && label == "" {
			label = fmt.Sprintf("#%d", r.Tag)
		}
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", depth), label, r.Duration()); err != nil {
			return err
		}
		for i := range r.Children {
			if err := printOne(&r.Children[i], depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range results {
		if err := printOne(&results[i], 0); err != nil {
			return err
		}
	}
	return nil
}
