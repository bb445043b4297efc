// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package profiler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClock() func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func TestCollect(t *testing.T) {
	p := New()
	p.now = fakeClock()

	g := p.Start(1)
	child := g.Start("expand")
	child.End()
	g.End()

	running := p.Start(2)

	res := p.Collect()
	require.Len(t, res, 1)
	assert.Equal(t, uint64(1), res[0].Tag)
	assert.Equal(t, 3*time.Millisecond, res[0].Duration())
	require.Len(t, res[0].Children, 1)
	assert.Equal(t, "expand", res[0].Children[0].Label)
	assert.Equal(t, time.Millisecond, res[0].Children[0].Duration())

	var sb strings.Builder
	require.NoError(t, Print(&sb, res))
	assert.Equal(t, "#1: 3ms\n  expand: 1ms\n", sb.String())

	assert.Empty(t, p.Collect())
	running.End()
	res = p.Collect()
	require.Len(t, res, 1)
	assert.Equal(t, uint64(2), res[0].Tag)
	assert.Empty(t, res[0].Children)
}

func TestEndTwice(t *testing.T) {
	p := New()
	g := p.Start(0)
	g.End()
	assert.Panics(t, g.End)
}

func TestNop(t *testing.T) {
	p := NewNop()
	g := p.Start(0)
	assert.Nil(t, g)
	var pg ProfilerGroup = g
	pg = pg.Start("nested")
	pg.End()
	g.End()
	assert.Nil(t, p.Collect())
}
