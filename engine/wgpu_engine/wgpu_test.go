// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package wgpu_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/tilegen/jmath"
	"honnef.co/go/tilegen/primitive"
	"honnef.co/go/tilegen/profiler"
	"honnef.co/go/tilegen/renderer"
)

func TestPoolSizeClass(t *testing.T) {
	tests := []struct {
		in, want uint64
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 3},
		{4, 4},
		{5, 6},
		{6, 6},
		{7, 8},
		{9, 12},
		{13, 16},
		{32, 32},
		{33, 48},
		{64 * 1000, 65536},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, poolSizeClass(tt.in, 1), "poolSizeClass(%d)", tt.in)
	}
}

func TestPadUpload(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	got := padUpload(data[:5])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, got)
	// The caller's backing array is not overwritten.
	assert.Equal(t, byte(6), data[5])

	aligned := []byte{1, 2, 3, 4}
	assert.Same(t, &aligned[0], &padUpload(aligned)[0])
}

func TestClearRange(t *testing.T) {
	proxy := renderer.NewBufferProxy(32, "boxes")
	tests := []struct {
		clear        renderer.Clear
		offset, size uint64
	}{
		{renderer.Clear{Buffer: proxy, Offset: 0, Size: -1}, 0, 48},
		{renderer.Clear{Buffer: proxy, Offset: 16, Size: -1}, 16, 32},
		{renderer.Clear{Buffer: proxy, Offset: 8, Size: 8}, 8, 8},
	}
	for _, tt := range tests {
		offset, size := clearRange(&tt.clear, 48)
		assert.Equal(t, tt.offset, offset)
		assert.Equal(t, tt.size, size)
	}
	assert.Panics(t, func() { clearRange(&renderer.Clear{Buffer: proxy, Offset: 64, Size: -1}, 48) })
	assert.Panics(t, func() { clearRange(&renderer.Clear{Buffer: proxy, Offset: 40, Size: 16}, 48) })
}

func newTestEngine(t *testing.T) (*Engine, func(*renderer.Recording)) {
	t.Helper()
	eng, queue, err := NewHeadless(nil)
	if err != nil {
		t.Skipf("no WebGPU adapter: %s", err)
	}
	t.Cleanup(eng.Release)
	run := func(rec *renderer.Recording) {
		eng.RunRecording(queue, rec, t.Name(), (*profiler.Group)(nil))
		rec.Reset()
	}
	return eng, run
}

func TestRunRecording(t *testing.T) {
	eng, run := newTestEngine(t)

	boxes := []primitive.AABB{
		primitive.NewAABB(jmath.Vec3{0, 0, 0}, jmath.Vec3{1, 1, 1}, primitive.DefaultColor),
	}
	var rec renderer.Recording
	proxy := rec.UploadAABBs("boxes", boxes)
	empty := rec.UploadAABBs("empty", nil)
	odd := rec.Upload("odd", []byte{1, 2, 3})
	rec.ClearAll(proxy)
	run(&rec)

	assert.Equal(t, 2, eng.LiveBuffers())
	buf, ok := eng.Buffer(proxy)
	require.True(t, ok)
	assert.Equal(t, uint64(32), buf.Size())
	_, ok = eng.Buffer(empty)
	assert.False(t, ok)
	buf, ok = eng.Buffer(odd)
	require.True(t, ok)
	assert.Equal(t, uint64(4), buf.Size())
	assert.Equal(t, uint64(36), eng.LiveBytes())

	// Freed buffers are reused by later uploads of the same size class.
	old, _ := eng.Buffer(proxy)
	rec.FreeBuffer(proxy)
	run(&rec)
	assert.Equal(t, 1, eng.LiveBuffers())
	assert.Equal(t, 1, eng.PooledBuffers())

	again := rec.UploadAABBs("boxes", boxes)
	run(&rec)
	buf, ok = eng.Buffer(again)
	require.True(t, ok)
	assert.Same(t, old, buf)
	assert.Zero(t, eng.PooledBuffers())
}

func TestRunRecordingReplacesUpload(t *testing.T) {
	eng, run := newTestEngine(t)

	var rec renderer.Recording
	proxy := rec.Upload("data", make([]byte, 16))
	run(&rec)
	first, _ := eng.Buffer(proxy)

	rec.Commands = append(rec.Commands, &renderer.Upload{Buffer: proxy, Data: make([]byte, 64)})
	run(&rec)
	second, ok := eng.Buffer(proxy)
	require.True(t, ok)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, eng.LiveBuffers())
	assert.Equal(t, 1, eng.PooledBuffers())
}

func TestRunRecordingClearUnknown(t *testing.T) {
	_, run := newTestEngine(t)
	var rec renderer.Recording
	rec.ClearAll(renderer.NewBufferProxy(16, "never uploaded"))
	assert.Panics(t, func() { run(&rec) })
}
