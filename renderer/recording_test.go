// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/tilegen/jmath"
	"honnef.co/go/tilegen/primitive"
)

func TestUploadAABBs(t *testing.T) {
	boxes := []primitive.AABB{
		primitive.NewAABB(jmath.Vec3{1, 2, 3}, jmath.Vec3{4, 5, 6}, 0x0F00FFFF),
		primitive.NewAABB(jmath.Vec3{-1, 0, 0}, jmath.Vec3{0, 1, 1}, 0xFF0000FF),
	}

	var rec Recording
	proxy := rec.UploadAABBs("boxes", boxes)
	assert.Equal(t, uint64(64), proxy.Size)
	assert.Equal(t, "boxes", proxy.Name)

	require.Len(t, rec.Commands, 1)
	up, ok := rec.Commands[0].(*Upload)
	require.True(t, ok)
	assert.Equal(t, proxy, up.Buffer)
	require.Len(t, up.Data, 64)

	f := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(up.Data[i*4:]))
	}
	assert.Equal(t, []float32{1, 2, 3}, []float32{f(0), f(1), f(2)})
	assert.Equal(t, uint32(0x0F00FFFF), binary.LittleEndian.Uint32(up.Data[12:]))
	assert.Equal(t, []float32{4, 5, 6}, []float32{f(4), f(5), f(6)})
	assert.Equal(t, uint32(0x0F00FFFF), binary.LittleEndian.Uint32(up.Data[28:]))
	assert.Equal(t, float32(-1), f(8))
	assert.Equal(t, uint32(0xFF0000FF), binary.LittleEndian.Uint32(up.Data[44:]))
}

func TestRecordingCommands(t *testing.T) {
	var rec Recording
	a := rec.Upload("a", []byte{1, 2, 3, 4})
	b := rec.Upload("b", nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Zero(t, b.Size)

	rec.ClearAll(a)
	rec.Clear(a, 2, 2)
	rec.FreeBuffer(a)
	rec.FreeBuffer(b)

	want := []Command{
		&Upload{a, []byte{1, 2, 3, 4}},
		&Upload{b, nil},
		&Clear{a, 0, -1},
		&Clear{a, 2, 2},
		&FreeBuffer{a},
		&FreeBuffer{b},
	}
	assert.Equal(t, want, rec.Commands)

	rec.Reset()
	assert.Empty(t, rec.Commands)
}
