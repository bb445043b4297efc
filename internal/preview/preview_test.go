// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package preview

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/tilegen/jmath"
	"honnef.co/go/tilegen/primitive"
)

func TestRenderEmpty(t *testing.T) {
	img := Render(nil, Options{Width: 4, Height: 4, Background: color.Black})
	for y := range 4 {
		for x := range 4 {
			assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(x, y))
		}
	}
}

func TestRenderPaintsHighestOnTop(t *testing.T) {
	low := primitive.NewAABB(jmath.Vec3{0, 0, 0}, jmath.Vec3{2, 1, 2}, 0xFF0000FF)
	high := primitive.NewAABB(jmath.Vec3{0, 1, 0}, jmath.Vec3{1, 2, 1}, 0x0000FFFF)

	// Order of the input must not matter.
	img := Render([]primitive.AABB{high, low}, Options{Width: 100, Height: 100})

	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(25, 25))
	got := img.RGBAAt(75, 75)
	assert.Greater(t, got.R, uint8(100))
	assert.Zero(t, got.G)
	assert.Zero(t, got.B)
	assert.Equal(t, uint8(255), got.A)
}

func TestRenderMargin(t *testing.T) {
	box := primitive.NewAABB(jmath.Vec3{-1, 0, -1}, jmath.Vec3{1, 1, 1}, 0x00FF00FF)
	opts := DefaultOptions()
	img := Render([]primitive.AABB{box}, opts)

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(opts.Width/2, opts.Height/2))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	box := primitive.NewAABB(jmath.Vec3{0, 0, 0}, jmath.Vec3{1, 1, 1}, primitive.DefaultColor)
	require.NoError(t, WriteFile(path, []primitive.AABB{box}, Options{Width: 16, Height: 8}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "x.png"), nil, DefaultOptions()))
}
