// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package preview draws exported boxes as seen from above, as a quick way to
// look at a generated scene without a GPU.
package preview

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"slices"

	"golang.org/x/image/vector"
	"honnef.co/go/curve"

	"honnef.co/go/tilegen/gfx"
	"honnef.co/go/tilegen/primitive"
)

type Options struct {
	Width, Height int
	// Margin is kept free on every side, in pixels.
	Margin     int
	Background color.Color
}

func DefaultOptions() Options {
	return Options{
		Width:      512,
		Height:     512,
		Margin:     8,
		Background: color.White,
	}
}

// Render projects boxes onto the XZ plane, x to the right and z downwards.
// Boxes are painted from the lowest top face to the highest, and darkened the
// lower they are.
func Render(boxes []primitive.AABB, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if len(boxes) == 0 {
		return img
	}

	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a, b primitive.AABB) int {
		return cmp.Compare(a.Max[1], b.Max[1])
	})

	lo := curve.Vec(math.Inf(1), math.Inf(1))
	hi := curve.Vec(math.Inf(-1), math.Inf(-1))
	minTop, maxTop := math.Inf(1), math.Inf(-1)
	for _, b := range sorted {
		lo.X = min(lo.X, float64(b.Min[0]))
		lo.Y = min(lo.Y, float64(b.Min[2]))
		hi.X = max(hi.X, float64(b.Max[0]))
		hi.Y = max(hi.Y, float64(b.Max[2]))
		minTop = min(minTop, float64(b.Max[1]))
		maxTop = max(maxTop, float64(b.Max[1]))
	}
	span := hi.Sub(lo)
	avail := curve.Vec(float64(opts.Width-2*opts.Margin), float64(opts.Height-2*opts.Margin))
	scale := min(avail.X/max(span.X, 1e-9), avail.Y/max(span.Y, 1e-9))
	origin := curve.Vec(float64(opts.Margin), float64(opts.Margin))
	project := func(x, z float32) curve.Vec2 {
		return curve.Vec(float64(x), float64(z)).Sub(lo).Mul(scale).Add(origin)
	}

	r := vector.NewRasterizer(opts.Width, opts.Height)
	for _, b := range sorted {
		shade := 1.0
		if maxTop > minTop {
			shade = 0.5 + 0.5*(float64(b.Max[1])-minTop)/(maxTop-minTop)
		}
		rgba := gfx.UnpackRGBA8(b.Color())
		src := image.NewUniform(color.NRGBA{
			R: uint8(float64(rgba[0]) * shade),
			G: uint8(float64(rgba[1]) * shade),
			B: uint8(float64(rgba[2]) * shade),
			A: rgba[3],
		})

		p0 := project(b.Min[0], b.Min[2])
		p1 := project(b.Max[0], b.Max[2])
		r.Reset(opts.Width, opts.Height)
		r.DrawOp = draw.Over
		r.MoveTo(float32(p0.X), float32(p0.Y))
		r.LineTo(float32(p1.X), float32(p0.Y))
		r.LineTo(float32(p1.X), float32(p1.Y))
		r.LineTo(float32(p0.X), float32(p1.Y))
		r.ClosePath()
		r.Draw(img, img.Bounds(), src, image.Point{})
	}
	return img
}

func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// WriteFile renders boxes and writes them to path as a PNG.
func WriteFile(path string, boxes []primitive.AABB, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close preview: %w", cerr)
		}
	}()
	return WritePNG(f, Render(boxes, opts))
}
