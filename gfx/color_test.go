// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBA8(t *testing.T) {
	tests := []struct {
		name       string
		r, g, b, a float64
		want       uint32
	}{
		{"black", 0, 0, 0, 1, 0x000000FF},
		{"white", 1, 1, 1, 1, 0xFFFFFFFF},
		{"red transparent", 1, 0, 0, 0, 0xFF000000},
		{"clamped", 2, -1, 0, 1, 0xFF0000FF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RGBA8(tt.r, tt.g, tt.b, tt.a))
		})
	}
}

func TestBitsRoundTrip(t *testing.T) {
	const c = 0x0F00FFFF
	assert.Equal(t, uint32(c), FromBits(Bits(c)))
	assert.Equal(t, [4]uint8{0x0F, 0x00, 0xFF, 0xFF}, UnpackRGBA8(c))
}
