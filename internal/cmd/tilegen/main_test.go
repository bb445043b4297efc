// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corridorConfig = `
grid: {x: 4, y: 1, z: 1, tile_dimension: 5}
seed: {tile: right, coord: [0, 0, 0]}
solver: {rand_seed: 7}
export: {scale: 1}
tiles:
  - name: right
    points: [[2, 0, 0]]
    color: [1, 0, 0]
  - name: left
    points: [[-2, 0, 0]]
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tilegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o666))
	return path
}

func TestShapes(t *testing.T) {
	out, _, err := run(t, "shapes")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, out, "floor")
	assert.Contains(t, out, " 25 points")
	assert.True(t, strings.HasPrefix(lines[0], "empty"))
}

func TestTiles(t *testing.T) {
	out, _, err := run(t, "tiles", "-c", writeConfig(t, corridorConfig))
	require.NoError(t, err)
	assert.Contains(t, out, "right")
	assert.Contains(t, out, "left")
	assert.Contains(t, out, "TILE")
	assert.Contains(t, out, "identity")
}

func TestTilesInvalidConfig(t *testing.T) {
	_, _, err := run(t, "tiles", "-c", writeConfig(t, "grid: {x: 0}"))
	assert.ErrorContains(t, err, "grid")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "preview.png")
	out, logs, err := run(t, "generate", "-c", writeConfig(t, corridorConfig), "--preview", img, "--profile")
	require.NoError(t, err)

	assert.Contains(t, out, "steps: 3\n")
	assert.Contains(t, out, "known: 4\n")
	assert.Contains(t, out, "boxes: 4 (128 bytes in 4 uploads)")
	assert.Contains(t, out, "#0:")
	assert.Contains(t, logs, "generation finished")

	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestGenerateStepLimit(t *testing.T) {
	out, _, err := run(t, "generate", "-c", writeConfig(t, corridorConfig), "--steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "steps: 1\n")
	assert.Contains(t, out, "known: 2\n")
}

func TestGenerateMissingConfig(t *testing.T) {
	_, _, err := run(t, "generate", "-c", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestGenerateGPU(t *testing.T) {
	out, _, err := run(t, "generate", "-c", writeConfig(t, corridorConfig), "--gpu")
	if err != nil {
		require.ErrorContains(t, err, "gpu:")
		t.Skipf("no WebGPU adapter: %s", err)
	}
	assert.Contains(t, out, "gpu: 4 live buffers, 128 bytes\n")
}

func placements(out string) map[string]bool {
	seen := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 2 && fields[0] == "right" {
			seen[fields[1]] = true
		}
	}
	return seen
}

func TestTilesRotated(t *testing.T) {
	cfg := strings.Replace(corridorConfig, "    color: [1, 0, 0]", "    color: [1, 0, 0]\n    rotations: [rot90y, rot180y]", 1)
	path := writeConfig(t, cfg)

	out, _, err := run(t, "tiles", "-c", path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"identity": true}, placements(out))
	assert.Contains(t, out, "right/rot90y")

	out, _, err = run(t, "tiles", "-c", path, "--rotated")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"identity": true, "rot90y": true, "rot180y": true}, placements(out))
}
