package openscad

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveDependencies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "house.scad"), `use <lib/roof.scad>
include <./params.scad>
// use <ignored.scad>
roof();
`)
	writeFile(t, filepath.Join(dir, "lib", "roof.scad"), "include <../params.scad>\nmodule roof() {}\n")
	writeFile(t, filepath.Join(dir, "params.scad"), "pitch = 35;\n")

	deps, err := NewRenderer(dir).ResolveDependencies("house.scad")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "house.scad"),
		filepath.Join(dir, "lib", "roof.scad"),
		filepath.Join(dir, "params.scad"),
	}, deps)
}

func TestResolveDependenciesCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.scad"), "use <b.scad>\n")
	writeFile(t, filepath.Join(dir, "b.scad"), "use <a.scad>\n")

	deps, err := NewRenderer(dir).ResolveDependencies("a.scad")
	require.NoError(t, err)
	assert.Len(t, deps, 2)
}

func TestResolveDependenciesMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.scad"), "use <gone.scad>\n")

	_, err := NewRenderer(dir).ResolveDependencies("a.scad")
	assert.Error(t, err)
}

func TestRenderWithoutBinary(t *testing.T) {
	r := NewRenderer(t.TempDir(), WithBinary("roofmeasure-no-such-openscad"))
	err := r.RenderToSTL(context.Background(), "a.scad", "a.stl")
	assert.True(t, errors.Is(err, ErrNotInstalled))
}
