package stl

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

const flatRoofASCII = `solid flat roof
  facet normal 0 1 0
    outer loop
      vertex 0 0 0
      vertex 0 0 4
      vertex 4 0 0
    endloop
  endfacet
  facet normal 0 1 0
    outer loop
      vertex 4 0 0
      vertex 0 0 4
      vertex 4 0 4
    endloop
  endfacet
endsolid flat roof
`

func encodeBinary(t *testing.T, header string, tris []geometry.Triangle) []byte {
	t.Helper()
	var buf bytes.Buffer
	h := make([]byte, binaryHeaderSize)
	copy(h, header)
	buf.Write(h)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(tris))))
	f32 := func(v geometry.Vector3) [3]float32 {
		return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
	}
	for _, tri := range tris {
		facet := binaryFacet{Normal: f32(tri.Normal), V1: f32(tri.V1), V2: f32(tri.V2), V3: f32(tri.V3)}
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, facet))
	}
	return buf.Bytes()
}

func TestDecodeASCII(t *testing.T) {
	model, err := Decode([]byte(flatRoofASCII))
	require.NoError(t, err)

	assert.Equal(t, "flat roof", model.Name)
	assert.Equal(t, 2, model.TriangleCount())
	assert.InDelta(t, 16.0, model.SurfaceArea(), 1e-9)
	assert.Equal(t, geometry.NewVector3(4, 0, 4), model.BoundingBox().Max)
}

func TestDecodeASCIIInvalidCoordinate(t *testing.T) {
	_, err := Decode([]byte("solid x\nfacet normal 0 1 0\nvertex 0 nope 0\nendfacet\n"))
	assert.Error(t, err)
}

func TestDecodeBinary(t *testing.T) {
	tris := []geometry.Triangle{
		geometry.NewTriangle(
			geometry.NewVector3(0, 1, 0),
			geometry.NewVector3(0, 2, 0),
			geometry.NewVector3(0, 2, 3),
			geometry.NewVector3(3, 2, 0),
		),
	}
	// header deliberately starts with "solid" like many exporters write it
	model, err := Decode(encodeBinary(t, "solid exported by drone pipeline", tris))
	require.NoError(t, err)

	require.Equal(t, 1, model.TriangleCount())
	assert.Equal(t, tris[0], model.Triangles[0])
	assert.Equal(t, "solid exported by drone pipeline", model.Name)
}

func TestDecodeBinaryTruncated(t *testing.T) {
	data := encodeBinary(t, "scan", []geometry.Triangle{{}, {}})
	_, err := Decode(data[:len(data)-10])
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roof.stl")
	require.NoError(t, os.WriteFile(path, []byte(flatRoofASCII), 0o644))

	model, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 2, model.TriangleCount())

	_, err = Parse(filepath.Join(t.TempDir(), "missing.stl"))
	assert.Error(t, err)
}

func TestModelIntersect(t *testing.T) {
	model, err := Decode([]byte(flatRoofASCII))
	require.NoError(t, err)

	hit, ok := model.Intersect(geometry.NewRay(geometry.NewVector3(1, 10, 3), geometry.NewVector3(0, -1, 0)))
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.X, 1e-9)
	assert.InDelta(t, 0.0, hit.Y, 1e-9)
	assert.InDelta(t, 3.0, hit.Z, 1e-9)

	_, ok = model.Intersect(geometry.NewRay(geometry.NewVector3(10, 10, 10), geometry.NewVector3(0, -1, 0)))
	assert.False(t, ok)
}
