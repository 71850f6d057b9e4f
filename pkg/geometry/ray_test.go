package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayDistanceToPoint(t *testing.T) {
	ray := NewRay(NewVector3(0, 0, 0), NewVector3(0, 0, 5))

	assert.InDelta(t, 1.0, ray.DistanceToPoint(NewVector3(1, 0, 3)), 1e-12)
	// behind the origin: measured from the origin
	assert.InDelta(t, 5.0, ray.DistanceToPoint(NewVector3(3, 0, -4)), 1e-12)
}

func TestRayIntersectTriangle(t *testing.T) {
	tri := NewTriangle(
		NewVector3(0, 1, 0),
		NewVector3(-1, 0, -1),
		NewVector3(1, 0, -1),
		NewVector3(0, 0, 1),
	)

	down := NewRay(NewVector3(0, 10, 0), NewVector3(0, -1, 0))
	dist, ok := down.IntersectTriangle(tri)
	require.True(t, ok)
	assert.InDelta(t, 10.0, dist, 1e-9)
	assert.InDelta(t, 0.0, down.At(dist).Y, 1e-9)

	// back face is hit as well
	up := NewRay(NewVector3(0, -3, 0), NewVector3(0, 1, 0))
	_, ok = up.IntersectTriangle(tri)
	assert.True(t, ok)

	// triangle behind the ray
	away := NewRay(NewVector3(0, 10, 0), NewVector3(0, 1, 0))
	_, ok = away.IntersectTriangle(tri)
	assert.False(t, ok)

	// outside the facet
	miss := NewRay(NewVector3(5, 10, 5), NewVector3(0, -1, 0))
	_, ok = miss.IntersectTriangle(tri)
	assert.False(t, ok)

	// parallel to the facet
	parallel := NewRay(NewVector3(-5, 0, 0), NewVector3(1, 0, 0))
	_, ok = parallel.IntersectTriangle(tri)
	assert.False(t, ok)
}

func TestRayIntersectBox(t *testing.T) {
	bbox := NewBoundingBox()
	bbox.Extend(NewVector3(-1, -1, -1))
	bbox.Extend(NewVector3(1, 1, 1))

	assert.True(t, NewRay(NewVector3(0, 5, 0), NewVector3(0, -1, 0)).IntersectBox(bbox))
	assert.True(t, NewRay(NewVector3(0, 0, 0), NewVector3(1, 1, 0)).IntersectBox(bbox))
	assert.False(t, NewRay(NewVector3(0, 5, 0), NewVector3(0, 1, 0)).IntersectBox(bbox))
	assert.False(t, NewRay(NewVector3(3, 5, 0), NewVector3(0, -1, 0)).IntersectBox(bbox))
	assert.False(t, NewRay(NewVector3(0, 5, 0), NewVector3(0, -1, 0)).IntersectBox(NewBoundingBox()))
}
