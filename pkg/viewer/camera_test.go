package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

func testCamera() *Camera {
	bbox := geometry.NewBoundingBox()
	bbox.Extend(geometry.NewVector3(-1, -1, -1))
	bbox.Extend(geometry.NewVector3(1, 1, 1))
	return NewCamera(bbox, 800, 600)
}

func TestNewCameraFramesBox(t *testing.T) {
	c := testCamera()
	assert.Equal(t, geometry.NewVector3(0, 0, 0), c.Target)
	assert.InDelta(t, 4.0, c.Distance, 1e-12)
	assert.InDelta(t, 4.0, c.Position.Z, 1e-12)
}

func TestProjectCenter(t *testing.T) {
	c := testCamera()
	x, y, ok := c.Project(geometry.NewVector3(0, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 400.0, x, 1e-9)
	assert.InDelta(t, 300.0, y, 1e-9)

	_, _, ok = c.Project(geometry.NewVector3(0, 0, 10))
	assert.False(t, ok, "point behind the camera")
}

func TestRayProjectRoundTrip(t *testing.T) {
	c := testCamera()
	c.Rotate(0.4, 0.7)

	point := geometry.NewVector3(0.3, -0.2, 0.5)
	x, y, ok := c.Project(point)
	require.True(t, ok)

	ray := c.Ray(x, y)
	assert.InDelta(t, 0.0, ray.DistanceToPoint(point), 1e-9)
}

func TestZoomClampsDistance(t *testing.T) {
	c := testCamera()
	c.Zoom(-0.5)
	assert.InDelta(t, 2.0, c.Distance, 1e-12)
	assert.InDelta(t, 2.0, c.DistanceTo(c.Target), 1e-9)

	c.Zoom(-0.9999)
	assert.Equal(t, 0.1, c.Distance)
}
