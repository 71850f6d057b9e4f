package viewer

import (
	"math"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

// Camera is an orbiting perspective camera over a fixed viewport. It turns
// pointer coordinates into world rays and world points into pointer
// coordinates.
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // Field of view in radians
	Distance  float64
	RotationX float64 // Elevation around the target
	RotationY float64 // Azimuth around the target

	Width  float64
	Height float64
}

// NewCamera creates a camera that frames the bounding box from the front
func NewCamera(bbox geometry.BoundingBox, width, height float64) *Camera {
	size := bbox.Size()
	c := &Camera{
		Target:   bbox.Center(),
		Up:       geometry.NewVector3(0, 1, 0),
		FOV:      math.Pi / 4,
		Distance: math.Max(size.X, math.Max(size.Y, size.Z)) * 2.0,
		Width:    width,
		Height:   height,
	}
	if c.Distance == 0 {
		c.Distance = 1
	}
	c.UpdatePosition()
	return c
}

// UpdatePosition updates camera position based on rotation angles
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.RotationX) * math.Sin(c.RotationY)
	y := c.Distance * math.Sin(c.RotationX)
	z := c.Distance * math.Cos(c.RotationX) * math.Cos(c.RotationY)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate orbits the camera by the given angles in radians
func (c *Camera) Rotate(deltaX, deltaY float64) {
	c.RotationX += deltaX
	c.RotationY += deltaY

	// Clamp elevation so the view basis never degenerates
	maxAngle := math.Pi/2 - 0.1
	c.RotationX = math.Max(-maxAngle, math.Min(maxAngle, c.RotationX))

	c.UpdatePosition()
}

// Zoom changes the camera distance by a relative factor
func (c *Camera) Zoom(delta float64) {
	c.Distance *= 1.0 + delta
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
	c.UpdatePosition()
}

func (c *Camera) basis() (forward, right, up geometry.Vector3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// Project maps a world point to screen coordinates. visible is false for
// points behind the camera.
func (c *Camera) Project(point geometry.Vector3) (x, y float64, visible bool) {
	forward, right, up := c.basis()

	relative := point.Sub(c.Position)
	cx := relative.Dot(right)
	cy := relative.Dot(up)
	cz := relative.Dot(forward)
	if cz <= 0.01 {
		return 0, 0, false
	}

	aspect := c.Width / c.Height
	fovScale := math.Tan(c.FOV / 2)

	x = (cx/(cz*fovScale*aspect))*(c.Width/2) + c.Width/2
	y = (-cy/(cz*fovScale))*(c.Height/2) + c.Height/2
	return x, y, true
}

// Ray converts screen coordinates into a world-space ray from the camera
func (c *Camera) Ray(screenX, screenY float64) geometry.Ray {
	ndcX := (2.0 * screenX / c.Width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / c.Height)

	aspect := c.Width / c.Height
	fovScale := math.Tan(c.FOV / 2)

	forward, right, up := c.basis()
	dir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))
	return geometry.NewRay(c.Position, dir)
}

// DistanceTo returns the distance from the camera to a world point
func (c *Camera) DistanceTo(point geometry.Vector3) float64 {
	return c.Position.Distance(point)
}
