package stl

import (
	"math"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

// Model is a loaded survey mesh: a triangle soup in world coordinates
type Model struct {
	Name      string
	Triangles []geometry.Triangle

	bounds      geometry.BoundingBox
	boundsValid bool
}

// NewModel creates a new, empty model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]geometry.Triangle, 0),
	}
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangle)
	m.boundsValid = false
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// BoundingBox calculates the bounding box of the entire model
func (m *Model) BoundingBox() geometry.BoundingBox {
	if m.boundsValid {
		return m.bounds
	}
	bbox := geometry.NewBoundingBox()
	for _, triangle := range m.Triangles {
		bbox.Extend(triangle.V1)
		bbox.Extend(triangle.V2)
		bbox.Extend(triangle.V3)
	}
	m.bounds = bbox
	m.boundsValid = true
	return bbox
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range m.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}

// Intersect casts the ray against every facet and returns the nearest hit
// point on the surface. ok is false when the ray misses the mesh.
func (m *Model) Intersect(ray geometry.Ray) (geometry.Vector3, bool) {
	if !ray.IntersectBox(m.BoundingBox()) {
		return geometry.Vector3{}, false
	}

	nearest := math.MaxFloat64
	found := false
	for _, triangle := range m.Triangles {
		t, ok := ray.IntersectTriangle(triangle)
		if ok && t < nearest {
			nearest = t
			found = true
		}
	}
	if !found {
		return geometry.Vector3{}, false
	}
	return ray.At(nearest), true
}
