package geometry

import "math"

const rayEpsilon = 1e-9

// Ray is a half-line starting at Origin. Direction is expected to be normalized.
type Ray struct {
	Origin    Vector3
	Direction Vector3
}

// NewRay creates a ray and normalizes its direction
func NewRay(origin, direction Vector3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vector3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// DistanceToPoint calculates the distance from the ray to a point.
// Points behind the origin are measured against the origin itself.
func (r Ray) DistanceToPoint(point Vector3) float64 {
	t := point.Sub(r.Origin).Dot(r.Direction)
	if t < 0 {
		t = 0
	}
	return point.Distance(r.At(t))
}

// IntersectTriangle returns the ray parameter of the hit with the triangle
// (Möller–Trumbore). Both faces are hit.
func (r Ray) IntersectTriangle(tri Triangle) (float64, bool) {
	edge1 := tri.V2.Sub(tri.V1)
	edge2 := tri.V3.Sub(tri.V1)

	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if math.Abs(det) < rayEpsilon {
		return 0, false
	}
	inv := 1.0 / det

	s := r.Origin.Sub(tri.V1)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := edge2.Dot(q) * inv
	if t < rayEpsilon {
		return 0, false
	}
	return t, true
}

// IntersectBox reports whether the ray passes through the box (slab test)
func (r Ray) IntersectBox(b BoundingBox) bool {
	if b.Empty() {
		return false
	}

	tMin := 0.0
	tMax := math.MaxFloat64

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < rayEpsilon {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}
