package geometry

import "math"

// ClosureEpsilon is the distance under which the first and last point of a
// polygon are considered the same point (1 mm at metric scale).
const ClosureEpsilon = 1e-3

// degenerateNormal is the relative cross product length under which the
// centroid edges are treated as collinear.
const degenerateNormal = 1e-9

// Distance returns the Euclidean distance between two points
func Distance(p1, p2 Vector3) float64 {
	return p1.Distance(p2)
}

// HeightDifference returns the absolute vertical distance between two points
func HeightDifference(p1, p2 Vector3) float64 {
	return math.Abs(p2.Y - p1.Y)
}

// HorizontalDistance returns the distance between two points projected onto
// the horizontal XZ plane
func HorizontalDistance(p1, p2 Vector3) float64 {
	dx := p2.X - p1.X
	dz := p2.Z - p1.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// InclinationDegrees returns the elevation angle of the segment p1→p2 in
// degrees, rounded to one decimal. The result lies in [0, 90].
// Coincident points yield 0; callers that care must guard against them.
func InclinationDegrees(p1, p2 Vector3) float64 {
	rad := math.Atan2(HeightDifference(p1, p2), HorizontalDistance(p1, p2))
	return math.Round(rad*180.0/math.Pi*10) / 10
}

// Centroid returns the arithmetic mean of the points
func Centroid(points []Vector3) Vector3 {
	if len(points) == 0 {
		return Vector3{}
	}
	var sum Vector3
	for _, p := range points {
		sum = sum.Add(p)
	}
	n := float64(len(points))
	return Vector3{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

// EnsureClosedPolygon returns the points with the first point appended at the
// end, unless the ring is already closed within ClosureEpsilon.
// A single point is never treated as closed and comes back doubled, which a
// second call leaves as it is. The input slice is never modified.
func EnsureClosedPolygon(points []Vector3) []Vector3 {
	closed := make([]Vector3, len(points), len(points)+1)
	copy(closed, points)
	if len(points) == 0 {
		return closed
	}
	if len(points) > 1 && points[0].NearlyEqual(points[len(points)-1], ClosureEpsilon) {
		return closed
	}
	return append(closed, points[0])
}

// OpenRing strips a trailing closing point, the inverse of EnsureClosedPolygon
func OpenRing(points []Vector3) []Vector3 {
	n := len(points)
	if n > 1 && points[0].NearlyEqual(points[n-1], ClosureEpsilon) {
		n--
	}
	ring := make([]Vector3, n)
	copy(ring, points[:n])
	return ring
}

// Perimeter returns the length of the closed polygon outline
func Perimeter(points []Vector3) float64 {
	closed := EnsureClosedPolygon(points)
	total := 0.0
	for i := 0; i+1 < len(closed); i++ {
		total += closed[i].Distance(closed[i+1])
	}
	return total
}

// PolygonArea returns the area of the polygon after flattening it onto an
// approximate plane through its centroid. The plane normal is the cross
// product of the centroid edges to the second and third point; when those
// edges are collinear the least-squares normal is used instead.
// Fewer than 3 distinct points yield 0. Winding does not affect the result.
func PolygonArea(points []Vector3) float64 {
	ring := OpenRing(points)
	if len(ring) < 3 {
		return 0
	}

	centroid := Centroid(ring)
	normal, ok := estimateNormal(ring, centroid)
	if !ok {
		return 0
	}
	xAxis, zAxis := planeBasis(normal)

	closed := EnsureClosedPolygon(ring)
	signed := 0.0
	for i := 0; i+1 < len(closed); i++ {
		a := closed[i].Sub(centroid)
		b := closed[i+1].Sub(centroid)
		ax, az := a.Dot(xAxis), a.Dot(zAxis)
		bx, bz := b.Dot(xAxis), b.Dot(zAxis)
		signed += ax*bz - bx*az
	}
	return math.Abs(signed) / 2
}

func estimateNormal(ring []Vector3, centroid Vector3) (Vector3, bool) {
	e1 := ring[1].Sub(centroid)
	e2 := ring[2].Sub(centroid)
	normal := e1.Cross(e2)
	if normal.Length() > degenerateNormal*e1.Length()*e2.Length() && normal.Length() > 0 {
		return normal.Normalize(), true
	}

	plane, err := FitPlane(ring)
	if err != nil || plane.Normal.Length() == 0 {
		return Vector3{}, false
	}
	return plane.Normal, true
}

// planeBasis returns two orthonormal axes spanning the plane with the given
// unit normal
func planeBasis(normal Vector3) (Vector3, Vector3) {
	helper := NewVector3(0, 1, 0)
	if math.Abs(normal.Y) > 0.9 {
		helper = NewVector3(1, 0, 0)
	}
	xAxis := helper.Cross(normal).Normalize()
	zAxis := normal.Cross(xAxis)
	return xAxis, zAxis
}
