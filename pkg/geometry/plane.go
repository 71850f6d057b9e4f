package geometry

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Plane is an infinite plane through Point with unit Normal
type Plane struct {
	Point  Vector3
	Normal Vector3
}

// Distance returns the unsigned distance from the plane to p
func (pl Plane) Distance(p Vector3) float64 {
	return math.Abs(p.Sub(pl.Point).Dot(pl.Normal))
}

// FitPlane computes the least-squares plane through the points. The normal is
// the right singular vector of the centered point matrix belonging to the
// smallest singular value.
func FitPlane(points []Vector3) (Plane, error) {
	if len(points) < 3 {
		return Plane{}, errors.Errorf("need at least 3 points to fit a plane, got %d", len(points))
	}

	centroid := Centroid(points)
	data := make([]float64, 0, len(points)*3)
	for _, p := range points {
		d := p.Sub(centroid)
		data = append(data, d.X, d.Y, d.Z)
	}
	m := mat.NewDense(len(points), 3, data)

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return Plane{}, errors.New("plane fit: SVD did not converge")
	}
	var v mat.Dense
	svd.VTo(&v)

	normal := NewVector3(v.At(0, 2), v.At(1, 2), v.At(2, 2)).Normalize()
	return Plane{Point: centroid, Normal: normal}, nil
}

// PlaneDeviation returns the largest distance of any point from the
// least-squares plane of the polygon. Planar rings yield ~0; fewer than 3
// points yield 0.
func PlaneDeviation(points []Vector3) float64 {
	ring := OpenRing(points)
	plane, err := FitPlane(ring)
	if err != nil {
		return 0
	}
	deviation := 0.0
	for _, p := range ring {
		deviation = math.Max(deviation, plane.Distance(p))
	}
	return deviation
}
