package analysis

import (
	"math"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
	"github.com/philipparndt/roofmeasure/pkg/stl"
)

// MeshStats summarises a loaded survey mesh
type MeshStats struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	SurfaceArea   float64
	TriangleCount int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
}

// AnalyzeModel collects size and edge statistics of a mesh
func AnalyzeModel(model *stl.Model) MeshStats {
	stats := MeshStats{
		BoundingBox:   model.BoundingBox(),
		SurfaceArea:   model.SurfaceArea(),
		TriangleCount: model.TriangleCount(),
	}
	stats.Dimensions = stats.BoundingBox.Size()

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for _, triangle := range model.Triangles {
		for _, length := range triangle.EdgeLengths() {
			totalLength += length
			minLength = math.Min(minLength, length)
			maxLength = math.Max(maxLength, length)
			stats.EdgeCount++
		}
	}

	if stats.EdgeCount > 0 {
		stats.MinEdgeLength = minLength
		stats.MaxEdgeLength = maxLength
		stats.AvgEdgeLength = totalLength / float64(stats.EdgeCount)
	}
	return stats
}

// AverageVertexSpacing estimates the typical distance between neighbouring
// vertices from a sample of at most 1000 triangles
func AverageVertexSpacing(model *stl.Model) float64 {
	sample := min(len(model.Triangles), 1000)
	if sample == 0 {
		return 0
	}
	total := 0.0
	for _, triangle := range model.Triangles[:sample] {
		lengths := triangle.EdgeLengths()
		total += (lengths[0] + lengths[1] + lengths[2]) / 3
	}
	return total / float64(sample)
}

// SuggestedHitRadius derives a world-space pick tolerance from the mesh:
// 2% of the largest dimension, but never tighter than three vertex spacings.
func SuggestedHitRadius(model *stl.Model) float64 {
	size := model.BoundingBox().Size()
	if model.TriangleCount() == 0 {
		return 0
	}
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	return math.Max(maxDim*0.02, AverageVertexSpacing(model)*3.0)
}

// FindNearestVertex finds the mesh vertex nearest to a given point
func FindNearestVertex(model *stl.Model, point geometry.Vector3) (geometry.Vector3, float64) {
	var nearestVertex geometry.Vector3
	minDistance := math.MaxFloat64

	for _, triangle := range model.Triangles {
		for _, vertex := range [3]geometry.Vector3{triangle.V1, triangle.V2, triangle.V3} {
			if distance := point.Distance(vertex); distance < minDistance {
				minDistance = distance
				nearestVertex = vertex
			}
		}
	}

	return nearestVertex, minDistance
}
