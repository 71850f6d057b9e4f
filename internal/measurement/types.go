package measurement

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

// Type selects what a measurement derives from its points
type Type string

const (
	TypeNone   Type = "none" // no active tool
	TypeLength Type = "length"
	TypeHeight Type = "height"
	TypeArea   Type = "area"
)

// ParseType converts a tool name into a Type
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeLength:
		return TypeLength, nil
	case TypeHeight:
		return TypeHeight, nil
	case TypeArea:
		return TypeArea, nil
	case TypeNone, "":
		return TypeNone, nil
	}
	return TypeNone, errors.Errorf("unknown measurement type %q", s)
}

// Unit returns the fixed unit of the measurement value
func (t Type) Unit() string {
	if t == TypeArea {
		return "m²"
	}
	return "m"
}

// segmentPoints is the point count at which length and height measurements
// finalize; 0 means open-ended
func (t Type) segmentPoints() int {
	switch t {
	case TypeLength, TypeHeight:
		return 2
	}
	return 0
}

// Point is a placed measurement point. Position and World coincide once the
// point is committed.
type Point struct {
	Position geometry.Vector3 `json:"position"`
	World    geometry.Vector3 `json:"world"`
}

// NewPoint creates a committed point at p
func NewPoint(p geometry.Vector3) Point {
	return Point{Position: p, World: p}
}

// Measurement is a single length, height or area annotation on the mesh
type Measurement struct {
	ID     string  `json:"id"`
	Type   Type    `json:"type"`
	Points []Point `json:"points"`

	Value       float64  `json:"value"`
	Unit        string   `json:"unit"`
	Inclination *float64 `json:"inclination,omitempty"`

	// Area only
	Perimeter      float64 `json:"perimeter,omitempty"`
	PlaneDeviation float64 `json:"planeDeviation,omitempty"`

	IsActive    bool   `json:"isActive"`
	IsComplete  bool   `json:"isComplete"`
	Visible     bool   `json:"visible"`
	EditMode    bool   `json:"editMode"`
	Description string `json:"description,omitempty"`
}

// Positions returns the world positions of all points in order
func (m Measurement) Positions() []geometry.Vector3 {
	out := make([]geometry.Vector3, len(m.Points))
	for i, p := range m.Points {
		out[i] = p.World
	}
	return out
}

// SignificantlyInclined reports whether the inclination exceeds threshold degrees
func (m Measurement) SignificantlyInclined(threshold float64) bool {
	return m.Inclination != nil && *m.Inclination > threshold
}

// Clone returns a deep copy
func (m Measurement) Clone() Measurement {
	c := m
	c.Points = append([]Point(nil), m.Points...)
	if m.Inclination != nil {
		incl := *m.Inclination
		c.Inclination = &incl
	}
	return c
}

// recompute derives Value, Inclination and the area diagnostics from Points
func (m *Measurement) recompute() {
	pts := m.Positions()
	m.Unit = m.Type.Unit()
	m.Value = 0
	m.Inclination = nil
	m.Perimeter = 0
	m.PlaneDeviation = 0

	switch m.Type {
	case TypeLength:
		if len(pts) == 2 {
			m.Value = geometry.Distance(pts[0], pts[1])
			if pts[0] != pts[1] {
				incl := geometry.InclinationDegrees(pts[0], pts[1])
				m.Inclination = &incl
			}
		}
	case TypeHeight:
		if len(pts) == 2 {
			m.Value = geometry.HeightDifference(pts[0], pts[1])
		}
	case TypeArea:
		if len(pts) >= 3 {
			m.Value = geometry.PolygonArea(pts)
			m.Perimeter = geometry.Perimeter(pts)
			m.PlaneDeviation = geometry.PlaneDeviation(pts)
		}
	}
}
