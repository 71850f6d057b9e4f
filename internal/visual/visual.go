package visual

import (
	"fmt"
	"math"

	"github.com/philipparndt/roofmeasure/internal/measurement"
	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

// Config holds label placement and scaling tunables
type Config struct {
	// LabelOffset lifts length and area labels above their anchor
	LabelOffset float64 `mapstructure:"label_offset"`
	// LateralOffset moves height labels sideways off the vertical line
	LateralOffset float64 `mapstructure:"lateral_offset"`
	// InclinationThreshold in degrees above which length labels show the
	// inclination. Attach replaces it with the store's threshold.
	InclinationThreshold float64 `mapstructure:"inclination_threshold"`

	BaseScale float64 `mapstructure:"base_scale"`
	MinFactor float64 `mapstructure:"min_factor"`
	K         float64 `mapstructure:"k"`
}

// DefaultConfig returns the defaults used by the viewer
func DefaultConfig() Config {
	return Config{
		LabelOffset:          0.15,
		LateralOffset:        0.2,
		InclinationThreshold: measurement.DefaultConfig().InclinationThreshold,
		BaseScale:            1,
		MinFactor:            0.5,
		K:                    0.1,
	}
}

// Scale returns the label scale for a camera distance. Labels never shrink
// below MinFactor and grow linearly with distance.
func (c Config) Scale(distance float64) float64 {
	return c.BaseScale * math.Max(c.MinFactor, distance*c.K)
}

// Segment is a line between two world points
type Segment struct {
	Start geometry.Vector3 `json:"start"`
	End   geometry.Vector3 `json:"end"`
}

// Label is the text shown for a measurement and where it sits
type Label struct {
	Text   string           `json:"text"`
	Anchor geometry.Vector3 `json:"anchor"`
}

// Visual is what the presentation layer draws for one measurement
type Visual struct {
	ID       string             `json:"id"`
	Type     measurement.Type   `json:"type"`
	Points   []geometry.Vector3 `json:"points"`
	Segments []Segment          `json:"segments"`
	Label    *Label             `json:"label,omitempty"`
	Visible  bool               `json:"visible"`
	Editing  bool               `json:"editing"`
}

// Build derives the visual of a measurement
func Build(cfg Config, m measurement.Measurement) Visual {
	pts := m.Positions()
	v := Visual{
		ID:      m.ID,
		Type:    m.Type,
		Points:  pts,
		Visible: m.Visible,
		Editing: m.EditMode,
	}

	switch m.Type {
	case measurement.TypeLength:
		if len(pts) == 2 {
			v.Segments = []Segment{{Start: pts[0], End: pts[1]}}
			v.Label = &Label{
				Text:   lengthText(cfg, m),
				Anchor: pts[0].Midpoint(pts[1]).Add(geometry.NewVector3(0, cfg.LabelOffset, 0)),
			}
		}
	case measurement.TypeHeight:
		if len(pts) == 2 {
			p1, p2 := pts[0], pts[1]
			corner := geometry.NewVector3(p1.X, p2.Y, p1.Z)
			v.Segments = []Segment{{Start: p1, End: corner}}
			if !corner.NearlyEqual(p2, geometry.ClosureEpsilon) {
				v.Segments = append(v.Segments, Segment{Start: corner, End: p2})
			}
			v.Label = &Label{
				Text:   geometry.FormatLength(m.Value),
				Anchor: geometry.NewVector3(p1.X+cfg.LateralOffset, (p1.Y+p2.Y)/2, p1.Z),
			}
		}
	case measurement.TypeArea:
		ring := pts
		if m.IsComplete {
			ring = geometry.EnsureClosedPolygon(pts)
		}
		v.Segments = polyline(ring)
		if len(pts) >= 3 {
			v.Label = &Label{
				Text:   geometry.FormatArea(m.Value),
				Anchor: geometry.Centroid(geometry.OpenRing(pts)).Add(geometry.NewVector3(0, cfg.LabelOffset, 0)),
			}
		}
	}
	return v
}

func lengthText(cfg Config, m measurement.Measurement) string {
	text := geometry.FormatLength(m.Value)
	if m.SignificantlyInclined(cfg.InclinationThreshold) {
		text = fmt.Sprintf("%s (%s)", text, geometry.FormatInclination(*m.Inclination))
	}
	return text
}

func polyline(points []geometry.Vector3) []Segment {
	if len(points) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		out = append(out, Segment{Start: points[i-1], End: points[i]})
	}
	return out
}
