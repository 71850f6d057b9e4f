package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/measurement"
	"github.com/philipparndt/roofmeasure/internal/session"
	"github.com/philipparndt/roofmeasure/pkg/analysis"
	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

var (
	measureType     string
	measurePoints   []string
	measureSnap     bool
	measureSave     bool
	measureDescribe string
)

var measureCmd = &cobra.Command{
	Use:   "measure [mesh]",
	Short: "Measure a length, height or area between given points",
	Long: `Create a measurement from points given as x,y,z coordinates.
Length and height take two points, an area takes three or more. With --snap
every point moves to the nearest mesh vertex first.`,
	Example: `  roofmeasure measure roof.stl --type length --point 0,0,0 --point 3,0,4
  roofmeasure measure roof.stl --type area -p 0,0,0 -p 2,0,0 -p 2,0,2 -p 0,0,2 --save`,
	Args: cobra.ExactArgs(1),
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().StringVarP(&measureType, "type", "t", "length", "Measurement type: length, height or area")
	measureCmd.Flags().StringArrayVarP(&measurePoints, "point", "p", nil, "Point as x,y,z (repeat for every point)")
	measureCmd.Flags().BoolVar(&measureSnap, "snap", false, "Snap points to the nearest mesh vertex")
	measureCmd.Flags().BoolVar(&measureSave, "save", false, "Add the measurement to the file stored next to the mesh")
	measureCmd.Flags().StringVar(&measureDescribe, "describe", "", "Description stored with the measurement")

	_ = measureCmd.MarkFlagRequired("point")
}

func runMeasure(cmd *cobra.Command, args []string) error {
	filename := args[0]

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	typ, err := measurement.ParseType(measureType)
	if err != nil {
		return err
	}

	points := make([]geometry.Vector3, 0, len(measurePoints))
	for _, raw := range measurePoints {
		p, err := parsePoint(raw)
		if err != nil {
			return err
		}
		points = append(points, p)
	}

	src, err := loadMesh(cmd.Context(), filename, log)
	if err != nil {
		return err
	}
	model := src.Model
	if measureSnap {
		for i, p := range points {
			nearest, dist := analysis.FindNearestVertex(model, p)
			log.Debug("snapped point", zap.Int("index", i), zap.Float64("distance", dist))
			points[i] = nearest
		}
	}

	cfg, err := sessionConfig(conf, model)
	if err != nil {
		return err
	}
	s := session.New(model, cfg, log)

	storePath := session.PathFor(filename)
	if measureSave {
		if err := s.LoadFrom(storePath); err != nil {
			log.Warn("some saved measurements were skipped", zap.Error(err))
		}
	}

	m, err := createMeasurement(s.Store, typ, points, measureDescribe)
	if err != nil {
		return err
	}
	printMeasurement(cmd.OutOrStdout(), s, m)

	if measureSave {
		return s.SaveTo(storePath, filepath.Base(filename))
	}
	return nil
}

// createMeasurement runs the store operations a user would trigger by
// clicking the points
func createMeasurement(store *measurement.Store, typ measurement.Type, points []geometry.Vector3, description string) (measurement.Measurement, error) {
	id, err := store.Start(typ)
	if err != nil {
		return measurement.Measurement{}, err
	}
	discard := func(err error) (measurement.Measurement, error) {
		_ = store.Delete(id)
		return measurement.Measurement{}, err
	}

	for _, p := range points {
		if err := store.AddPoint(id, p); err != nil {
			return discard(errors.Wrapf(err, "%s takes 2 points, got %d", typ, len(points)))
		}
	}

	m, _ := store.Get(id)
	switch {
	case typ == measurement.TypeArea:
		if err := store.CompleteArea(id); err != nil {
			return discard(err)
		}
	case m.IsActive:
		return discard(errors.Errorf("%s needs 2 points, got %d", typ, len(points)))
	}

	if description != "" {
		if err := store.Update(id, measurement.Patch{Description: &description}); err != nil {
			return discard(err)
		}
	}

	m, _ = store.Get(id)
	return m, nil
}

func printMeasurement(out io.Writer, s *session.Session, m measurement.Measurement) {
	fmt.Fprintf(out, "%s measurement\n", strings.ToUpper(string(m.Type[:1]))+string(m.Type[1:]))
	fmt.Fprintln(out, strings.Repeat("=", len(m.Type)+12))
	for i, p := range m.Points {
		fmt.Fprintf(out, "  Point %d: %s\n", i+1, geometry.FormatVector(p.World))
	}

	fmt.Fprintf(out, "\nValue: %.6f %s\n", m.Value, m.Unit)
	if v, ok := s.Table.Get(m.ID); ok && v.Label != nil {
		fmt.Fprintf(out, "Label: %s\n", v.Label.Text)
	}
	if m.Inclination != nil {
		fmt.Fprintf(out, "Inclination: %s\n", geometry.FormatInclination(*m.Inclination))
	}
	if m.Type == measurement.TypeArea {
		fmt.Fprintf(out, "Perimeter: %s\n", geometry.FormatLength(m.Perimeter))
		fmt.Fprintf(out, "Plane deviation: %.6f\n", m.PlaneDeviation)
	}
	if m.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", m.Description)
	}
}

// parsePoint reads "x,y,z"
func parsePoint(raw string) (geometry.Vector3, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return geometry.Vector3{}, errors.Errorf("point %q: expected x,y,z", raw)
	}
	var coords [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geometry.Vector3{}, errors.Wrapf(err, "point %q", raw)
		}
		coords[i] = v
	}
	return geometry.NewVector3(coords[0], coords[1], coords[2]), nil
}
