package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/roofmeasure/internal/session"
	"github.com/philipparndt/roofmeasure/pkg/analysis"
	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

var infoCmd = &cobra.Command{
	Use:   "info [mesh]",
	Short: "Display general information about a survey mesh",
	Long:  "Show dimensions, triangle count, surface area, edge statistics and the pick radius derived from the mesh.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	src, err := loadMesh(cmd.Context(), filename, log)
	if err != nil {
		return err
	}
	model := src.Model

	result := analysis.AnalyzeModel(model)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Mesh Information")
	fmt.Fprintln(out, "================")
	if model.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", model.Name)
	}
	fmt.Fprintf(out, "File: %s\n", filename)
	if src.Rendered {
		fmt.Fprintf(out, "Rendered from %d source file(s)\n", len(src.Files))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Triangles: %d\n", result.TriangleCount)
	fmt.Fprintf(out, "  Edges: %d\n", result.EdgeCount)
	fmt.Fprintf(out, "  Surface Area: %s\n\n", geometry.FormatArea(result.SurfaceArea))

	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", geometry.FormatVector(result.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", geometry.FormatVector(result.BoundingBox.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", geometry.FormatVector(result.BoundingBox.Center()))

	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Width (X): %s\n", geometry.FormatLength(result.Dimensions.X))
	fmt.Fprintf(out, "  Height (Y): %s\n", geometry.FormatLength(result.Dimensions.Y))
	fmt.Fprintf(out, "  Depth (Z): %s\n", geometry.FormatLength(result.Dimensions.Z))
	fmt.Fprintf(out, "  Diagonal: %s\n\n", geometry.FormatLength(result.BoundingBox.Diagonal()))

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %.6f\n", result.MinEdgeLength)
	fmt.Fprintf(out, "  Maximum: %.6f\n", result.MaxEdgeLength)
	fmt.Fprintf(out, "  Average: %.6f\n\n", result.AvgEdgeLength)

	fmt.Fprintf(out, "Suggested hit radius: %.4f\n", analysis.SuggestedHitRadius(model))

	doc, err := session.Load(session.PathFor(filename))
	if err != nil {
		return err
	}
	if len(doc.Measurements) > 0 {
		fmt.Fprintf(out, "Saved measurements: %d\n", len(doc.Measurements))
	}
	return nil
}
