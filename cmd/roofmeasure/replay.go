package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/measurement"
	"github.com/philipparndt/roofmeasure/internal/session"
	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

type replayOptions struct {
	load   bool
	save   bool
	asJSON bool
}

var replayOpts replayOptions

var replayCmd = &cobra.Command{
	Use:   "replay [script] [mesh]",
	Short: "Replay a recorded pointer script against a mesh",
	Long: `Run a YAML script of pointer and keyboard steps through the interaction
engine and print the resulting measurements and labels. The mesh defaults to
the script's mesh entry, resolved relative to the script.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		meshArg := ""
		if len(args) > 1 {
			meshArg = args[1]
		}
		_, err = replay(cmd.Context(), cmd.OutOrStdout(), args[0], meshArg, replayOpts, log)
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	addReplayFlags(replayCmd, &replayOpts)
}

func addReplayFlags(cmd *cobra.Command, opts *replayOptions) {
	cmd.Flags().BoolVar(&opts.load, "load", false, "Start from the measurements stored next to the mesh")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the resulting measurements next to the mesh")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print measurements and labels as JSON")
}

// replay runs one script and returns the files the result depends on
func replay(ctx context.Context, out io.Writer, scriptPath, meshArg string, opts replayOptions, log *zap.Logger) ([]string, error) {
	watched := []string{scriptPath}
	script, err := session.LoadScript(scriptPath)
	if err != nil {
		return watched, err
	}
	meshPath, err := resolveMesh(scriptPath, meshArg, script)
	if err != nil {
		return watched, err
	}
	watched = append(watched, meshPath)

	src, err := loadMesh(ctx, meshPath, log)
	if err != nil {
		return watched, err
	}
	watched = append(watched[:1], src.Files...)
	model := src.Model

	cfg, err := sessionConfig(conf, model)
	if err != nil {
		return watched, err
	}
	log.Debug("replaying",
		zap.String("script", scriptPath),
		zap.String("mesh", meshPath),
		zap.Int("steps", len(script.Steps)),
		zap.Float64("hitRadius", cfg.Interaction.HitRadius))

	s := session.New(model, cfg, log)
	storePath := session.PathFor(meshPath)
	if opts.load {
		if err := s.LoadFrom(storePath); err != nil {
			log.Warn("some saved measurements were skipped", zap.Error(err))
		}
	}

	if err := s.Run(script); err != nil {
		return watched, err
	}

	if err := printReport(out, s, opts.asJSON); err != nil {
		return watched, err
	}
	if opts.save {
		return watched, s.SaveTo(storePath, filepath.Base(meshPath))
	}
	return watched, nil
}

func resolveMesh(scriptPath, meshArg string, script *session.Script) (string, error) {
	if meshArg != "" {
		return meshArg, nil
	}
	if script.Mesh == "" {
		return "", errors.Errorf("script %s names no mesh; pass one as second argument", scriptPath)
	}
	if filepath.IsAbs(script.Mesh) {
		return script.Mesh, nil
	}
	return filepath.Join(filepath.Dir(scriptPath), script.Mesh), nil
}

type report struct {
	Measurements []measurement.Measurement `json:"measurements"`
	Labels       []session.LabelView       `json:"labels"`
}

func printReport(out io.Writer, s *session.Session, asJSON bool) error {
	snapshot := s.Store.Snapshot()
	labels := s.Labels()

	if asJSON {
		data, err := json.MarshalIndent(report{Measurements: snapshot, Labels: labels}, "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshal report")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	fmt.Fprintf(out, "Measurements: %d\n", len(snapshot))
	for i, m := range snapshot {
		state := "complete"
		switch {
		case m.Type == measurement.TypeArea && !m.IsComplete:
			state = "open"
		case m.IsActive:
			state = "placing"
		}
		fmt.Fprintf(out, "  #%d %-6s %-8s %s", i, m.Type, state, formatValue(m))
		if m.Description != "" {
			fmt.Fprintf(out, "  %q", m.Description)
		}
		fmt.Fprintln(out)
	}

	if len(labels) > 0 {
		fmt.Fprintln(out, "\nLabels:")
		for _, l := range labels {
			anchor := geometry.NewVector3(l.Anchor[0], l.Anchor[1], l.Anchor[2])
			fmt.Fprintf(out, "  %-16s at %s scale %.2f\n", l.Text, geometry.FormatVector(anchor), l.Scale)
		}
	}
	return nil
}

func formatValue(m measurement.Measurement) string {
	if m.Type == measurement.TypeArea {
		return geometry.FormatArea(m.Value)
	}
	return geometry.FormatLength(m.Value)
}
