package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/session"
	"github.com/philipparndt/roofmeasure/pkg/analysis"
	"github.com/philipparndt/roofmeasure/pkg/mesh"
	"github.com/philipparndt/roofmeasure/pkg/stl"
)

// setDefaults registers every config key so that environment variables and
// config files can override them
func setDefaults(v *viper.Viper, cfg session.Config) {
	v.SetDefault("measurement.closing_proximity", cfg.Measurement.ClosingProximity)
	v.SetDefault("measurement.inclination_threshold", cfg.Measurement.InclinationThreshold)

	v.SetDefault("interaction.hit_radius", 0.0)
	v.SetDefault("interaction.touch_hit_radius", cfg.Interaction.TouchHitRadius)
	v.SetDefault("interaction.completion_proximity", cfg.Interaction.CompletionProximity)
	v.SetDefault("interaction.debounce", cfg.Interaction.Debounce)

	v.SetDefault("visual.label_offset", cfg.Visual.LabelOffset)
	v.SetDefault("visual.lateral_offset", cfg.Visual.LateralOffset)
	v.SetDefault("visual.base_scale", cfg.Visual.BaseScale)
	v.SetDefault("visual.min_factor", cfg.Visual.MinFactor)
	v.SetDefault("visual.k", cfg.Visual.K)

	v.SetDefault("openscad", "openscad")
	v.SetDefault("width", cfg.Width)
	v.SetDefault("height", cfg.Height)
}

// bindAll binds flags to config keys. Flags left at their zero default do
// not shadow config file or environment values.
func bindAll(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// configureEnv lets ROOFMEASURE_INTERACTION_HIT_RADIUS and friends override
// any registered key
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("ROOFMEASURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// sessionConfig reads the effective configuration. A zero hit radius is
// derived from the mesh so picking scales with the model.
func sessionConfig(v *viper.Viper, model *stl.Model) (session.Config, error) {
	var cfg session.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decode configuration")
	}

	defaults := session.DefaultConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaults.Width, defaults.Height
	}
	if cfg.Interaction.TouchHitRadius <= 0 {
		cfg.Interaction.TouchHitRadius = defaults.Interaction.TouchHitRadius
	}
	if cfg.Interaction.Debounce <= 0 {
		cfg.Interaction.Debounce = defaults.Interaction.Debounce
	}

	if cfg.Interaction.HitRadius <= 0 {
		cfg.Interaction.HitRadius = defaults.Interaction.HitRadius
		if model != nil {
			if r := analysis.SuggestedHitRadius(model); r > 0 {
				cfg.Interaction.HitRadius = r
			}
		}
	}
	return cfg, nil
}

// loadMesh reads an STL file or renders an OpenSCAD source
func loadMesh(ctx context.Context, path string, log *zap.Logger) (*mesh.Source, error) {
	return mesh.Load(ctx, path,
		mesh.WithOpenSCAD(conf.GetString("openscad")),
		mesh.WithLogger(log))
}
