package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/session"
	"github.com/philipparndt/roofmeasure/version"
)

var conf = viper.New()

var rootCmd = &cobra.Command{
	Use:   "roofmeasure",
	Short: "Measure lengths, heights and areas on roof survey meshes",
	Long: `roofmeasure places length, height and area measurements on STL survey meshes.
Measurements can be given as coordinates or replayed from recorded pointer
scripts, and are stored next to the mesh.`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "",
		"Configuration file (YAML, TOML or JSON). Overridden by environment variables and flags.")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Float64("hit-radius", 0, "World-space pick radius; 0 derives it from the mesh")
	flags.Float64("touch-hit-radius", 0, "Touch pick radius in pixels")
	flags.Duration("debounce", 0, "Delay before an area auto-completes")
	flags.Float64("inclination-threshold", 0, "Show length inclinations above this many degrees")
	flags.String("openscad", "", "OpenSCAD executable used to render .scad models")
	flags.Float64("width", 0, "Viewport width in pixels")
	flags.Float64("height", 0, "Viewport height in pixels")

	setDefaults(conf, session.DefaultConfig())
	bindAll(conf, flags, map[string]string{
		"config":                "config",
		"verbose":               "verbose",
		"hit-radius":            "interaction.hit_radius",
		"touch-hit-radius":      "interaction.touch_hit_radius",
		"debounce":              "interaction.debounce",
		"inclination-threshold": "measurement.inclination_threshold",
		"openscad":              "openscad",
		"width":                 "width",
		"height":                "height",
	})
	configureEnv(conf)

	cobra.OnInitialize(func() {
		cfg := conf.GetString("config")
		if cfg == "" {
			return
		}
		conf.SetConfigFile(cfg)
		if err := conf.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config %s: %v\n", cfg, err)
			os.Exit(1)
		}
	})
}

func newLogger() (*zap.Logger, error) {
	if conf.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
