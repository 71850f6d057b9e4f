// Package mesh loads survey meshes from STL files or renders them from
// parametric OpenSCAD sources.
package mesh

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/pkg/openscad"
	"github.com/philipparndt/roofmeasure/pkg/stl"
)

// ErrUnsupported is returned for files that are neither STL nor OpenSCAD
var ErrUnsupported = errors.New("unsupported mesh file")

// Source is a loaded mesh together with the files it was built from
type Source struct {
	Path  string
	Model *stl.Model
	// Files lists every file whose change invalidates the model
	Files []string
	// Rendered is set when the model came out of OpenSCAD
	Rendered bool
}

type options struct {
	openscad string
	log      *zap.Logger
}

// Option configures Load
type Option func(*options)

// WithOpenSCAD sets the openscad executable used for .scad sources
func WithOpenSCAD(binary string) Option {
	return func(o *options) { o.openscad = binary }
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// Load reads the mesh at path
func Load(ctx context.Context, path string, opts ...Option) (*Source, error) {
	o := options{openscad: "openscad", log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		model, err := stl.Parse(path)
		if err != nil {
			return nil, errors.Wrapf(err, "parse STL file %s", path)
		}
		return &Source{Path: path, Model: model, Files: []string{path}}, nil
	case ".scad":
		return render(ctx, path, o)
	default:
		return nil, errors.Wrapf(ErrUnsupported, "%s (expected .stl or .scad)", path)
	}
}

func render(ctx context.Context, path string, o options) (*Source, error) {
	renderer := openscad.NewRenderer(filepath.Dir(path),
		openscad.WithBinary(o.openscad),
		openscad.WithLogger(o.log.Named("openscad")))

	deps, err := renderer.ResolveDependencies(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "roofmeasure-*.stl")
	if err != nil {
		return nil, errors.Wrap(err, "create temporary STL file")
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := renderer.RenderToSTL(ctx, filepath.Base(path), tmpPath); err != nil {
		return nil, err
	}
	model, err := stl.Parse(tmpPath)
	if err != nil {
		return nil, errors.Wrap(err, "parse rendered STL")
	}
	model.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	o.log.Info("rendered model",
		zap.String("source", path),
		zap.Int("triangles", model.TriangleCount()),
		zap.Int("dependencies", len(deps)-1))
	return &Source{Path: path, Model: model, Files: deps, Rendered: true}, nil
}
