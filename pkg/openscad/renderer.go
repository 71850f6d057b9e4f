package openscad

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNotInstalled is returned when the openscad binary cannot be found
var ErrNotInstalled = errors.New("openscad not found in PATH")

var dependencyPattern = regexp.MustCompile(`^\s*(?:use|include)\s*<([^>]+)>`)

// Renderer turns parametric roof models written in OpenSCAD into STL meshes
type Renderer struct {
	workDir string
	binary  string
	log     *zap.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithBinary overrides the openscad executable
func WithBinary(path string) Option {
	return func(r *Renderer) { r.binary = path }
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) { r.log = log }
}

// NewRenderer creates a renderer resolving relative paths against workDir
func NewRenderer(workDir string, opts ...Option) *Renderer {
	r := &Renderer{workDir: workDir, binary: "openscad", log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.workDir, path)
}

// RenderToSTL renders scadFile into outputFile
func (r *Renderer) RenderToSTL(ctx context.Context, scadFile, outputFile string) error {
	binary, err := exec.LookPath(r.binary)
	if err != nil {
		return errors.Wrap(ErrNotInstalled, r.binary)
	}

	cmd := exec.CommandContext(ctx, binary, "-o", outputFile, r.abs(scadFile))
	cmd.Dir = r.workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("rendering", zap.String("source", scadFile), zap.String("output", outputFile))
	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String() + stdout.String())
		if output != "" {
			return errors.Wrapf(err, "render %s: %s", scadFile, output)
		}
		return errors.Wrapf(err, "render %s", scadFile)
	}
	return nil
}

// ResolveDependencies returns scadFile followed by every file it pulls in
// through use or include statements, each listed once
func (r *Renderer) ResolveDependencies(scadFile string) ([]string, error) {
	visited := make(map[string]bool)
	var deps []string
	if err := r.resolve(r.abs(scadFile), visited, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

func (r *Renderer) resolve(file string, visited map[string]bool, deps *[]string) error {
	if visited[file] {
		return nil
	}
	visited[file] = true
	*deps = append(*deps, file)

	direct, err := r.parseDependencies(file)
	if err != nil {
		return err
	}
	for _, dep := range direct {
		if err := r.resolve(dep, visited, deps); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) parseDependencies(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "open model source")
	}
	defer f.Close()

	dir := filepath.Dir(file)
	var deps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if m := dependencyPattern.FindStringSubmatch(line); m != nil {
			deps = append(deps, r.locate(m[1], dir))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}
	return deps, nil
}

// locate finds a dependency next to the including file, falling back to the
// work directory
func (r *Renderer) locate(dep, dir string) string {
	if strings.HasPrefix(dep, "./") || strings.HasPrefix(dep, "../") {
		return filepath.Clean(filepath.Join(dir, dep))
	}
	local := filepath.Join(dir, dep)
	if _, err := os.Stat(local); err == nil {
		return filepath.Clean(local)
	}
	return filepath.Clean(filepath.Join(r.workDir, dep))
}
