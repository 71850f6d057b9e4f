package session

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/measurement"
)

const (
	fileSuffix    = ".roofmeasure.json"
	formatVersion = "1.0"
)

// Document is the saved form of a session's measurements
type Document struct {
	Version      string                    `json:"version"`
	Mesh         string                    `json:"mesh,omitempty"`
	Measurements []measurement.Measurement `json:"measurements"`
}

// PathFor returns the measurement file kept next to a mesh
func PathFor(meshPath string) string {
	return meshPath + fileSuffix
}

// Save writes the measurements to path. Without measurements an existing
// file is removed instead.
func Save(path, mesh string, measurements []measurement.Measurement) error {
	if len(measurements) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "remove empty measurements file")
		}
		return nil
	}

	doc := Document{
		Version:      formatVersion,
		Mesh:         mesh,
		Measurements: measurements,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal measurements")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write measurements file")
	}
	return nil
}

// Load reads a measurement file. A missing file yields an empty document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Document{Version: formatVersion}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read measurements file")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse measurements file %s", path)
	}
	return &doc, nil
}

// SaveTo writes the session's measurements to path
func (s *Session) SaveTo(path, mesh string) error {
	snapshot := s.Store.Snapshot()
	if err := Save(path, mesh, snapshot); err != nil {
		return err
	}
	s.log.Info("measurements saved", zap.String("path", path), zap.Int("count", len(snapshot)))
	return nil
}

// LoadFrom restores measurements saved at path into the session. Records
// that do not fit the model are skipped and reported in the error.
func (s *Session) LoadFrom(path string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	if len(doc.Measurements) == 0 {
		return nil
	}
	err = s.Store.Restore(doc.Measurements)
	s.log.Info("measurements loaded", zap.String("path", path), zap.Int("count", s.Store.Len()))
	return err
}
