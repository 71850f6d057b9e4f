package session

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/philipparndt/roofmeasure/internal/interaction"
	"github.com/philipparndt/roofmeasure/internal/measurement"
	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

// Script is a recorded sequence of pointer and keyboard actions
type Script struct {
	Mesh  string `yaml:"mesh"`
	View  View   `yaml:"view"`
	Steps []Step `yaml:"steps"`
}

// View adjusts the camera before the steps run. Angles are in radians.
type View struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Elevation float64 `yaml:"elevation"`
	Azimuth   float64 `yaml:"azimuth"`
	Zoom      float64 `yaml:"zoom"`
}

// Pointer is a pointer position given in screen pixels or as a world point
// that is projected through the camera
type Pointer struct {
	X      float64           `yaml:"x"`
	Y      float64           `yaml:"y"`
	World  *geometry.Vector3 `yaml:"world"`
	Touch  bool              `yaml:"touch"`
	Button string            `yaml:"button"`
}

// Target selects a measurement by its position in creation order
type Target struct {
	Measurement int    `yaml:"measurement"`
	Off         bool   `yaml:"off"`
	Text        string `yaml:"text"`
}

// Step holds exactly one action
type Step struct {
	Tool     string        `yaml:"tool"`
	Move     *Pointer      `yaml:"move"`
	Down     *Pointer      `yaml:"down"`
	Up       *Pointer      `yaml:"up"`
	Click    *Pointer      `yaml:"click"`
	Cancel   bool          `yaml:"cancel"`
	Edit     *Target       `yaml:"edit"`
	Describe *Target       `yaml:"describe"`
	Undo     bool          `yaml:"undo"`
	Complete bool          `yaml:"complete"`
	Delete   *int          `yaml:"delete"`
	Clear    bool          `yaml:"clear"`
	Wait     time.Duration `yaml:"wait"`
}

// Action names the action the step holds
func (s Step) Action() (string, error) {
	var set []string
	add := func(name string, ok bool) {
		if ok {
			set = append(set, name)
		}
	}
	add("tool", s.Tool != "")
	add("move", s.Move != nil)
	add("down", s.Down != nil)
	add("up", s.Up != nil)
	add("click", s.Click != nil)
	add("cancel", s.Cancel)
	add("edit", s.Edit != nil)
	add("describe", s.Describe != nil)
	add("undo", s.Undo)
	add("complete", s.Complete)
	add("delete", s.Delete != nil)
	add("clear", s.Clear)
	add("wait", s.Wait > 0)

	switch len(set) {
	case 0:
		return "", errors.New("step has no action")
	case 1:
		return set[0], nil
	}
	return "", errors.Errorf("step has %d actions (%s), expected one", len(set), strings.Join(set, ", "))
}

// ParseScript decodes and validates a YAML script
func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, errors.Wrap(err, "parse script YAML")
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// LoadScript reads a script file
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read script file")
	}
	script, err := ParseScript(data)
	if err != nil {
		return nil, errors.Wrapf(err, "script %s", path)
	}
	return script, nil
}

// Validate checks every step without running it
func (s *Script) Validate() error {
	for i, step := range s.Steps {
		action, err := step.Action()
		if err != nil {
			return errors.Wrapf(err, "step %d", i+1)
		}
		switch action {
		case "tool":
			if _, err := measurement.ParseType(step.Tool); err != nil {
				return errors.Wrapf(err, "step %d", i+1)
			}
		case "move", "down", "up", "click":
			p := step.pointer()
			if _, err := parseButton(p.Button); err != nil {
				return errors.Wrapf(err, "step %d", i+1)
			}
		}
	}
	return nil
}

func (s Step) pointer() *Pointer {
	switch {
	case s.Move != nil:
		return s.Move
	case s.Down != nil:
		return s.Down
	case s.Up != nil:
		return s.Up
	}
	return s.Click
}

func parseButton(name string) (interaction.Button, error) {
	switch strings.ToLower(name) {
	case "", "primary", "left":
		return interaction.ButtonPrimary, nil
	case "secondary", "right":
		return interaction.ButtonSecondary, nil
	case "middle":
		return interaction.ButtonMiddle, nil
	}
	return interaction.ButtonPrimary, errors.Errorf("unknown button %q", name)
}
