package session

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/interaction"
	"github.com/philipparndt/roofmeasure/internal/measurement"
)

// Run applies the script's view and executes its steps in order. Rejected
// mutations are logged and the script goes on; malformed steps stop it.
func (s *Session) Run(script *Script) error {
	if err := script.Validate(); err != nil {
		return err
	}
	s.applyView(script.View)

	for i, step := range script.Steps {
		if err := s.step(step); err != nil {
			return errors.Wrapf(err, "step %d", i+1)
		}
		s.Engine.Tick(s.Clock.Now())
	}
	return nil
}

func (s *Session) applyView(v View) {
	if v.Width > 0 {
		s.Camera.Width = v.Width
	}
	if v.Height > 0 {
		s.Camera.Height = v.Height
	}
	s.Camera.Rotate(v.Elevation, v.Azimuth)
	if v.Zoom != 0 {
		s.Camera.Zoom(v.Zoom)
	}
}

func (s *Session) step(step Step) error {
	action, err := step.Action()
	if err != nil {
		return err
	}
	s.log.Debug("step", zap.String("action", action))

	switch action {
	case "tool":
		t, err := measurement.ParseType(step.Tool)
		if err != nil {
			return err
		}
		s.Engine.SetTool(t)
	case "move", "down", "up", "click":
		ev, err := s.pointerEvent(*step.pointer())
		if err != nil {
			return err
		}
		switch action {
		case "move":
			s.Engine.PointerMove(ev)
		case "down":
			s.Engine.PointerDown(ev)
		case "up":
			s.Engine.PointerUp(ev)
		case "click":
			s.Engine.PointerDown(ev)
			s.Engine.PointerUp(ev)
		}
	case "cancel":
		s.Engine.Cancel()
	case "edit":
		id, err := s.idAt(step.Edit.Measurement)
		if err != nil {
			return err
		}
		s.warn("edit", s.Store.SetEditMode(id, !step.Edit.Off))
	case "describe":
		id, err := s.idAt(step.Describe.Measurement)
		if err != nil {
			return err
		}
		text := step.Describe.Text
		s.warn("describe", s.Store.Update(id, measurement.Patch{Description: &text}))
	case "undo":
		s.warn("undo", s.Engine.Undo())
	case "complete":
		s.warn("complete", s.Engine.Complete())
	case "delete":
		id, err := s.idAt(*step.Delete)
		if err != nil {
			return err
		}
		s.warn("delete", s.Store.Delete(id))
	case "clear":
		s.Store.Clear()
	case "wait":
		s.Clock.Advance(step.Wait)
	}
	return nil
}

func (s *Session) warn(action string, err error) {
	if err != nil {
		s.log.Warn("action rejected", zap.String("action", action), zap.Error(err))
	}
}

func (s *Session) pointerEvent(p Pointer) (interaction.PointerEvent, error) {
	button, err := parseButton(p.Button)
	if err != nil {
		return interaction.PointerEvent{}, err
	}
	ev := interaction.PointerEvent{X: p.X, Y: p.Y, Button: button, Touch: p.Touch}
	if p.World != nil {
		x, y, visible := s.Camera.Project(*p.World)
		if !visible {
			return interaction.PointerEvent{}, errors.Errorf("world point %v is behind the camera", *p.World)
		}
		ev.X, ev.Y = x, y
	}
	return ev, nil
}

func (s *Session) idAt(index int) (string, error) {
	snapshot := s.Store.Snapshot()
	if index < 0 || index >= len(snapshot) {
		return "", errors.Errorf("no measurement #%d (have %d)", index, len(snapshot))
	}
	return snapshot[index].ID, nil
}
