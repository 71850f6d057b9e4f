package measurement

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

var (
	ErrNotFound      = errors.New("measurement not found")
	ErrNoTool        = errors.New("no measurement tool selected")
	ErrNotActive     = errors.New("measurement is already finalized")
	ErrTooFewPoints  = errors.New("area needs at least 3 points")
	ErrInvalidPoints = errors.New("point count does not fit the measurement")
	ErrWrongType     = errors.New("operation does not apply to this measurement type")
)

// Store owns the measurements of a session. It is not safe for concurrent
// use: every call is expected on the UI goroutine.
type Store struct {
	cfg       Config
	log       *zap.Logger
	newID     func() string
	order     []string
	items     map[string]*Measurement
	editing   string
	listeners []Listener
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for lifecycle messages
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithIDGenerator replaces the random UUID generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore creates an empty store
func NewStore(cfg Config, opts ...Option) *Store {
	s := &Store{
		cfg:   cfg,
		log:   zap.NewNop(),
		newID: uuid.NewString,
		items: make(map[string]*Measurement),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the store configuration
func (s *Store) Config() Config {
	return s.cfg
}

// Subscribe registers a listener for all subsequent events
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Store) emit(kind EventKind, id string, m *Measurement) {
	ev := Event{Kind: kind, ID: id}
	if m != nil {
		ev.Measurement = m.Clone()
	}
	for _, l := range s.listeners {
		l(ev)
	}
}

func (s *Store) lookup(id string) (*Measurement, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return m, nil
}

// Start creates an empty, active measurement of the given type
func (s *Store) Start(t Type) (string, error) {
	if t == TypeNone {
		return "", ErrNoTool
	}
	if _, err := ParseType(string(t)); err != nil {
		return "", err
	}

	m := &Measurement{
		ID:       s.newID(),
		Type:     t,
		Points:   []Point{},
		IsActive: true,
		Visible:  true,
	}
	m.recompute()
	s.items[m.ID] = m
	s.order = append(s.order, m.ID)

	s.log.Info("measurement started", zap.String("id", m.ID), zap.String("type", string(t)))
	s.emit(EventCreated, m.ID, m)
	return m.ID, nil
}

// AddPoint appends a point to an active measurement. Length and height
// measurements finalize on their second point.
func (s *Store) AddPoint(id string, p geometry.Vector3) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !m.IsActive {
		return errors.Wrapf(ErrNotActive, "id %s", id)
	}

	m.Points = append(m.Points, NewPoint(p))
	if n := m.Type.segmentPoints(); n > 0 && len(m.Points) >= n {
		m.IsActive = false
	}
	m.recompute()

	s.log.Debug("point added",
		zap.String("id", id),
		zap.Int("points", len(m.Points)),
		zap.Float64("value", m.Value),
		zap.Bool("active", m.IsActive))
	s.emit(EventChanged, id, m)
	return nil
}

// CompleteArea closes an area measurement. A last point within the closing
// proximity of the first one is dropped as a repeat of the first point.
func (s *Store) CompleteArea(id string) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	if m.Type != TypeArea {
		return errors.Wrapf(ErrWrongType, "complete %s measurement", m.Type)
	}
	if !m.IsActive || m.IsComplete {
		return errors.Wrapf(ErrNotActive, "id %s", id)
	}
	if len(m.Points) < 3 {
		return errors.Wrapf(ErrTooFewPoints, "id %s has %d", id, len(m.Points))
	}

	points := m.Points
	first, last := points[0].World, points[len(points)-1].World
	if len(points) > 3 && first.NearlyEqual(last, s.cfg.ClosingProximity) {
		points = points[:len(points)-1]
	}

	m.Points = points
	m.IsComplete = true
	m.IsActive = false
	m.recompute()

	s.log.Info("area completed",
		zap.String("id", id),
		zap.Int("points", len(m.Points)),
		zap.Float64("area", m.Value),
		zap.Float64("planeDeviation", m.PlaneDeviation))
	s.emit(EventChanged, id, m)
	return nil
}

// UndoLastPoint removes the newest point of an in-progress measurement.
// Without points it does nothing; finalized measurements are left alone.
func (s *Store) UndoLastPoint(id string) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !m.IsActive {
		return errors.Wrapf(ErrNotActive, "id %s", id)
	}
	if len(m.Points) == 0 {
		return nil
	}

	m.Points = m.Points[:len(m.Points)-1]
	m.recompute()

	s.log.Debug("point removed", zap.String("id", id), zap.Int("points", len(m.Points)))
	s.emit(EventChanged, id, m)
	return nil
}

// Patch lists the fields to change in Update; nil fields stay untouched
type Patch struct {
	Description *string
	Visible     *bool
	Points      []geometry.Vector3
}

// Update merges the patch into the measurement and recomputes derived
// values when the points change. Replacing the points of a length or height
// with a full pair finalizes it.
func (s *Store) Update(id string, patch Patch) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}

	if patch.Points != nil {
		if err := s.checkPointCount(m, len(patch.Points)); err != nil {
			return err
		}
	}

	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.Visible != nil {
		m.Visible = *patch.Visible
	}
	if patch.Points != nil {
		points := make([]Point, len(patch.Points))
		for i, p := range patch.Points {
			points[i] = NewPoint(p)
		}
		m.Points = points
		if n := m.Type.segmentPoints(); n > 0 && len(m.Points) == n {
			m.IsActive = false
		}
	}
	m.recompute()

	s.emit(EventChanged, id, m)
	return nil
}

func (s *Store) checkPointCount(m *Measurement, n int) error {
	want := m.Type.segmentPoints()
	switch {
	case want > 0 && !m.IsActive && n != want:
		return errors.Wrapf(ErrInvalidPoints, "%s needs %d points, got %d", m.Type, want, n)
	case want > 0 && n > want:
		return errors.Wrapf(ErrInvalidPoints, "%s takes at most %d points, got %d", m.Type, want, n)
	case m.Type == TypeArea && m.IsComplete && n < 3:
		return errors.Wrapf(ErrTooFewPoints, "got %d", n)
	}
	return nil
}

// SetEditMode toggles point editing. Turning it on for one measurement turns
// it off for the one being edited before.
func (s *Store) SetEditMode(id string, on bool) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}

	if on && s.editing != "" && s.editing != id {
		if prev, ok := s.items[s.editing]; ok {
			prev.EditMode = false
			s.emit(EventChanged, prev.ID, prev)
		}
	}

	m.EditMode = on
	switch {
	case on:
		s.editing = id
	case s.editing == id:
		s.editing = ""
	}

	s.log.Debug("edit mode", zap.String("id", id), zap.Bool("on", on))
	s.emit(EventChanged, id, m)
	return nil
}

// Editing returns the id of the measurement in edit mode
func (s *Store) Editing() (string, bool) {
	return s.editing, s.editing != ""
}

// Delete removes a measurement and emits its dispose event
func (s *Store) Delete(id string) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}

	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.editing == id {
		s.editing = ""
	}

	s.log.Info("measurement deleted", zap.String("id", id))
	s.emit(EventDisposed, id, m)
	return nil
}

// Clear removes every measurement
func (s *Store) Clear() {
	order := s.order
	items := s.items
	s.order = nil
	s.items = make(map[string]*Measurement)
	s.editing = ""

	for _, id := range order {
		s.emit(EventDisposed, id, items[id])
	}
	s.log.Info("measurements cleared", zap.Int("count", len(order)))
	s.emit(EventCleared, "", nil)
}

// Get returns a copy of the measurement
func (s *Store) Get(id string) (Measurement, bool) {
	m, ok := s.items[id]
	if !ok {
		return Measurement{}, false
	}
	return m.Clone(), true
}

// Snapshot returns copies of all measurements in creation order
func (s *Store) Snapshot() []Measurement {
	out := make([]Measurement, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// Len returns the number of measurements
func (s *Store) Len() int {
	return len(s.order)
}

// Restore inserts previously saved measurements. Derived values are
// recomputed and edit mode is dropped; invalid records are skipped and
// reported in the returned error.
func (s *Store) Restore(saved []Measurement) error {
	var skipped []string
	for _, rec := range saved {
		m := rec.Clone()
		if m.ID == "" {
			m.ID = s.newID()
		}
		if _, exists := s.items[m.ID]; exists || !restorable(m) {
			skipped = append(skipped, m.ID)
			continue
		}
		m.EditMode = false
		if n := m.Type.segmentPoints(); n > 0 && len(m.Points) == n {
			m.IsActive = false
		}
		for i := range m.Points {
			m.Points[i].World = m.Points[i].Position
		}
		m.recompute()
		s.items[m.ID] = &m
		s.order = append(s.order, m.ID)
		s.emit(EventCreated, m.ID, &m)
	}
	if len(skipped) > 0 {
		return errors.Errorf("skipped %d invalid measurement(s): %v", len(skipped), skipped)
	}
	return nil
}

func restorable(m Measurement) bool {
	switch m.Type {
	case TypeLength, TypeHeight:
		return len(m.Points) == 2 || (m.IsActive && len(m.Points) < 2)
	case TypeArea:
		return !m.IsComplete || len(m.Points) >= 3
	}
	return false
}
