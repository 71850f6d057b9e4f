package visual

import (
	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/measurement"
	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

// Eye reports the camera distance of a world point. viewer.Camera implements it.
type Eye interface {
	DistanceTo(point geometry.Vector3) float64
}

// Table keeps the visual of every measurement, keyed by measurement id, in
// step with store events. Released entries are reported to dispose listeners.
type Table struct {
	cfg       Config
	log       *zap.Logger
	order     []string
	entries   map[string]Visual
	onDispose []func(id string)
}

// Option configures a Table
type Option func(*Table)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(t *Table) {
		t.log = log
	}
}

// WithDisposeListener is called for every released entry
func WithDisposeListener(fn func(id string)) Option {
	return func(t *Table) {
		t.onDispose = append(t.onDispose, fn)
	}
}

// NewTable creates an empty table
func NewTable(cfg Config, opts ...Option) *Table {
	t := &Table{
		cfg:     cfg,
		log:     zap.NewNop(),
		entries: make(map[string]Visual),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attach builds entries for the measurements already in the store and
// follows its events from then on. Labels use the store's inclination
// threshold.
func (t *Table) Attach(store *measurement.Store) {
	t.cfg.InclinationThreshold = store.Config().InclinationThreshold
	for _, m := range store.Snapshot() {
		t.put(m)
	}
	store.Subscribe(t.Handle)
}

// Handle applies a store event
func (t *Table) Handle(ev measurement.Event) {
	switch ev.Kind {
	case measurement.EventCreated, measurement.EventChanged:
		t.put(ev.Measurement)
	case measurement.EventDisposed:
		t.release(ev.ID)
	case measurement.EventCleared:
		for _, id := range append([]string(nil), t.order...) {
			t.release(id)
		}
	}
}

func (t *Table) put(m measurement.Measurement) {
	if _, ok := t.entries[m.ID]; !ok {
		t.order = append(t.order, m.ID)
	}
	t.entries[m.ID] = Build(t.cfg, m)
}

func (t *Table) release(id string) {
	if _, ok := t.entries[id]; !ok {
		return
	}
	delete(t.entries, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.log.Debug("visual released", zap.String("id", id))
	for _, fn := range t.onDispose {
		fn(id)
	}
}

// Get returns the visual of a measurement
func (t *Table) Get(id string) (Visual, bool) {
	v, ok := t.entries[id]
	return v, ok
}

// All returns the visuals in creation order
func (t *Table) All() []Visual {
	out := make([]Visual, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.entries[id])
	}
	return out
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.order)
}

// LabelScale returns the scale of a measurement's label as seen from eye.
// Measurements without a label scale to 0.
func (t *Table) LabelScale(id string, eye Eye) float64 {
	v, ok := t.entries[id]
	if !ok || v.Label == nil {
		return 0
	}
	return t.cfg.Scale(eye.DistanceTo(v.Label.Anchor))
}
