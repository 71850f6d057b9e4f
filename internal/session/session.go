package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/interaction"
	"github.com/philipparndt/roofmeasure/internal/measurement"
	"github.com/philipparndt/roofmeasure/internal/visual"
	"github.com/philipparndt/roofmeasure/pkg/stl"
	"github.com/philipparndt/roofmeasure/pkg/viewer"
)

// Config bundles the tunables of every part of a session
type Config struct {
	Measurement measurement.Config `mapstructure:"measurement"`
	Interaction interaction.Config `mapstructure:"interaction"`
	Visual      visual.Config      `mapstructure:"visual"`

	// Viewport size in pixels
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// DefaultConfig returns the defaults of all parts
func DefaultConfig() Config {
	return Config{
		Measurement: measurement.DefaultConfig(),
		Interaction: interaction.DefaultConfig(),
		Visual:      visual.DefaultConfig(),
		Width:       1280,
		Height:      800,
	}
}

// ManualClock is a clock that only moves when told to
type ManualClock struct {
	now time.Time
}

// NewManualClock starts a clock at the given time
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current clock time
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Session wires a loaded mesh, a camera, the measurement store, the
// interaction engine and the visual table together
type Session struct {
	Model  *stl.Model
	Camera *viewer.Camera
	Store  *measurement.Store
	Engine *interaction.Engine
	Table  *visual.Table
	Clock  *ManualClock

	log *zap.Logger
}

// New creates a session over a mesh. The camera frames the mesh and the
// engine runs on a manual clock so scripted waits are deterministic.
func New(model *stl.Model, cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	clock := NewManualClock(time.Unix(0, 0).UTC())
	store := measurement.NewStore(cfg.Measurement, measurement.WithLogger(log.Named("store")))
	camera := viewer.NewCamera(model.BoundingBox(), cfg.Width, cfg.Height)

	table := visual.NewTable(cfg.Visual, visual.WithLogger(log.Named("visual")))
	table.Attach(store)

	engine := interaction.NewEngine(store, camera, model, cfg.Interaction,
		interaction.WithLogger(log.Named("interaction")),
		interaction.WithClock(clock.Now),
		interaction.WithAffordanceListener(func(a interaction.Affordance) {
			log.Debug("affordance", zap.Stringer("affordance", a))
		}))

	return &Session{
		Model:  model,
		Camera: camera,
		Store:  store,
		Engine: engine,
		Table:  table,
		Clock:  clock,
		log:    log,
	}
}

// LabelView is a label as the presentation layer would place it
type LabelView struct {
	ID     string           `json:"id"`
	Type   measurement.Type `json:"type"`
	Text   string           `json:"text"`
	Anchor [3]float64       `json:"anchor"`
	Scale  float64          `json:"scale"`
}

// Labels returns the labels of all visible measurements in creation order
func (s *Session) Labels() []LabelView {
	var out []LabelView
	for _, v := range s.Table.All() {
		if v.Label == nil || !v.Visible {
			continue
		}
		a := v.Label.Anchor
		out = append(out, LabelView{
			ID:     v.ID,
			Type:   v.Type,
			Text:   v.Label.Text,
			Anchor: [3]float64{a.X, a.Y, a.Z},
			Scale:  s.Table.LabelScale(v.ID, s.Camera),
		})
	}
	return out
}
