package interaction

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/philipparndt/roofmeasure/internal/measurement"
	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

// dragSession is the one armed point and what it looked like before the drag
type dragSession struct {
	target   Target
	original []geometry.Vector3
	moved    bool
}

// pendingCompletion is a deferred area completion
type pendingCompletion struct {
	id string
	at time.Time
}

// Engine turns pointer events into measurement mutations. It places points
// with the selected tool, drags points of the measurement in edit mode and
// auto-completes areas. Like the store it is driven from a single goroutine.
type Engine struct {
	store    *measurement.Store
	view     Viewport
	surface  Surface
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
	onChange func(Affordance)

	tool       measurement.Type
	active     string
	state      State
	hover      *Target
	drag       *dragSession
	pending    *pendingCompletion
	live       *geometry.Vector3
	affordance Affordance
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger for state transitions
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithClock replaces time.Now for debounce scheduling
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithAffordanceListener registers a callback for affordance changes
func WithAffordanceListener(fn func(Affordance)) Option {
	return func(e *Engine) {
		e.onChange = fn
	}
}

// NewEngine creates an idle engine bound to a store, a viewport and the mesh
func NewEngine(store *measurement.Store, view Viewport, surface Surface, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		view:    view,
		surface: surface,
		cfg:     cfg,
		log:     zap.NewNop(),
		now:     time.Now,
		tool:    measurement.TypeNone,
	}
	for _, opt := range opts {
		opt(e)
	}
	store.Subscribe(e.handleStoreEvent)
	return e
}

// State returns the drag session state
func (e *Engine) State() State {
	return e.state
}

// Affordance returns the current pointer feedback
func (e *Engine) Affordance() Affordance {
	return e.affordance
}

// Tool returns the selected measurement tool
func (e *Engine) Tool() measurement.Type {
	return e.tool
}

// Active returns the id of the measurement receiving placed points
func (e *Engine) Active() (string, bool) {
	return e.active, e.active != ""
}

// Armed returns the point being dragged
func (e *Engine) Armed() (Target, bool) {
	if e.drag == nil {
		return Target{}, false
	}
	return e.drag.target, true
}

// Pending reports whether an area completion is scheduled
func (e *Engine) Pending() bool {
	return e.pending != nil
}

// SetTool selects the tool for the next placement. An area being placed
// with at least three points is completed; any other unfinished placement
// is discarded.
func (e *Engine) SetTool(t measurement.Type) {
	if e.active != "" {
		e.settle(e.active)
		e.active = ""
	}
	e.pending = nil
	e.tool = t
	e.log.Debug("tool selected", zap.String("tool", string(t)))
	e.refreshAffordance()
}

// PointerMove updates hover state, follows the armed point and schedules
// area auto-completion
func (e *Engine) PointerMove(ev PointerEvent) {
	if e.state == StateDragging {
		e.follow(ev)
		return
	}

	e.updateHover(ev)
	e.trackCompletion(ev)
}

// PointerDown arms a hovered point, commits a drag or places a point
func (e *Engine) PointerDown(ev PointerEvent) {
	if ev.Button != ButtonPrimary {
		return
	}

	if e.state == StateDragging {
		e.commit(ev)
		return
	}

	// touch has no hover phase, so the hit test runs on the down event
	e.updateHover(ev)
	if e.hover != nil {
		e.arm(*e.hover)
		return
	}

	e.place(ev)
}

// PointerUp commits a touch drag; mouse drags commit on the next down
func (e *Engine) PointerUp(ev PointerEvent) {
	if e.state != StateDragging || !ev.Touch {
		return
	}
	e.commit(ev)
}

// Cancel aborts the drag and puts the point back where it was. Without a
// drag it abandons the measurement being placed.
func (e *Engine) Cancel() {
	switch {
	case e.drag != nil:
		d := e.drag
		e.drag = nil
		if d.moved {
			if err := e.store.Update(d.target.ID, measurement.Patch{Points: d.original}); err != nil {
				e.log.Warn("restore after cancel failed", zap.String("id", d.target.ID), zap.Error(err))
			}
		}
		e.log.Debug("drag cancelled", zap.String("id", d.target.ID), zap.Int("index", d.target.Index))
		e.setState(StateHovering)
		e.hover = &d.target
		e.refreshAffordance()
	case e.active != "":
		id := e.active
		e.active = ""
		e.pending = nil
		if m, ok := e.store.Get(id); ok && m.IsActive {
			_ = e.store.Delete(id)
			e.log.Debug("placement abandoned", zap.String("id", id))
		}
	}
}

// Tick fires a due area completion. The measurement is re-checked first and
// the completion is skipped when it no longer qualifies.
func (e *Engine) Tick(now time.Time) {
	if e.pending == nil || now.Before(e.pending.at) {
		return
	}
	id := e.pending.id
	e.pending = nil

	if !e.completionEligible(id) {
		e.log.Debug("auto-completion skipped", zap.String("id", id))
		return
	}
	if err := e.store.CompleteArea(id); err != nil {
		e.log.Debug("auto-completion skipped", zap.String("id", id), zap.Error(err))
		return
	}
	e.log.Info("area auto-completed", zap.String("id", id))
	if e.active == id {
		e.active = ""
	}
	e.refreshAffordance()
}

func (e *Engine) settle(id string) {
	m, ok := e.store.Get(id)
	if !ok || !m.IsActive {
		return
	}
	if m.Type == measurement.TypeArea && len(m.Points) >= 3 {
		if err := e.store.CompleteArea(id); err == nil {
			e.log.Debug("area completed on tool change", zap.String("id", id))
			return
		}
	}
	if err := e.store.Delete(id); err != nil {
		e.log.Warn("discarding placement failed", zap.String("id", id), zap.Error(err))
		return
	}
	e.log.Debug("placement discarded on tool change", zap.String("id", id), zap.Int("points", len(m.Points)))
}

// Undo removes the last point of the measurement being placed
func (e *Engine) Undo() error {
	if e.active == "" {
		return nil
	}
	e.pending = nil
	return e.store.UndoLastPoint(e.active)
}

// Complete closes the area being placed
func (e *Engine) Complete() error {
	if e.active == "" {
		return measurement.ErrNotActive
	}
	id := e.active
	if err := e.store.CompleteArea(id); err != nil {
		return err
	}
	e.active = ""
	e.pending = nil
	return nil
}

func (e *Engine) place(ev PointerEvent) {
	if e.tool == measurement.TypeNone {
		return
	}
	hit, ok := e.surface.Intersect(e.view.Ray(ev.X, ev.Y))
	if !ok {
		e.log.Debug("placement missed the mesh", zap.Float64("x", ev.X), zap.Float64("y", ev.Y))
		return
	}

	if e.active != "" {
		m, ok := e.store.Get(e.active)
		if !ok || !m.IsActive {
			e.active = ""
		} else if closesArea(m, hit, e.cfg.CompletionProximity) {
			if err := e.store.CompleteArea(m.ID); err != nil {
				e.log.Warn("closing click rejected", zap.String("id", m.ID), zap.Error(err))
				return
			}
			e.active = ""
			e.pending = nil
			return
		}
	}

	if e.active == "" {
		id, err := e.store.Start(e.tool)
		if err != nil {
			e.log.Warn("start measurement failed", zap.Error(err))
			return
		}
		e.active = id
	}

	if err := e.store.AddPoint(e.active, hit); err != nil {
		e.log.Warn("add point failed", zap.String("id", e.active), zap.Error(err))
		return
	}
	if m, ok := e.store.Get(e.active); ok && !m.IsActive {
		e.active = ""
	}
}

func closesArea(m measurement.Measurement, p geometry.Vector3, proximity float64) bool {
	return m.Type == measurement.TypeArea && len(m.Points) >= 3 &&
		m.Points[0].World.Distance(p) <= proximity
}

func (e *Engine) arm(t Target) {
	m, ok := e.store.Get(t.ID)
	if !ok {
		return
	}
	e.drag = &dragSession{target: t, original: m.Positions()}
	e.pending = nil
	e.log.Debug("point armed", zap.String("id", t.ID), zap.Int("index", t.Index))
	e.setState(StateDragging)
	e.refreshAffordance()
}

func (e *Engine) follow(ev PointerEvent) {
	hit, ok := e.surface.Intersect(e.view.Ray(ev.X, ev.Y))
	if !ok {
		return
	}

	t := e.drag.target
	m, found := e.store.Get(t.ID)
	if !found || t.Index >= len(m.Points) {
		e.abortDrag()
		return
	}
	points := m.Positions()
	points[t.Index] = hit
	if err := e.store.Update(t.ID, measurement.Patch{Points: points}); err != nil {
		e.log.Warn("drag update failed", zap.String("id", t.ID), zap.Error(err))
		return
	}
	e.drag.moved = true
}

func (e *Engine) commit(ev PointerEvent) {
	d := e.drag
	e.drag = nil
	if m, ok := e.store.Get(d.target.ID); ok && d.target.Index < len(m.Points) {
		e.log.Debug("drag committed",
			zap.String("id", d.target.ID),
			zap.Int("index", d.target.Index),
			zap.String("position", geometry.FormatVector(m.Points[d.target.Index].World)),
			zap.Float64("value", m.Value))
	}
	e.setState(StateIdle)
	e.updateHover(ev)
}

func (e *Engine) abortDrag() {
	e.drag = nil
	e.hover = nil
	e.setState(StateIdle)
	e.refreshAffordance()
}

// updateHover runs the hit test and moves between Idle and Hovering
func (e *Engine) updateHover(ev PointerEvent) {
	t, ok := e.hitTest(ev)
	if ok {
		e.hover = &t
		e.setState(StateHovering)
	} else {
		e.hover = nil
		e.setState(StateIdle)
	}
	e.refreshAffordance()
}

// hitTest finds the nearest point of a measurement in edit mode. Equal
// distances keep the first candidate in creation and point order.
func (e *Engine) hitTest(ev PointerEvent) (Target, bool) {
	ray := e.view.Ray(ev.X, ev.Y)
	radius := e.cfg.HitRadius
	if ev.Touch {
		radius = e.cfg.TouchHitRadius
	}

	best := Target{}
	bestDist := math.Inf(1)
	for _, m := range e.store.Snapshot() {
		if !m.EditMode || !m.Visible {
			continue
		}
		for i, p := range m.Points {
			var d float64
			if ev.Touch {
				x, y, visible := e.view.Project(p.World)
				if !visible {
					continue
				}
				d = math.Hypot(x-ev.X, y-ev.Y)
			} else {
				d = ray.DistanceToPoint(p.World)
			}
			if d <= radius && d < bestDist {
				best = Target{ID: m.ID, Index: i}
				bestDist = d
			}
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// trackCompletion schedules or drops the deferred completion of the area
// being placed depending on where the pointer ray meets the mesh
func (e *Engine) trackCompletion(ev PointerEvent) {
	e.live = nil
	if e.active == "" {
		return
	}
	m, ok := e.store.Get(e.active)
	if !ok || m.Type != measurement.TypeArea || !m.IsActive || len(m.Points) < 3 {
		e.pending = nil
		return
	}

	hit, ok := e.surface.Intersect(e.view.Ray(ev.X, ev.Y))
	if !ok {
		e.pending = nil
		return
	}
	e.live = &hit

	if !closesArea(m, hit, e.cfg.CompletionProximity) {
		e.pending = nil
		return
	}
	if e.pending == nil || e.pending.id != m.ID {
		e.pending = &pendingCompletion{id: m.ID, at: e.now().Add(e.cfg.Debounce)}
		e.log.Debug("auto-completion scheduled", zap.String("id", m.ID), zap.Duration("in", e.cfg.Debounce))
	}
}

func (e *Engine) completionEligible(id string) bool {
	if e.active != id || e.live == nil {
		return false
	}
	m, ok := e.store.Get(id)
	return ok && m.IsActive && !m.IsComplete && closesArea(m, *e.live, e.cfg.CompletionProximity)
}

// handleStoreEvent forgets references to measurements that went away or
// left edit mode
func (e *Engine) handleStoreEvent(ev measurement.Event) {
	if ev.Kind == measurement.EventChanged && !ev.Measurement.EditMode &&
		e.drag != nil && e.drag.target.ID == ev.ID {
		e.abortDrag()
		return
	}
	if ev.Kind != measurement.EventDisposed {
		return
	}
	if e.active == ev.ID {
		e.active = ""
	}
	if e.pending != nil && e.pending.id == ev.ID {
		e.pending = nil
	}
	if e.hover != nil && e.hover.ID == ev.ID {
		e.hover = nil
		if e.state == StateHovering {
			e.setState(StateIdle)
		}
	}
	if e.drag != nil && e.drag.target.ID == ev.ID {
		e.abortDrag()
		return
	}
	e.refreshAffordance()
}

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.log.Debug("interaction state", zap.Stringer("from", e.state), zap.Stringer("to", s))
	e.state = s
}

func (e *Engine) refreshAffordance() {
	next := AffordanceDefault
	switch {
	case e.state == StateDragging:
		next = AffordanceGrabbing
	case e.hover != nil:
		next = AffordanceGrab
	case e.tool != measurement.TypeNone:
		next = AffordanceCrosshair
	}
	if next == e.affordance {
		return
	}
	e.affordance = next
	if e.onChange != nil {
		e.onChange(next)
	}
}
