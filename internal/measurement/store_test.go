package measurement

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

func newTestStore(t *testing.T) (*Store, *[]Event) {
	t.Helper()
	n := 0
	store := NewStore(DefaultConfig(), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("m%d", n)
	}))
	var events []Event
	store.Subscribe(func(ev Event) {
		events = append(events, ev)
	})
	return store, &events
}

func v(x, y, z float64) geometry.Vector3 {
	return geometry.NewVector3(x, y, z)
}

func TestStartRejectsNone(t *testing.T) {
	store, events := newTestStore(t)

	_, err := store.Start(TypeNone)
	assert.ErrorIs(t, err, ErrNoTool)
	_, err = store.Start(Type("volume"))
	assert.Error(t, err)

	assert.Zero(t, store.Len())
	assert.Empty(t, *events)
}

func TestLengthMeasurementFinalizes(t *testing.T) {
	store, _ := newTestStore(t)

	id, err := store.Start(TypeLength)
	require.NoError(t, err)
	require.NoError(t, store.AddPoint(id, v(0, 0, 0)))

	m, _ := store.Get(id)
	assert.True(t, m.IsActive)
	assert.Zero(t, m.Value)

	require.NoError(t, store.AddPoint(id, v(3, 0, 4)))
	m, _ = store.Get(id)
	assert.False(t, m.IsActive)
	assert.InDelta(t, 5.0, m.Value, 1e-3)
	assert.Equal(t, "m", m.Unit)
	require.NotNil(t, m.Inclination)
	assert.Equal(t, 0.0, *m.Inclination)
	assert.False(t, m.SignificantlyInclined(store.Config().InclinationThreshold))

	err = store.AddPoint(id, v(9, 9, 9))
	assert.ErrorIs(t, err, ErrNotActive)
	m, _ = store.Get(id)
	assert.Len(t, m.Points, 2)
}

func TestLengthInclination(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeLength)
	require.NoError(t, store.AddPoint(id, v(0, 0, 0)))
	require.NoError(t, store.AddPoint(id, v(1, 1, 0)))

	m, _ := store.Get(id)
	require.NotNil(t, m.Inclination)
	assert.Equal(t, 45.0, *m.Inclination)
	assert.True(t, m.SignificantlyInclined(5))
}

func TestLengthCoincidentPointsHaveNoInclination(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeLength)
	require.NoError(t, store.AddPoint(id, v(1, 1, 1)))
	require.NoError(t, store.AddPoint(id, v(1, 1, 1)))

	m, _ := store.Get(id)
	assert.Zero(t, m.Value)
	assert.Nil(t, m.Inclination)
}

func TestHeightMeasurement(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeHeight)
	require.NoError(t, store.AddPoint(id, v(0, 2, 0)))
	require.NoError(t, store.AddPoint(id, v(5, 7.5, 1)))

	m, _ := store.Get(id)
	assert.False(t, m.IsActive)
	assert.InDelta(t, 5.5, m.Value, 1e-9)
	assert.Nil(t, m.Inclination)
}

func TestAreaMeasurementComplete(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeArea)
	for _, p := range []geometry.Vector3{v(0, 0, 0), v(2, 0, 0), v(2, 0, 2), v(0, 0, 2)} {
		require.NoError(t, store.AddPoint(id, p))
	}

	m, _ := store.Get(id)
	assert.True(t, m.IsActive, "area stays active until completed")
	assert.False(t, m.IsComplete)

	require.NoError(t, store.CompleteArea(id))
	m, _ = store.Get(id)
	assert.InDelta(t, 4.0, m.Value, 1e-3)
	assert.InDelta(t, 8.0, m.Perimeter, 1e-9)
	assert.True(t, m.IsComplete)
	assert.False(t, m.IsActive)
	assert.Equal(t, "m²", m.Unit)
	assert.Len(t, m.Points, 4)

	assert.ErrorIs(t, store.CompleteArea(id), ErrNotActive)
}

func TestCompleteAreaDropsRepeatedFirstPoint(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeArea)
	for _, p := range []geometry.Vector3{v(0, 0, 0), v(2, 0, 0), v(2, 0, 2), v(0, 0, 2), v(0.1, 0, 0.05)} {
		require.NoError(t, store.AddPoint(id, p))
	}

	require.NoError(t, store.CompleteArea(id))
	m, _ := store.Get(id)
	assert.Len(t, m.Points, 4)
	assert.InDelta(t, 4.0, m.Value, 1e-3)
}

func TestCompleteAreaNeedsThreePoints(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeArea)
	require.NoError(t, store.AddPoint(id, v(0, 0, 0)))
	require.NoError(t, store.AddPoint(id, v(1, 0, 0)))

	assert.ErrorIs(t, store.CompleteArea(id), ErrTooFewPoints)
	m, _ := store.Get(id)
	assert.True(t, m.IsActive)
	assert.False(t, m.IsComplete)

	lengthID, _ := store.Start(TypeLength)
	assert.ErrorIs(t, store.CompleteArea(lengthID), ErrWrongType)
}

func TestUndoLastPoint(t *testing.T) {
	store, events := newTestStore(t)
	id, _ := store.Start(TypeArea)

	before := len(*events)
	require.NoError(t, store.UndoLastPoint(id))
	assert.Len(t, *events, before, "undo without points emits nothing")
	m, _ := store.Get(id)
	assert.Empty(t, m.Points)

	require.NoError(t, store.AddPoint(id, v(0, 0, 0)))
	require.NoError(t, store.AddPoint(id, v(1, 0, 0)))
	require.NoError(t, store.UndoLastPoint(id))
	m, _ = store.Get(id)
	assert.Equal(t, []Point{NewPoint(v(0, 0, 0))}, m.Points)

	lengthID, _ := store.Start(TypeLength)
	require.NoError(t, store.AddPoint(lengthID, v(0, 0, 0)))
	require.NoError(t, store.AddPoint(lengthID, v(1, 0, 0)))
	assert.ErrorIs(t, store.UndoLastPoint(lengthID), ErrNotActive)
	m, _ = store.Get(lengthID)
	assert.Len(t, m.Points, 2)
	assert.False(t, m.IsActive)
}

func TestUpdateRecomputesValue(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeLength)
	require.NoError(t, store.AddPoint(id, v(0, 0, 0)))
	require.NoError(t, store.AddPoint(id, v(3, 0, 4)))

	desc := "ridge"
	hidden := false
	require.NoError(t, store.Update(id, Patch{
		Description: &desc,
		Visible:     &hidden,
		Points:      []geometry.Vector3{v(0, 0, 0), v(6, 0, 8)},
	}))

	m, _ := store.Get(id)
	assert.InDelta(t, 10.0, m.Value, 1e-9)
	assert.Equal(t, "ridge", m.Description)
	assert.False(t, m.Visible)

	err := store.Update(id, Patch{Points: []geometry.Vector3{v(0, 0, 0)}})
	assert.ErrorIs(t, err, ErrInvalidPoints)
	m, _ = store.Get(id)
	assert.InDelta(t, 10.0, m.Value, 1e-9, "failed update leaves state unchanged")
}

func TestUpdateFinalizesFullSegment(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeLength)

	require.NoError(t, store.Update(id, Patch{Points: []geometry.Vector3{v(0, 0, 0), v(3, 0, 4)}}))
	m, _ := store.Get(id)
	assert.False(t, m.IsActive)
	assert.InDelta(t, 5.0, m.Value, 1e-9)

	err := store.AddPoint(id, v(9, 9, 9))
	assert.ErrorIs(t, err, ErrNotActive)
	m, _ = store.Get(id)
	assert.Len(t, m.Points, 2)
	assert.InDelta(t, 5.0, m.Value, 1e-9)

	height, _ := store.Start(TypeHeight)
	require.NoError(t, store.Update(height, Patch{Points: []geometry.Vector3{v(0, 0, 0)}}))
	m, _ = store.Get(height)
	assert.True(t, m.IsActive, "a single point keeps the height open")
	require.NoError(t, store.AddPoint(height, v(0, 2, 0)))
	m, _ = store.Get(height)
	assert.False(t, m.IsActive)
	assert.Len(t, m.Points, 2)
}

func TestUpdateCompletedAreaKeepsThreePoints(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeArea)
	for _, p := range []geometry.Vector3{v(0, 0, 0), v(3, 0, 0), v(0, 0, 4)} {
		require.NoError(t, store.AddPoint(id, p))
	}
	require.NoError(t, store.CompleteArea(id))

	err := store.Update(id, Patch{Points: []geometry.Vector3{v(0, 0, 0), v(1, 0, 0)}})
	assert.ErrorIs(t, err, ErrTooFewPoints)
	m, _ := store.Get(id)
	assert.InDelta(t, 6.0, m.Value, 1e-3)
}

func TestSetEditModeSingleEditor(t *testing.T) {
	store, _ := newTestStore(t)
	a, _ := store.Start(TypeLength)
	b, _ := store.Start(TypeHeight)

	require.NoError(t, store.SetEditMode(a, true))
	require.NoError(t, store.SetEditMode(b, true))

	ma, _ := store.Get(a)
	mb, _ := store.Get(b)
	assert.False(t, ma.EditMode)
	assert.True(t, mb.EditMode)
	editing, ok := store.Editing()
	assert.True(t, ok)
	assert.Equal(t, b, editing)

	require.NoError(t, store.SetEditMode(a, false))
	_, ok = store.Editing()
	assert.True(t, ok, "turning off a measurement not in edit mode keeps the editor")

	require.NoError(t, store.SetEditMode(b, false))
	_, ok = store.Editing()
	assert.False(t, ok)

	assert.ErrorIs(t, store.SetEditMode("missing", true), ErrNotFound)
}

func TestDeleteEmitsDispose(t *testing.T) {
	store, events := newTestStore(t)
	a, _ := store.Start(TypeLength)
	require.NoError(t, store.SetEditMode(a, true))

	require.NoError(t, store.Delete(a))
	last := (*events)[len(*events)-1]
	assert.Equal(t, EventDisposed, last.Kind)
	assert.Equal(t, a, last.ID)
	_, ok := store.Editing()
	assert.False(t, ok)

	assert.ErrorIs(t, store.Delete(a), ErrNotFound)
	assert.ErrorIs(t, store.AddPoint(a, v(0, 0, 0)), ErrNotFound)
	assert.ErrorIs(t, store.SetEditMode(a, true), ErrNotFound)
}

func TestClear(t *testing.T) {
	store, events := newTestStore(t)
	a, _ := store.Start(TypeLength)
	b, _ := store.Start(TypeArea)
	*events = nil

	store.Clear()

	require.Len(t, *events, 3)
	assert.Equal(t, Event{Kind: EventDisposed, ID: a, Measurement: (*events)[0].Measurement}, (*events)[0])
	assert.Equal(t, b, (*events)[1].ID)
	assert.Equal(t, EventCleared, (*events)[2].Kind)
	assert.Zero(t, store.Len())
	assert.Empty(t, store.Snapshot())
}

func TestSnapshotIsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	id, _ := store.Start(TypeLength)
	require.NoError(t, store.AddPoint(id, v(0, 0, 0)))

	snap := store.Snapshot()
	snap[0].Points[0] = NewPoint(v(5, 5, 5))
	snap[0].Description = "changed"

	m, _ := store.Get(id)
	assert.Equal(t, v(0, 0, 0), m.Points[0].World)
	assert.Empty(t, m.Description)
}

func TestRestore(t *testing.T) {
	store, _ := newTestStore(t)
	saved := []Measurement{
		{ID: "a", Type: TypeLength, Points: []Point{NewPoint(v(0, 0, 0)), NewPoint(v(3, 0, 4))}, Visible: true, EditMode: true},
		{ID: "b", Type: TypeArea, IsComplete: true, Points: []Point{NewPoint(v(0, 0, 0)), NewPoint(v(1, 0, 0))}},
		{ID: "c", Type: TypeNone},
	}

	err := store.Restore(saved)
	assert.Error(t, err)

	require.Equal(t, 1, store.Len())
	m, ok := store.Get("a")
	require.True(t, ok)
	assert.InDelta(t, 5.0, m.Value, 1e-9)
	assert.False(t, m.EditMode)
	assert.False(t, m.IsActive)
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{"Length": TypeLength, " area ": TypeArea, "height": TypeHeight, "": TypeNone, "none": TypeNone} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseType("radius")
	assert.Error(t, err)
}
