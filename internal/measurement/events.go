package measurement

// EventKind tells listeners what happened to a measurement
type EventKind int

const (
	// EventCreated is emitted once a measurement is started
	EventCreated EventKind = iota
	// EventChanged is emitted after points, flags or description change
	EventChanged
	// EventDisposed is emitted when a measurement is removed; its visual
	// resources must be released
	EventDisposed
	// EventCleared follows the dispose events of a clear-all
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventDisposed:
		return "disposed"
	case EventCleared:
		return "cleared"
	}
	return "unknown"
}

// Event carries a copy of the measurement after the change. Measurement is
// the last known state for EventDisposed and empty for EventCleared.
type Event struct {
	Kind        EventKind
	ID          string
	Measurement Measurement
}

// Listener receives store events synchronously on the caller's goroutine
type Listener func(Event)
