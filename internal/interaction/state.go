package interaction

import "github.com/philipparndt/roofmeasure/pkg/geometry"

// Viewport turns pointer coordinates into rays and world points back into
// screen coordinates. viewer.Camera implements it.
type Viewport interface {
	Ray(screenX, screenY float64) geometry.Ray
	Project(point geometry.Vector3) (x, y float64, visible bool)
}

// Surface is the loaded mesh as seen by the engine. stl.Model implements it.
type Surface interface {
	Intersect(ray geometry.Ray) (geometry.Vector3, bool)
}

// State of the drag session
type State int

const (
	StateIdle State = iota
	StateHovering
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHovering:
		return "hovering"
	case StateDragging:
		return "dragging"
	}
	return "unknown"
}

// Affordance is the pointer feedback the presentation layer should show
type Affordance int

const (
	AffordanceDefault Affordance = iota
	// AffordanceCrosshair while a measurement tool is selected
	AffordanceCrosshair
	// AffordanceGrab over a point that can be dragged
	AffordanceGrab
	// AffordanceGrabbing while a point follows the pointer
	AffordanceGrabbing
)

func (a Affordance) String() string {
	switch a {
	case AffordanceDefault:
		return "default"
	case AffordanceCrosshair:
		return "crosshair"
	case AffordanceGrab:
		return "grab"
	case AffordanceGrabbing:
		return "grabbing"
	}
	return "unknown"
}

// Button identifies the pointer button
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// PointerEvent is a raw pointer sample in screen coordinates
type PointerEvent struct {
	X, Y   float64
	Button Button
	Touch  bool
}

// Target addresses one point of one measurement
type Target struct {
	ID    string
	Index int
}
