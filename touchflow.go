package touchflow

import (
	"math"
	"time"
)

// Vec2 is a 2D point or offset in container pixels. The origin is the
// top-left, with Y increasing downward.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// ContactID distinguishes simultaneous contacts (fingers or pointers).
type ContactID int

// Phase is the lifecycle stage of a single contact sample.
type Phase uint8

const (
	PhaseStart  Phase = iota // contact touched down
	PhaseMove                // contact moved while down
	PhaseEnd                 // contact lifted normally
	PhaseCancel              // contact interrupted by the system
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	case PhaseCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// ContactEvent is one raw input sample. At is a monotonic offset from an
// origin chosen by the host; only differences between samples matter.
//
// For a given ID, phases arrive as Start, zero or more Moves, then End or
// Cancel. Consumers tolerate violations by ignoring the offending sample.
type ContactEvent struct {
	ID    ContactID
	X, Y  float64
	At    time.Duration
	Phase Phase
}

// Pos returns the sample position.
func (e ContactEvent) Pos() Vec2 {
	return Vec2{X: e.X, Y: e.Y}
}

// GestureType identifies a kind of recognized gesture.
type GestureType uint8

const (
	GestureSwipeLeft  GestureType = iota // fast horizontal travel toward -X
	GestureSwipeRight                    // fast horizontal travel toward +X
	GestureSwipeUp                       // fast vertical travel toward -Y
	GestureSwipeDown                     // fast vertical travel toward +Y
	GesturePinch                         // two-contact scale change, once per move
	GestureDoubleTap                     // two taps inside the double-tap window
	GestureLongPress                     // single contact held still past the delay
)

// String implements fmt.Stringer.
func (t GestureType) String() string {
	switch t {
	case GestureSwipeLeft:
		return "swipe-left"
	case GestureSwipeRight:
		return "swipe-right"
	case GestureSwipeUp:
		return "swipe-up"
	case GestureSwipeDown:
		return "swipe-down"
	case GesturePinch:
		return "pinch"
	case GestureDoubleTap:
		return "double-tap"
	case GestureLongPress:
		return "long-press"
	default:
		return "unknown"
	}
}

// IsSwipe reports whether t is one of the four swipe directions.
func (t GestureType) IsSwipe() bool {
	return t <= GestureSwipeDown
}

// GestureEvent is an immutable recognized gesture. Only the fields relevant
// to Type are set.
type GestureEvent struct {
	Type GestureType
	// Position where the gesture resolved (release point, hold point, or
	// pinch midpoint).
	X, Y float64
	// Swipe fields
	DeltaX   float64
	DeltaY   float64
	Distance float64
	Duration time.Duration
	// Pinch fields
	Scale float64
	// Time of the sample that produced the event.
	At time.Duration
}

// EntityStore is the interface for optional ECS integration.
// When set on a Recognizer, every emitted gesture is forwarded to it.
type EntityStore interface {
	EmitEvent(event GestureEvent)
}
