package touchflow

import (
	"math"
	"time"
)

// Injector builds synthetic contact sequences on a virtual timeline. Each
// call appends samples at the injector's current time; Wait moves the time
// forward. The result feeds a Recognizer or PullController exactly like
// real platform input, which makes gesture behavior testable without a
// device.
type Injector struct {
	events []ContactEvent
	now    time.Duration
	nextID ContactID
	last   map[ContactID]Vec2
	// Step is the time between generated samples in Drag and Pinch.
	Step time.Duration
}

// NewInjector creates an injector whose timeline starts at start.
func NewInjector(start time.Duration) *Injector {
	return &Injector{
		now:    start,
		nextID: 1,
		last:   make(map[ContactID]Vec2),
		Step:   16 * time.Millisecond,
	}
}

// Now returns the injector's current time.
func (in *Injector) Now() time.Duration {
	return in.now
}

// Wait advances the timeline by d.
func (in *Injector) Wait(d time.Duration) {
	if d > 0 {
		in.now += d
	}
}

// Press queues a Start for a new contact at (x, y) and returns its ID.
func (in *Injector) Press(x, y float64) ContactID {
	id := in.nextID
	in.nextID++
	in.emit(id, x, y, PhaseStart)
	return id
}

// Move queues a Move for contact id.
func (in *Injector) Move(id ContactID, x, y float64) {
	in.emit(id, x, y, PhaseMove)
}

// Release queues an End for contact id at (x, y).
func (in *Injector) Release(id ContactID, x, y float64) {
	in.emit(id, x, y, PhaseEnd)
	delete(in.last, id)
}

// Cancel queues a Cancel for contact id at its last known position.
func (in *Injector) Cancel(id ContactID) {
	p := in.last[id]
	in.emit(id, p.X, p.Y, PhaseCancel)
	delete(in.last, id)
}

// Tap queues a press and release at (x, y) held for d.
func (in *Injector) Tap(x, y float64, d time.Duration) {
	id := in.Press(x, y)
	in.Wait(d)
	in.Release(id, x, y)
}

// Drag queues a press at (fromX, fromY), evenly spaced moves, and a release
// at (toX, toY), spanning d in total. steps is the number of intermediate
// moves; zero derives it from Step.
func (in *Injector) Drag(fromX, fromY, toX, toY float64, d time.Duration, steps int) {
	if steps <= 0 {
		steps = in.stepsFor(d)
	}
	id := in.Press(fromX, fromY)
	start := in.now
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		in.now = start + time.Duration(float64(d)*t)
		in.Move(id, fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	in.now = start + d
	in.Release(id, toX, toY)
}

// Pinch queues a two-contact pinch centered on (cx, cy): the contacts go
// down fromDist apart on the horizontal axis, spread or close to toDist over
// d, then lift.
func (in *Injector) Pinch(cx, cy, fromDist, toDist float64, d time.Duration, steps int) {
	if steps <= 0 {
		steps = in.stepsFor(d)
	}
	a := in.Press(cx-fromDist/2, cy)
	b := in.Press(cx+fromDist/2, cy)
	start := in.now
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		half := (fromDist + (toDist-fromDist)*t) / 2
		in.now = start + time.Duration(float64(d)*t)
		in.Move(a, cx-half, cy)
		in.Move(b, cx+half, cy)
	}
	in.now = start + d
	in.Release(a, cx-toDist/2, cy)
	in.Release(b, cx+toDist/2, cy)
}

// Events returns the queued samples in order and clears the queue.
func (in *Injector) Events() []ContactEvent {
	out := in.events
	in.events = nil
	return out
}

func (in *Injector) emit(id ContactID, x, y float64, phase Phase) {
	in.events = append(in.events, ContactEvent{ID: id, X: x, Y: y, At: in.now, Phase: phase})
	in.last[id] = Vec2{X: x, Y: y}
}

func (in *Injector) stepsFor(d time.Duration) int {
	if in.Step <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(float64(d)/float64(in.Step)))-1)
}

// Replay delivers events to sink in order, advancing clock to each sample's
// time first so timers due before a sample fire before it. A nil clock
// delivers without advancing.
func Replay(events []ContactEvent, clock *Clock, sink func(ContactEvent)) {
	for _, ev := range events {
		if clock != nil {
			clock.AdvanceTo(ev.At)
		}
		sink(ev)
	}
}
