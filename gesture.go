package touchflow

import (
	"math"
	"time"
)

// --- Configuration ---

// GestureConfig holds the recognizer thresholds. Zero fields take the value
// from DefaultGestureConfig.
type GestureConfig struct {
	// SwipeThreshold is the minimum dominant-axis travel, in pixels, for a
	// release to count as a swipe.
	SwipeThreshold float64
	// SwipeMaxDuration is the longest press-to-release time for a swipe.
	SwipeMaxDuration time.Duration
	// TapMaxDuration is the longest press-to-release time for a tap.
	TapMaxDuration time.Duration
	// DoubleTapWindow is the largest gap between the first tap's release and
	// the second tap's press.
	DoubleTapWindow time.Duration
	// LongPressDelay is how long a single contact must stay still before
	// LongPress fires.
	LongPressDelay time.Duration
	// JitterTolerance is the travel, in pixels, a held contact may wander
	// without cancelling a pending long-press.
	JitterTolerance float64
}

// DefaultGestureConfig returns the thresholds used for zero config fields.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		SwipeThreshold:   50,
		SwipeMaxDuration: 300 * time.Millisecond,
		TapMaxDuration:   250 * time.Millisecond,
		DoubleTapWindow:  300 * time.Millisecond,
		LongPressDelay:   500 * time.Millisecond,
		JitterTolerance:  10,
	}
}

func (c GestureConfig) withDefaults() GestureConfig {
	def := DefaultGestureConfig()
	if c.SwipeThreshold < 0 || c.SwipeMaxDuration < 0 || c.TapMaxDuration < 0 ||
		c.DoubleTapWindow < 0 || c.LongPressDelay < 0 || c.JitterTolerance < 0 {
		warnf("negative gesture threshold in %+v, using defaults for those fields", c)
	}
	if c.SwipeThreshold <= 0 {
		c.SwipeThreshold = def.SwipeThreshold
	}
	if c.SwipeMaxDuration <= 0 {
		c.SwipeMaxDuration = def.SwipeMaxDuration
	}
	if c.TapMaxDuration <= 0 {
		c.TapMaxDuration = def.TapMaxDuration
	}
	if c.DoubleTapWindow <= 0 {
		c.DoubleTapWindow = def.DoubleTapWindow
	}
	if c.LongPressDelay <= 0 {
		c.LongPressDelay = def.LongPressDelay
	}
	if c.JitterTolerance <= 0 {
		c.JitterTolerance = def.JitterTolerance
	}
	return c
}

// --- Per-sequence state ---

// gestureState lives from the first contact down to the last contact up.
type gestureState struct {
	primary ContactID
	start   ContactEvent
	last    ContactEvent
	timer   Timer

	// Pinch pair. pinchInitial is 0 when no pinch is active.
	pinchA       ContactID
	pinchB       ContactID
	pinchInitial float64

	multi       bool // a second contact touched down
	longPressed bool
}

type gestureHandlers struct {
	swipe     handlerList[GestureEvent]
	pinch     handlerList[GestureEvent]
	doubleTap handlerList[GestureEvent]
	longPress handlerList[GestureEvent]
}

// Recognizer turns contact samples into gestures. It is not safe for
// concurrent use: feed it, and advance its Scheduler, from one goroutine.
type Recognizer struct {
	diagnostics
	cfg   GestureConfig
	sched Scheduler
	store EntityStore

	active contactSet
	st     gestureState
	gen    uint64 // bumped per sequence so a stale long-press never fires

	// Tap pairing spans sequences.
	lastTap    time.Duration
	hasLastTap bool

	handlers gestureHandlers
}

// NewRecognizer creates a recognizer. sched drives the long-press timer;
// pass a *Clock advanced from the host loop.
func NewRecognizer(cfg GestureConfig, sched Scheduler) *Recognizer {
	return &Recognizer{
		diagnostics: diagnostics{component: "gesture"},
		cfg:         cfg.withDefaults(),
		sched:       sched,
	}
}

// Config returns the effective thresholds.
func (r *Recognizer) Config() GestureConfig {
	return r.cfg
}

// SetEntityStore forwards every emitted gesture to store. Pass nil to detach.
func (r *Recognizer) SetEntityStore(store EntityStore) {
	r.store = store
}

// --- Registration ---

// OnSwipe registers a callback for all four swipe directions.
func (r *Recognizer) OnSwipe(fn func(GestureEvent)) CallbackHandle {
	return register(&r.handlers.swipe, fn)
}

// OnPinch registers a callback fired on every move of the pinch pair.
func (r *Recognizer) OnPinch(fn func(GestureEvent)) CallbackHandle {
	return register(&r.handlers.pinch, fn)
}

// OnDoubleTap registers a callback for double-tap events.
func (r *Recognizer) OnDoubleTap(fn func(GestureEvent)) CallbackHandle {
	return register(&r.handlers.doubleTap, fn)
}

// OnLongPress registers a callback for long-press events. Long-press fires
// from the Scheduler, never from HandleContact.
func (r *Recognizer) OnLongPress(fn func(GestureEvent)) CallbackHandle {
	return register(&r.handlers.longPress, fn)
}

// Attach subscribes the recognizer to src.
func (r *Recognizer) Attach(src ContactSource) CallbackHandle {
	return src.Subscribe(func(ev ContactEvent) { r.HandleContact(ev) })
}

// Active returns the number of contacts currently down.
func (r *Recognizer) Active() int {
	return r.active.len()
}

// Reset abandons the current sequence and forgets any pending tap. A pending
// long-press is stopped.
func (r *Recognizer) Reset() {
	r.resetSequence()
	r.active.clear()
	r.hasLastTap = false
}

// --- Input processing ---

// HandleContact feeds one sample and returns the gestures it produced, which
// have also been dispatched to the registered callbacks. Malformed samples
// are ignored.
func (r *Recognizer) HandleContact(ev ContactEvent) []GestureEvent {
	var out []GestureEvent
	switch ev.Phase {
	case PhaseStart:
		r.handleStart(ev)
	case PhaseMove:
		out = r.handleMove(ev)
	case PhaseEnd, PhaseCancel:
		out = r.handleRelease(ev)
	default:
		r.debugf("contact %d: unknown phase %d ignored", ev.ID, ev.Phase)
	}
	for _, g := range out {
		r.dispatch(g)
	}
	return out
}

func (r *Recognizer) handleStart(ev ContactEvent) {
	if r.active.find(ev.ID) != nil {
		r.debugf("contact %d: duplicate start ignored", ev.ID)
		return
	}

	switch r.active.len() {
	case 0:
		// New sequence.
		r.resetSequence()
		r.active.add(ev)
		r.st.primary = ev.ID
		r.st.start = ev
		r.st.last = ev
		gen := r.gen
		if r.sched != nil {
			r.st.timer = r.sched.AfterFunc(r.cfg.LongPressDelay, func() { r.fireLongPress(gen) })
		}
	case 1:
		// Second finger: pinch begins, long-press is off the table.
		first := r.active.tracks[0].id
		r.active.add(ev)
		r.stopTimer()
		r.st.multi = true
		r.st.pinchA = first
		r.st.pinchB = ev.ID
		r.st.pinchInitial = distance(r.active.find(first), r.active.find(ev.ID))
		if r.st.pinchInitial == 0 {
			r.debugf("contacts %d and %d coincide, pinch disabled", first, ev.ID)
		}
	default:
		// Third and later contacts are tracked but never drive the pinch.
		r.active.add(ev)
	}
}

func (r *Recognizer) handleMove(ev ContactEvent) []GestureEvent {
	t := r.active.find(ev.ID)
	if t == nil {
		r.debugf("contact %d: move without start ignored", ev.ID)
		return nil
	}
	t.last = ev

	if r.st.timer != nil && t.travel() > r.cfg.JitterTolerance {
		r.stopTimer()
	}

	if r.st.pinchInitial > 0 && (ev.ID == r.st.pinchA || ev.ID == r.st.pinchB) {
		a := r.active.find(r.st.pinchA)
		b := r.active.find(r.st.pinchB)
		if a != nil && b != nil {
			return []GestureEvent{{
				Type:  GesturePinch,
				X:     (a.last.X + b.last.X) / 2,
				Y:     (a.last.Y + b.last.Y) / 2,
				Scale: distance(a, b) / r.st.pinchInitial,
				At:    ev.At,
			}}
		}
	}

	if ev.ID == r.st.primary {
		r.st.last = ev
	}
	return nil
}

func (r *Recognizer) handleRelease(ev ContactEvent) []GestureEvent {
	if _, ok := r.active.remove(ev.ID); !ok {
		r.debugf("contact %d: %s without start ignored", ev.ID, ev.Phase)
		return nil
	}

	// A cancel may carry no meaningful position; keep the last move.
	if ev.ID == r.st.primary && ev.Phase == PhaseEnd {
		r.st.last = ev
	}
	if ev.ID == r.st.pinchA || ev.ID == r.st.pinchB {
		r.st.pinchInitial = 0
	}
	if r.active.len() > 0 {
		return nil
	}

	r.stopTimer()
	out := r.classify()
	r.resetSequence()
	return out
}

// classify resolves a finished single-contact sequence into at most one
// discrete gesture.
func (r *Recognizer) classify() []GestureEvent {
	if r.st.longPressed || r.st.multi {
		r.hasLastTap = false
		return nil
	}

	d := r.st.last.Pos().Sub(r.st.start.Pos())
	dur := r.st.last.At - r.st.start.At
	travel := math.Max(math.Abs(d.X), math.Abs(d.Y))

	if dur <= r.cfg.SwipeMaxDuration && travel >= r.cfg.SwipeThreshold {
		r.hasLastTap = false
		return []GestureEvent{{
			Type:     swipeDirection(d),
			X:        r.st.last.X,
			Y:        r.st.last.Y,
			DeltaX:   d.X,
			DeltaY:   d.Y,
			Distance: travel,
			Duration: dur,
			At:       r.st.last.At,
		}}
	}

	if dur <= r.cfg.TapMaxDuration && travel < r.cfg.SwipeThreshold {
		gap := r.st.start.At - r.lastTap
		if r.hasLastTap && gap >= 0 && gap <= r.cfg.DoubleTapWindow {
			r.hasLastTap = false
			return []GestureEvent{{
				Type: GestureDoubleTap,
				X:    r.st.last.X,
				Y:    r.st.last.Y,
				At:   r.st.last.At,
			}}
		}
		r.lastTap = r.st.last.At
		r.hasLastTap = true
		return nil
	}

	// Slow drag: nothing, and it breaks any pending tap pairing.
	r.hasLastTap = false
	return nil
}

// swipeDirection picks the dominant axis of d. Horizontal wins ties.
func swipeDirection(d Vec2) GestureType {
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X < 0 {
			return GestureSwipeLeft
		}
		return GestureSwipeRight
	}
	if d.Y < 0 {
		return GestureSwipeUp
	}
	return GestureSwipeDown
}

func (r *Recognizer) fireLongPress(gen uint64) {
	if gen != r.gen || r.st.timer == nil || r.st.multi || r.active.len() == 0 {
		return
	}
	r.st.timer = nil
	r.st.longPressed = true
	r.hasLastTap = false
	r.dispatch(GestureEvent{
		Type: GestureLongPress,
		X:    r.st.last.X,
		Y:    r.st.last.Y,
		At:   r.st.start.At + r.cfg.LongPressDelay,
	})
}

func (r *Recognizer) stopTimer() {
	if r.st.timer != nil {
		r.st.timer.Stop()
		r.st.timer = nil
	}
}

func (r *Recognizer) resetSequence() {
	r.stopTimer()
	r.st = gestureState{}
	r.gen++
}

// --- Event dispatch ---

func (r *Recognizer) dispatch(g GestureEvent) {
	switch {
	case g.Type.IsSwipe():
		r.handlers.swipe.fire(g)
	case g.Type == GesturePinch:
		r.handlers.pinch.fire(g)
	case g.Type == GestureDoubleTap:
		r.handlers.doubleTap.fire(g)
	case g.Type == GestureLongPress:
		r.handlers.longPress.fire(g)
	}
	if r.store != nil {
		r.store.EmitEvent(g)
	}
}
