package touchflow

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates a single float64 toward a target. It wraps a gween tween so
// hosts can drive indicator visuals (spinner alpha, list offset) with the
// same easing the pull controller uses for its retraction.
//
// There is no global animation manager: callers call Update themselves.
type Tween struct {
	tween *gween.Tween
	value float64
	Done  bool
}

// NewTween creates a tween from `from` to `to` over duration seconds.
// A nil fn means ease.Linear.
func NewTween(from, to float64, duration float32, fn ease.TweenFunc) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	if duration <= 0 {
		return &Tween{value: to, Done: true}
	}
	return &Tween{
		tween: gween.New(float32(from), float32(to), duration, fn),
		value: from,
	}
}

// Update advances the tween by dt seconds and returns the current value.
func (t *Tween) Update(dt float32) float64 {
	if t.Done {
		return t.value
	}
	val, finished := t.tween.Update(dt)
	t.value = float64(val)
	t.Done = finished
	return t.value
}

// Value returns the current value without advancing.
func (t *Tween) Value() float64 {
	return t.value
}
