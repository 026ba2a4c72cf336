package touchflow

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/tanema/gween/ease"
)

// PullPhase is the stage of a pull-to-refresh interaction.
type PullPhase uint8

const (
	PullIdle       PullPhase = iota // at rest, or retracting after release
	PullPulling                     // dragged, below the activation threshold
	PullReady                       // dragged to or past the threshold; release refreshes
	PullRefreshing                  // refresh in flight, indicator pinned at the threshold
)

// String implements fmt.Stringer.
func (p PullPhase) String() string {
	switch p {
	case PullIdle:
		return "idle"
	case PullPulling:
		return "pulling"
	case PullReady:
		return "ready"
	case PullRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// PullState is a snapshot delivered after every change. Distance is the
// clamped pull travel in pixels and the sole driver of indicator visuals.
type PullState struct {
	Phase    PullPhase
	Distance float64
}

// RefreshFunc reloads the content. It runs on its own goroutine and must
// honor ctx, which is cancelled when the controller is closed. Its error is
// not surfaced: a failed refresh retracts exactly like a successful one.
type RefreshFunc func(ctx context.Context) error

// PullConfig holds the pull geometry. Zero fields take the value from
// DefaultPullConfig.
type PullConfig struct {
	// ActivationThreshold is the pull distance, in pixels, at which a
	// release triggers a refresh.
	ActivationThreshold float64
	// MaxPull is the hard clamp on pull distance. Dragging further produces
	// no extra travel.
	MaxPull float64
	// RetractDuration is how long, in seconds, the indicator takes to
	// return to rest.
	RetractDuration float32
	// Ease shapes the retraction.
	Ease ease.TweenFunc
}

// DefaultPullConfig returns the values used for zero config fields.
func DefaultPullConfig() PullConfig {
	return PullConfig{
		ActivationThreshold: 80,
		MaxPull:             120,
		RetractDuration:     0.25,
		Ease:                ease.OutCubic,
	}
}

func (c PullConfig) withDefaults() PullConfig {
	def := DefaultPullConfig()
	if c.ActivationThreshold <= 0 {
		c.ActivationThreshold = def.ActivationThreshold
	}
	if c.MaxPull <= 0 {
		c.MaxPull = max(def.MaxPull, c.ActivationThreshold)
	}
	if c.MaxPull < c.ActivationThreshold {
		warnf("MaxPull %v below ActivationThreshold %v, raising it", c.MaxPull, c.ActivationThreshold)
		c.MaxPull = c.ActivationThreshold
	}
	if c.RetractDuration <= 0 {
		c.RetractDuration = def.RetractDuration
	}
	if c.Ease == nil {
		c.Ease = def.Ease
	}
	return c
}

// pullPhaseFor maps a pull distance to its phase while a contact is down.
func pullPhaseFor(distance, threshold float64) PullPhase {
	switch {
	case distance <= 0:
		return PullIdle
	case distance < threshold:
		return PullPulling
	default:
		return PullReady
	}
}

// PullController turns a downward drag at the top of a container into a
// refresh. At most one refresh is in flight.
//
// A PullController is owned by the host loop goroutine. Call Update every
// frame to advance the retraction and apply a settled refresh.
type PullController struct {
	diagnostics
	cfg     PullConfig
	refresh RefreshFunc

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	state PullState

	// Tracked contact. Only the contact that started at the top counts.
	tracking bool
	contact  ContactID
	startY   float64

	retract   *Tween
	inFlight  bool
	refreshes int
	results   chan error

	changes handlerList[PullState]
}

// NewPullController creates a pull controller that calls refresh on a
// completed pull.
func NewPullController(refresh RefreshFunc, cfg PullConfig) *PullController {
	ctx, cancel := context.WithCancel(context.Background())
	return &PullController{
		diagnostics: diagnostics{component: "pull"},
		cfg:         cfg.withDefaults(),
		refresh:     refresh,
		ctx:         ctx,
		cancel:      cancel,
		results:     make(chan error, 1),
	}
}

// Config returns the effective geometry.
func (p *PullController) Config() PullConfig {
	return p.cfg
}

// OnChange registers a callback receiving the state after every change.
func (p *PullController) OnChange(fn func(PullState)) CallbackHandle {
	return register(&p.changes, fn)
}

// State returns the current state.
func (p *PullController) State() PullState {
	return p.state
}

// Progress returns Distance as a fraction of the activation threshold,
// clamped to [0, 1], for indicator rotation or opacity.
func (p *PullController) Progress() float64 {
	return lo.Clamp(p.state.Distance/p.cfg.ActivationThreshold, 0, 1)
}

// Animating reports whether the indicator is retracting.
func (p *PullController) Animating() bool {
	return p.retract != nil && !p.retract.Done
}

// Refreshes returns how many times the RefreshFunc has been invoked.
func (p *PullController) Refreshes() int {
	return p.refreshes
}

// Attach subscribes the controller to src, reading c's scroll offset for
// every sample.
func (p *PullController) Attach(src ContactSource, c Container) CallbackHandle {
	return src.Subscribe(func(ev ContactEvent) { p.HandleContact(ev, c.ScrollTop()) })
}

// HandleContact feeds one contact sample together with the container's
// scroll offset at the time of the sample.
func (p *PullController) HandleContact(ev ContactEvent, scrollTop float64) {
	if p.closed || p.state.Phase == PullRefreshing {
		return
	}

	switch ev.Phase {
	case PhaseStart:
		if p.tracking || scrollTop > 0 {
			return
		}
		p.tracking = true
		p.contact = ev.ID
		p.startY = ev.Y
		// A press cuts a retraction short; the new pull starts from zero.
		p.retract = nil
		p.set(PullState{Phase: PullIdle})
	case PhaseMove:
		if !p.tracking || ev.ID != p.contact {
			return
		}
		p.track(ev.Y, scrollTop)
	case PhaseEnd, PhaseCancel:
		if !p.tracking || ev.ID != p.contact {
			return
		}
		p.tracking = false
		if ev.Phase == PhaseEnd {
			// The release sample is the final position.
			p.track(ev.Y, scrollTop)
		}
		if ev.Phase == PhaseEnd && p.state.Phase == PullReady {
			p.beginRefresh()
			return
		}
		p.startRetract()
	}
}

// Update advances the retraction by dt seconds and applies a settled
// refresh without blocking.
func (p *PullController) Update(dt float32) {
	if p.inFlight {
		select {
		case err := <-p.results:
			p.settle(err)
		default:
		}
	}
	if p.Animating() {
		d := p.retract.Update(dt)
		if p.retract.Done {
			d = 0
		}
		p.set(PullState{Phase: p.state.Phase, Distance: d})
	}
}

// Wait blocks until the in-flight refresh settles and applies it. It returns
// nil when nothing is in flight and ctx's error if ctx ends first. The
// refresh's own error is never returned.
func (p *PullController) Wait(ctx context.Context) error {
	if !p.inFlight {
		if p.closed {
			return ErrClosed
		}
		return nil
	}
	select {
	case err := <-p.results:
		p.settle(err)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the context passed to an in-flight RefreshFunc and stops
// interpreting contacts.
func (p *PullController) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.tracking = false
	p.retract = nil
	p.cancel()
}

// track updates the pull distance for the tracked contact at y. Leaving the
// top edge or dragging upward drops the distance to zero.
func (p *PullController) track(y, scrollTop float64) {
	var d float64
	if dy := y - p.startY; scrollTop <= 0 && dy > 0 {
		d = lo.Clamp(dy, 0, p.cfg.MaxPull)
	}
	p.set(PullState{Phase: pullPhaseFor(d, p.cfg.ActivationThreshold), Distance: d})
}

func (p *PullController) beginRefresh() {
	p.inFlight = true
	p.refreshes++
	p.set(PullState{Phase: PullRefreshing, Distance: p.cfg.ActivationThreshold})

	refresh, ctx, results := p.refresh, p.ctx, p.results
	go func() {
		defer func() {
			if v := recover(); v != nil {
				results <- fmt.Errorf("refresh panicked: %v", v)
			}
		}()
		results <- refresh(ctx)
	}()
}

func (p *PullController) settle(err error) {
	p.inFlight = false
	if err != nil {
		p.debugf("refresh failed, retracting anyway: %v", err)
	}
	if p.closed {
		return
	}
	p.set(PullState{Phase: PullIdle, Distance: p.state.Distance})
	p.startRetract()
}

func (p *PullController) startRetract() {
	if p.state.Distance <= 0 {
		p.set(PullState{Phase: PullIdle})
		return
	}
	p.retract = NewTween(p.state.Distance, 0, p.cfg.RetractDuration, p.cfg.Ease)
	p.set(PullState{Phase: PullIdle, Distance: p.state.Distance})
}

func (p *PullController) set(s PullState) {
	if s == p.state {
		return
	}
	p.state = s
	p.changes.fire(s)
}
