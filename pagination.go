package touchflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrClosed is returned by Wait on a controller that has been closed.
var ErrClosed = errors.New("touchflow: controller closed")

// LoadResult is one page returned by a LoadFunc.
type LoadResult[T any] struct {
	Items   []T
	HasMore bool
}

// LoadFunc fetches the next page. It runs on its own goroutine and must
// honor ctx, which is cancelled when the paginator is closed.
type LoadFunc[T any] func(ctx context.Context) (LoadResult[T], error)

// PagePhase is the coarse pagination state a view renders from.
type PagePhase uint8

const (
	PageIdle      PagePhase = iota // ready to load when the end comes near
	PageLoading                    // one load in flight
	PageFailed                     // last load failed; retry re-runs it
	PageExhausted                  // no more pages until reconfigured
)

// String implements fmt.Stringer.
func (p PagePhase) String() string {
	switch p {
	case PageIdle:
		return "idle"
	case PageLoading:
		return "loading"
	case PageFailed:
		return "failed"
	case PageExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// PaginationState is a snapshot delivered after every transition.
type PaginationState struct {
	Loading   bool
	HasMore   bool
	LastError error
	LoadCount int // LoadFunc invocations so far
}

// Phase derives the coarse phase from the flags.
func (s PaginationState) Phase() PagePhase {
	switch {
	case s.Loading:
		return PageLoading
	case s.LastError != nil:
		return PageFailed
	case !s.HasMore:
		return PageExhausted
	default:
		return PageIdle
	}
}

// PaginationConfig holds the near-end thresholds. Zero fields take the
// value from DefaultPaginationConfig.
type PaginationConfig struct {
	// NearEndThreshold is the remaining distance, in pixels, at which a
	// scroll sample triggers a load.
	NearEndThreshold float64
	// ReleaseThreshold is the remaining distance at which a touch release
	// triggers a load. It is usually larger than NearEndThreshold since a
	// fling keeps scrolling after release.
	ReleaseThreshold float64
}

// DefaultPaginationConfig returns the thresholds used for zero config fields.
func DefaultPaginationConfig() PaginationConfig {
	return PaginationConfig{
		NearEndThreshold: 200,
		ReleaseThreshold: 400,
	}
}

func (c PaginationConfig) withDefaults() PaginationConfig {
	def := DefaultPaginationConfig()
	if c.NearEndThreshold < 0 || c.ReleaseThreshold < 0 {
		warnf("negative pagination threshold in %+v, using defaults", c)
	}
	if c.NearEndThreshold <= 0 {
		c.NearEndThreshold = def.NearEndThreshold
	}
	if c.ReleaseThreshold <= 0 {
		c.ReleaseThreshold = def.ReleaseThreshold
	}
	return c
}

type loadOutcome[T any] struct {
	res      LoadResult[T]
	err      error
	epoch    uint64
	cfgEpoch uint64
}

// Paginator drives infinite scrolling: near-end signals start a load, at
// most one load is in flight, and pages are appended in call order.
//
// A Paginator is owned by the host loop goroutine. The LoadFunc runs on its
// own goroutine; its result is applied by Update or Wait.
type Paginator[T any] struct {
	diagnostics
	cfg  PaginationConfig
	load LoadFunc[T]

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	state   PaginationState
	items   []T
	epoch   uint64 // bumped by Reset; loads from older epochs are discarded
	results chan loadOutcome[T]

	// cfgEpoch is bumped by Configure. A load started before the host last
	// set HasMore appends its items but leaves HasMore alone.
	cfgEpoch uint64

	changes handlerList[PaginationState]
}

// NewPaginator creates a paginator that believes more pages exist until a
// LoadResult or Configure says otherwise.
func NewPaginator[T any](load LoadFunc[T], cfg PaginationConfig) *Paginator[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Paginator[T]{
		diagnostics: diagnostics{component: "pagination"},
		cfg:         cfg.withDefaults(),
		load:        load,
		ctx:         ctx,
		cancel:      cancel,
		state:       PaginationState{HasMore: true},
		results:     make(chan loadOutcome[T], 1),
	}
}

// OnChange registers a callback receiving the state after every transition.
func (p *Paginator[T]) OnChange(fn func(PaginationState)) CallbackHandle {
	return register(&p.changes, fn)
}

// State returns the current state.
func (p *Paginator[T]) State() PaginationState {
	return p.state
}

// Items returns a copy of every item loaded so far, in load order.
func (p *Paginator[T]) Items() []T {
	return slices.Clone(p.items)
}

// Len returns the number of items loaded so far.
func (p *Paginator[T]) Len() int {
	return len(p.items)
}

// Configure sets whether more pages exist. With hasMore false every near-end
// signal is ignored until Configure(true), even if a load in flight reports
// more pages.
func (p *Paginator[T]) Configure(hasMore bool) {
	p.cfgEpoch++
	if p.state.HasMore == hasMore {
		return
	}
	p.state.HasMore = hasMore
	p.notify()
}

// NotifyNearEnd starts a load unless one is in flight or no more pages
// exist. It is safe to call redundantly from several signals for the same
// approach to the end. It reports whether a load was started.
func (p *Paginator[T]) NotifyNearEnd() bool {
	switch {
	case p.closed:
		p.debugf("near-end after close ignored")
		return false
	case p.state.Loading:
		p.debugf("near-end coalesced with in-flight load %d", p.state.LoadCount)
		return false
	case !p.state.HasMore:
		return false
	}
	p.start()
	p.notify()
	return true
}

// Retry re-runs the load after a failure. It is the same path as
// NotifyNearEnd.
func (p *Paginator[T]) Retry() bool {
	return p.NotifyNearEnd()
}

// CheckScroll triggers a load when the trailing edge is within
// NearEndThreshold of the content end.
func (p *Paginator[T]) CheckScroll(m ScrollMetrics) bool {
	if m.Remaining() > p.cfg.NearEndThreshold {
		return false
	}
	return p.NotifyNearEnd()
}

// CheckVisible triggers a load when a sentinel at the end of the list
// becomes visible.
func (p *Paginator[T]) CheckVisible(visible bool) bool {
	if !visible {
		return false
	}
	return p.NotifyNearEnd()
}

// CheckRelease is the touch-release heuristic: a finger lifting within
// ReleaseThreshold of the end triggers a load.
func (p *Paginator[T]) CheckRelease(m ScrollMetrics) bool {
	if m.Remaining() > p.cfg.ReleaseThreshold {
		return false
	}
	return p.NotifyNearEnd()
}

// Update applies a settled load, if any, without blocking. Call it once per
// frame. It reports whether a load was applied.
func (p *Paginator[T]) Update() bool {
	if !p.state.Loading {
		return false
	}
	select {
	case o := <-p.results:
		p.apply(o)
		return true
	default:
		return false
	}
}

// Wait blocks until the in-flight load settles and applies it. It returns
// the load error, ctx's error, or nil when nothing is in flight.
func (p *Paginator[T]) Wait(ctx context.Context) error {
	if !p.state.Loading {
		if p.closed {
			return ErrClosed
		}
		return nil
	}
	select {
	case o := <-p.results:
		p.apply(o)
		if o.err != nil {
			return fmt.Errorf("load page %d: %w", p.state.LoadCount, o.err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset drops all loaded items, for example after a pull-to-refresh. A load
// still in flight keeps the single-flight guard held, but its page is
// discarded when it settles.
func (p *Paginator[T]) Reset(hasMore bool) {
	clear(p.items)
	p.items = p.items[:0]
	p.epoch++
	p.state.HasMore = hasMore
	p.state.LastError = nil
	p.notify()
}

// Close cancels the context passed to an in-flight LoadFunc and stops
// accepting signals. Results arriving later are discarded.
func (p *Paginator[T]) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.cancel()
}

func (p *Paginator[T]) start() {
	p.state.Loading = true
	p.state.LoadCount++

	load, ctx, results := p.load, p.ctx, p.results
	epoch, cfgEpoch := p.epoch, p.cfgEpoch
	go func() {
		defer func() {
			if v := recover(); v != nil {
				results <- loadOutcome[T]{err: fmt.Errorf("load panicked: %v", v), epoch: epoch, cfgEpoch: cfgEpoch}
			}
		}()
		res, err := load(ctx)
		results <- loadOutcome[T]{res: res, err: err, epoch: epoch, cfgEpoch: cfgEpoch}
	}()
}

func (p *Paginator[T]) apply(o loadOutcome[T]) {
	p.state.Loading = false
	if p.closed {
		return
	}
	switch {
	case o.epoch != p.epoch:
		p.debugf("discarding page loaded before reset")
	case o.err != nil:
		p.debugf("load %d failed: %v", p.state.LoadCount, o.err)
		p.state.LastError = o.err
	default:
		p.items = append(p.items, o.res.Items...)
		if o.cfgEpoch == p.cfgEpoch {
			p.state.HasMore = o.res.HasMore
		} else {
			p.debugf("load %d settled after Configure, keeping HasMore=%v", p.state.LoadCount, p.state.HasMore)
		}
		p.state.LastError = nil
	}
	p.notify()
}

func (p *Paginator[T]) notify() {
	p.changes.fire(p.state)
}
