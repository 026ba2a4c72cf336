package touchflow

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// batchLoader returns the given pages in order, then reports no more pages.
func batchLoader(pages ...[]string) (LoadFunc[string], *atomic.Int32) {
	var calls atomic.Int32
	return func(ctx context.Context) (LoadResult[string], error) {
		n := int(calls.Add(1))
		if n > len(pages) {
			return LoadResult[string]{}, nil
		}
		return LoadResult[string]{Items: pages[n-1], HasMore: n < len(pages)}, nil
	}, &calls
}

func TestPaginationSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int32
	p := NewPaginator(func(ctx context.Context) (LoadResult[int], error) {
		calls.Add(1)
		<-gate
		return LoadResult[int]{Items: []int{1, 2}, HasMore: true}, nil
	}, PaginationConfig{})

	if !p.NotifyNearEnd() {
		t.Fatal("first NotifyNearEnd should start a load")
	}
	for range 10 {
		if p.NotifyNearEnd() {
			t.Fatal("NotifyNearEnd started a second load while one is in flight")
		}
	}
	p.CheckScroll(ScrollMetrics{Offset: 900, ViewportHeight: 100, ContentHeight: 1000})
	p.CheckVisible(true)
	p.CheckRelease(ScrollMetrics{Offset: 900, ViewportHeight: 100, ContentHeight: 1000})
	p.Retry()

	if !p.State().Loading {
		t.Error("State().Loading = false while a load is in flight")
	}
	if p.Update() {
		t.Error("Update applied a load that has not settled")
	}

	close(gate)
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("load called %d times, want 1", got)
	}
	if st := p.State(); st.Loading || st.LoadCount != 1 {
		t.Errorf("state after settle = %+v", st)
	}
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}
}

func TestPaginationOrdering(t *testing.T) {
	load, calls := batchLoader([]string{"A", "B"}, []string{"C", "D"}, []string{"E"})
	p := NewPaginator(load, PaginationConfig{})

	for i := range 3 {
		if !p.NotifyNearEnd() {
			t.Fatalf("load %d did not start", i+1)
		}
		if err := p.Wait(waitCtx(t)); err != nil {
			t.Fatalf("load %d: %v", i+1, err)
		}
	}

	want := []string{"A", "B", "C", "D", "E"}
	if got := p.Items(); !slices.Equal(got, want) {
		t.Errorf("Items = %v, want %v", got, want)
	}
	if p.State().Phase() != PageExhausted {
		t.Errorf("Phase = %v, want exhausted", p.State().Phase())
	}
	if p.NotifyNearEnd() {
		t.Error("NotifyNearEnd started a load after the last page")
	}
	if calls.Load() != 3 {
		t.Errorf("load called %d times, want 3", calls.Load())
	}
}

func TestPaginationErrorIsRecoverable(t *testing.T) {
	errOffline := errors.New("offline")
	var fail atomic.Bool
	pages := [][]string{{"A", "B"}, {"C"}}
	var served atomic.Int32
	p := NewPaginator(func(ctx context.Context) (LoadResult[string], error) {
		if fail.Load() {
			return LoadResult[string]{}, errOffline
		}
		n := int(served.Add(1))
		return LoadResult[string]{Items: pages[n-1], HasMore: n < len(pages)}, nil
	}, PaginationConfig{})

	p.NotifyNearEnd()
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}

	fail.Store(true)
	p.NotifyNearEnd()
	err := p.Wait(waitCtx(t))
	if !errors.Is(err, errOffline) {
		t.Fatalf("Wait error = %v, want %v", err, errOffline)
	}
	st := p.State()
	if st.Phase() != PageFailed || !errors.Is(st.LastError, errOffline) {
		t.Errorf("state after failure = %+v", st)
	}
	if got := p.Items(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Items after failure = %v, want previously loaded [A B]", got)
	}

	fail.Store(false)
	if !p.Retry() {
		t.Fatal("Retry did not start a load")
	}
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	if p.State().LastError != nil {
		t.Errorf("LastError = %v after successful retry", p.State().LastError)
	}
	if got := p.Items(); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("Items = %v, want [A B C]", got)
	}
	if p.State().LoadCount != 3 {
		t.Errorf("LoadCount = %d, want 3", p.State().LoadCount)
	}
}

func TestPaginationConfigureHasMore(t *testing.T) {
	load, calls := batchLoader([]string{"A"}, []string{"B"})
	p := NewPaginator(load, PaginationConfig{})

	p.Configure(false)
	for range 3 {
		p.NotifyNearEnd()
	}
	if calls.Load() != 0 {
		t.Fatalf("load called %d times with hasMore=false", calls.Load())
	}

	p.Configure(true)
	if !p.NotifyNearEnd() {
		t.Fatal("NotifyNearEnd ignored after Configure(true)")
	}
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("load called %d times, want 1", calls.Load())
	}
}

func TestPaginationCheckScroll(t *testing.T) {
	tests := []struct {
		name string
		m    ScrollMetrics
		want bool
	}{
		{"far from end", ScrollMetrics{Offset: 0, ViewportHeight: 600, ContentHeight: 2000}, false},
		{"just outside threshold", ScrollMetrics{Offset: 1199, ViewportHeight: 600, ContentHeight: 2000}, false},
		{"at threshold", ScrollMetrics{Offset: 1200, ViewportHeight: 600, ContentHeight: 2000}, true},
		{"at end", ScrollMetrics{Offset: 1400, ViewportHeight: 600, ContentHeight: 2000}, true},
		{"short content", ScrollMetrics{Offset: 0, ViewportHeight: 600, ContentHeight: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			load, _ := batchLoader([]string{"A"})
			p := NewPaginator(load, PaginationConfig{NearEndThreshold: 200})
			if got := p.CheckScroll(tt.m); got != tt.want {
				t.Errorf("CheckScroll(%+v) = %v, want %v", tt.m, got, tt.want)
			}
			_ = p.Wait(waitCtx(t))
		})
	}
}

func TestPaginationCheckReleaseAndVisible(t *testing.T) {
	load, _ := batchLoader([]string{"A"}, []string{"B"})
	p := NewPaginator(load, PaginationConfig{NearEndThreshold: 100, ReleaseThreshold: 300})

	m := ScrollMetrics{Offset: 1150, ViewportHeight: 600, ContentHeight: 2000} // 250 remaining
	if p.CheckScroll(m) {
		t.Error("CheckScroll triggered at 250px with a 100px threshold")
	}
	if !p.CheckRelease(m) {
		t.Error("CheckRelease did not trigger at 250px with a 300px threshold")
	}
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}

	if p.CheckVisible(false) {
		t.Error("CheckVisible(false) started a load")
	}
	if !p.CheckVisible(true) {
		t.Error("CheckVisible(true) did not start a load")
	}
	_ = p.Wait(waitCtx(t))
}

func TestPaginationUpdateAppliesSettledLoad(t *testing.T) {
	done := make(chan struct{})
	p := NewPaginator(func(ctx context.Context) (LoadResult[int], error) {
		defer close(done)
		return LoadResult[int]{Items: []int{7}, HasMore: true}, nil
	}, PaginationConfig{})

	p.NotifyNearEnd()
	<-done
	deadline := time.Now().Add(5 * time.Second)
	for !p.Update() {
		if time.Now().After(deadline) {
			t.Fatal("Update never applied the settled load")
		}
		time.Sleep(time.Millisecond)
	}
	if p.State().Loading || p.Len() != 1 {
		t.Errorf("state = %+v, len = %d", p.State(), p.Len())
	}
}

func TestPaginationOnChange(t *testing.T) {
	load, _ := batchLoader([]string{"A"})
	p := NewPaginator(load, PaginationConfig{})

	var phases []PagePhase
	h := p.OnChange(func(s PaginationState) { phases = append(phases, s.Phase()) })
	p.NotifyNearEnd()
	_ = p.Wait(waitCtx(t))
	h.Remove()
	p.Configure(true)

	want := []PagePhase{PageLoading, PageExhausted}
	if !slices.Equal(phases, want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}
}

func TestPaginationConfigureDuringLoadWins(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int32
	p := NewPaginator(func(ctx context.Context) (LoadResult[string], error) {
		calls.Add(1)
		<-gate
		return LoadResult[string]{Items: []string{"A"}, HasMore: true}, nil
	}, PaginationConfig{})

	p.NotifyNearEnd()
	p.Configure(false)
	close(gate)
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}

	if got := p.Items(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Items = %v, want [A]", got)
	}
	if st := p.State(); st.HasMore || st.Phase() != PageExhausted {
		t.Errorf("state = %+v, the settled load must not override Configure(false)", st)
	}
	if p.NotifyNearEnd() {
		t.Error("NotifyNearEnd started a load after Configure(false)")
	}
	if calls.Load() != 1 {
		t.Errorf("load called %d times, want 1", calls.Load())
	}

	// A load started after the host reconfigures reports HasMore again.
	p.Configure(true)
	if !p.NotifyNearEnd() {
		t.Fatal("NotifyNearEnd ignored after Configure(true)")
	}
	_ = p.Wait(waitCtx(t))
	if !p.State().HasMore {
		t.Error("HasMore from a load started after Configure should apply")
	}
}

func TestPaginationResetDiscardsInFlightPage(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int32
	p := NewPaginator(func(ctx context.Context) (LoadResult[string], error) {
		if calls.Add(1) == 1 {
			<-gate
			return LoadResult[string]{Items: []string{"stale"}, HasMore: true}, nil
		}
		return LoadResult[string]{Items: []string{"fresh"}, HasMore: true}, nil
	}, PaginationConfig{})

	p.NotifyNearEnd()
	p.Reset(true)
	if p.NotifyNearEnd() {
		t.Fatal("Reset must not release the single-flight guard")
	}
	close(gate)
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 0 {
		t.Errorf("Items = %v, stale page must be discarded", p.Items())
	}

	p.NotifyNearEnd()
	_ = p.Wait(waitCtx(t))
	if got := p.Items(); !slices.Equal(got, []string{"fresh"}) {
		t.Errorf("Items = %v, want [fresh]", got)
	}
}

func TestPaginationCloseCancelsLoad(t *testing.T) {
	started := make(chan struct{})
	p := NewPaginator(func(ctx context.Context) (LoadResult[int], error) {
		close(started)
		<-ctx.Done()
		return LoadResult[int]{}, ctx.Err()
	}, PaginationConfig{})

	p.NotifyNearEnd()
	<-started
	p.Close()
	_ = p.Wait(waitCtx(t))

	if p.Len() != 0 {
		t.Errorf("Len = %d after close", p.Len())
	}
	if p.NotifyNearEnd() {
		t.Error("NotifyNearEnd started a load after Close")
	}
	if err := p.Wait(waitCtx(t)); !errors.Is(err, ErrClosed) {
		t.Errorf("Wait after close = %v, want ErrClosed", err)
	}
}

func TestPaginationLoadPanicBecomesError(t *testing.T) {
	p := NewPaginator(func(ctx context.Context) (LoadResult[int], error) {
		panic("boom")
	}, PaginationConfig{})

	p.NotifyNearEnd()
	if err := p.Wait(waitCtx(t)); err == nil {
		t.Fatal("expected an error from a panicking load")
	}
	if p.State().Phase() != PageFailed {
		t.Errorf("Phase = %v, want failed", p.State().Phase())
	}
}

func TestPaginationWaitHonorsContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	p := NewPaginator(func(ctx context.Context) (LoadResult[int], error) {
		<-gate
		return LoadResult[int]{}, nil
	}, PaginationConfig{})

	p.NotifyNearEnd()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want deadline exceeded", err)
	}
	if !p.State().Loading {
		t.Error("load should still be in flight")
	}
}
