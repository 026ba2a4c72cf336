package ecs

import (
	"testing"
	"time"

	"github.com/phanxgames/touchflow"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []touchflow.GestureEvent
	GestureEventType.Subscribe(world, func(w donburi.World, e touchflow.GestureEvent) {
		received = append(received, e)
	})

	store.EmitEvent(touchflow.GestureEvent{
		Type:     touchflow.GestureSwipeLeft,
		X:        100,
		Y:        200,
		DeltaX:   -120,
		Distance: 120,
	})
	store.EmitEvent(touchflow.GestureEvent{
		Type:  touchflow.GesturePinch,
		Scale: 2.0,
	})

	// Events are queued; process them.
	GestureEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != touchflow.GestureSwipeLeft || e0.Distance != 120 {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.X != 100 || e0.Y != 200 {
		t.Errorf("event 0 position: (%v,%v)", e0.X, e0.Y)
	}
	e1 := received[1]
	if e1.Type != touchflow.GesturePinch || e1.Scale != 2.0 {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	world := donburi.NewWorld()
	var store touchflow.EntityStore = NewDonburiStore(world)
	_ = store // compile-time interface check
}

func TestDonburiStore_FromRecognizer(t *testing.T) {
	world := donburi.NewWorld()
	clock := touchflow.NewClock(0)
	rec := touchflow.NewRecognizer(touchflow.GestureConfig{}, clock)
	rec.SetEntityStore(NewDonburiStore(world))

	var got []touchflow.GestureType
	GestureEventType.Subscribe(world, func(w donburi.World, e touchflow.GestureEvent) {
		got = append(got, e.Type)
	})

	in := touchflow.NewInjector(0)
	in.Drag(200, 100, 80, 105, 150*time.Millisecond, 4)
	touchflow.Replay(in.Events(), clock, func(ev touchflow.ContactEvent) { rec.HandleContact(ev) })
	events.ProcessAllEvents(world)

	if len(got) != 1 || got[0] != touchflow.GestureSwipeLeft {
		t.Errorf("got %v, want [swipe-left]", got)
	}
}

func TestPublishStateCallbacks(t *testing.T) {
	world := donburi.NewWorld()

	var pulls []touchflow.PullState
	PullStateType.Subscribe(world, func(w donburi.World, s touchflow.PullState) {
		pulls = append(pulls, s)
	})
	var pages []touchflow.PaginationState
	PaginationStateType.Subscribe(world, func(w donburi.World, s touchflow.PaginationState) {
		pages = append(pages, s)
	})

	PublishPullState(world)(touchflow.PullState{Phase: touchflow.PullPulling, Distance: 30})
	PublishPaginationState(world)(touchflow.PaginationState{Loading: true, HasMore: true, LoadCount: 1})
	events.ProcessAllEvents(world)

	if len(pulls) != 1 || pulls[0].Distance != 30 {
		t.Errorf("pull snapshots = %+v", pulls)
	}
	if len(pages) != 1 || !pages[0].Loading {
		t.Errorf("pagination snapshots = %+v", pages)
	}
}
