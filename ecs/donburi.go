package ecs

import (
	"github.com/phanxgames/touchflow"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// GestureEventType is the Donburi event type for recognized gestures.
var GestureEventType = events.NewEventType[touchflow.GestureEvent]()

// PullStateType carries pull-to-refresh snapshots.
var PullStateType = events.NewEventType[touchflow.PullState]()

// PaginationStateType carries pagination snapshots.
var PaginationStateType = events.NewEventType[touchflow.PaginationState]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Gestures are published to GestureEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) touchflow.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event touchflow.GestureEvent) {
	GestureEventType.Publish(s.world, event)
}

// PublishPullState returns a PullController.OnChange callback that queues
// every snapshot on PullStateType.
func PublishPullState(world donburi.World) func(touchflow.PullState) {
	return func(s touchflow.PullState) {
		PullStateType.Publish(world, s)
	}
}

// PublishPaginationState returns a Paginator.OnChange callback that queues
// every snapshot on PaginationStateType.
func PublishPaginationState(world donburi.World) func(touchflow.PaginationState) {
	return func(s touchflow.PaginationState) {
		PaginationStateType.Publish(world, s)
	}
}
