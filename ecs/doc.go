// Package ecs provides ECS adapters for touchflow's gesture and controller
// state.
//
// The primary adapter is [NewDonburiStore], which bridges recognized
// gestures into a [Donburi] world as typed events. Subscribe to
// [GestureEventType] in your ECS systems to receive them. [PublishPullState]
// and [PublishPaginationState] forward controller snapshots the same way.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	recognizer.SetEntityStore(store)
//	pull.OnChange(ecs.PublishPullState(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
