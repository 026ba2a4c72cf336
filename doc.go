// Package touchflow is the input-interaction engine for scrollable feeds.
//
// It turns raw contact samples into semantic actions and paging triggers
// through three independent, frame-driven controllers:
//
//   - [Recognizer] classifies contact sequences into swipes, pinches,
//     double-taps and long-presses.
//   - [Paginator] turns near-end signals into a single in-flight page load
//     and keeps the loaded items in call order.
//   - [PullController] turns a downward drag at the top of a container into
//     a clamped pull distance and a single in-flight refresh.
//
// Nothing here renders, fetches, or knows what a post is. Hosts supply
// contact samples and the two asynchronous operations; they receive
// gestures and state snapshots through callbacks.
//
// # Quick start
//
// Share one [Broadcaster] between the recognizer and the pull controller,
// and tick everything from the host loop:
//
//	clock := touchflow.NewClock(0)
//	src := touchflow.NewBroadcaster()
//
//	rec := touchflow.NewRecognizer(touchflow.GestureConfig{}, clock)
//	rec.Attach(src)
//	rec.OnSwipe(func(g touchflow.GestureEvent) { ... })
//
//	pull := touchflow.NewPullController(refresh, touchflow.PullConfig{})
//	pull.Attach(src, list) // list implements touchflow.Container
//
//	pages := touchflow.NewPaginator(loadMore, touchflow.PaginationConfig{})
//
//	// every frame:
//	clock.Advance(dt)
//	src.Publish(...)         // or ebitentouch.Source.Poll
//	pages.CheckScroll(list.Metrics())
//	pages.Update()
//	pull.Update(float32(dt.Seconds()))
//
// # Threading
//
// Controllers are not safe for concurrent use. Every method, and the
// [Clock] that drives long-press timers, belongs to the host loop
// goroutine. Load and refresh operations run on their own goroutines and
// report back through Update or Wait, so state only ever changes on the
// loop goroutine.
//
// # Testing
//
// [Injector] and [LoadContactScript] build synthetic sample sequences on a
// virtual timeline; [Replay] delivers them while advancing a [Clock], so
// timing-sensitive behavior is deterministic.
//
// Platform input for [Ebitengine] lives in the ebitentouch package; the ecs
// submodule bridges gestures into a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package touchflow
