package touchflow

// ContactSource delivers raw contact events to subscribers. Implementations
// broadcast every event to every subscriber, read-only.
type ContactSource interface {
	Subscribe(fn func(ContactEvent)) CallbackHandle
}

// Broadcaster is an in-memory ContactSource. Hosts feed it from whatever
// produces contact samples (a platform adapter, an Injector, a replay) and
// attach the recognizer and pull controller to it. The zero value is ready
// to use.
type Broadcaster struct {
	subs handlerList[ContactEvent]
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers fn for every subsequently published event.
func (b *Broadcaster) Subscribe(fn func(ContactEvent)) CallbackHandle {
	return register(&b.subs, fn)
}

// Publish delivers ev to subscribers in registration order.
func (b *Broadcaster) Publish(ev ContactEvent) {
	b.subs.fire(ev)
}

// PublishAll delivers events in order.
func (b *Broadcaster) PublishAll(events []ContactEvent) {
	for _, ev := range events {
		b.subs.fire(ev)
	}
}

// Subscribers returns the number of registered subscribers.
func (b *Broadcaster) Subscribers() int {
	return len(b.subs.entries)
}
