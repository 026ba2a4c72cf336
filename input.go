package touchflow

import (
	"slices"
	"time"
)

// --- Contact tracking ---

// contactTrack is the per-contact state shared by the recognizer and the pull
// controller: where the contact went down and where it was last seen.
type contactTrack struct {
	id    ContactID
	start ContactEvent
	last  ContactEvent
}

// travel returns the straight-line distance from the start sample to the last.
func (c *contactTrack) travel() float64 {
	return c.last.Pos().Sub(c.start.Pos()).Len()
}

// delta returns last - start.
func (c *contactTrack) delta() Vec2 {
	return c.last.Pos().Sub(c.start.Pos())
}

// elapsed returns the time between the start sample and the last.
func (c *contactTrack) elapsed() time.Duration {
	return c.last.At - c.start.At
}

// contactSet holds the active contacts in touch-down order. Pointers returned
// by find and add are invalidated by the next add or remove.
type contactSet struct {
	tracks []contactTrack
}

func (s *contactSet) len() int { return len(s.tracks) }

func (s *contactSet) find(id ContactID) *contactTrack {
	for i := range s.tracks {
		if s.tracks[i].id == id {
			return &s.tracks[i]
		}
	}
	return nil
}

func (s *contactSet) add(ev ContactEvent) *contactTrack {
	s.tracks = append(s.tracks, contactTrack{id: ev.ID, start: ev, last: ev})
	return &s.tracks[len(s.tracks)-1]
}

// remove drops the contact and returns its final state.
func (s *contactSet) remove(id ContactID) (contactTrack, bool) {
	for i := range s.tracks {
		if s.tracks[i].id == id {
			t := s.tracks[i]
			copy(s.tracks[i:], s.tracks[i+1:])
			s.tracks[len(s.tracks)-1] = contactTrack{}
			s.tracks = s.tracks[:len(s.tracks)-1]
			return t, true
		}
	}
	return contactTrack{}, false
}

func (s *contactSet) clear() {
	clear(s.tracks)
	s.tracks = s.tracks[:0]
}

// distance returns the distance between the last samples of two contacts.
func distance(a, b *contactTrack) float64 {
	return a.last.Pos().Sub(b.last.Pos()).Len()
}

// --- Handler registry ---

type handler[T any] struct {
	id      uint32
	fn      func(T)
	removed bool
}

// handlerList is an ordered list of callbacks. The zero value is ready to use.
// Callbacks may add or remove entries, including themselves, while the list
// is firing.
type handlerList[T any] struct {
	entries []*handler[T]
	nextID  uint32
}

func (l *handlerList[T]) add(fn func(T)) uint32 {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, &handler[T]{id: id, fn: fn})
	return id
}

func (l *handlerList[T]) remove(id uint32) {
	for i, h := range l.entries {
		if h.id == id {
			h.removed = true
			l.entries = slices.Delete(l.entries, i, i+1)
			return
		}
	}
}

// fire calls every entry registered when fire began, skipping any removed
// by an earlier callback in the same pass.
func (l *handlerList[T]) fire(v T) {
	for _, h := range slices.Clone(l.entries) {
		if !h.removed {
			h.fn(v)
		}
	}
}

// CallbackHandle allows removing a registered callback or subscription.
type CallbackHandle struct {
	remove func()
}

// Remove unregisters this callback so it no longer fires. Calling Remove on a
// zero handle or more than once is a no-op.
func (h CallbackHandle) Remove() {
	if h.remove == nil {
		return
	}
	h.remove()
}

// register adds fn to l and returns a handle that removes it.
func register[T any](l *handlerList[T], fn func(T)) CallbackHandle {
	id := l.add(fn)
	return CallbackHandle{remove: func() { l.remove(id) }}
}
