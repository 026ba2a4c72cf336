// Package ebitentouch feeds touchflow from Ebitengine's polled input.
//
// Ebitengine exposes input as per-frame state rather than events. A Source
// diffs that state every frame and publishes the equivalent contact samples:
// a new touch ID becomes a Start, a moved one a Move, a vanished one an End.
// Losing window focus cancels every active contact.
package ebitentouch

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/touchflow"
)

// MouseContact is the contact ID used for the left mouse button.
const MouseContact touchflow.ContactID = 0

// Reader is the part of Ebitengine's input API a Source polls.
type Reader interface {
	AppendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID
	TouchPosition(id ebiten.TouchID) (int, int)
	CursorPosition() (int, int)
	MouseDown() bool
	Focused() bool
}

type ebitenReader struct{}

func (ebitenReader) AppendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID {
	return ebiten.AppendTouchIDs(ids)
}

func (ebitenReader) TouchPosition(id ebiten.TouchID) (int, int) { return ebiten.TouchPosition(id) }
func (ebitenReader) CursorPosition() (int, int)                 { return ebiten.CursorPosition() }
func (ebitenReader) MouseDown() bool                            { return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) }
func (ebitenReader) Focused() bool                              { return ebiten.IsFocused() }

// Config controls what a Source reports.
type Config struct {
	// IncludeMouse reports the left mouse button as MouseContact, so desktop
	// builds can drive gestures with a mouse.
	IncludeMouse bool
	// Transform maps screen coordinates into container coordinates (for
	// example subtracting the list's on-screen origin). Nil means identity.
	Transform func(x, y float64) (float64, float64)
}

// touchSlot maps an Ebitengine touch to the contact ID reported for it.
type touchSlot struct {
	touch   ebiten.TouchID
	contact touchflow.ContactID
	x, y    float64
	seen    bool
}

// Source is a touchflow.ContactSource backed by Ebitengine input. Call Poll
// once per frame from the game's Update.
type Source struct {
	touchflow.Broadcaster

	cfg    Config
	reader Reader

	slots  []touchSlot
	ids    []ebiten.TouchID
	nextID touchflow.ContactID

	mouseDown bool
	mouseX    float64
	mouseY    float64
}

// NewSource creates a source reading Ebitengine's global input state.
func NewSource(cfg Config) *Source {
	return NewSourceWithReader(cfg, ebitenReader{})
}

// NewSourceWithReader creates a source reading from r.
func NewSourceWithReader(cfg Config, r Reader) *Source {
	return &Source{cfg: cfg, reader: r, nextID: MouseContact + 1}
}

// Active returns the number of contacts the source considers down.
func (s *Source) Active() int {
	n := len(s.slots)
	if s.mouseDown {
		n++
	}
	return n
}

// Poll diffs the current input state against the previous frame and
// publishes the resulting samples stamped with now.
func (s *Source) Poll(now time.Duration) {
	if !s.reader.Focused() {
		s.CancelAll(now)
		return
	}
	s.pollTouches(now)
	if s.cfg.IncludeMouse {
		s.pollMouse(now)
	}
}

// CancelAll publishes a Cancel for every active contact and forgets them.
func (s *Source) CancelAll(now time.Duration) {
	for _, sl := range s.slots {
		s.publish(sl.contact, sl.x, sl.y, now, touchflow.PhaseCancel)
	}
	clear(s.slots)
	s.slots = s.slots[:0]
	if s.mouseDown {
		s.mouseDown = false
		s.publish(MouseContact, s.mouseX, s.mouseY, now, touchflow.PhaseCancel)
	}
}

func (s *Source) pollTouches(now time.Duration) {
	s.ids = s.reader.AppendTouchIDs(s.ids[:0])

	for i := range s.slots {
		s.slots[i].seen = false
	}
	for _, tid := range s.ids {
		if sl := s.slot(tid); sl != nil {
			sl.seen = true
		}
	}

	// Releases first, so a finger lifting and another landing in the same
	// frame reach consumers as two sequences.
	kept := s.slots[:0]
	for _, sl := range s.slots {
		if !sl.seen {
			s.publish(sl.contact, sl.x, sl.y, now, touchflow.PhaseEnd)
			continue
		}
		kept = append(kept, sl)
	}
	clear(s.slots[len(kept):])
	s.slots = kept

	for _, tid := range s.ids {
		tx, ty := s.reader.TouchPosition(tid)
		x, y := s.transform(float64(tx), float64(ty))
		sl := s.slot(tid)
		if sl == nil {
			id := s.nextID
			s.nextID++
			s.slots = append(s.slots, touchSlot{touch: tid, contact: id, x: x, y: y, seen: true})
			s.publish(id, x, y, now, touchflow.PhaseStart)
			continue
		}
		if x != sl.x || y != sl.y {
			sl.x, sl.y = x, y
			s.publish(sl.contact, x, y, now, touchflow.PhaseMove)
		}
	}
}

func (s *Source) pollMouse(now time.Duration) {
	mx, my := s.reader.CursorPosition()
	x, y := s.transform(float64(mx), float64(my))
	down := s.reader.MouseDown()

	switch {
	case down && !s.mouseDown:
		s.mouseDown = true
		s.publish(MouseContact, x, y, now, touchflow.PhaseStart)
	case down && s.mouseDown:
		if x != s.mouseX || y != s.mouseY {
			s.publish(MouseContact, x, y, now, touchflow.PhaseMove)
		}
	case !down && s.mouseDown:
		s.mouseDown = false
		s.publish(MouseContact, x, y, now, touchflow.PhaseEnd)
	}
	s.mouseX, s.mouseY = x, y
}

// slot returns the slot tracking tid, or nil.
func (s *Source) slot(tid ebiten.TouchID) *touchSlot {
	for i := range s.slots {
		if s.slots[i].touch == tid {
			return &s.slots[i]
		}
	}
	return nil
}

func (s *Source) transform(x, y float64) (float64, float64) {
	if s.cfg.Transform != nil {
		return s.cfg.Transform(x, y)
	}
	return x, y
}

func (s *Source) publish(id touchflow.ContactID, x, y float64, at time.Duration, phase touchflow.Phase) {
	s.Publish(touchflow.ContactEvent{ID: id, X: x, Y: y, At: at, Phase: phase})
}
