package touchflow

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep is a single action in a contact script.
type scriptStep struct {
	Action   string  `json:"action"`
	Contact  int     `json:"contact,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	FromX    float64 `json:"fromX,omitempty"`
	FromY    float64 `json:"fromY,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
	FromDist float64 `json:"fromDist,omitempty"`
	ToDist   float64 `json:"toDist,omitempty"`
	Ms       int     `json:"ms,omitempty"`
	Steps    int     `json:"steps,omitempty"`
}

// contactScript is the top-level JSON structure for a contact script.
type contactScript struct {
	Steps []scriptStep `json:"steps"`
}

// LoadContactScript parses a JSON contact script into a sample sequence
// starting at time zero. Supported actions:
//
//	press    {"contact": n, "x", "y"}     contact n goes down
//	move     {"contact": n, "x", "y"}
//	release  {"contact": n, "x", "y"}
//	cancel   {"contact": n}
//	wait     {"ms"}
//	tap      {"x", "y", "ms"}             press and release held for ms
//	drag     {"fromX", "fromY", "toX", "toY", "ms", "steps"}
//	pinch    {"x", "y", "fromDist", "toDist", "ms", "steps"}
//
// Contact numbers in press/move/release/cancel are script-local names.
func LoadContactScript(jsonData []byte) ([]ContactEvent, error) {
	var script contactScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse contact script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse contact script: no steps")
	}

	in := NewInjector(0)
	ids := make(map[int]ContactID)
	var out []ContactEvent
	for i, st := range script.Steps {
		ms := time.Duration(st.Ms) * time.Millisecond
		switch st.Action {
		case "press":
			if _, ok := ids[st.Contact]; ok {
				return nil, fmt.Errorf("step %d: contact %d already down", i, st.Contact)
			}
			ids[st.Contact] = in.Press(st.X, st.Y)
		case "move", "release", "cancel":
			id, ok := ids[st.Contact]
			if !ok {
				return nil, fmt.Errorf("step %d: %s for contact %d that is not down", i, st.Action, st.Contact)
			}
			switch st.Action {
			case "move":
				in.Move(id, st.X, st.Y)
			case "release":
				in.Release(id, st.X, st.Y)
				delete(ids, st.Contact)
			default:
				in.Cancel(id)
				delete(ids, st.Contact)
			}
		case "wait":
			in.Wait(ms)
		case "tap":
			in.Tap(st.X, st.Y, ms)
		case "drag":
			in.Drag(st.FromX, st.FromY, st.ToX, st.ToY, ms, st.Steps)
		case "pinch":
			in.Pinch(st.X, st.Y, st.FromDist, st.ToDist, ms, st.Steps)
		default:
			return nil, fmt.Errorf("step %d: unknown action %q", i, st.Action)
		}
		out = append(out, in.Events()...)
	}
	return out, nil
}
