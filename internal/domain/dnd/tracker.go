// Package dnd models pointer gestures on the desktop: drags of icons,
// file-browser entries and windows, and double-click detection.
package dnd

import (
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// DragThreshold is how far in pixels the pointer must travel after a press
// before the press becomes a drag.
const DragThreshold = 5

// Source says where a dragged item came from.
type Source string

const (
	SourceDesktopIcon   Source = "desktop-icon"
	SourceExplorerEntry Source = "explorer-entry"
	SourceWindow        Source = "window"
)

// Point is a pointer position in viewport pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Item describes what is being dragged.
type Item struct {
	Source   Source      `json:"source"`
	Name     string      `json:"name,omitempty"`
	IsFolder bool        `json:"is_folder,omitempty"`
	Origin   []string    `json:"origin,omitempty"`
	WindowID id.WindowID `json:"window_id,omitempty"`
}

// State is the tracker phase.
type State string

const (
	StateIdle     State = "idle"
	StatePressed  State = "pressed"
	StateDragging State = "dragging"
)

// Action is what a release resolves to.
type Action string

const (
	// ActionNone means the pointer never left the threshold or no drag was
	// in flight.
	ActionNone Action = "none"
	// ActionReposition moves the item by Delta.
	ActionReposition Action = "reposition"
	// ActionRecycle moves the item into the recycle bin.
	ActionRecycle Action = "recycle"
)

// Commit is the outcome of a release.
type Commit struct {
	Action Action `json:"action"`
	Item   Item   `json:"item"`
	Delta  Point  `json:"delta"`
	Drop   Point  `json:"drop"`
}

// Tracker follows one pointer through press, movement and release.
// It is not safe for concurrent use.
type Tracker struct {
	state State
	item  Item
	start Point
	last  Point
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{state: StateIdle}
}

// State returns the current phase.
func (t *Tracker) State() State {
	return t.state
}

// Item returns the pressed or dragged item, if any.
func (t *Tracker) Item() (Item, bool) {
	if t.state == StateIdle {
		return Item{}, false
	}
	return t.item, true
}

// Press starts tracking item. A press while another gesture is in flight
// abandons that gesture.
func (t *Tracker) Press(item Item, p Point) {
	item.Origin = append([]string(nil), item.Origin...)
	t.item = item
	t.start = p
	t.last = p
	t.state = StatePressed
}

// Move records pointer movement and returns the resulting phase.
func (t *Tracker) Move(p Point) State {
	switch t.state {
	case StatePressed:
		t.last = p
		if beyondThreshold(t.start, p) {
			t.state = StateDragging
		}
	case StateDragging:
		t.last = p
	}
	return t.state
}

// Release ends the gesture. overRecycleBin reports whether the pointer was
// over the recycle bin target. Windows are never recycled.
func (t *Tracker) Release(p Point, overRecycleBin bool) Commit {
	defer t.reset()

	if t.state == StatePressed && beyondThreshold(t.start, p) {
		t.state = StateDragging
	}
	if t.state != StateDragging {
		return Commit{Action: ActionNone, Item: t.item, Drop: p}
	}

	c := Commit{
		Item:  t.item,
		Delta: Point{X: p.X - t.start.X, Y: p.Y - t.start.Y},
		Drop:  p,
	}
	if overRecycleBin && t.item.Source != SourceWindow {
		c.Action = ActionRecycle
	} else {
		c.Action = ActionReposition
	}
	return c
}

// Cancel abandons the gesture without committing anything.
func (t *Tracker) Cancel() {
	t.reset()
}

func (t *Tracker) reset() {
	*t = Tracker{state: StateIdle}
}

func beyondThreshold(a, b Point) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dx*dx+dy*dy > DragThreshold*DragThreshold
}
