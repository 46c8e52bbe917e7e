package dnd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var icon = Item{Source: SourceDesktopIcon, Name: "todo.txt", Origin: []string{"C:", "Desktop"}}

func TestTrackerClickWithoutMovement(t *testing.T) {
	tr := NewTracker()
	tr.Press(icon, Point{X: 10, Y: 10})
	assert.Equal(t, StatePressed, tr.State())

	assert.Equal(t, StatePressed, tr.Move(Point{X: 13, Y: 14}), "exactly on the threshold")

	c := tr.Release(Point{X: 13, Y: 14}, true)
	assert.Equal(t, ActionNone, c.Action)
	assert.Equal(t, StateIdle, tr.State())
}

func TestTrackerDragToRecycleBin(t *testing.T) {
	tr := NewTracker()
	tr.Press(icon, Point{X: 10, Y: 10})
	assert.Equal(t, StateDragging, tr.Move(Point{X: 20, Y: 10}))

	c := tr.Release(Point{X: 400, Y: 300}, true)
	assert.Equal(t, ActionRecycle, c.Action)
	assert.Equal(t, "todo.txt", c.Item.Name)
	assert.Equal(t, []string{"C:", "Desktop"}, c.Item.Origin)
	assert.Equal(t, Point{X: 390, Y: 290}, c.Delta)

	_, ok := tr.Item()
	assert.False(t, ok)
}

func TestTrackerDragReposition(t *testing.T) {
	tr := NewTracker()
	tr.Press(icon, Point{X: 0, Y: 0})
	tr.Move(Point{X: 50, Y: 50})

	c := tr.Release(Point{X: 60, Y: 40}, false)
	assert.Equal(t, ActionReposition, c.Action)
	assert.Equal(t, Point{X: 60, Y: 40}, c.Delta)
}

func TestTrackerReleaseBeyondThresholdWithoutMove(t *testing.T) {
	tr := NewTracker()
	tr.Press(icon, Point{})
	c := tr.Release(Point{X: 100}, false)
	assert.Equal(t, ActionReposition, c.Action)
}

func TestTrackerWindowsAreNeverRecycled(t *testing.T) {
	tr := NewTracker()
	tr.Press(Item{Source: SourceWindow, WindowID: "win_x"}, Point{})
	tr.Move(Point{X: 30, Y: 30})

	c := tr.Release(Point{X: 30, Y: 30}, true)
	assert.Equal(t, ActionReposition, c.Action)
}

func TestTrackerCancel(t *testing.T) {
	tr := NewTracker()
	tr.Press(icon, Point{})
	tr.Move(Point{X: 30})
	tr.Cancel()

	assert.Equal(t, StateIdle, tr.State())
	assert.Equal(t, ActionNone, tr.Release(Point{X: 60}, true).Action)
}

func TestTrackerMoveWhileIdle(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StateIdle, tr.Move(Point{X: 100, Y: 100}))
}

func TestTrackerCopiesOrigin(t *testing.T) {
	origin := []string{"C:", "Documents"}
	tr := NewTracker()
	tr.Press(Item{Source: SourceExplorerEntry, Name: "a", Origin: origin}, Point{})
	origin[1] = "Pictures"

	item, ok := tr.Item()
	assert.True(t, ok)
	assert.Equal(t, "Documents", item.Origin[1])
}

func TestClickDetector(t *testing.T) {
	d := NewClickDetector(0)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, d.Click("a", t0))
	assert.True(t, d.Click("a", t0.Add(250*time.Millisecond)))
	assert.False(t, d.Click("a", t0.Add(400*time.Millisecond)), "double click is consumed")

	assert.False(t, d.Click("a", t0.Add(time.Second)))
	assert.False(t, d.Click("a", t0.Add(1400*time.Millisecond)), "too slow")

	assert.False(t, d.Click("b", t0.Add(1500*time.Millisecond)))
	assert.False(t, d.Click("c", t0.Add(1600*time.Millisecond)), "different target")
	assert.True(t, d.Click("c", t0.Add(1900*time.Millisecond)))
}
