package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/activation"
	"github.com/GriffinCanCode/webdesk/internal/domain/dnd"
	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// Desktop is the state of one browser session: its windows, its file
// system tree and the pointer gesture in flight. All methods are safe for
// concurrent use and each runs to completion before the next starts.
type Desktop struct {
	id  string
	key string

	mu         sync.Mutex
	windows    *window.Manager
	tree       vfs.Tree
	tracker    *dnd.Tracker
	clicks     *dnd.ClickDetector
	lastActive time.Time

	persister Persister
	events    *Broadcaster
	metrics   *monitoring.Metrics
	logger    *logging.Logger
	now       func() time.Time
}

// DesktopOption configures a Desktop.
type DesktopOption func(*Desktop)

// WithPersister sets where tree snapshots go after each change.
func WithPersister(p Persister) DesktopOption {
	return func(d *Desktop) { d.persister = p }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *monitoring.Metrics) DesktopOption {
	return func(d *Desktop) { d.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) DesktopOption {
	return func(d *Desktop) { d.logger = l }
}

// WithClock overrides the clock used for deletion stamps and clicks.
func WithClock(now func() time.Time) DesktopOption {
	return func(d *Desktop) { d.now = now }
}

// WithWindowOptions configures the window manager.
func WithWindowOptions(opts ...window.Option) DesktopOption {
	return func(d *Desktop) { d.windows = window.NewManager(opts...) }
}

// NewDesktop creates a desktop around tree.
func NewDesktop(sessionID string, tree vfs.Tree, opts ...DesktopOption) *Desktop {
	d := &Desktop{
		id:        sessionID,
		key:       TreeKey(sessionID),
		tree:      tree,
		tracker:   dnd.NewTracker(),
		clicks:    dnd.NewClickDetector(dnd.DoubleClickWindow),
		persister: DiscardPersister{},
		events:    NewBroadcaster(),
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.windows == nil {
		d.windows = window.NewManager()
	}
	d.logger = d.logger.With(zap.String("session", sessionID))
	d.lastActive = d.now()
	return d
}

// ID returns the session id.
func (d *Desktop) ID() string {
	return d.id
}

// Events returns the desktop's event broadcaster.
func (d *Desktop) Events() *Broadcaster {
	return d.events
}

// LastActive returns when the desktop last handled an operation.
func (d *Desktop) LastActive() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActive
}

// lock serializes an operation and marks the desktop active.
func (d *Desktop) lock() {
	d.mu.Lock()
	d.lastActive = d.now()
}

// Windows

// OpenWindow opens a window of kind on top of the stack.
func (d *Desktop) OpenWindow(kind window.Kind, title string, payload *window.Payload) window.Window {
	d.lock()
	defer d.mu.Unlock()
	return d.openLocked(kind, title, payload)
}

func (d *Desktop) openLocked(kind window.Kind, title string, payload *window.Payload) window.Window {
	w := d.windows.Open(kind, title, payload)
	d.metrics.RecordWindowOp("open")
	d.publishWindow(EventWindowOpened, w)
	return w
}

// CloseWindow removes a window. Closing an unknown id does nothing.
func (d *Desktop) CloseWindow(wid id.WindowID) bool {
	d.lock()
	defer d.mu.Unlock()

	if !d.windows.Close(wid) {
		return false
	}
	d.metrics.RecordWindowOp("close")
	d.events.Publish(Event{Type: EventWindowClosed, WindowID: wid})
	return true
}

// ToggleMinimize flips the minimized flag of a window.
func (d *Desktop) ToggleMinimize(wid id.WindowID) (window.Window, bool) {
	d.lock()
	defer d.mu.Unlock()

	w, ok := d.windows.ToggleMinimize(wid)
	if ok {
		d.metrics.RecordWindowOp("minimize")
		d.publishWindow(EventWindowMinimized, w)
	}
	return w, ok
}

// Focus raises a window above every other.
func (d *Desktop) Focus(wid id.WindowID) (window.Window, bool) {
	d.lock()
	defer d.mu.Unlock()

	w, ok := d.windows.Focus(wid)
	if ok {
		d.metrics.RecordWindowOp("focus")
		d.publishWindow(EventWindowFocused, w)
	}
	return w, ok
}

// MoveWindow moves a window, clamped to the viewport.
func (d *Desktop) MoveWindow(wid id.WindowID, pos window.Point) (window.Window, bool) {
	d.lock()
	defer d.mu.Unlock()
	return d.moveLocked(wid, pos)
}

func (d *Desktop) moveLocked(wid id.WindowID, pos window.Point) (window.Window, bool) {
	w, ok := d.windows.Move(wid, pos)
	if ok {
		d.metrics.RecordWindowOp("move")
		d.publishWindow(EventWindowMoved, w)
	}
	return w, ok
}

// Window returns one window.
func (d *Desktop) Window(wid id.WindowID) (window.Window, bool) {
	d.lock()
	defer d.mu.Unlock()
	return d.windows.Get(wid)
}

// Windows returns all windows, lowest z first.
func (d *Desktop) Windows() []window.Window {
	d.lock()
	defer d.mu.Unlock()
	return d.windows.Windows()
}

// Taskbar returns all windows, minimized ones included, in open order.
func (d *Desktop) Taskbar() []window.Window {
	d.lock()
	defer d.mu.Unlock()
	return d.windows.Taskbar()
}

// Top returns the focused window: the unminimized window with the highest z.
func (d *Desktop) Top() (window.Window, bool) {
	d.lock()
	defer d.mu.Unlock()
	return d.windows.Top()
}

// Viewport returns the size windows are clamped to.
func (d *Desktop) Viewport() window.Size {
	d.lock()
	defer d.mu.Unlock()
	return d.windows.Viewport()
}

// SetViewport changes the viewport and pulls windows back inside it.
func (d *Desktop) SetViewport(vp window.Size) {
	d.lock()
	defer d.mu.Unlock()

	d.windows.SetViewport(vp)
	d.events.Publish(Event{Type: EventViewportChanged})
}

// File system

// Tree returns the current tree. Trees are immutable so the value may be
// read freely.
func (d *Desktop) Tree() vfs.Tree {
	d.lock()
	defer d.mu.Unlock()
	return d.tree
}

// Resolve looks up the node at p. The empty path is the root.
func (d *Desktop) Resolve(p vfs.Path) (vfs.Node, bool) {
	return d.Tree().Resolve(p)
}

// CreateFile writes a file named name with content into the folder at p,
// replacing an existing file of that name.
func (d *Desktop) CreateFile(p vfs.Path, name, content string) bool {
	d.lock()
	defer d.mu.Unlock()

	next, ok := d.tree.CreateFile(p, name, content)
	return d.commit("create_file", next, ok, Event{Type: EventFileCreated, Path: p, Name: name})
}

// UpdateFile replaces the content of an existing file.
func (d *Desktop) UpdateFile(p vfs.Path, name, content string) bool {
	d.lock()
	defer d.mu.Unlock()

	next, ok := d.tree.UpdateFile(p, name, content)
	return d.commit("update_file", next, ok, Event{Type: EventFileUpdated, Path: p, Name: name})
}

// CreateFolder adds an empty folder.
func (d *Desktop) CreateFolder(p vfs.Path, name string) bool {
	d.lock()
	defer d.mu.Unlock()

	next, ok := d.tree.CreateFolder(p, name)
	return d.commit("create_folder", next, ok, Event{Type: EventFolderCreated, Path: p, Name: name})
}

// Rename renames a child of the folder at p.
func (d *Desktop) Rename(p vfs.Path, from, to string) bool {
	d.lock()
	defer d.mu.Unlock()

	next, ok := d.tree.Rename(p, from, to)
	return d.commit("rename", next, ok, Event{Type: EventRenamed, Path: p, Name: from, NewName: to})
}

// MoveToRecycleBin moves a child of the folder at p into the recycle bin.
func (d *Desktop) MoveToRecycleBin(p vfs.Path, name string) bool {
	d.lock()
	defer d.mu.Unlock()
	return d.recycleLocked(p, name)
}

func (d *Desktop) recycleLocked(p vfs.Path, name string) bool {
	next, entry, ok := d.tree.MoveToRecycleBin(p, name, d.now())
	return d.commit("recycle", next, ok, Event{Type: EventRecycled, Path: p, Name: name, NewName: entry})
}

// RestoreFromRecycleBin puts a recycled entry back where it came from.
func (d *Desktop) RestoreFromRecycleBin(entryName string) bool {
	d.lock()
	defer d.mu.Unlock()

	next, ok := d.tree.RestoreFromRecycleBin(entryName)
	return d.commit("restore", next, ok, Event{Type: EventRestored, Name: entryName})
}

// EmptyRecycleBin drops every recycled entry. It fails when no bin exists.
func (d *Desktop) EmptyRecycleBin() bool {
	d.lock()
	defer d.mu.Unlock()

	next, ok := d.tree.EmptyRecycleBin()
	return d.commit("empty_bin", next, ok, Event{Type: EventBinEmptied})
}

// ListRecycleBin lists recycled entries, newest first.
func (d *Desktop) ListRecycleBin() []vfs.RecycleEntry {
	return d.Tree().RecycleEntries()
}

// Search matches a glob pattern against every path outside the recycle bin.
func (d *Desktop) Search(pattern string) ([]vfs.Match, error) {
	return d.Tree().Search(pattern)
}

// commit installs next when ok and hands it to the persister. Must hold mu.
func (d *Desktop) commit(op string, next vfs.Tree, ok bool, ev Event) bool {
	d.metrics.RecordFSOp(op, ok)
	if !ok {
		d.logger.Debug("fs op rejected", zap.String("op", op), zap.Strings("path", ev.Path), zap.String("name", ev.Name))
		return false
	}
	d.tree = next
	d.persister.Persist(d.key, next)
	ev.Path = vfs.Path(ev.Path).Clone()
	d.events.Publish(ev)
	return true
}

// Activation

// Activation is the outcome of double-clicking something.
type Activation struct {
	activation.Result
	// Window is set when the activation opened a window.
	Window *window.Window `json:"window,omitempty"`
}

// Activate double-clicks the entry name inside the folder at p. Unknown
// entries resolve to no action.
func (d *Desktop) Activate(p vfs.Path, name string) Activation {
	d.lock()
	defer d.mu.Unlock()

	n, ok := d.tree.Resolve(p.Join(name))
	if !ok {
		return Activation{Result: activation.None}
	}
	return d.applyLocked(activation.Entry(p, name, n))
}

// ActivateIcon double-clicks a desktop icon. Built-in icons come first;
// any other name is looked up on the desktop folder.
func (d *Desktop) ActivateIcon(name string) Activation {
	if res, ok := activation.Icon(name); ok {
		d.lock()
		defer d.mu.Unlock()
		return d.applyLocked(res)
	}
	return d.Activate(vfs.DesktopPath, name)
}

func (d *Desktop) applyLocked(res activation.Result) Activation {
	out := Activation{Result: res}
	if res.Action == activation.ActionOpenWindow {
		w := d.openLocked(res.Kind, res.Title, res.Payload)
		out.Window = &w
	}
	return out
}

// Click registers a click on target and reports whether it completed a
// double click.
func (d *Desktop) Click(target string) bool {
	d.lock()
	defer d.mu.Unlock()
	return d.clicks.Click(target, d.now())
}

// Preview renders a file for display. It fails when the entry is not a file.
func (d *Desktop) Preview(p vfs.Path, name string) (activation.Preview, bool) {
	f, ok := d.Tree().ResolveFile(p.Join(name))
	if !ok {
		return activation.Preview{}, false
	}
	return activation.PreviewFile(name, f), true
}

// Drag and drop

// DragResult reports what a released drag did.
type DragResult struct {
	dnd.Commit
	// Applied is false when the commit's effect was rejected, e.g. the
	// dragged entry no longer exists.
	Applied bool           `json:"applied"`
	Window  *window.Window `json:"window,omitempty"`
}

// PressDrag starts tracking a pointer press on item.
func (d *Desktop) PressDrag(item dnd.Item, p dnd.Point) {
	d.lock()
	defer d.mu.Unlock()
	d.tracker.Press(item, p)
}

// MoveDrag reports pointer movement.
func (d *Desktop) MoveDrag(p dnd.Point) dnd.State {
	d.lock()
	defer d.mu.Unlock()
	return d.tracker.Move(p)
}

// CancelDrag abandons the gesture in flight.
func (d *Desktop) CancelDrag() {
	d.lock()
	defer d.mu.Unlock()
	d.tracker.Cancel()
}

// ReleaseDrag ends the gesture and applies it: a drop on the recycle bin
// recycles the entry and a dragged window moves by the pointer delta.
func (d *Desktop) ReleaseDrag(p dnd.Point, overRecycleBin bool) DragResult {
	d.lock()
	defer d.mu.Unlock()

	c := d.tracker.Release(p, overRecycleBin)
	res := DragResult{Commit: c}

	switch c.Action {
	case dnd.ActionRecycle:
		res.Applied = d.recycleLocked(vfs.Path(c.Item.Origin), c.Item.Name)
	case dnd.ActionReposition:
		if c.Item.Source != dnd.SourceWindow {
			// Icon placement is kept by the client.
			res.Applied = true
			break
		}
		w, ok := d.windows.Get(c.Item.WindowID)
		if !ok {
			break
		}
		moved, ok := d.moveLocked(w.ID, window.Point{X: w.Position.X + c.Delta.X, Y: w.Position.Y + c.Delta.Y})
		if ok {
			res.Applied = true
			res.Window = &moved
		}
	}
	if c.Action != dnd.ActionNone {
		d.metrics.RecordDragCommit(string(c.Action))
	}
	return res
}

// DragState returns the tracker phase.
func (d *Desktop) DragState() dnd.State {
	d.lock()
	defer d.mu.Unlock()
	return d.tracker.State()
}

func (d *Desktop) publishWindow(typ string, w window.Window) {
	d.events.Publish(Event{Type: typ, Window: &w, WindowID: w.ID})
}
