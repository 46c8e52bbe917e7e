package window

import (
	"math/rand/v2"
	"sort"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

const (
	// EdgeMargin keeps at least this many pixels of a window inside the
	// viewport when it is moved.
	EdgeMargin = 100

	// Cascade is the per-window offset applied to new windows.
	Cascade = 30

	baseX   = 80
	baseY   = 60
	jitterX = 120
	jitterY = 80
)

// DefaultViewport is assumed until the client reports its size.
var DefaultViewport = Size{Width: 1280, Height: 800}

// Manager tracks the open windows of one desktop and their stacking order.
// It is not safe for concurrent use; callers serialize access.
type Manager struct {
	windows  map[id.WindowID]*Window
	z        int64
	seq      int64
	viewport Size
	rng      *rand.Rand
	newID    func() id.WindowID
}

// Option configures a Manager.
type Option func(*Manager)

// WithViewport sets the initial viewport.
func WithViewport(vp Size) Option {
	return func(m *Manager) { m.viewport = vp }
}

// WithRand sets the source used for placement jitter.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithIDs replaces the window id generator.
func WithIDs(fn func() id.WindowID) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates an empty window manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		windows:  make(map[id.WindowID]*Window),
		viewport: DefaultViewport,
		newID:    id.NewWindowID,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m
}

// Open creates a window on top of the stack and returns a copy of it.
func (m *Manager) Open(kind Kind, title string, payload *Payload) Window {
	if title == "" {
		title = DefaultTitle(kind)
	}

	wid := m.newID()
	for {
		if _, taken := m.windows[wid]; !taken {
			break
		}
		wid = m.newID()
	}

	offset := Cascade * len(m.windows)
	pos := m.clamp(Point{
		X: baseX + m.rng.IntN(jitterX) + offset,
		Y: baseY + m.rng.IntN(jitterY) + offset,
	})

	m.z++
	m.seq++
	w := &Window{
		ID:       wid,
		Title:    title,
		Kind:     kind,
		Position: pos,
		Size:     DefaultSize(kind),
		Z:        m.z,
		Payload:  payload.clone(),
		seq:      m.seq,
	}
	m.windows[wid] = w
	return w.clone()
}

// Close removes a window. It reports whether the window existed.
func (m *Manager) Close(wid id.WindowID) bool {
	if _, ok := m.windows[wid]; !ok {
		return false
	}
	delete(m.windows, wid)
	return true
}

// ToggleMinimize flips the minimized flag. Minimized windows stay listed in
// the taskbar.
func (m *Manager) ToggleMinimize(wid id.WindowID) (Window, bool) {
	w, ok := m.windows[wid]
	if !ok {
		return Window{}, false
	}
	w.Minimized = !w.Minimized
	return w.clone(), true
}

// Focus raises a window above every other one.
func (m *Manager) Focus(wid id.WindowID) (Window, bool) {
	w, ok := m.windows[wid]
	if !ok {
		return Window{}, false
	}
	m.z++
	w.Z = m.z
	return w.clone(), true
}

// Move places a window at pos, clamped to the viewport.
func (m *Manager) Move(wid id.WindowID, pos Point) (Window, bool) {
	w, ok := m.windows[wid]
	if !ok {
		return Window{}, false
	}
	w.Position = m.clamp(pos)
	return w.clone(), true
}

// Get returns a copy of one window.
func (m *Manager) Get(wid id.WindowID) (Window, bool) {
	w, ok := m.windows[wid]
	if !ok {
		return Window{}, false
	}
	return w.clone(), true
}

// Count returns the number of open windows.
func (m *Manager) Count() int {
	return len(m.windows)
}

// Windows returns every window ordered bottom to top.
func (m *Manager) Windows() []Window {
	out := m.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Taskbar returns every window, minimized ones included, in the order they
// were opened.
func (m *Manager) Taskbar() []Window {
	out := m.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Top returns the unminimized window with the highest z.
func (m *Manager) Top() (Window, bool) {
	var top *Window
	for _, w := range m.windows {
		if w.Minimized {
			continue
		}
		if top == nil || w.Z > top.Z {
			top = w
		}
	}
	if top == nil {
		return Window{}, false
	}
	return top.clone(), true
}

// Viewport returns the current viewport.
func (m *Manager) Viewport() Size {
	return m.viewport
}

// SetViewport records the client's viewport size. Existing windows are
// pulled back inside the new bounds.
func (m *Manager) SetViewport(vp Size) {
	if vp.Width < 0 {
		vp.Width = 0
	}
	if vp.Height < 0 {
		vp.Height = 0
	}
	m.viewport = vp
	for _, w := range m.windows {
		w.Position = m.clamp(w.Position)
	}
}

func (m *Manager) snapshot() []Window {
	out := make([]Window, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w.clone())
	}
	return out
}

func (m *Manager) clamp(p Point) Point {
	return Point{
		X: clampInt(p.X, 0, m.viewport.Width-EdgeMargin),
		Y: clampInt(p.Y, 0, m.viewport.Height-EdgeMargin),
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
