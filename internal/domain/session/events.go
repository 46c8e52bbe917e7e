package session

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// Event types pushed to stream subscribers.
const (
	EventWindowOpened    = "window.opened"
	EventWindowClosed    = "window.closed"
	EventWindowMinimized = "window.minimized"
	EventWindowFocused   = "window.focused"
	EventWindowMoved     = "window.moved"
	EventViewportChanged = "window.viewport"
	EventFileCreated     = "fs.created"
	EventFileUpdated     = "fs.updated"
	EventFolderCreated   = "fs.folder_created"
	EventRenamed         = "fs.renamed"
	EventRecycled        = "fs.recycled"
	EventRestored        = "fs.restored"
	EventBinEmptied      = "fs.bin_emptied"
)

// Event is a state change of one desktop.
type Event struct {
	ID        id.EventID     `json:"id"`
	Type      string         `json:"type"`
	Window    *window.Window `json:"window,omitempty"`
	WindowID  id.WindowID    `json:"window_id,omitempty"`
	Path      []string       `json:"path,omitempty"`
	Name      string         `json:"name,omitempty"`
	NewName   string         `json:"new_name,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Broadcaster fans desktop events out to stream subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe adds a new subscriber and returns its event channel.
// The caller must call Unsubscribe when done.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Publish sends an event to all subscribers. Events for slow consumers
// are dropped.
func (b *Broadcaster) Publish(event Event) {
	if event.ID == "" {
		event.ID = id.NewEventID()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Count returns the current number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// CloseAll closes every subscriber channel.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}
