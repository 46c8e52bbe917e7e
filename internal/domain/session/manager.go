package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
)

// ErrSessionNotFound is returned for ids that are not live and cannot be resumed.
var ErrSessionNotFound = errors.New("session not found")

// Config configures a Manager.
type Config struct {
	// Viewport is the initial viewport of new desktops.
	Viewport window.Size
	// IdleEvict drops desktops from memory after this much inactivity.
	// Zero disables eviction.
	IdleEvict time.Duration
	// DefaultTree builds the tree of a desktop with nothing stored.
	DefaultTree func() vfs.Tree
	// Now overrides the clock.
	Now func() time.Time
}

// Manager holds the live desktops and resumes stored ones.
type Manager struct {
	sessions  sync.Map // string -> *Desktop
	mu        sync.Mutex
	store     blobstore.Store
	persister Persister
	cfg       Config
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// NewManager creates a session manager. store is read when a session is
// resumed; persister receives every tree change.
func NewManager(store blobstore.Store, persister Persister, cfg Config, metrics *monitoring.Metrics, logger *logging.Logger) *Manager {
	if cfg.Viewport.Width == 0 || cfg.Viewport.Height == 0 {
		cfg.Viewport = window.DefaultViewport
	}
	if cfg.DefaultTree == nil {
		cfg.DefaultTree = vfs.DefaultTree
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if persister == nil {
		persister = DiscardPersister{}
	}
	return &Manager{
		store:     store,
		persister: persister,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger.Named("sessions"),
	}
}

// Create starts a fresh desktop on the default tree.
func (m *Manager) Create() *Desktop {
	d := m.newDesktop(uuid.NewString(), m.cfg.DefaultTree())
	m.sessions.Store(d.ID(), d)
	m.metrics.IncSessionsCreated()
	m.metrics.SetSessionsActive(m.Count())
	m.logger.Info("session created", zap.String("session", d.ID()))
	return d
}

// Get returns a live desktop.
func (m *Manager) Get(sessionID string) (*Desktop, error) {
	if v, ok := m.sessions.Load(sessionID); ok {
		return v.(*Desktop), nil
	}
	return nil, ErrSessionNotFound
}

// Open returns the live desktop for sessionID, resuming it from the store
// when it is not in memory. Windows are not persisted, so a resumed
// desktop starts with none open.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Desktop, error) {
	if d, err := m.Get(sessionID); err == nil {
		return d, nil
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have resumed it meanwhile.
	if d, err := m.Get(sessionID); err == nil {
		return d, nil
	}

	key := TreeKey(sessionID)
	if kf, ok := m.persister.(KeyFlusher); ok {
		// A just evicted desktop may still have its last snapshot queued.
		if err := kf.FlushKey(ctx, key); err != nil {
			m.logger.Warn("waiting for queued tree failed", zap.String("session", sessionID), zap.Error(err))
		}
	}

	var tree vfs.Tree
	if m.store != nil {
		tree = LoadTree(ctx, m.store, key, m.cfg.DefaultTree, m.logger, m.metrics)
	} else {
		tree = m.cfg.DefaultTree()
	}
	d := m.newDesktop(sessionID, tree)
	m.sessions.Store(sessionID, d)
	m.metrics.SetSessionsActive(m.Count())
	m.logger.Info("session resumed", zap.String("session", sessionID))
	return d, nil
}

// Evict drops a desktop from memory. Its tree stays in the store.
func (m *Manager) Evict(sessionID string) bool {
	v, ok := m.sessions.LoadAndDelete(sessionID)
	if !ok {
		return false
	}
	v.(*Desktop).Events().CloseAll()
	m.metrics.IncSessionsEvicted(1)
	m.metrics.SetSessionsActive(m.Count())
	return true
}

// Sweep evicts desktops idle for longer than Config.IdleEvict and returns
// how many were dropped.
func (m *Manager) Sweep() int {
	if m.cfg.IdleEvict <= 0 {
		return 0
	}
	cutoff := m.cfg.Now().Add(-m.cfg.IdleEvict)

	evicted := 0
	m.sessions.Range(func(key, value any) bool {
		d := value.(*Desktop)
		if d.LastActive().Before(cutoff) && d.Events().Count() == 0 {
			if _, ok := m.sessions.LoadAndDelete(key); ok {
				d.Events().CloseAll()
				evicted++
			}
		}
		return true
	})
	if evicted > 0 {
		m.metrics.IncSessionsEvicted(evicted)
		m.metrics.SetSessionsActive(m.Count())
		m.logger.Info("idle sessions evicted", zap.Int("count", evicted))
	}
	return evicted
}

// Run sweeps idle desktops every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.cfg.IdleEvict <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Count returns the number of live desktops.
func (m *Manager) Count() int {
	n := 0
	m.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *Manager) newDesktop(sessionID string, tree vfs.Tree) *Desktop {
	return NewDesktop(sessionID, tree,
		WithPersister(m.persister),
		WithMetrics(m.metrics),
		WithLogger(m.logger),
		WithClock(m.cfg.Now),
		WithWindowOptions(window.WithViewport(m.cfg.Viewport)),
	)
}
