package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
)

// Persister accepts tree snapshots for durable storage. Persist must not
// block on I/O; callers never learn whether a write succeeded.
type Persister interface {
	Persist(key string, tree vfs.Tree)
}

// KeyFlusher is implemented by persisters that can wait for the pending
// write of a single key.
type KeyFlusher interface {
	FlushKey(ctx context.Context, key string) error
}

// TreeKey is the blob key holding a session's file system.
func TreeKey(sessionID string) string {
	return "sessions/" + sessionID + "/filesystem"
}

// AsyncPersister writes snapshots from a single background worker. Keys
// are written in the order they were first queued, and a snapshot queued
// while an older one for the same key is still waiting replaces it, so the
// last write per key always wins.
type AsyncPersister struct {
	store        blobstore.Store
	logger       *logging.Logger
	metrics      *monitoring.Metrics
	writeTimeout time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	order   []string
	pending map[string]vfs.Tree
	busy    bool
	writing string
	closed  bool
	waiters []chan struct{}
	keyWait map[string][]chan struct{}
	done    chan struct{}
}

// NewAsyncPersister starts the worker.
func NewAsyncPersister(store blobstore.Store, logger *logging.Logger, metrics *monitoring.Metrics) *AsyncPersister {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &AsyncPersister{
		store:        store,
		logger:       logger.Named("persister"),
		metrics:      metrics,
		writeTimeout: 10 * time.Second,
		pending:      make(map[string]vfs.Tree),
		keyWait:      make(map[string][]chan struct{}),
		done:         make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// Persist queues tree for writing under key.
func (p *AsyncPersister) Persist(key string, tree vfs.Tree) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Warn("persist after close dropped", zap.String("key", key))
		return
	}
	if _, queued := p.pending[key]; queued {
		p.metrics.IncPersistSuperseded()
	} else {
		p.order = append(p.order, key)
	}
	p.pending[key] = tree
	p.metrics.SetPersistQueue(len(p.order))
	p.cond.Signal()
}

// Flush waits until every queued snapshot has been written or ctx is done.
func (p *AsyncPersister) Flush(ctx context.Context) error {
	p.mu.Lock()
	if p.idle() {
		p.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FlushKey waits until no snapshot for key is queued or being written.
func (p *AsyncPersister) FlushKey(ctx context.Context, key string) error {
	p.mu.Lock()
	if !p.holds(key) {
		p.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	p.keyWait[key] = append(p.keyWait[key], ch)
	p.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the worker.
func (p *AsyncPersister) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("persister close: %w", ctx.Err())
	}
}

// holds reports whether key still has a write outstanding. Must hold mu.
func (p *AsyncPersister) holds(key string) bool {
	_, queued := p.pending[key]
	return queued || (p.busy && p.writing == key)
}

// idle reports whether nothing is queued or being written. Must hold mu.
func (p *AsyncPersister) idle() bool {
	return len(p.order) == 0 && !p.busy
}

func (p *AsyncPersister) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for len(p.order) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.order) == 0 {
			p.mu.Unlock()
			return
		}
		key := p.order[0]
		p.order = p.order[1:]
		tree := p.pending[key]
		delete(p.pending, key)
		p.busy = true
		p.writing = key
		p.metrics.SetPersistQueue(len(p.order))
		p.mu.Unlock()

		p.write(key, tree)

		p.mu.Lock()
		p.busy = false
		p.writing = ""
		if !p.holds(key) {
			for _, ch := range p.keyWait[key] {
				close(ch)
			}
			delete(p.keyWait, key)
		}
		if p.idle() {
			for _, ch := range p.waiters {
				close(ch)
			}
			p.waiters = nil
		}
		p.mu.Unlock()
	}
}

func (p *AsyncPersister) write(key string, tree vfs.Tree) {
	data, err := vfs.Encode(tree)
	if err != nil {
		p.logger.Error("encode tree failed", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.store.Save(ctx, key, data); err != nil {
		p.logger.Warn("persist tree failed", zap.String("key", key), zap.Int("bytes", len(data)), zap.Error(err))
		return
	}
	p.logger.Debug("tree persisted", zap.String("key", key), zap.Int("bytes", len(data)))
}

// LoadTree reads the tree stored under key. A missing, unreadable or
// malformed blob yields fallback() and never an error.
func LoadTree(ctx context.Context, store blobstore.Store, key string, fallback func() vfs.Tree, logger *logging.Logger, metrics *monitoring.Metrics) vfs.Tree {
	if logger == nil {
		logger = logging.NewNop()
	}
	data, err := store.Load(ctx, key)
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		metrics.IncTreeFallback("missing")
		return fallback()
	case err != nil:
		logger.Warn("load tree failed, using default", zap.String("key", key), zap.Error(err))
		metrics.IncTreeFallback("unavailable")
		return fallback()
	}

	tree, err := vfs.Decode(data)
	if err != nil {
		logger.Warn("stored tree is malformed, using default", zap.String("key", key), zap.Error(err))
		metrics.IncTreeFallback("malformed")
		return fallback()
	}
	return tree
}

// DiscardPersister drops every snapshot.
type DiscardPersister struct{}

// Persist implements Persister.
func (DiscardPersister) Persist(string, vfs.Tree) {}
