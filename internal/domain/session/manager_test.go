package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
)

func newManager(t *testing.T, clock *fakeClock) (*Manager, *blobstore.Memory, *AsyncPersister) {
	t.Helper()
	store := blobstore.NewMemory()
	metrics := monitoring.NewMetrics()
	persister := NewAsyncPersister(store, nil, metrics)
	t.Cleanup(func() { persister.Close(context.Background()) })

	m := NewManager(store, persister, Config{
		Viewport:  window.Size{Width: 1024, Height: 768},
		IdleEvict: 30 * time.Minute,
		Now:       clock.Now,
	}, metrics, nil)
	return m, store, persister
}

func TestManagerCreateAndGet(t *testing.T) {
	m, _, _ := newManager(t, &fakeClock{now: time.Now()})

	d := m.Create()
	_, err := uuid.Parse(d.ID())
	require.NoError(t, err)

	got, err := m.Get(d.ID())
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, window.Size{Width: 1024, Height: 768}, d.Viewport())

	_, err = m.Get(uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerOpenRejectsMalformedID(t *testing.T) {
	m, _, _ := newManager(t, &fakeClock{now: time.Now()})
	_, err := m.Open(context.Background(), "../../etc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerResumesPersistedTree(t *testing.T) {
	ctx := context.Background()
	m, store, persister := newManager(t, &fakeClock{now: time.Now()})

	d := m.Create()
	require.True(t, d.CreateFile(vfs.Path{"C:", "Documents"}, "kept.txt", "still here"))
	d.OpenWindow(window.KindNotepad, "", nil)
	require.NoError(t, persister.Flush(ctx))

	_, err := store.Load(ctx, TreeKey(d.ID()))
	require.NoError(t, err)

	require.True(t, m.Evict(d.ID()))
	assert.False(t, m.Evict(d.ID()))
	assert.Zero(t, m.Count())

	resumed, err := m.Open(ctx, d.ID())
	require.NoError(t, err)
	assert.NotSame(t, d, resumed)
	assert.Empty(t, resumed.Windows())

	f, ok := resumed.Tree().ResolveFile(vfs.Path{"C:", "Documents", "kept.txt"})
	require.True(t, ok)
	assert.Equal(t, "still here", f.Text())

	again, err := m.Open(ctx, d.ID())
	require.NoError(t, err)
	assert.Same(t, resumed, again)
}

func TestManagerResumesRecycleBin(t *testing.T) {
	ctx := context.Background()
	m, _, persister := newManager(t, &fakeClock{now: time.Now()})

	d := m.Create()
	require.True(t, d.CreateFile(documents, "keep.txt", "kept"))
	require.True(t, d.MoveToRecycleBin(documents, "todo.txt"))
	require.NoError(t, persister.Flush(ctx))
	require.True(t, m.Evict(d.ID()))

	resumed, err := m.Open(ctx, d.ID())
	require.NoError(t, err)
	assert.False(t, resumed.Tree().Equal(vfs.DefaultTree()))

	f, ok := resumed.Tree().ResolveFile(documents.Join("keep.txt"))
	require.True(t, ok)
	assert.Equal(t, "kept", f.Text())

	_, ok = resumed.Resolve(documents.Join("todo.txt"))
	assert.False(t, ok)

	entries := resumed.ListRecycleBin()
	require.Len(t, entries, 1)
	assert.Equal(t, "todo.txt", entries[0].OriginalName)
	assert.Equal(t, documents, entries[0].OriginalPath)

	require.True(t, resumed.RestoreFromRecycleBin(entries[0].Name))
	_, ok = resumed.Resolve(documents.Join("todo.txt"))
	assert.True(t, ok)
}

func TestManagerOpenWaitsForQueuedWrite(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := newGatedStore()
	persister := NewAsyncPersister(store, nil, nil)
	defer persister.Close(context.Background())
	m := NewManager(store, persister, Config{}, nil, nil)

	d := m.Create()
	require.True(t, d.CreateFile(documents, "late.txt", "queued"))
	<-store.started
	require.True(t, m.Evict(d.ID()))

	opened := make(chan *Desktop, 1)
	go func() {
		resumed, err := m.Open(ctx, d.ID())
		assert.NoError(t, err)
		opened <- resumed
	}()

	select {
	case <-opened:
		t.Fatal("resumed before the queued write landed")
	case <-time.After(20 * time.Millisecond):
	}
	close(store.gate)

	resumed := <-opened
	require.NotNil(t, resumed)
	f, ok := resumed.Tree().ResolveFile(documents.Join("late.txt"))
	require.True(t, ok)
	assert.Equal(t, "queued", f.Text())
}

func TestManagerOpenUnknownIDStartsFromDefault(t *testing.T) {
	m, _, _ := newManager(t, &fakeClock{now: time.Now()})

	d, err := m.Open(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.True(t, d.Tree().Equal(vfs.DefaultTree()))
}

func TestManagerSweepEvictsIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	m, _, _ := newManager(t, clock)

	idle := m.Create()
	clock.Advance(20 * time.Minute)
	busy := m.Create()
	watched := m.Create()
	sub := watched.Events().Subscribe()

	clock.Advance(15 * time.Minute)
	busy.Windows()

	assert.Equal(t, 1, m.Sweep())
	_, err := m.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(busy.ID())
	assert.NoError(t, err)
	_, err = m.Get(watched.ID())
	assert.NoError(t, err)

	watched.Events().Unsubscribe(sub)
}

func TestEvictClosesSubscribers(t *testing.T) {
	m, _, _ := newManager(t, &fakeClock{now: time.Now()})
	d := m.Create()
	sub := d.Events().Subscribe()

	require.True(t, m.Evict(d.ID()))
	_, open := <-sub
	assert.False(t, open)
	d.Events().Unsubscribe(sub)
}

type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) Persist(key string, tree vfs.Tree) {
	m.Called(key, tree)
}

func TestManagerDesktopsPersistUnderTheirKey(t *testing.T) {
	p := &mockPersister{}
	m := NewManager(nil, p, Config{}, nil, nil)
	d := m.Create()

	p.On("Persist", TreeKey(d.ID()), mock.MatchedBy(func(tree vfs.Tree) bool {
		_, ok := tree.Resolve(vfs.Path{"C:", "Notes"})
		return ok
	})).Once()

	require.True(t, d.CreateFolder(vfs.Path{"C:"}, "Notes"))
	assert.False(t, d.CreateFolder(vfs.Path{"C:"}, "Notes"))

	p.AssertExpectations(t)
}
