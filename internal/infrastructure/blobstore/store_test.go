package blobstore

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/resilience"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"sessions/abc/filesystem", true},
		{"a", true},
		{"", false},
		{"/abs", false},
		{"trailing/", false},
		{"a//b", false},
		{"a/../b", false},
		{"./a", false},
		{"a\\b", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidKey)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	data := []byte("hello")
	require.NoError(t, m.Save(ctx, "k", data))
	data[0] = 'j'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, m.Delete(ctx, "k"))
	require.NoError(t, m.Delete(ctx, "k"))
	assert.Zero(t, m.Len())
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemory().Save(ctx, "k", nil), context.Canceled)
}

func TestCompressedRoundTrip(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	c, err := NewCompressed(inner)
	require.NoError(t, err)
	defer c.Close()

	payload := bytes.Repeat([]byte(`{"type":"folder","children":{}}`), 200)
	require.NoError(t, c.Save(ctx, "tree", payload))

	raw, err := inner.Load(ctx, "tree")
	require.NoError(t, err)
	assert.True(t, IsCompressed(raw))
	assert.Less(t, len(raw), len(payload))

	got, err := c.Load(ctx, "tree")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCompressedPassesThroughPlainBlobs(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Save(ctx, "old", []byte(`{"version":1}`)))

	c, err := NewCompressed(inner)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Load(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))
}

type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) Load(context.Context, string) ([]byte, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Save(context.Context, string, []byte) error {
	f.calls++
	return f.err
}

func (f *failingStore) Delete(context.Context, string) error {
	f.calls++
	return f.err
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestGuardedOpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	inner := &failingStore{err: errors.New("connection refused")}
	g := NewGuarded(inner, GuardOptions{
		Backend:  "remote",
		Failures: 3,
		Cooldown: time.Minute,
		Metrics:  monitoring.NewMetrics(),
		Now:      clock.Now,
	})

	for i := 0; i < 3; i++ {
		assert.Error(t, g.Save(ctx, "k", []byte("x")))
	}
	assert.Equal(t, resilience.StateOpen, g.Breaker().State())

	err := g.Save(ctx, "k", []byte("x"))
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 3, inner.calls)

	clock.now = clock.now.Add(2 * time.Minute)
	inner.err = nil
	require.NoError(t, g.Save(ctx, "k", []byte("x")))
	assert.Equal(t, resilience.StateClosed, g.Breaker().State())
}

func TestGuardedNotFoundIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	g := NewGuarded(&failingStore{err: ErrNotFound}, GuardOptions{Backend: "memory", Failures: 1})

	for i := 0; i < 5; i++ {
		_, err := g.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, resilience.StateClosed, g.Breaker().State())
}

func TestGuardedTimeout(t *testing.T) {
	g := NewGuarded(blockingStore{}, GuardOptions{Backend: "slow", Timeout: 10 * time.Millisecond})
	_, err := g.Load(context.Background(), "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timeout", status(err))
}

type blockingStore struct{}

func (blockingStore) Load(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) Save(ctx context.Context, _ string, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingStore) Delete(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}
