package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
)

type kvServer struct {
	mu    sync.Mutex
	blobs map[string][]byte
	auth  string
	fails atomic.Int32
	trace atomic.Value
}

func (k *kvServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if k.fails.Load() > 0 {
		k.fails.Add(-1)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if r.Header.Get("Authorization") != k.auth {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	k.trace.Store(r.Header.Get(tracing.HeaderTraceID))
	key, ok := strings.CutPrefix(r.URL.Path, "/blobs/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		data, ok := k.blobs[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		k.blobs[key] = data
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if _, ok := k.blobs[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(k.blobs, key)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (k *kvServer) get(key string) string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return string(k.blobs[key])
}

func newServer(t *testing.T) (*kvServer, *Store) {
	t.Helper()
	kv := &kvServer{blobs: map[string][]byte{}, auth: "Bearer secret"}
	srv := httptest.NewServer(kv)
	t.Cleanup(srv.Close)

	s, err := New(Config{BaseURL: srv.URL, Token: "secret", Retries: 2, RetryWait: time.Millisecond})
	require.NoError(t, err)
	return kv, s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, s := newServer(t)

	_, err := s.Load(ctx, "sessions/a/filesystem")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, s.Save(ctx, "sessions/a/filesystem", []byte("tree")))
	assert.Equal(t, "tree", kv.get("sessions/a/filesystem"))

	got, err := s.Load(ctx, "sessions/a/filesystem")
	require.NoError(t, err)
	assert.Equal(t, "tree", string(got))

	require.NoError(t, s.Delete(ctx, "sessions/a/filesystem"))
	require.NoError(t, s.Delete(ctx, "sessions/a/filesystem"))
}

func TestRetriesServerErrors(t *testing.T) {
	ctx := context.Background()
	kv, s := newServer(t)
	require.NoError(t, s.Save(ctx, "k", []byte("v")))
	kv.fails.Store(2)

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Zero(t, kv.fails.Load())
}

func TestUnauthorizedIsAnError(t *testing.T) {
	kv, s := newServer(t)
	kv.mu.Lock()
	kv.auth = "Bearer other"
	kv.mu.Unlock()

	_, err := s.Load(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, blobstore.ErrNotFound)
}

func TestRejectsInvalidKeyWithoutCalling(t *testing.T) {
	_, s := newServer(t)
	assert.ErrorIs(t, s.Save(context.Background(), "../k", nil), blobstore.ErrInvalidKey)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestPropagatesTraceHeaders(t *testing.T) {
	kv, s := newServer(t)
	tracer := tracing.New("test", nil)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(context.Background(), "persist")
	require.NoError(t, s.Save(ctx, "k", []byte("v")))
	assert.Equal(t, string(span.TraceID), kv.trace.Load())
}
