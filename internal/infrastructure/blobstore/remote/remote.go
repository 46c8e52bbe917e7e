// Package remote stores blobs on an HTTP key/value service.
//
// The service exposes GET, PUT and DELETE on {base}/blobs/{key}; GET answers
// 404 for missing keys.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
)

// Config configures the client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Retries is the number of retries on transport errors and 5xx answers.
	Retries int
	// RetryWait is the initial backoff between retries.
	RetryWait time.Duration
	// RequestsPerSecond caps outgoing calls. Zero means unlimited.
	RequestsPerSecond float64
}

// Store is a resty based blobstore.Store.
type Store struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// New creates a client for the service at cfg.BaseURL.
func New(cfg Config) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote store: base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = 200 * time.Millisecond
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(10*cfg.RetryWait).
		SetHeader("User-Agent", "webdesk-blobstore/1.0").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		tracing.InjectHeaders(r.Context(), func(k, v string) { r.SetHeader(k, v) })
		return nil
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Store{client: client, limiter: limiter}, nil
}

// Load fetches key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	req, err := s.request(ctx, key)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get("/blobs/{key}")
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, blobstore.ErrNotFound
	case resp.IsError():
		return nil, fmt.Errorf("get %s: unexpected status %d", key, resp.StatusCode())
	}
	return resp.Body(), nil
}

// Save uploads data under key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	req, err := s.request(ctx, key)
	if err != nil {
		return err
	}
	resp, err := req.
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put("/blobs/{key}")
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if resp.IsError() {
		return fmt.Errorf("put %s: unexpected status %d", key, resp.StatusCode())
	}
	return nil
}

// Delete removes key. A 404 answer counts as success.
func (s *Store) Delete(ctx context.Context, key string) error {
	req, err := s.request(ctx, key)
	if err != nil {
		return err
	}
	resp, err := req.Delete("/blobs/{key}")
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("delete %s: unexpected status %d", key, resp.StatusCode())
	}
	return nil
}

func (s *Store) request(ctx context.Context, key string) (*resty.Request, error) {
	if err := blobstore.ValidateKey(key); err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	// Keys are validated, so slashes pass through unescaped.
	return s.client.R().SetContext(ctx).SetRawPathParam("key", key), nil
}
