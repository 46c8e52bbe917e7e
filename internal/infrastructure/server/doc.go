// Package server assembles the webdesk HTTP service.
//
// NewServer wires the pieces in dependency order:
//  1. Logger, metrics and tracer
//  2. Default tree (built-in or SEED_FILE)
//  3. Blob store behind its circuit breaker (STORE_BACKEND)
//  4. Async persister and session manager
//  5. Gin router with recovery, tracing, metrics, CORS and rate limiting
//  6. /api/v1 routes, the /api/v1/stream websocket, /health and /metrics
//
// Close stops accepting requests, drains queued tree writes and releases
// the store, so no acknowledged change is lost on a clean shutdown.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(ctx, cfg, nil)
//	go srv.Run()
//	defer srv.Close(ctx)
package server
