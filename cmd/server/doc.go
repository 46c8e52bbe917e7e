// Package main is the entry point for the webdesk server.
//
// The server backs a browser desktop: windows, a per-session virtual file
// system with a recycle bin, and pointer gestures. Every session's tree is
// saved to a blob store and restored when the session comes back.
//
// The server provides:
//   - REST API under /api/v1
//   - WebSocket event stream at /api/v1/stream
//   - Prometheus metrics at /metrics
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	STORE_BACKEND=s3 S3_ENDPOINT=http://minio:9000 ./server -port 8000
//
//	# Development mode (colored logs, debug level, in-memory store)
//	./server -dev -store memory
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown (pending tree writes are flushed)
package main
