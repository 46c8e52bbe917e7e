// Package config provides 12-factor configuration management for the webdesk backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, CORS origins)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Store: Durable blob store backend and its circuit breaker
//   - Session: Session token signing and idle eviction
//   - Desktop: Seed tree and default viewport
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS, SHUTDOWN_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - STORE_BACKEND, STORE_PATH, STORE_BACKUPS, STORE_COMPRESS, STORE_TIMEOUT
//   - S3_ENDPOINT, S3_BUCKET, S3_REGION, S3_ACCESS_KEY, S3_SECRET_KEY
//   - DATABASE_URL, REMOTE_STORE_URL, REMOTE_STORE_TOKEN
//   - SESSION_SECRET, SESSION_TTL, SESSION_IDLE_EVICT
//   - SEED_FILE, VIEWPORT_WIDTH, VIEWPORT_HEIGHT
package config
