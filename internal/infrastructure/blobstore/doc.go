// Package blobstore defines the durable key/value store desktop sessions
// persist their file-system tree into.
//
// Backends live in subpackages (file, s3, postgres, remote) and are built
// by package backend from configuration. Wrappers in this package add zstd
// compression (Compressed) and a circuit breaker with metrics (Guarded):
//
//	store, err := backend.Open(ctx, cfg.Store, metrics, logger)
//	data, err := store.Load(ctx, "sessions/<id>/filesystem")
//	if errors.Is(err, blobstore.ErrNotFound) { ... }
package blobstore
