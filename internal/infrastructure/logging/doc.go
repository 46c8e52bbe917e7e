// Package logging provides structured logging using uber/zap.
//
// Production mode writes JSON, development mode writes colored console
// output. Components take a *Logger and derive a named child:
//
//	logger := logging.NewDefault()
//	store := logger.Named("blobstore")
//	store.Warn("save failed", zap.String("key", key), zap.Error(err))
package logging
