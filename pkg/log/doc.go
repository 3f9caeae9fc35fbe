// Package log provides a logging abstraction for threadworker components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Adapters are provided for zerolog and zap, plus a
// no-op logger used when no logger is configured.
//
// # Usage
//
// Use the zerolog adapter:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Or the zap adapter:
//
//	z, _ := zap.NewProduction()
//	logger := log.NewZapAdapter(z)
//
// Scope a logger to one worker:
//
//	wlog := logger.With(log.String("worker", "ticker"))
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.1.0
//
// See version.go for version constants that can be used programmatically.
package log
