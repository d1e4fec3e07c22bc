// Package logger provides a structured logging interface for ornithology.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output when stderr is a terminal, JSON otherwise
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "ornithology/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("archive opened")
//	logger.WithField("tweets", 2481).Info("identifiers extracted")
//	logger.WithError(err).Error("token exchange failed")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "fetcher").
//	    WithField("endpoint", "tweets")
//
//	// Use structured logging
//	log.InfoWithFields("batch fetched", map[string]interface{}{
//	    "batch": 3,
//	    "items": 100,
//	})
package logger
