// Package logging provides structured logging for the dashboard generator.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error, fatal)
//   - A FATAL level that records a degraded generation without exiting
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error, fatal
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// The strategy option "debug: true" raises the level to debug for the
// duration of a generation, see Logger.SetDebug.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("dashboard generated", "views", 9)
//	logger.Fatal("registry fetch failed", "error", err)
//
// # Security
//
// Never log the Home Assistant access token or MQTT credentials.
package logging
