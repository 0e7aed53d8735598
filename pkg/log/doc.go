// Package log provides structured event logging for the list and capability
// models.
//
// This package defines the Logger interface and Event types for capturing
// model-level events: permutations emitted by the navigation list, path
// resolutions, volume and shortcut state changes, and errors. It is separate
// from operational logging (slog); the event log is a complete
// machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to a binary file
//	cfg.Logger, _ = log.NewFileLogger("/tmp/navlist.wlog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys and use the
// .wlog extension. The webui-log tool views, filters and summarizes them.
package log
