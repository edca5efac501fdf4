// Package logging assembles the slog loggers used by episodekit.
//
// It owns the console and JSON handlers, parses level and format settings,
// optionally tees records into a JSON log file, and defines the standard field
// keys so every component tags its lines the same way. WarnWithContext is the
// required entry point for warnings: it guarantees each warning carries an
// event type, a hint for the operator, and the impact on the run.
//
// NewNop returns a logger that discards everything; use it in tests and
// wherever a caller passes a nil logger.
package logging
