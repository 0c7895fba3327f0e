package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Ingestion
	FieldSource   = "source"
	FieldCitation = "citation"
	FieldSystem   = "system"
	FieldIon      = "ion"
	FieldTable    = "table"
	FieldURL      = "url"
	FieldRow      = "row"
	FieldReason   = "reason"
	FieldDryRun   = "dry_run"

	// Counts
	FieldCount    = "count"
	FieldIons     = "ions"
	FieldSystems  = "systems"
	FieldSkipped  = "skipped"
	FieldExcluded = "excluded"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files and paths
	FieldPath = "path"
)

type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	componentKey contextKey = "logger_component"
)

// WithRunID adds an ingest run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the run ID stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context as key-value pairs
// for Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}
	if runID := RunID(ctx); runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}
	return fields
}

// LoggerFromContext returns the global logger with context fields attached.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	store := storage.NewSQLStore(db, logger.ComponentLogger("storage"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
