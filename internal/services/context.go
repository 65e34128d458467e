package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	dialogKey contextKey = "dialog"
	stageKey  contextKey = "stage"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDialog annotates context with the dialog base name being processed.
func WithDialog(ctx context.Context, dialog string) context.Context {
	if dialog == "" {
		return ctx
	}
	return context.WithValue(ctx, dialogKey, dialog)
}

// DialogFromContext returns the dialog base name if present.
func DialogFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(dialogKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
