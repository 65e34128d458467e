// Package logging configures structured slog output for the pipeline.
//
// It builds console or JSON handlers from configuration, fans output to
// stdout and the run log file, and carries standardized field names so
// run, dialog, and stage identifiers look the same everywhere. Context
// helpers lift those identifiers out of a context.Context into logger
// attributes.
package logging
