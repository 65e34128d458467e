// Package plan decides, per resolved line, whether to keep an existing
// asset, regenerate it, or drop the line entirely. Decisions come from a
// pluggable DecisionProvider so the pipeline stays deterministic under
// test; the terminal provider implements the interactive flow.
package plan
