// Package manifest emits the packaging artifacts for a completed run.
//
// Three outputs are produced per dialog: a tp2 installer manifest with one
// COPY record per unique asset and one STRING_SET per (strref, asset) pair,
// a vo_lines.json preview index for the external viewer, and a SQLite
// registry linking assets to every string reference they voice. Nothing
// here is written until synthesis and assembly have fully succeeded.
package manifest
