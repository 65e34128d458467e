// Package pipeline orchestrates one generation run for a dialog.
//
// A run is synchronous and single-threaded: snapshot the string table,
// dump and parse it, decompile the dialog and its variants, resolve and
// plan lines, synthesize in seeded chunks, assemble narration, propagate
// duplicate-text references, and only then emit the packaging manifest.
// Any invariant violation aborts before the manifest is written so a
// partial run never ships inconsistent artifacts.
package pipeline
