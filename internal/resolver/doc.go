// Package resolver turns structured dialog entries into speakable Line
// candidates: it cross-references speak-string ids against the translation
// table, filters entries that already carry audio, cleans text for
// synthesis, and derives deterministic asset names.
package resolver
