// Package dialog adapts semi-structured decompiler output into structured
// data: speak-string references from dialog source, local-id to global
// string-reference translations, and the variant naming policy for dialog
// resources.
//
// The rest of the pipeline consumes the structured forms and never assumes
// any particular decompiler syntax.
package dialog
