// Package stringtable holds the global string-table dump parsed from the
// decompiler: string-reference to text lookups, a normalized-text index
// for duplicate propagation, and a cached existing-audio oracle.
package stringtable
