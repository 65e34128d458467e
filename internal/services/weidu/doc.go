// Package weidu wraps the WeiDU CLI: dialog decompilation, whole-table
// dumps, resource listing, and per-strref audio lookups. Everything the
// core consumes is parsed here into plain structures so no other package
// needs to know WeiDU's output syntax.
package weidu
