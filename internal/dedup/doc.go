// Package dedup propagates resolved lines to every other string-table
// entry with identical normalized text, so duplicate entries share one
// generated asset instead of triggering new synthesis work.
package dedup
