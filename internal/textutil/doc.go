// Package textutil provides the text cleaning rules shared by the resolver
// and the role segmenter: quote extraction, emphasis stripping, dash
// normalization, whitespace collapse, pronunciation substitution, and the
// normalization used for duplicate text matching.
package textutil
