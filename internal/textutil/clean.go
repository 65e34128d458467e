package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	quotedSpan     = regexp.MustCompile(`"([^"]+)"`)
	emphasisSpan   = regexp.MustCompile(`\*(.*?)\*`)
	wordDashWord   = regexp.MustCompile(`(\w)\s+[-\x{2013}\x{2014}]+\s+(\w)`)
	dashRun        = regexp.MustCompile(`\s*[-\x{2013}\x{2014}]+\s*`)
	notePrefix     = regexp.MustCompile(`^\^[A-Za-z0-9_\-]+:?\s*`)
	engineTag      = regexp.MustCompile(`<[^>]+>`)
	punctuationRun = regexp.MustCompile(`^[.\-\x{2013}\x{2014}\x{2026}\s]+$`)
)

// NormalizeForMatch collapses all internal whitespace runs to single spaces
// and trims, treating line-ending variants as equivalent. Two strings with
// equal normalized forms are considered the same dialog text.
func NormalizeForMatch(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// NormalizeDashes rewrites floating or dangling dashes as commas while
// leaving intra-word hyphens (meat-hook) alone.
//
//	"journal - though" -> "journal, though"
//	" -- "             -> ", "
func NormalizeDashes(text string) string {
	// Word-separated dashes become commas. Repeat until settled so chains
	// like "a - b - c" rewrite fully.
	for {
		out := wordDashWord.ReplaceAllString(text, "$1, $2")
		if out == text {
			break
		}
		text = out
	}

	// Standalone dash runs not touching word characters on either side.
	var b strings.Builder
	last := 0
	for _, loc := range dashRun.FindAllStringIndex(text, -1) {
		if wordAdjacent(text, loc[0], loc[1]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(", ")
		last = loc[1]
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func wordAdjacent(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return true
	}
	if end < len(text) && isWordByte(text[end]) {
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Fix is one whole-word, case-insensitive pronunciation substitution.
type Fix struct {
	From string
	To   string
}

// Cleaner applies the synthesis text cleaning rules. The pronunciation fix
// table is compiled once at construction.
type Cleaner struct {
	fixes []fixRule
}

type fixRule struct {
	pattern *regexp.Regexp
	repl    string
}

// NewCleaner compiles the pronunciation fix table. Empty source words are
// ignored.
func NewCleaner(fixes []Fix) *Cleaner {
	c := &Cleaner{}
	for _, fix := range fixes {
		if fix.From == "" {
			continue
		}
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(fix.From) + `\b`)
		c.fixes = append(c.fixes, fixRule{pattern: pattern, repl: fix.To})
	}
	return c
}

func (c *Cleaner) applyFixes(text string) string {
	for _, rule := range c.fixes {
		text = rule.pattern.ReplaceAllString(text, rule.repl)
	}
	return text
}

// CleanLine produces synthesis-ready text for a whole line: quoted spans
// only when present (else a single enclosing quote pair is stripped),
// emphasis markup removed, dashes normalized, whitespace collapsed, and
// pronunciation fixes applied.
func (c *Cleaner) CleanLine(text string) string {
	t := strings.TrimSpace(text)

	if spans := quotedSpan.FindAllStringSubmatch(t, -1); len(spans) > 0 {
		parts := make([]string, 0, len(spans))
		for _, span := range spans {
			parts = append(parts, span[1])
		}
		t = strings.Join(parts, " ")
	} else if strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`) && len(t) >= 2 {
		t = strings.TrimSpace(t[1 : len(t)-1])
	}

	t = emphasisSpan.ReplaceAllString(t, "$1")
	t = NormalizeDashes(t)
	t = strings.NewReplacer("\r\n", " ", "\n", " ").Replace(t)
	t = strings.TrimSpace(whitespaceRun.ReplaceAllString(t, " "))
	return c.applyFixes(t)
}

// CleanSegment cleans a narrator/character sub-span: leading caret note
// prefixes and angle-bracket engine tags are stripped in addition to the
// line-level rules. Returns "" for segments that reduce to nothing or to
// punctuation only; callers drop those.
func (c *Cleaner) CleanSegment(text string) string {
	t := strings.TrimSpace(text)

	t = notePrefix.ReplaceAllString(t, "")
	t = engineTag.ReplaceAllString(t, "")
	t = emphasisSpan.ReplaceAllString(t, "$1")
	t = NormalizeDashes(t)
	t = strings.NewReplacer("\r\n", " ", "\n", " ").Replace(t)
	t = strings.TrimSpace(whitespaceRun.ReplaceAllString(t, " "))

	if t == "" || punctuationRun.MatchString(t) {
		return ""
	}
	return c.applyFixes(t)
}
