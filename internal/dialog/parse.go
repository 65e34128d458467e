package dialog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	speakRefPattern    = regexp.MustCompile(`(?i)\bSAY\s+@(\d+)`)
	translationPattern = regexp.MustCompile(`(?s)@(\d+)\s*=\s*#(\d+)\s*/\*\s*~(.*?)~.*?\*/`)
)

// Entry joins a dialog-local speak-string id with its global
// string-reference and text.
type Entry struct {
	LocalID int
	StrRef  int
	Text    string
}

// ParseSpeakRefs extracts the local ids of every speak-string reference in
// a decompiled dialog source blob, sorted ascending and deduplicated.
func ParseSpeakRefs(source string) []int {
	seen := make(map[int]struct{})
	for _, m := range speakRefPattern.FindAllStringSubmatch(source, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[id] = struct{}{}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ParseTranslation extracts local-id to (string-reference, text) mappings
// from a decompiled translation blob.
func ParseTranslation(blob string) map[int]Entry {
	entries := make(map[int]Entry)
	for _, m := range translationPattern.FindAllStringSubmatch(blob, -1) {
		localID, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		strref, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		entries[localID] = Entry{LocalID: localID, StrRef: strref, Text: m[3]}
	}
	return entries
}

// Resolve cross-references speak refs against translation entries. Local
// ids with no translation entry are returned separately as gaps; they are
// reported by the caller, not fatal.
func Resolve(speakRefs []int, translations map[int]Entry) (entries []Entry, gaps []int) {
	for _, id := range speakRefs {
		entry, ok := translations[id]
		if !ok {
			gaps = append(gaps, id)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, gaps
}

// IsVariant reports whether name is a variant of base: the exact base name,
// or the base plus exactly one trailing character from [A-Z0-9]. Matching
// is case-insensitive; names are compared uppercased.
func IsVariant(base, name string) bool {
	base = strings.ToUpper(strings.TrimSpace(base))
	name = strings.ToUpper(strings.TrimSpace(name))
	if base == "" || !strings.HasPrefix(name, base) {
		return false
	}
	suffix := name[len(base):]
	if suffix == "" {
		return true
	}
	if len(suffix) != 1 {
		return false
	}
	c := suffix[0]
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Variants filters known resource names down to the variants of base,
// sorted. When no known name matches, the base name alone is returned so a
// run can proceed without the listing service.
func Variants(base string, known []string) []string {
	base = strings.ToUpper(strings.TrimSpace(base))
	seen := make(map[string]struct{})
	for _, name := range known {
		upper := strings.ToUpper(strings.TrimSpace(name))
		if IsVariant(base, upper) {
			seen[upper] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return []string{base}
	}
	variants := make([]string, 0, len(seen))
	for name := range seen {
		variants = append(variants, name)
	}
	sort.Strings(variants)
	return variants
}

// VoicePrefix derives the voice identity from a dialog base name: a
// leading D followed by another letter is a dialog-file convention, not
// part of the speaker's name, and is dropped.
func VoicePrefix(base string) string {
	base = strings.ToUpper(strings.TrimSpace(base))
	if len(base) > 1 && base[0] == 'D' && base[1] >= 'A' && base[1] <= 'Z' {
		return base[1:]
	}
	return base
}
