package stringtable

import (
	"regexp"
	"sort"
	"strconv"

	"autovo/internal/textutil"
)

var dumpEntry = regexp.MustCompile(`(?s)@(\d+)\s*=\s*~(.*?)~`)

// Table maps global string-references to their text and indexes entries by
// normalized text for duplicate matching. Read-only after Parse.
type Table struct {
	texts  map[int]string
	byNorm map[string][]int
}

// Parse builds a Table from a whole-table dump blob.
func Parse(blob string) *Table {
	t := &Table{
		texts:  make(map[int]string),
		byNorm: make(map[string][]int),
	}
	for _, m := range dumpEntry.FindAllStringSubmatch(blob, -1) {
		strref, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		text := m[2]
		t.texts[strref] = text
		key := textutil.NormalizeForMatch(text)
		t.byNorm[key] = append(t.byNorm[key], strref)
	}
	for key := range t.byNorm {
		sort.Ints(t.byNorm[key])
	}
	return t
}

// Len reports the number of table entries.
func (t *Table) Len() int {
	return len(t.texts)
}

// Text returns the raw text for a string-reference.
func (t *Table) Text(strref int) (string, bool) {
	text, ok := t.texts[strref]
	return text, ok
}

// Matches returns every string-reference whose text normalizes identically
// to the given text, sorted ascending. The result includes the reference
// the text came from when it is in the table.
func (t *Table) Matches(text string) []int {
	return t.byNorm[textutil.NormalizeForMatch(text)]
}
