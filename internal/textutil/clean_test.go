package textutil_test

import (
	"testing"

	"autovo/internal/textutil"
)

func TestNormalizeForMatch(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Wait.  ", "Wait."},
		{"line\r\nbreak", "line break"},
		{"a\t b\n\nc", "a b c"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := textutil.NormalizeForMatch(tc.in); got != tc.want {
			t.Errorf("NormalizeForMatch(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDashes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"journal - though", "journal, though"},
		{"one -- two", "one, two"},
		{"meat-hook stays", "meat-hook stays"},
		{"a - b - c", "a, b, c"},
	}
	for _, tc := range cases {
		if got := textutil.NormalizeDashes(tc.in); got != tc.want {
			t.Errorf("NormalizeDashes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanLineQuotedSpans(t *testing.T) {
	c := textutil.NewCleaner(nil)

	got := c.CleanLine(`He says, "You okay?" Then, "Go."`)
	if got != "You okay? Go." {
		t.Fatalf("expected quoted spans only, got %q", got)
	}
}

func TestCleanLineEnclosingQuotes(t *testing.T) {
	c := textutil.NewCleaner(nil)

	if got := c.CleanLine(`"Wait."`); got != "Wait." {
		t.Fatalf("expected enclosing quotes stripped, got %q", got)
	}
}

func TestCleanLineEmphasisAndWhitespace(t *testing.T) {
	c := textutil.NewCleaner(nil)

	got := c.CleanLine("You *will* listen.\r\nNow.")
	if got != "You will listen. Now." {
		t.Fatalf("unexpected clean result: %q", got)
	}
}

func TestCleanLinePronunciationFixes(t *testing.T) {
	c := textutil.NewCleaner([]textutil.Fix{
		{From: "Pharod", To: "Fah-rod"},
		{From: "ye", To: "ya"},
	})

	got := c.CleanLine("Ask PHAROD, ye fool. Yellow is untouched.")
	if got != "Ask Fah-rod, ya fool. Yellow is untouched." {
		t.Fatalf("unexpected fix result: %q", got)
	}
}

func TestCleanSegmentStripsNotesAndTags(t *testing.T) {
	c := textutil.NewCleaner(nil)

	got := c.CleanSegment("^NNOTE: He nods <BANDAGES2> slowly.")
	if got != "He nods slowly." {
		t.Fatalf("unexpected segment result: %q", got)
	}
}

func TestCleanSegmentDropsPunctuationOnly(t *testing.T) {
	c := textutil.NewCleaner(nil)

	for _, in := range []string{"...", " -- ", "…", "   "} {
		if got := c.CleanSegment(in); got != "" {
			t.Errorf("CleanSegment(%q) = %q, want empty", in, got)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"DMORTE", "dmorte"},
		{"morte refs!", "morte_refs"},
		{"", "unknown"},
		{"__", "unknown"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
