package dialog_test

import (
	"reflect"
	"testing"

	"autovo/internal/dialog"
)

const sampleSource = `
BEGIN DMORTE

IF ~True()~ THEN BEGIN state0
  SAY @3
  IF ~~ THEN REPLY @7 GOTO state1
END

IF ~~ THEN BEGIN state1
  say @12
  SAY @3
END
`

const sampleTranslation = `
@3  = #41222 /* ~Hey, chief. You okay?~ [MRT002] */
@7  = #41223 /* ~"Leave me be."~ */
@12 = #41230 /* ~He shrugs. "Fine."~ */
`

func TestParseSpeakRefs(t *testing.T) {
	got := dialog.ParseSpeakRefs(sampleSource)
	want := []int{3, 12}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSpeakRefs = %v, want %v", got, want)
	}
}

func TestParseTranslation(t *testing.T) {
	entries := dialog.ParseTranslation(sampleTranslation)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	entry, ok := entries[3]
	if !ok {
		t.Fatal("missing entry for local id 3")
	}
	if entry.StrRef != 41222 {
		t.Errorf("entry 3 strref = %d, want 41222", entry.StrRef)
	}
	if entry.Text != "Hey, chief. You okay?" {
		t.Errorf("entry 3 text = %q", entry.Text)
	}
	if entries[12].Text != `He shrugs. "Fine."` {
		t.Errorf("entry 12 text = %q", entries[12].Text)
	}
}

func TestResolveReportsGaps(t *testing.T) {
	translations := dialog.ParseTranslation(sampleTranslation)
	entries, gaps := dialog.Resolve([]int{3, 5, 12}, translations)
	if len(entries) != 2 {
		t.Fatalf("expected 2 resolved entries, got %d", len(entries))
	}
	if !reflect.DeepEqual(gaps, []int{5}) {
		t.Fatalf("gaps = %v, want [5]", gaps)
	}
	if entries[0].LocalID != 3 || entries[1].LocalID != 12 {
		t.Fatalf("entries out of order: %#v", entries)
	}
}

func TestIsVariant(t *testing.T) {
	cases := []struct {
		base, name string
		want       bool
	}{
		{"DMORTE", "DMORTE", true},
		{"DMORTE", "DMORTE1", true},
		{"DMORTE", "DMORTEN", true},
		{"DMORTE", "dmorten", true},
		{"DMORTE", "DMORTENX", false},
		{"DMORTE", "DMORT", false},
		{"DMORTE", "DANNAH", false},
		{"DMORTE", "DMORTE_", false},
	}
	for _, tc := range cases {
		if got := dialog.IsVariant(tc.base, tc.name); got != tc.want {
			t.Errorf("IsVariant(%q, %q) = %v, want %v", tc.base, tc.name, got, tc.want)
		}
	}
}

func TestVariantsFallsBackToBase(t *testing.T) {
	got := dialog.Variants("DMORTE", nil)
	if !reflect.DeepEqual(got, []string{"DMORTE"}) {
		t.Fatalf("Variants fallback = %v", got)
	}
}

func TestVariantsFiltersAndSorts(t *testing.T) {
	known := []string{"DANNAH", "DMORTEN", "DMORTE", "DMORTE1", "DMORTEXX"}
	got := dialog.Variants("DMORTE", known)
	want := []string{"DMORTE", "DMORTE1", "DMORTEN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Variants = %v, want %v", got, want)
	}
}

func TestVoicePrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"DMORTE", "MORTE"},
		{"ANNA", "ANNA"},
		{"D2TEST", "D2TEST"},
		{"dmorte", "MORTE"},
	}
	for _, tc := range cases {
		if got := dialog.VoicePrefix(tc.in); got != tc.want {
			t.Errorf("VoicePrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
