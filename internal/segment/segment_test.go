package segment_test

import (
	"reflect"
	"testing"

	"autovo/internal/segment"
)

func TestSplitMixedLine(t *testing.T) {
	got := segment.Split(`He says, "You okay?" Then he leaves.`)
	want := []segment.Segment{
		{Role: segment.RoleNarrator, Text: "He says, "},
		{Role: segment.RoleCharacter, Text: "You okay?"},
		{Role: segment.RoleNarrator, Text: " Then he leaves."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestSplitNoQuotesYieldsNothing(t *testing.T) {
	if got := segment.Split("Plain line without quotes."); got != nil {
		t.Fatalf("expected no segments, got %#v", got)
	}
}

func TestSplitDropsWhitespaceSpans(t *testing.T) {
	got := segment.Split(`"First." "Second."`)
	want := []segment.Segment{
		{Role: segment.RoleCharacter, Text: "First."},
		{Role: segment.RoleCharacter, Text: "Second."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestSplitUnterminatedQuote(t *testing.T) {
	got := segment.Split(`She whispers, "Run`)
	want := []segment.Segment{
		{Role: segment.RoleNarrator, Text: "She whispers, "},
		{Role: segment.RoleCharacter, Text: "Run"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := `A "b" c "d" e`
	first := segment.Split(text)
	second := segment.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("Split should be a pure function of its input")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want segment.Class
	}{
		{`He says, "You okay?" Then he leaves.`, segment.ClassMixed},
		{`No quotes at all.`, segment.ClassCharacterOnly},
		{`"Pure speech."`, segment.ClassCharacterOnly},
		{`The door creaks open. Dust falls.`, segment.ClassCharacterOnly},
		{`The door creaks "and a voice" whispers.`, segment.ClassMixed},
	}
	for _, tc := range cases {
		if got := segment.Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestClassifyNarratorOnly(t *testing.T) {
	// A stage direction wrapped around empty quotes never happens; narrator
	// detection requires at least one quote elsewhere in the line.
	text := `The crowd parts. "" He stares.`
	if got := segment.Classify(text); got != segment.ClassNarratorOnly {
		t.Fatalf("Classify(%q) = %q, want narrator-only", text, got)
	}
}
