package segment

import "strings"

// Role tags a span of a line as spoken by the narrator or the character.
type Role string

const (
	RoleNarrator  Role = "narrator"
	RoleCharacter Role = "character"
)

// Segment is one contiguous span of a line's raw text with its role.
// Order follows the position of the span within the line.
type Segment struct {
	Role Role
	Text string
}

// Split scans text left to right, toggling quote state on each literal
// quote character. Accumulated text is emitted with the role active before
// the toggle; whitespace-only accumulations are dropped. Text with no
// quote characters yields no segments.
//
// Split is a pure function: identical input always yields identical
// segments.
func Split(text string) []Segment {
	if !strings.ContainsRune(text, '"') {
		return nil
	}

	var segments []Segment
	var current strings.Builder
	inQuote := false

	emit := func() {
		if current.Len() == 0 {
			return
		}
		spanText := current.String()
		current.Reset()
		if strings.TrimSpace(spanText) == "" {
			return
		}
		role := RoleNarrator
		if inQuote {
			role = RoleCharacter
		}
		segments = append(segments, Segment{Role: role, Text: spanText})
	}

	for _, r := range text {
		if r == '"' {
			emit()
			inQuote = !inQuote
			continue
		}
		current.WriteRune(r)
	}
	emit()

	return segments
}

// Class is the scheduling category of a line derived from its segments.
type Class string

const (
	ClassNarratorOnly  Class = "narrator-only"
	ClassCharacterOnly Class = "character-only"
	ClassMixed         Class = "mixed"
)

// Classify derives the scheduling category for a line's raw text. A line
// with no quote characters is treated as character-only.
func Classify(text string) Class {
	return ClassifySegments(Split(text))
}

// ClassifySegments classifies pre-split segments.
func ClassifySegments(segments []Segment) Class {
	var hasNarrator, hasCharacter bool
	for _, seg := range segments {
		switch seg.Role {
		case RoleNarrator:
			hasNarrator = true
		case RoleCharacter:
			hasCharacter = true
		}
	}
	switch {
	case hasNarrator && hasCharacter:
		return ClassMixed
	case hasNarrator:
		return ClassNarratorOnly
	default:
		return ClassCharacterOnly
	}
}
