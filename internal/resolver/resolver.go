package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"autovo/internal/dialog"
	"autovo/internal/stringtable"
	"autovo/internal/textutil"
)

// sentinelText marks state-machine placeholder entries that must never be
// voiced.
const sentinelText = "NULL NODE"

// Line is one dialog line scheduled to receive a synthesized asset.
// Identity is (LocalID, StrRef); StrRef is globally unique across the
// resolved set after duplicate propagation.
type Line struct {
	LocalID   int
	StrRef    int
	Text      string
	TTSText   string
	AssetName string

	// SeedKey is assigned by the scheduler.
	SeedKey string

	// Per-line overrides applied by the planner's targeted pass.
	CFGOverride   *float64
	StepsOverride *int
}

// AssetName derives the deterministic asset name for a string-reference: a
// two-character voice prefix followed by the zero-padded reference. The
// fixed-width numeric suffix guarantees no collisions within one prefix.
func AssetName(voicePrefix string, strref int) string {
	base := strings.ToUpper(strings.TrimSpace(voicePrefix))
	if len(base) < 2 {
		base = (base + "XX")[:2]
	} else {
		base = base[:2]
	}
	return fmt.Sprintf("%s%06d", base, strref)
}

// Report summarizes non-fatal exclusions from one resolution pass.
type Report struct {
	Gaps            []int
	SkippedExisting int
	SkippedSentinel int
}

// Resolver extracts candidate lines for one dialog variant.
type Resolver struct {
	oracle           *stringtable.Oracle
	cleaner          *textutil.Cleaner
	voicePrefix      string
	overrideExisting bool
	logger           *slog.Logger
}

// New constructs a Resolver. When overrideExisting is false, entries whose
// string-reference already carries audio are excluded.
func New(oracle *stringtable.Oracle, cleaner *textutil.Cleaner, voicePrefix string, overrideExisting bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		oracle:           oracle,
		cleaner:          cleaner,
		voicePrefix:      voicePrefix,
		overrideExisting: overrideExisting,
		logger:           logger.With("component", "resolver"),
	}
}

// Resolve produces the candidate lines for one dialog variant from its
// decompiled source and translation blobs, ordered by local id.
func (r *Resolver) Resolve(ctx context.Context, variant, source, translation string) ([]Line, Report, error) {
	speakRefs := dialog.ParseSpeakRefs(source)
	entries, gaps := dialog.Resolve(speakRefs, dialog.ParseTranslation(translation))

	report := Report{Gaps: gaps}
	if len(gaps) > 0 {
		r.logger.Warn("speak references missing translation entries",
			"dialog", variant, "missing", len(gaps))
	}

	lines := make([]Line, 0, len(entries))
	for _, entry := range entries {
		audioRef, err := r.oracle.AudioRef(ctx, entry.StrRef)
		if err != nil {
			return nil, report, fmt.Errorf("existing audio lookup for strref %d: %w", entry.StrRef, err)
		}
		if audioRef != "" {
			if !r.overrideExisting {
				report.SkippedExisting++
				r.logger.Debug("skipping line with existing audio",
					"dialog", variant, "strref", entry.StrRef, "audio", audioRef)
				continue
			}
			r.logger.Debug("overriding existing audio",
				"dialog", variant, "strref", entry.StrRef, "audio", audioRef)
		}

		ttsText := r.cleaner.CleanLine(entry.Text)
		if strings.EqualFold(textutil.NormalizeForMatch(ttsText), sentinelText) {
			report.SkippedSentinel++
			r.logger.Debug("skipping sentinel entry", "dialog", variant, "strref", entry.StrRef)
			continue
		}

		lines = append(lines, Line{
			LocalID:   entry.LocalID,
			StrRef:    entry.StrRef,
			Text:      entry.Text,
			TTSText:   ttsText,
			AssetName: AssetName(r.voicePrefix, entry.StrRef),
		})
	}

	r.logger.Info("resolved speakable lines",
		"dialog", variant, "lines", len(lines),
		"skipped_existing", report.SkippedExisting)
	return lines, report, nil
}

// Dedupe removes repeated (StrRef, AssetName) pairs across variants,
// keeping first occurrence order.
func Dedupe(lines []Line) []Line {
	type key struct {
		strref int
		asset  string
	}
	seen := make(map[key]struct{}, len(lines))
	out := make([]Line, 0, len(lines))
	for _, ln := range lines {
		k := key{strref: ln.StrRef, asset: ln.AssetName}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ln)
	}
	return out
}
