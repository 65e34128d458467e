package dedup

import (
	"context"
	"fmt"
	"log/slog"

	"autovo/internal/resolver"
	"autovo/internal/stringtable"
)

// Expand clones each resolved line onto every other string-reference whose
// table text normalizes identically. Clones carry the duplicate's own
// string-reference and raw text but reuse the matched line's synthesis
// text and asset name, so one physical asset serves all duplicates; the
// asset registry records the explicit asset-to-strref mapping.
//
// Duplicates that already carry audio are never overwritten. The input
// slice is not modified; the returned slice appends clones after the
// originals.
func Expand(ctx context.Context, resolved []resolver.Line, table *stringtable.Table, oracle *stringtable.Oracle, logger *slog.Logger) ([]resolver.Line, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dedup")

	if len(resolved) == 0 || table == nil {
		return resolved, nil
	}

	seen := make(map[int]struct{}, len(resolved))
	for _, ln := range resolved {
		seen[ln.StrRef] = struct{}{}
	}

	var extras []resolver.Line
	for _, ln := range resolved {
		baseText, ok := table.Text(ln.StrRef)
		if !ok {
			continue
		}
		for _, strref := range table.Matches(baseText) {
			if _, dup := seen[strref]; dup {
				continue
			}
			audioRef, err := oracle.AudioRef(ctx, strref)
			if err != nil {
				return nil, fmt.Errorf("existing audio lookup for duplicate strref %d: %w", strref, err)
			}
			if audioRef != "" {
				logger.Debug("duplicate already voiced, skipping",
					"strref", strref, "audio", audioRef)
				continue
			}

			dupText, ok := table.Text(strref)
			if !ok {
				dupText = ln.Text
			}
			extras = append(extras, resolver.Line{
				StrRef:    strref,
				Text:      dupText,
				TTSText:   ln.TTSText,
				AssetName: ln.AssetName,
			})
			seen[strref] = struct{}{}
		}
	}

	if len(extras) > 0 {
		logger.Info("propagated duplicates via text match", "added", len(extras))
	}
	out := make([]resolver.Line, 0, len(resolved)+len(extras))
	out = append(out, resolved...)
	out = append(out, extras...)
	return out, nil
}
