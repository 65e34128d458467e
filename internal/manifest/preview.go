package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"autovo/internal/resolver"
)

// PreviewEntry is one row of the viewer index.
type PreviewEntry struct {
	StrRef int    `json:"strref"`
	ResRef string `json:"resref"`
	Text   string `json:"text"`
	WAV    string `json:"wav"`
}

// Preview is the vo_lines.json document consumed by the external preview
// tool.
type Preview struct {
	Dialog  string         `json:"dlg_basename"`
	ModID   string         `json:"mod_id"`
	RunID   string         `json:"run_id,omitempty"`
	Entries []PreviewEntry `json:"entries"`
}

// WritePreview writes vo_lines.json into modDir and returns its path.
// One entry per unique asset, ordered by string reference.
func WritePreview(modDir, modID, dialogBase, runID string, lines []resolver.Line) (string, error) {
	if err := os.MkdirAll(modDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure mod dir: %w", err)
	}

	seen := make(map[string]struct{}, len(lines))
	entries := make([]PreviewEntry, 0, len(lines))
	for _, ln := range lines {
		if _, ok := seen[ln.AssetName]; ok {
			continue
		}
		seen[ln.AssetName] = struct{}{}
		entries = append(entries, PreviewEntry{
			StrRef: ln.StrRef,
			ResRef: ln.AssetName,
			Text:   ln.Text,
			WAV:    "sounds/" + ln.AssetName + ".wav",
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StrRef < entries[j].StrRef })

	doc := Preview{Dialog: dialogBase, ModID: modID, RunID: runID, Entries: entries}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode preview index: %w", err)
	}
	raw = append(raw, '\n')

	previewPath := filepath.Join(modDir, "vo_lines.json")
	if err := os.WriteFile(previewPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("write preview index: %w", err)
	}
	return previewPath, nil
}
