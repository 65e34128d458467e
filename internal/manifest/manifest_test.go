package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autovo/internal/manifest"
	"autovo/internal/resolver"
)

func sampleLines() []resolver.Line {
	return []resolver.Line{
		{StrRef: 2002, Text: "Wait.", AssetName: "MO002002"},
		{StrRef: 1001, Text: "You okay, chief? ~stares~", AssetName: "MO001001"},
		// Duplicate-text reference sharing the first asset.
		{StrRef: 3003, Text: "Wait.", AssetName: "MO002002"},
	}
}

func TestWriteTP2(t *testing.T) {
	modDir := filepath.Join(t.TempDir(), "autovo_dmorte")
	path, err := manifest.WriteTP2(modDir, "autovo/autovo_dmorte", "dmorte", sampleLines())
	if err != nil {
		t.Fatalf("WriteTP2: %v", err)
	}
	if filepath.Base(path) != "setup-autovo_dmorte.tp2" {
		t.Errorf("manifest name = %s", filepath.Base(path))
	}
	if _, err := os.Stat(filepath.Join(modDir, "backup")); err != nil {
		t.Errorf("backup dir missing: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)

	if !strings.HasPrefix(content, "BACKUP ~autovo/autovo_dmorte/backup~\n") {
		t.Errorf("missing BACKUP header:\n%s", content)
	}
	if !strings.Contains(content, "BEGIN ~Auto-VO for DMORTE~") {
		t.Errorf("missing BEGIN header:\n%s", content)
	}

	if got := strings.Count(content, "COPY ~autovo/autovo_dmorte/sounds/MO002002.wav~ ~override/MO002002.wav~"); got != 1 {
		t.Errorf("shared asset copied %d times, want 1", got)
	}
	if !strings.Contains(content, "STRING_SET 1001 ~You okay, chief? `stares`~ [MO001001]") {
		t.Errorf("tilde not escaped:\n%s", content)
	}
	if !strings.Contains(content, "STRING_SET 2002 ~Wait.~ [MO002002]") ||
		!strings.Contains(content, "STRING_SET 3003 ~Wait.~ [MO002002]") {
		t.Errorf("duplicate strrefs must each get a STRING_SET:\n%s", content)
	}
}

func TestWriteTP2SkipsRepeatedPairs(t *testing.T) {
	lines := []resolver.Line{
		{StrRef: 1001, Text: "Hello.", AssetName: "MO001001"},
		{StrRef: 1001, Text: "Hello.", AssetName: "MO001001"},
	}
	path, err := manifest.WriteTP2(t.TempDir(), "autovo/autovo_dmorte", "dmorte", lines)
	if err != nil {
		t.Fatalf("WriteTP2: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if got := strings.Count(string(raw), "STRING_SET 1001"); got != 1 {
		t.Errorf("repeated pair emitted %d times, want 1", got)
	}
}

func TestWritePreview(t *testing.T) {
	modDir := t.TempDir()
	path, err := manifest.WritePreview(modDir, "autovo/autovo_dmorte", "DMORTE", "run-7", sampleLines())
	if err != nil {
		t.Fatalf("WritePreview: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc manifest.Preview
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if doc.Dialog != "DMORTE" || doc.ModID != "autovo/autovo_dmorte" || doc.RunID != "run-7" {
		t.Errorf("header = %+v", doc)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 unique assets", len(doc.Entries))
	}
	if doc.Entries[0].StrRef != 1001 || doc.Entries[1].StrRef != 2002 {
		t.Errorf("entries not ordered by strref: %+v", doc.Entries)
	}
	if doc.Entries[1].WAV != "sounds/MO002002.wav" {
		t.Errorf("wav path = %s", doc.Entries[1].WAV)
	}
}
