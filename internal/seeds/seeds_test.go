package seeds_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"autovo/internal/seeds"
	"autovo/internal/services"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDirectoryPairs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "calm.wav"), "RIFF")
	writeFile(t, filepath.Join(dir, "calm.txt"), "A calm reading.\n")
	writeFile(t, filepath.Join(dir, "angry.wav"), "RIFF")
	writeFile(t, filepath.Join(dir, "angry.txt"), "An angry reading.")
	writeFile(t, filepath.Join(dir, "orphan.wav"), "RIFF")

	bank, err := seeds.Load(dir, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := bank.Keys(); len(got) != 2 || got[0] != "angry" || got[1] != "calm" {
		t.Fatalf("keys = %v, want [angry calm]", got)
	}
	seed, ok := bank.ByKey("calm")
	if !ok || seed.Transcript != "A calm reading." {
		t.Fatalf("calm seed = %#v, ok=%v", seed, ok)
	}
}

func TestLoadEmptyTranscriptFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "calm.wav"), "RIFF")
	writeFile(t, filepath.Join(dir, "calm.txt"), "  \n")

	_, err := seeds.Load(dir, quietLogger())
	if err == nil {
		t.Fatal("expected error for empty transcript")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestLoadNoPairsFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "orphan.wav"), "RIFF")

	if _, err := seeds.Load(dir, quietLogger()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadSingleFileUsesFallbackTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voice.wav")
	writeFile(t, path, "RIFF")

	bank, err := seeds.Load(path, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(bank.Seeds) != 1 {
		t.Fatalf("seeds = %#v", bank.Seeds)
	}
	seed := bank.Seeds[0]
	if seed.Key != "voice" || seed.Transcript == "" {
		t.Fatalf("single-file seed = %#v", seed)
	}
}

func TestBaselinePicksLexicographicallyFirstWAV(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta", "Alpha", "mid"} {
		writeFile(t, filepath.Join(dir, name+".wav"), "RIFF")
		writeFile(t, filepath.Join(dir, name+".txt"), "text")
	}
	bank, err := seeds.Load(dir, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if base := bank.Baseline(); base.Key != "Alpha" {
		t.Fatalf("baseline = %q, want Alpha (case-insensitive name order)", base.Key)
	}
}

func TestResolveDirPrefersDialogOverVoice(t *testing.T) {
	base := t.TempDir()
	dialogDir := filepath.Join(base, "dmorte_refs")
	voiceDir := filepath.Join(base, "morte_refs")
	if err := os.MkdirAll(voiceDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := seeds.ResolveDir(base, "DMORTE", "MORTE", quietLogger()); got != voiceDir {
		t.Fatalf("with only voice dir present got %q, want %q", got, voiceDir)
	}

	if err := os.MkdirAll(dialogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := seeds.ResolveDir(base, "DMORTE", "MORTE", quietLogger()); got != dialogDir {
		t.Fatalf("dialog dir should win, got %q", got)
	}
}

func TestResolveDirMissingFallsBackToDialogPath(t *testing.T) {
	base := t.TempDir()
	want := filepath.Join(base, "dmorte_refs")
	if got := seeds.ResolveDir(base, "DMORTE", "MORTE", quietLogger()); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLoadNarratorDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.wav"), "RIFF")
	writeFile(t, filepath.Join(dir, "b.txt"), "Narration sample.")
	writeFile(t, filepath.Join(dir, "a.wav"), "RIFF")

	seed, ok, err := seeds.LoadNarrator(dir, quietLogger())
	if err != nil || !ok {
		t.Fatalf("LoadNarrator: ok=%v err=%v", ok, err)
	}
	if seed.Key != "b" || seed.Transcript != "Narration sample." {
		t.Fatalf("seed = %#v, want first paired wav", seed)
	}
}

func TestLoadNarratorMissingDisables(t *testing.T) {
	_, ok, err := seeds.LoadNarrator(filepath.Join(t.TempDir(), "absent"), quietLogger())
	if err != nil {
		t.Fatalf("missing narrator dir must not error: %v", err)
	}
	if ok {
		t.Fatal("missing narrator dir must disable stitching")
	}
}

func TestLoadNarratorEmptyTranscriptFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "n.wav"), "RIFF")
	writeFile(t, filepath.Join(dir, "n.txt"), " \n")

	seed, ok, err := seeds.LoadNarrator(dir, quietLogger())
	if err != nil || !ok {
		t.Fatalf("LoadNarrator: ok=%v err=%v", ok, err)
	}
	if seed.Transcript == "" {
		t.Fatal("expected placeholder transcript")
	}
}
