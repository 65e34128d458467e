package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autovo/internal/config"
)

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
game_dir = "` + dir + `"

[synthesis]
cfg_min = 1.6
cfg_max = 1.9

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Paths.GameDir != dir {
		t.Errorf("game_dir = %q", cfg.Paths.GameDir)
	}
	if want := filepath.Join(dir, "autovo"); cfg.Paths.WorkDir != want {
		t.Errorf("work_dir = %q, want derived %q", cfg.Paths.WorkDir, want)
	}
	if cfg.Synthesis.CFGMin != 1.6 || cfg.Synthesis.CFGMax != 1.9 {
		t.Errorf("cfg range = [%v, %v]", cfg.Synthesis.CFGMin, cfg.Synthesis.CFGMax)
	}
	if cfg.Synthesis.Steps != 15 || cfg.Synthesis.SeedGroupSize != 20 {
		t.Errorf("defaults not applied: steps=%d group=%d", cfg.Synthesis.Steps, cfg.Synthesis.SeedGroupSize)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if len(cfg.Generation.PronunciationFixes) == 0 {
		t.Error("default pronunciation fixes missing")
	}
}

func TestLoadMissingGameDirFails(t *testing.T) {
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected validation error without game_dir")
	}
}

func TestLoadExpandsTildePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
game_dir = "~/games/torment"
voices_dir = "~/voices"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "games", "torment"); cfg.Paths.GameDir != want {
		t.Errorf("game_dir = %q, want %q", cfg.Paths.GameDir, want)
	}
	if want := filepath.Join(dir, "voices"); cfg.Paths.VoicesDir != want {
		t.Errorf("voices_dir = %q, want %q", cfg.Paths.VoicesDir, want)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
game_dir = "` + dir + `"

[synthesis]
cfg_min = 2.0
cfg_max = 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "cfg_max") {
		t.Fatalf("expected cfg range error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, section := range []string{"[paths]", "[decompiler]", "[synthesis]", "[generation]", "[logging]"} {
		if !strings.Contains(string(raw), section) {
			t.Errorf("sample missing %s", section)
		}
	}
}

func TestFixesConversion(t *testing.T) {
	cfg := config.Default()
	fixes := cfg.Fixes()
	if len(fixes) == 0 {
		t.Fatal("no default fixes")
	}
	found := false
	for _, f := range fixes {
		if f.From == "Pharod" && f.To == "Fah-rod" {
			found = true
		}
	}
	if !found {
		t.Error("expected Pharod fix in defaults")
	}
}
