package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"autovo/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test,
// including a game directory carrying a dialog.tlk. It defaults common
// fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.GameDir = filepath.Join(base, "game")
	cfgVal.Paths.VoicesDir = filepath.Join(base, "voices")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	tlkDir := filepath.Join(cfgVal.Paths.GameDir, "lang", cfgVal.Decompiler.Language)
	if err := os.MkdirAll(tlkDir, 0o755); err != nil {
		t.Fatalf("mkdir tlk dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tlkDir, "dialog.tlk"), []byte("tlk"), 0o644); err != nil {
		t.Fatalf("write dialog.tlk: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutStitching disables narration stitching on the test config.
func WithoutStitching() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generation.NarrationStitch = false
	}
}

// WithFixedIntensity pins the intensity draw to a single value.
func WithFixedIntensity(cfg float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Synthesis.CFGMin = cfg
		b.cfg.Synthesis.CFGMax = cfg
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"weidu", "voxcpm"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
