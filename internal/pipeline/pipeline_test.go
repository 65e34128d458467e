package pipeline_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"autovo/internal/config"
	"autovo/internal/logging"
	"autovo/internal/pipeline"
	"autovo/internal/services/voxcpm"
	"autovo/internal/services/weidu"
	"autovo/internal/testsupport"
	"autovo/internal/wavutil"
)

type fakeDecompiler struct {
	dir       string
	resources []string
	sources   map[string]string
	trans     map[string]string
	dump      string
	audio     map[int]string
}

func (f *fakeDecompiler) Decompile(ctx context.Context, basename string) (weidu.DecompiledDialog, error) {
	sourcePath := filepath.Join(f.dir, basename+".D")
	traPath := filepath.Join(f.dir, basename+".TRA")
	if err := os.WriteFile(sourcePath, []byte(f.sources[basename]), 0o644); err != nil {
		return weidu.DecompiledDialog{}, err
	}
	if err := os.WriteFile(traPath, []byte(f.trans[basename]), 0o644); err != nil {
		return weidu.DecompiledDialog{}, err
	}
	return weidu.DecompiledDialog{SourcePath: sourcePath, TranslationPath: traPath, Created: true}, nil
}

func (f *fakeDecompiler) TraifyTLK(ctx context.Context, outPath string) error {
	return os.WriteFile(outPath, []byte(f.dump), 0o644)
}

func (f *fakeDecompiler) ListDialogResources(ctx context.Context) ([]string, error) {
	return f.resources, nil
}

func (f *fakeDecompiler) AudioRef(ctx context.Context, strref int) (string, error) {
	return f.audio[strref], nil
}

type fakeSynth struct {
	batches int
}

func (f *fakeSynth) Batch(ctx context.Context, req voxcpm.BatchRequest) ([]string, error) {
	f.batches++
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, err
	}
	var outputs []string
	for i := range req.Texts {
		path := filepath.Join(req.OutputDir, fmt.Sprintf("out_%03d.wav", i))
		clip := &wavutil.Clip{
			SampleRate: 16000, BitDepth: 16, NumChannels: 1, AudioFormat: 1,
			Samples: make([]int, 320),
		}
		if err := wavutil.WriteFile(path, clip); err != nil {
			return nil, err
		}
		outputs = append(outputs, path)
	}
	sort.Strings(outputs)
	return outputs, nil
}

func (f *fakeSynth) Single(ctx context.Context, req voxcpm.SingleRequest) error {
	clip := &wavutil.Clip{
		SampleRate: 16000, BitDepth: 16, NumChannels: 1, AudioFormat: 1,
		Samples: make([]int, 320),
	}
	return wavutil.WriteFile(req.OutputPath, clip)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithoutStitching())
	refDir := filepath.Join(cfg.Paths.VoicesDir, "dmorte_refs")
	testsupport.WriteSeedPair(t, refDir, "calm", "A calm reference line.")
	return cfg
}

func newFakeDecompiler(t *testing.T) *fakeDecompiler {
	return &fakeDecompiler{
		dir:       t.TempDir(),
		resources: []string{"DMORTE"},
		sources: map[string]string{
			"DMORTE": "IF ~~ THEN BEGIN 0\n  SAY @1\nEND\nIF ~~ THEN BEGIN 1\n  SAY @2\nEND\n",
		},
		trans: map[string]string{
			"DMORTE": "@1 = #100 /* ~Hey chief.~ */\n@2 = #200 /* ~Wait.~ */\n",
		},
		dump:  "@100 = ~Hey chief.~\n@200 = ~Wait.~\n@300 = ~Wait.~\n",
		audio: map[int]string{},
	}
}

func newTestPipeline(t *testing.T, cfg *config.Config, dec *fakeDecompiler, synth *fakeSynth) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithDecompiler(dec),
		pipeline.WithSynthesizer(synth),
		pipeline.WithRand(rand.New(rand.NewSource(1))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestRunGeneratesAssetsAndManifest(t *testing.T) {
	cfg := testConfig(t)
	dec := newFakeDecompiler(t)
	synth := &fakeSynth{}
	p := newTestPipeline(t, cfg, dec, synth)

	result, err := p.Run(context.Background(), "dmorte")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Dialog != "DMORTE" || result.Generated != 2 || result.Kept != 0 {
		t.Errorf("result = %+v", result)
	}
	if result.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1 (strref 300 shares text with 200)", result.Duplicates)
	}

	paths := pipeline.NewPaths(cfg.Paths.WorkDir, "DMORTE")
	for _, asset := range []string{"MO000100", "MO000200"} {
		if _, err := os.Stat(paths.AssetPath(asset)); err != nil {
			t.Errorf("asset %s missing: %v", asset, err)
		}
	}

	raw, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "STRING_SET 300 ~Wait.~ [MO000200]") {
		t.Errorf("duplicate strref not in manifest:\n%s", content)
	}
	if got := strings.Count(content, "COPY ~autovo/autovo_dmorte/sounds/MO000200.wav~"); got != 1 {
		t.Errorf("shared asset copied %d times", got)
	}

	if _, err := os.Stat(result.PreviewPath); err != nil {
		t.Errorf("preview index missing: %v", err)
	}
	if _, err := os.Stat(paths.RunLogPath); err != nil {
		t.Errorf("run log missing: %v", err)
	}
}

func TestRunSecondPassKeepsExistingAssets(t *testing.T) {
	cfg := testConfig(t)
	dec := newFakeDecompiler(t)
	synth := &fakeSynth{}
	p := newTestPipeline(t, cfg, dec, synth)

	if _, err := p.Run(context.Background(), "DMORTE"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstBatches := synth.batches

	result, err := p.Run(context.Background(), "DMORTE")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Generated != 0 || result.Kept != 2 {
		t.Errorf("second run result = %+v, want all kept", result)
	}
	if synth.batches != firstBatches {
		t.Errorf("second run submitted %d extra batches", synth.batches-firstBatches)
	}
	if result.ManifestPath == "" {
		t.Error("manifest not rewritten on keep-only run")
	}
}

func TestRunCapturesAndRestoresBaselineTable(t *testing.T) {
	cfg := testConfig(t)
	dec := newFakeDecompiler(t)
	p := newTestPipeline(t, cfg, dec, &fakeSynth{})

	if _, err := p.Run(context.Background(), "DMORTE"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	baseline := filepath.Join(pipeline.BackupDir(cfg.Paths.WorkDir), "dialog.tlk.baseline")
	raw, err := os.ReadFile(baseline)
	if err != nil {
		t.Fatalf("baseline missing: %v", err)
	}
	if string(raw) != "tlk" {
		t.Errorf("baseline content = %q", raw)
	}

	// Simulate an installer mutating the live table; the next run must
	// restore the pristine copy before doing anything else.
	tlk := filepath.Join(cfg.Paths.GameDir, "lang", cfg.Decompiler.Language, "dialog.tlk")
	if err := os.WriteFile(tlk, []byte("tlk-patched"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background(), "DMORTE"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	live, err := os.ReadFile(tlk)
	if err != nil {
		t.Fatal(err)
	}
	if string(live) != "tlk" {
		t.Errorf("live table = %q, want restored baseline", live)
	}
}

func TestRunFailsWithoutStringTable(t *testing.T) {
	cfg := testConfig(t)
	tlk := filepath.Join(cfg.Paths.GameDir, "lang", cfg.Decompiler.Language, "dialog.tlk")
	if err := os.Remove(tlk); err != nil {
		t.Fatal(err)
	}
	p := newTestPipeline(t, cfg, newFakeDecompiler(t), &fakeSynth{})

	if _, err := p.Run(context.Background(), "DMORTE"); err == nil {
		t.Fatal("expected error when dialog.tlk is missing")
	}
}

func TestRunRejectsEmptyDialogName(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPipeline(t, cfg, newFakeDecompiler(t), &fakeSynth{})
	if _, err := p.Run(context.Background(), "  "); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewPaths(t *testing.T) {
	paths := pipeline.NewPaths("/work", "DMORTE")
	if paths.ModSubdir != "autovo_dmorte" || paths.ModID != "autovo/autovo_dmorte" {
		t.Errorf("paths = %+v", paths)
	}
	if paths.AssetPath("MO000100") != filepath.Join("/work", "autovo_dmorte", "sounds", "MO000100.wav") {
		t.Errorf("asset path = %s", paths.AssetPath("MO000100"))
	}
}
