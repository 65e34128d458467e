package voxcpm_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autovo/internal/services/voxcpm"
)

type stubExecutor struct {
	binary  string
	args    []string
	outputs []string
	err     error
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, _ func(string)) error {
	s.binary = binary
	s.args = args
	if s.err != nil {
		return s.err
	}
	outDir := flagValue(args, "--output-dir")
	for _, name := range s.outputs {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("RIFF"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestBatchWritesInputAndCollectsSortedOutputs(t *testing.T) {
	dir := t.TempDir()
	stub := &stubExecutor{outputs: []string{"out_002.wav", "out_001.wav"}}
	client, err := voxcpm.New("voxcpm", 0, false, false, voxcpm.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := voxcpm.BatchRequest{
		Texts:       []string{"First line.", "Second line."},
		PromptAudio: "/refs/calm.wav",
		PromptText:  "A calm reading.",
		CFG:         1.7,
		Steps:       15,
		InputFile:   filepath.Join(dir, "input.txt"),
		OutputDir:   filepath.Join(dir, "tmp_batch"),
	}
	outputs, err := client.Batch(context.Background(), req)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}

	if len(outputs) != 2 {
		t.Fatalf("outputs = %v", outputs)
	}
	if filepath.Base(outputs[0]) != "out_001.wav" || filepath.Base(outputs[1]) != "out_002.wav" {
		t.Fatalf("outputs not in filename order: %v", outputs)
	}

	raw, err := os.ReadFile(req.InputFile)
	if err != nil {
		t.Fatalf("read input file: %v", err)
	}
	if string(raw) != "First line.\nSecond line." {
		t.Fatalf("input file = %q", raw)
	}

	if got := flagValue(stub.args, "--cfg-value"); got != "1.700" {
		t.Errorf("cfg flag = %q, want 1.700", got)
	}
	if got := flagValue(stub.args, "--inference-timesteps"); got != "15" {
		t.Errorf("steps flag = %q", got)
	}
	if got := flagValue(stub.args, "--prompt-audio"); got != "/refs/calm.wav" {
		t.Errorf("prompt audio flag = %q", got)
	}
	if hasFlag(stub.args, "--normalize") || hasFlag(stub.args, "--denoise") {
		t.Error("normalize/denoise flags must be absent when disabled")
	}
}

func TestBatchClearsStaleOutputs(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "tmp_batch")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "stale.wav"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	stub := &stubExecutor{outputs: []string{"fresh.wav"}}
	client, err := voxcpm.New("voxcpm", 0, false, false, voxcpm.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	outputs, err := client.Batch(context.Background(), voxcpm.BatchRequest{
		Texts:     []string{"Only line."},
		InputFile: filepath.Join(dir, "input.txt"),
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(outputs) != 1 || filepath.Base(outputs[0]) != "fresh.wav" {
		t.Fatalf("stale output survived: %v", outputs)
	}
}

func TestSingleAppendsToggleFlags(t *testing.T) {
	dir := t.TempDir()
	stub := &stubExecutor{}
	client, err := voxcpm.New("voxcpm", 0, true, true, voxcpm.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = client.Single(context.Background(), voxcpm.SingleRequest{
		Text:        "One line.",
		PromptAudio: "/refs/narrator.wav",
		PromptText:  "Narration sample.",
		CFG:         1.8,
		Steps:       15,
		OutputPath:  filepath.Join(dir, "sounds", "MO001001.wav"),
	})
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	if got := flagValue(stub.args, "--output"); !strings.HasSuffix(got, "MO001001.wav") {
		t.Errorf("output flag = %q", got)
	}
	if !hasFlag(stub.args, "--normalize") || !hasFlag(stub.args, "--denoise") {
		t.Error("expected normalize and denoise flags")
	}
	if got := flagValue(stub.args, "--cfg-value"); got != "1.800" {
		t.Errorf("cfg flag = %q", got)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := voxcpm.New("  ", 0, false, false); err == nil {
		t.Fatal("expected error for blank binary")
	}
}
