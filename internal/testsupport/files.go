package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"autovo/internal/wavutil"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteClip writes a playable 16-bit mono PCM clip with the given number
// of frames, every sample set to value.
func WriteClip(t testing.TB, path string, frames, value int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	samples := make([]int, frames)
	for i := range samples {
		samples[i] = value
	}
	clip := &wavutil.Clip{
		SampleRate:  16000,
		BitDepth:    16,
		NumChannels: 1,
		AudioFormat: 1,
		Samples:     samples,
	}
	if err := wavutil.WriteFile(path, clip); err != nil {
		t.Fatalf("write clip %s: %v", path, err)
	}
}

// WriteSeedPair writes a (wav, txt) reference pair into dir under the
// given key name.
func WriteSeedPair(t testing.TB, dir, key, transcript string) {
	t.Helper()
	WriteClip(t, filepath.Join(dir, key+".wav"), 160, 1000)
	WriteFile(t, filepath.Join(dir, key+".txt"), transcript)
}
