package seeds

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"autovo/internal/services"
)

// fallbackTranscript stands in when a single-file bank has no transcript
// beside it.
const fallbackTranscript = "Hey, chief. You okay? You playing corpse or you putting the blinds on the Dusties? " +
	"I thought you was a deader for sure."

const narratorFallbackTranscript = "Narrator voice reference."

// Seed is one reference voice: an audio sample plus the transcript of
// what it says.
type Seed struct {
	Key        string
	WAVPath    string
	Transcript string
}

// Bank is an ordered set of seeds for one speaker.
type Bank struct {
	Seeds []Seed
}

// Keys returns the seed keys in bank order.
func (b *Bank) Keys() []string {
	keys := make([]string, len(b.Seeds))
	for i, s := range b.Seeds {
		keys[i] = s.Key
	}
	return keys
}

// ByKey returns the seed with the given key.
func (b *Bank) ByKey(key string) (Seed, bool) {
	for _, s := range b.Seeds {
		if s.Key == key {
			return s, true
		}
	}
	return Seed{}, false
}

// Baseline returns the seed whose wav filename sorts first
// case-insensitively. Runs against a fresh sound set use only this seed
// so every line shares one voice until the operator curates further.
func (b *Bank) Baseline() Seed {
	best := b.Seeds[0]
	for _, s := range b.Seeds[1:] {
		if strings.ToLower(filepath.Base(s.WAVPath)) < strings.ToLower(filepath.Base(best.WAVPath)) {
			best = s
		}
	}
	return best
}

// ResolveDir picks the reference directory for a dialog: the dialog's own
// <basename>_refs wins over the shared <voiceprefix>_refs; when neither
// exists the dialog path is returned anyway so the caller can report a
// useful location to populate.
func ResolveDir(baseDir, dialogBase, voicePrefix string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	dialogPath := filepath.Join(baseDir, strings.ToLower(dialogBase)+"_refs")
	voicePath := filepath.Join(baseDir, strings.ToLower(voicePrefix)+"_refs")

	candidates := []string{dialogPath}
	if voicePath != dialogPath {
		candidates = append(candidates, voicePath)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			logger.Debug("using reference voice dir", "path", p)
			return p
		}
	}
	logger.Debug("reference voice dir missing, will use", "path", dialogPath)
	return dialogPath
}

// Load reads a seed bank from path. A regular file becomes a single-seed
// bank with the fallback transcript; a directory contributes every
// (wav, txt) pair it holds. Pairs with empty transcripts are an error,
// wavs without a transcript file are skipped.
func Load(path string, logger *slog.Logger) (*Bank, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "seeds")

	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "seeds", "load",
			fmt.Sprintf("reference voice path %s not found", path), err)
	}

	if !info.IsDir() {
		key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		logger.Debug("seed bank is a single file", "path", path)
		return &Bank{Seeds: []Seed{{Key: key, WAVPath: path, Transcript: fallbackTranscript}}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "seeds", "load",
			fmt.Sprintf("reading reference voice dir %s", path), err)
	}

	var bank Bank
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		wavPath := filepath.Join(path, entry.Name())
		txtPath := strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + ".txt"
		raw, err := os.ReadFile(txtPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, services.Wrap(services.ErrConfiguration, "seeds", "load",
				fmt.Sprintf("reading transcript %s", txtPath), err)
		}
		transcript := strings.TrimSpace(string(raw))
		if transcript == "" {
			return nil, services.Wrap(services.ErrValidation, "seeds", "load",
				fmt.Sprintf("transcript file is empty: %s", txtPath), nil)
		}
		bank.Seeds = append(bank.Seeds, Seed{
			Key:        strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			WAVPath:    wavPath,
			Transcript: transcript,
		})
	}

	if len(bank.Seeds) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "seeds", "load",
			fmt.Sprintf("no (wav, txt) pairs found in %s", path), nil)
	}
	sort.Slice(bank.Seeds, func(i, j int) bool { return bank.Seeds[i].Key < bank.Seeds[j].Key })
	logger.Debug("seed bank loaded", "path", path, "seeds", len(bank.Seeds))
	return &bank, nil
}

// LoadNarrator reads the narrator bank and returns its first usable seed.
// A missing bank disables narration stitching rather than failing: the
// returned ok is false and the error nil. A missing or empty transcript
// falls back to a fixed placeholder instead of erroring, since the
// narrator voice is shared across all dialogs.
func LoadNarrator(path string, logger *slog.Logger) (Seed, bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "seeds")

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("narrator refs missing, narration stitching disabled", "path", path)
			return Seed{}, false, nil
		}
		return Seed{}, false, services.Wrap(services.ErrConfiguration, "seeds", "narrator",
			fmt.Sprintf("stat %s", path), err)
	}

	if !info.IsDir() {
		transcript := narratorFallbackTranscript
		txtPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
		if raw, err := os.ReadFile(txtPath); err == nil {
			if t := strings.TrimSpace(string(raw)); t != "" {
				transcript = t
			}
		}
		return Seed{Key: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), WAVPath: path, Transcript: transcript}, true, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Seed{}, false, services.Wrap(services.ErrConfiguration, "seeds", "narrator",
			fmt.Sprintf("reading %s", path), err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if !strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}
		wavPath := filepath.Join(path, name)
		txtPath := strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + ".txt"
		raw, err := os.ReadFile(txtPath)
		if err != nil {
			continue
		}
		transcript := strings.TrimSpace(string(raw))
		if transcript == "" {
			transcript = narratorFallbackTranscript
		}
		logger.Debug("narrator seed selected", "wav", wavPath)
		return Seed{Key: strings.TrimSuffix(name, filepath.Ext(name)), WAVPath: wavPath, Transcript: transcript}, true, nil
	}

	logger.Debug("no narrator (wav, txt) pairs, narration stitching disabled", "path", path)
	return Seed{}, false, nil
}
