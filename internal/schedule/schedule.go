package schedule

import (
	"fmt"
	"log/slog"
	"math/rand"

	"autovo/internal/resolver"
	"autovo/internal/seeds"
)

// Params are the synthesis knobs shared by a whole run.
type Params struct {
	Steps         int
	CFGMin        float64
	CFGMax        float64
	BaselineCFG   float64
	SeedGroupSize int
}

// Chunk is one synthesizer invocation: every member line shares the seed,
// intensity, and step count, and outputs map back to lines positionally.
type Chunk struct {
	SeedKey string
	CFG     float64
	Steps   int
	Lines   []resolver.Line
}

// Scheduler assigns seeds and parameters to pending lines. The random
// source is injected so runs are reproducible under test.
type Scheduler struct {
	params Params
	rng    *rand.Rand
	logger *slog.Logger
}

func New(params Params, rng *rand.Rand, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Scheduler{params: params, rng: rng, logger: logger.With("component", "schedule")}
}

type chunkKey struct {
	seedKey string
	cfg     float64
	steps   int
}

// Build rotates pending lines through the seed bank in groups of
// SeedGroupSize, draws an intensity per line from [CFGMin, CFGMax] unless
// the line carries an override, and folds lines with identical
// (seed, intensity, steps) into one chunk. Chunks come back in
// first-appearance order and lines keep their input order within a chunk.
func (s *Scheduler) Build(lines []resolver.Line, bank *seeds.Bank) ([]Chunk, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	keys := bank.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("seed bank is empty")
	}
	groupSize := s.params.SeedGroupSize
	if groupSize <= 0 {
		groupSize = 1
	}

	index := make(map[chunkKey]int)
	var chunks []Chunk
	for i, ln := range lines {
		group := i / groupSize
		seedKey := keys[group%len(keys)]
		ln.SeedKey = seedKey

		cfg := s.drawCFG()
		if ln.CFGOverride != nil {
			cfg = *ln.CFGOverride
		}
		steps := s.params.Steps
		if ln.StepsOverride != nil {
			steps = *ln.StepsOverride
		}

		key := chunkKey{seedKey: seedKey, cfg: cfg, steps: steps}
		at, ok := index[key]
		if !ok {
			at = len(chunks)
			index[key] = at
			chunks = append(chunks, Chunk{SeedKey: seedKey, CFG: cfg, Steps: steps})
		}
		chunks[at].Lines = append(chunks[at].Lines, ln)
	}

	s.logger.Debug("built synthesis chunks", "lines", len(lines), "chunks", len(chunks))
	return chunks, nil
}

// BuildBaseline puts every line on the single baseline seed with the fixed
// baseline parameters. Used on a dialog's first-ever run so all lines share
// one voice identity before targeted regeneration diversifies it.
func (s *Scheduler) BuildBaseline(lines []resolver.Line, baseline seeds.Seed) []Chunk {
	if len(lines) == 0 {
		return nil
	}
	chunk := Chunk{SeedKey: baseline.Key, CFG: s.params.BaselineCFG, Steps: s.params.Steps}
	for _, ln := range lines {
		ln.SeedKey = baseline.Key
		chunk.Lines = append(chunk.Lines, ln)
	}
	s.logger.Debug("built baseline chunk", "lines", len(lines), "seed", baseline.Key)
	return []Chunk{chunk}
}

func (s *Scheduler) drawCFG() float64 {
	if s.params.CFGMax <= s.params.CFGMin {
		return s.params.CFGMin
	}
	return s.params.CFGMin + s.rng.Float64()*(s.params.CFGMax-s.params.CFGMin)
}
