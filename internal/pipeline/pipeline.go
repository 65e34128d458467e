package pipeline

import (
	"log/slog"
	"math/rand"
	"time"

	"autovo/internal/config"
	"autovo/internal/logging"
	"autovo/internal/plan"
	"autovo/internal/services/voxcpm"
	"autovo/internal/services/weidu"
)

// Pipeline runs dialog voice-over generation end to end. Collaborators
// are injected so tests can substitute the external decompiler and
// synthesizer; the random source is injected so chunk parameters are
// reproducible.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	dec      weidu.Decompiler
	synth    voxcpm.Synthesizer
	provider plan.DecisionProvider
	rng      *rand.Rand
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithDecompiler overrides the dialog decompiler client.
func WithDecompiler(dec weidu.Decompiler) Option {
	return func(p *Pipeline) {
		if dec != nil {
			p.dec = dec
		}
	}
}

// WithSynthesizer overrides the synthesis client.
func WithSynthesizer(synth voxcpm.Synthesizer) Option {
	return func(p *Pipeline) {
		if synth != nil {
			p.synth = synth
		}
	}
}

// WithProvider overrides the regeneration decision provider.
func WithProvider(provider plan.DecisionProvider) Option {
	return func(p *Pipeline) {
		if provider != nil {
			p.provider = provider
		}
	}
}

// WithRand overrides the random source used for chunk intensity draws.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pipeline) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// New builds a pipeline from configuration, constructing the real
// external-tool clients unless options replace them.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		provider: plan.KeepExisting{},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.dec == nil {
		dec, err := weidu.New(cfg.Decompiler.Binary, cfg.Paths.GameDir, cfg.Decompiler.Language, cfg.Decompiler.ForceDecompile)
		if err != nil {
			return nil, err
		}
		p.dec = dec
	}
	if p.synth == nil {
		synth, err := voxcpm.New(cfg.Synthesis.Binary, cfg.Synthesis.Timeout, cfg.Synthesis.Normalize, cfg.Synthesis.Denoise)
		if err != nil {
			return nil, err
		}
		p.synth = synth
	}
	return p, nil
}
