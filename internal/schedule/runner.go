package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"autovo/internal/fileutil"
	"autovo/internal/resolver"
	"autovo/internal/seeds"
	"autovo/internal/services"
	"autovo/internal/services/voxcpm"
	"autovo/internal/wavutil"
)

// Runner executes chunks against the synthesizer and moves finished
// outputs into their final asset locations.
type Runner struct {
	synth     voxcpm.Synthesizer
	bank      *seeds.Bank
	inputFile string
	tmpDir    string
	fades     wavutil.FadeSpec
	logger    *slog.Logger
}

func NewRunner(synth voxcpm.Synthesizer, bank *seeds.Bank, inputFile, tmpDir string, fades wavutil.FadeSpec, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		synth:     synth,
		bank:      bank,
		inputFile: inputFile,
		tmpDir:    tmpDir,
		fades:     fades,
		logger:    logger.With("component", "schedule"),
	}
}

// Run synthesizes each chunk in order. Outputs map to chunk lines by
// lexicographic filename position; a count mismatch fails the chunk before
// any file is moved out of the temp dir. destFor yields the final path for
// a line's asset.
func (r *Runner) Run(ctx context.Context, chunks []Chunk, destFor func(resolver.Line) string) error {
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		seed, ok := r.bank.ByKey(chunk.SeedKey)
		if !ok {
			return services.Wrap(services.ErrValidation, "synthesis", "chunk",
				fmt.Sprintf("no seed data for key %q", chunk.SeedKey), nil)
		}

		texts := make([]string, len(chunk.Lines))
		for i, ln := range chunk.Lines {
			texts[i] = ln.TTSText
		}

		r.logger.Info("submitting synthesis chunk",
			"seed", chunk.SeedKey, "cfg", fmt.Sprintf("%.3f", chunk.CFG),
			"steps", chunk.Steps, "lines", len(chunk.Lines))

		outputs, err := r.synth.Batch(ctx, voxcpm.BatchRequest{
			Texts:       texts,
			PromptAudio: seed.WAVPath,
			PromptText:  seed.Transcript,
			CFG:         chunk.CFG,
			Steps:       chunk.Steps,
			InputFile:   r.inputFile,
			OutputDir:   r.tmpDir,
		})
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "synthesis", "chunk", "batch failed", err)
		}
		if len(outputs) != len(chunk.Lines) {
			return services.Wrap(services.ErrExternalTool, "synthesis", "chunk",
				fmt.Sprintf("output count %d does not match input count %d", len(outputs), len(chunk.Lines)), nil)
		}

		for i, ln := range chunk.Lines {
			dest := destFor(ln)
			if err := fileutil.MoveFile(outputs[i], dest); err != nil {
				return services.Wrap(services.ErrTransient, "synthesis", "chunk",
					fmt.Sprintf("moving %s", filepath.Base(outputs[i])), err)
			}
			if err := wavutil.FadeFile(dest, r.fades, r.logger); err != nil {
				return services.Wrap(services.ErrTransient, "synthesis", "chunk",
					fmt.Sprintf("fading %s", filepath.Base(dest)), err)
			}
			r.logger.Debug("asset generated", "strref", ln.StrRef, "asset", ln.AssetName, "path", dest)
		}
	}
	return nil
}
