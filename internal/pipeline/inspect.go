package pipeline

import (
	"context"
	"path/filepath"

	"autovo/internal/dialog"
	"autovo/internal/resolver"
	"autovo/internal/seeds"
	"autovo/internal/services"
	"autovo/internal/services/weidu"
	"autovo/internal/stringtable"
)

// LineReport is the dry-run listing for one dialog: what a run would
// resolve, without synthesizing anything or touching the string table.
type LineReport struct {
	Dialog   string
	Variants []string
	Lines    []resolver.Line
}

// Lines resolves candidate lines for a dialog without generating audio.
func (p *Pipeline) Lines(ctx context.Context, dialogName string) (*LineReport, error) {
	base := normalizeDialogName(dialogName)
	if base == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lines", "dialog name is required", nil)
	}
	ctx = services.WithDialog(ctx, base)

	oracle := stringtable.NewOracle(p.dec)
	lines, variants, decompiled, err := p.resolveLines(ctx, base, oracle, p.logger)
	if p.cfg.Decompiler.CleanupSources {
		if cleanupErr := weidu.Cleanup(decompiled); cleanupErr != nil {
			p.logger.Warn("decompile cleanup failed", "error", cleanupErr)
		}
	}
	if err != nil {
		return nil, err
	}
	return &LineReport{Dialog: base, Variants: variants, Lines: lines}, nil
}

// SeedReport describes the reference voices available for a dialog.
type SeedReport struct {
	Dialog      string
	RefDir      string
	Seeds       []seeds.Seed
	Baseline    string
	HasNarrator bool
}

// Seeds inspects the seed bank a run for this dialog would use.
func (p *Pipeline) Seeds(dialogName string) (*SeedReport, error) {
	base := normalizeDialogName(dialogName)
	if base == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "seeds", "dialog name is required", nil)
	}

	refDir := seeds.ResolveDir(p.cfg.Paths.VoicesDir, base, dialog.VoicePrefix(base), p.logger)
	bank, err := seeds.Load(refDir, p.logger)
	if err != nil {
		return nil, err
	}
	_, hasNarrator, err := seeds.LoadNarrator(filepath.Join(p.cfg.Paths.VoicesDir, "narrator_refs"), p.logger)
	if err != nil {
		return nil, err
	}
	return &SeedReport{
		Dialog:      base,
		RefDir:      refDir,
		Seeds:       bank.Seeds,
		Baseline:    bank.Baseline().Key,
		HasNarrator: hasNarrator,
	}, nil
}
