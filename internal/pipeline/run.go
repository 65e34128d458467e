package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"autovo/internal/assemble"
	"autovo/internal/dedup"
	"autovo/internal/dialog"
	"autovo/internal/fileutil"
	"autovo/internal/manifest"
	"autovo/internal/plan"
	"autovo/internal/resolver"
	"autovo/internal/schedule"
	"autovo/internal/seeds"
	"autovo/internal/segment"
	"autovo/internal/services"
	"autovo/internal/services/weidu"
	"autovo/internal/stringtable"
	"autovo/internal/textutil"
	"autovo/internal/wavutil"
)

// Result summarizes one completed run.
type Result struct {
	RunID        string
	Dialog       string
	Variants     []string
	Kept         int
	Generated    int
	NarratorOnly int
	Stitched     int
	Duplicates   int
	Lines        []resolver.Line
	ManifestPath string
	PreviewPath  string
}

// Run generates voice-over for one dialog and its variants. The manifest
// is written only after every asset exists; earlier failures leave the
// previous manifest untouched.
func (p *Pipeline) Run(ctx context.Context, dialogName string) (*Result, error) {
	base := normalizeDialogName(dialogName)
	if base == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run", "dialog name is required", nil)
	}

	runID := uuid.NewString()[:8]
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithDialog(ctx, base)
	logger := p.logger.With("run_id", runID, "dialog", base)

	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "run", "ensure directories", err)
	}

	workDir := p.cfg.Paths.WorkDir
	lock := flock.New(LockPath(workDir))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "lock", "acquire run lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "lock", "another run holds the work directory lock", nil)
	}
	defer func() { _ = lock.Unlock() }()

	paths := NewPaths(workDir, base)
	for _, dir := range []string{paths.ModDir, paths.SoundsDir, paths.TmpDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "run", "create mod directory", err)
		}
	}

	runLog, err := OpenRunLog(paths.RunLogPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "run", "open run log", err)
	}
	defer func() { _ = runLog.Close() }()
	runLog.Printf("run %s started for %s", runID, base)

	if err := p.snapshotStringTable(workDir, logger); err != nil {
		return nil, err
	}

	table, oracle, err := p.prepareStringTable(ctx, paths, logger)
	if err != nil {
		return nil, err
	}

	lines, variants, decompiled, err := p.resolveLines(ctx, base, oracle, logger)
	cleanupSources := func() {
		if p.cfg.Decompiler.CleanupSources {
			if err := weidu.Cleanup(decompiled); err != nil {
				logger.Warn("decompile cleanup failed", "error", err)
			}
		}
	}
	if err != nil {
		cleanupSources()
		return nil, err
	}
	if len(lines) == 0 {
		cleanupSources()
		return nil, services.Wrap(services.ErrValidation, "pipeline", "resolve", "no speakable lines found in any dialog variant", nil)
	}

	pl, err := plan.Build(lines, func(ln resolver.Line) bool {
		return fileExists(paths.AssetPath(ln.AssetName))
	}, p.cfg.Generation.AskOnExisting, p.provider, logger)
	if err != nil {
		cleanupSources()
		return nil, err
	}
	if err := pl.ApplyTargets(p.provider, logger); err != nil {
		cleanupSources()
		return nil, err
	}

	result := &Result{RunID: runID, Dialog: base, Variants: variants, Kept: len(pl.Keep)}

	if err := p.synthesize(ctx, base, paths, &pl, result, runLog, logger); err != nil {
		cleanupSources()
		return nil, err
	}

	voiced := append(append([]resolver.Line{}, pl.Keep...), pl.Regen...)
	if p.cfg.Generation.DedupAcrossTable && table != nil {
		expanded, err := dedup.Expand(ctx, voiced, table, oracle, logger)
		if err != nil {
			cleanupSources()
			return nil, services.Wrap(services.ErrExternalTool, "pipeline", "dedup", "duplicate propagation", err)
		}
		result.Duplicates = len(expanded) - len(voiced)
		voiced = expanded
	}
	result.Lines = voiced

	if err := p.emitManifest(ctx, base, paths, voiced, result, logger); err != nil {
		cleanupSources()
		return nil, err
	}
	runLog.Printf("run %s wrote manifest with %d lines (%d duplicates)", runID, len(voiced), result.Duplicates)

	cleanupSources()
	logger.Info("run complete",
		"kept", result.Kept, "generated", result.Generated,
		"narrator_only", result.NarratorOnly, "stitched", result.Stitched,
		"duplicates", result.Duplicates)
	return result, nil
}

// snapshotStringTable restores the pristine string table before the run
// mutates anything, creating the baseline on first contact, and keeps a
// timestamped copy of the live table.
func (p *Pipeline) snapshotStringTable(workDir string, logger *slog.Logger) error {
	tlk := p.tlkPath()
	if !fileExists(tlk) {
		return services.Wrap(services.ErrConfiguration, "pipeline", "snapshot", fmt.Sprintf("dialog.tlk not found at %s", tlk), nil)
	}

	backupDir := BackupDir(workDir)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "snapshot", "create backup directory", err)
	}

	baseline := filepath.Join(backupDir, "dialog.tlk.baseline")
	if fileExists(baseline) {
		if err := fileutil.CopyFileVerified(baseline, tlk); err != nil {
			return services.Wrap(services.ErrConfiguration, "pipeline", "snapshot", "restore baseline string table", err)
		}
		logger.Debug("restored baseline string table", "baseline", baseline)
	} else {
		if err := fileutil.CopyFileVerified(tlk, baseline); err != nil {
			return services.Wrap(services.ErrConfiguration, "pipeline", "snapshot", "create baseline string table", err)
		}
		logger.Info("captured baseline string table", "baseline", baseline)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	snapshot := filepath.Join(backupDir, "dialog-"+stamp+".tlk")
	if err := fileutil.CopyFile(tlk, snapshot); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "snapshot", "snapshot string table", err)
	}
	return nil
}

// prepareStringTable dumps and parses the global string table when
// duplicate propagation is enabled. Returns nils when disabled.
func (p *Pipeline) prepareStringTable(ctx context.Context, paths Paths, logger *slog.Logger) (*stringtable.Table, *stringtable.Oracle, error) {
	oracle := stringtable.NewOracle(p.dec)
	if !p.cfg.Generation.DedupAcrossTable {
		return nil, oracle, nil
	}

	if !fileExists(paths.TranslationDump) || p.cfg.Decompiler.ForceRetraify {
		if err := p.dec.TraifyTLK(ctx, paths.TranslationDump); err != nil {
			return nil, nil, services.Wrap(services.ErrExternalTool, "pipeline", "traify", "dump string table", err)
		}
	}
	blob, err := weidu.ReadSourceFile(paths.TranslationDump)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrExternalTool, "pipeline", "traify", "read string table dump", err)
	}
	table := stringtable.Parse(blob)
	logger.Debug("parsed string table dump", "entries", table.Len())
	return table, oracle, nil
}

// resolveLines decompiles the dialog and every variant and resolves
// candidate lines, deduplicated across variants.
func (p *Pipeline) resolveLines(ctx context.Context, base string, oracle *stringtable.Oracle, logger *slog.Logger) ([]resolver.Line, []string, []weidu.DecompiledDialog, error) {
	var decompiled []weidu.DecompiledDialog

	known, err := p.dec.ListDialogResources(ctx)
	if err != nil {
		return nil, nil, decompiled, services.Wrap(services.ErrExternalTool, "pipeline", "resolve", "list dialog resources", err)
	}
	variants := dialog.Variants(base, known)

	cleaner := textutil.NewCleaner(p.cfg.Fixes())
	res := resolver.New(oracle, cleaner, dialog.VoicePrefix(base), !p.cfg.Generation.RespectExistingVO, logger)

	var all []resolver.Line
	for _, variant := range variants {
		dd, err := p.dec.Decompile(ctx, variant)
		if err != nil {
			return nil, variants, decompiled, services.Wrap(services.ErrExternalTool, "pipeline", "decompile", variant, err)
		}
		decompiled = append(decompiled, dd)

		source, err := weidu.ReadSourceFile(dd.SourcePath)
		if err != nil {
			return nil, variants, decompiled, services.Wrap(services.ErrExternalTool, "pipeline", "decompile", "read dialog source", err)
		}
		translation, err := weidu.ReadSourceFile(dd.TranslationPath)
		if err != nil {
			return nil, variants, decompiled, services.Wrap(services.ErrExternalTool, "pipeline", "decompile", "read dialog translation", err)
		}

		variantLines, _, err := res.Resolve(ctx, variant, source, translation)
		if err != nil {
			return nil, variants, decompiled, err
		}
		all = append(all, variantLines...)
	}

	return resolver.Dedupe(all), variants, decompiled, nil
}

// synthesize generates audio for every planned line: seeded chunks for
// character lines, narrator voice for narration, and two-voice stitching
// for mixed lines.
func (p *Pipeline) synthesize(ctx context.Context, base string, paths Paths, pl *plan.Plan, result *Result, runLog *RunLog, logger *slog.Logger) error {
	ctx = services.WithStage(ctx, "synthesis")
	if len(pl.Regen) == 0 {
		logger.Info("nothing to synthesize, all lines kept")
		return nil
	}

	refDir := seeds.ResolveDir(p.cfg.Paths.VoicesDir, base, dialog.VoicePrefix(base), logger)
	bank, err := seeds.Load(refDir, logger)
	if err != nil {
		return err
	}
	narratorSeed, hasNarrator, err := seeds.LoadNarrator(filepath.Join(p.cfg.Paths.VoicesDir, "narrator_refs"), logger)
	if err != nil {
		return err
	}

	stitchEnabled := p.cfg.Generation.NarrationStitch && hasNarrator
	var narrOnly, charOnly, mixed []resolver.Line
	if stitchEnabled {
		for _, ln := range pl.Regen {
			switch segment.Classify(ln.Text) {
			case segment.ClassNarratorOnly:
				narrOnly = append(narrOnly, ln)
			case segment.ClassMixed:
				mixed = append(mixed, ln)
			default:
				charOnly = append(charOnly, ln)
			}
		}
	} else {
		charOnly = pl.Regen
	}

	fades := wavutil.FadeSpec{InMS: p.cfg.Generation.FadeInMS, OutMS: p.cfg.Generation.FadeOutMS}
	params := schedule.Params{
		Steps:         p.cfg.Synthesis.Steps,
		CFGMin:        p.cfg.Synthesis.CFGMin,
		CFGMax:        p.cfg.Synthesis.CFGMax,
		BaselineCFG:   p.cfg.Synthesis.BaselineCFG,
		SeedGroupSize: p.cfg.Synthesis.SeedGroupSize,
	}
	destFor := func(ln resolver.Line) string { return paths.AssetPath(ln.AssetName) }

	if len(charOnly) > 0 {
		sched := schedule.New(params, p.rng, logger)
		var chunks []schedule.Chunk
		if firstRun(paths.SoundsDir) {
			logger.Info("no existing audio found, baseline mode enabled")
			chunks = sched.BuildBaseline(charOnly, bank.Baseline())
		} else {
			chunks, err = sched.Build(charOnly, bank)
			if err != nil {
				return err
			}
		}
		for _, chunk := range chunks {
			runLog.Printf("chunk seed=%s cfg=%.3f steps=%d lines=%d", chunk.SeedKey, chunk.CFG, chunk.Steps, len(chunk.Lines))
		}
		runner := schedule.NewRunner(p.synth, bank, paths.InputFile, paths.TmpDir, fades, logger)
		if err := runner.Run(ctx, chunks, destFor); err != nil {
			return err
		}
		result.Generated += len(charOnly)
	}

	asm := assemble.New(p.synth, textutil.NewCleaner(p.cfg.Fixes()), fades, paths.InputFile, paths.TmpDir, logger)
	asmParams := assemble.Params{CFG: p.cfg.Synthesis.BaselineCFG, Steps: p.cfg.Synthesis.Steps}

	if len(narrOnly) > 0 {
		count, err := asm.NarratorOnly(ctx, narrOnly, narratorSeed, asmParams, destFor)
		if err != nil {
			return err
		}
		result.NarratorOnly = count
		result.Generated += count
	}
	if len(mixed) > 0 {
		count, err := asm.StitchMixed(ctx, mixed, narratorSeed, bank.Baseline(), asmParams, destFor)
		if err != nil {
			return err
		}
		result.Stitched = count
		result.Generated += count
	}

	for _, ln := range pl.Regen {
		runLog.Printf("asset %s strref=%d", ln.AssetName, ln.StrRef)
	}
	return nil
}

// emitManifest writes the tp2 manifest, preview index, and registry
// records. Every referenced asset must already exist on disk.
func (p *Pipeline) emitManifest(ctx context.Context, base string, paths Paths, voiced []resolver.Line, result *Result, logger *slog.Logger) error {
	ctx = services.WithStage(ctx, "manifest")
	for _, ln := range voiced {
		if !fileExists(paths.AssetPath(ln.AssetName)) {
			return services.Wrap(services.ErrValidation, "pipeline", "manifest",
				fmt.Sprintf("asset %s referenced by strref %d does not exist", ln.AssetName, ln.StrRef), nil)
		}
	}

	tp2Path, err := manifest.WriteTP2(paths.ModDir, paths.ModID, base, voiced)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "manifest", "write tp2", err)
	}
	previewPath, err := manifest.WritePreview(paths.ModDir, paths.ModID, base, result.RunID, voiced)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "manifest", "write preview index", err)
	}

	registry, err := manifest.OpenRegistry(RegistryPath(p.cfg.Paths.WorkDir))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "manifest", "open asset registry", err)
	}
	defer func() { _ = registry.Close() }()
	if err := registry.Record(ctx, result.RunID, base, voiced); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "manifest", "record asset links", err)
	}

	result.ManifestPath = tp2Path
	result.PreviewPath = previewPath
	logger.Info("manifest written", "tp2", tp2Path, "preview", previewPath)
	return nil
}

func (p *Pipeline) tlkPath() string {
	return filepath.Join(p.cfg.Paths.GameDir, "lang", p.cfg.Decompiler.Language, "dialog.tlk")
}

func normalizeDialogName(name string) string {
	base := strings.ToUpper(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, ".DLG")
	return base
}

func firstRun(soundsDir string) bool {
	entries, err := os.ReadDir(soundsDir)
	if err != nil {
		return true
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
