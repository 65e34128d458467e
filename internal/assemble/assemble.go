package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"autovo/internal/fileutil"
	"autovo/internal/resolver"
	"autovo/internal/seeds"
	"autovo/internal/segment"
	"autovo/internal/services"
	"autovo/internal/services/voxcpm"
	"autovo/internal/textutil"
	"autovo/internal/wavutil"
)

// Params are the fixed synthesis parameters used for assembly batches.
// Assembly always runs at baseline intensity so segment voices match.
type Params struct {
	CFG   float64
	Steps int
}

// Assembler drives per-segment synthesis and stitching.
type Assembler struct {
	synth     voxcpm.Synthesizer
	cleaner   *textutil.Cleaner
	fades     wavutil.FadeSpec
	inputFile string
	tmpDir    string
	logger    *slog.Logger
}

func New(synth voxcpm.Synthesizer, cleaner *textutil.Cleaner, fades wavutil.FadeSpec, inputFile, tmpDir string, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		synth:     synth,
		cleaner:   cleaner,
		fades:     fades,
		inputFile: inputFile,
		tmpDir:    tmpDir,
		logger:    logger.With("component", "assemble"),
	}
}

type segmentTask struct {
	line     resolver.Line
	segOrder int
	role     segment.Role
	text     string
	wavPath  string
}

// StitchMixed synthesizes every mixed line's segments in two per-role
// batches (character voice, narrator voice), then concatenates each line's
// segment clips in order and writes the faded result to destFor(line).
// Returns the number of lines rebuilt.
func (a *Assembler) StitchMixed(ctx context.Context, lines []resolver.Line, narratorSeed, characterSeed seeds.Seed, params Params, destFor func(resolver.Line) string) (int, error) {
	tasks := a.prepareTasks(lines)
	if len(tasks) == 0 {
		a.logger.Debug("no mixed narrator/character lines to stitch")
		return 0, nil
	}

	var characterTasks, narratorTasks []*segmentTask
	for _, t := range tasks {
		if t.role == segment.RoleCharacter {
			characterTasks = append(characterTasks, t)
		} else {
			narratorTasks = append(narratorTasks, t)
		}
	}

	if err := a.runSegmentBatch(ctx, characterTasks, characterSeed, params, "character"); err != nil {
		return 0, err
	}
	if err := a.runSegmentBatch(ctx, narratorTasks, narratorSeed, params, "narrator"); err != nil {
		return 0, err
	}

	byStrRef := make(map[int][]*segmentTask)
	for _, t := range tasks {
		byStrRef[t.line.StrRef] = append(byStrRef[t.line.StrRef], t)
	}

	count := 0
	for _, ln := range lines {
		segs := byStrRef[ln.StrRef]
		if len(segs) == 0 {
			continue
		}
		// Tasks were appended in segment order per line, so segs is
		// already ordered by segOrder.
		clips := make([]*wavutil.Clip, 0, len(segs))
		for _, t := range segs {
			clip, err := wavutil.ReadFile(t.wavPath)
			if err != nil {
				return count, services.Wrap(services.ErrTransient, "assemble", "stitch",
					fmt.Sprintf("reading segment for strref %d", ln.StrRef), err)
			}
			clips = append(clips, clip)
		}
		joined, err := wavutil.Concat(clips)
		if err != nil {
			return count, services.Wrap(services.ErrExternalTool, "assemble", "stitch",
				fmt.Sprintf("strref %d", ln.StrRef), err)
		}
		joined = wavutil.ApplyFades(joined, a.fades, a.logger)
		dest := destFor(ln)
		if err := wavutil.WriteFile(dest, joined); err != nil {
			return count, services.Wrap(services.ErrTransient, "assemble", "stitch",
				fmt.Sprintf("writing %s", filepath.Base(dest)), err)
		}
		a.logger.Debug("stitched mixed line", "strref", ln.StrRef, "asset", ln.AssetName, "segments", len(segs))
		count++
	}

	a.cleanupSegments(tasks)
	a.logger.Info("narration stitching complete", "lines", count)
	return count, nil
}

// NarratorOnly synthesizes pure narration lines with the narrator voice in
// one batch and moves the faded outputs into place. Returns the number of
// assets written.
func (a *Assembler) NarratorOnly(ctx context.Context, lines []resolver.Line, narratorSeed seeds.Seed, params Params, destFor func(resolver.Line) string) (int, error) {
	var pending []resolver.Line
	var texts []string
	for _, ln := range lines {
		cleaned := a.cleaner.CleanSegment(ln.Text)
		if cleaned == "" {
			continue
		}
		pending = append(pending, ln)
		texts = append(texts, cleaned)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	outDir := filepath.Join(a.tmpDir, "narrator_only")
	outputs, err := a.synth.Batch(ctx, voxcpm.BatchRequest{
		Texts:       texts,
		PromptAudio: narratorSeed.WAVPath,
		PromptText:  narratorSeed.Transcript,
		CFG:         params.CFG,
		Steps:       params.Steps,
		InputFile:   a.inputFile,
		OutputDir:   outDir,
	})
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "assemble", "narrator-only", "batch failed", err)
	}
	if len(outputs) != len(pending) {
		return 0, services.Wrap(services.ErrExternalTool, "assemble", "narrator-only",
			fmt.Sprintf("expected %d wavs, got %d", len(pending), len(outputs)), nil)
	}

	for i, ln := range pending {
		dest := destFor(ln)
		if err := fileutil.MoveFile(outputs[i], dest); err != nil {
			return i, services.Wrap(services.ErrTransient, "assemble", "narrator-only",
				fmt.Sprintf("moving output for strref %d", ln.StrRef), err)
		}
		if err := wavutil.FadeFile(dest, a.fades, a.logger); err != nil {
			return i, services.Wrap(services.ErrTransient, "assemble", "narrator-only",
				fmt.Sprintf("fading %s", filepath.Base(dest)), err)
		}
	}
	a.logger.Info("narrator-only generation complete", "lines", len(pending))
	return len(pending), nil
}

func (a *Assembler) prepareTasks(lines []resolver.Line) []*segmentTask {
	var tasks []*segmentTask
	for _, ln := range lines {
		segs := segment.Split(ln.Text)
		if segment.ClassifySegments(segs) != segment.ClassMixed {
			continue
		}
		order := 0
		for _, seg := range segs {
			cleaned := a.cleaner.CleanSegment(seg.Text)
			if cleaned == "" {
				continue
			}
			tasks = append(tasks, &segmentTask{
				line:     ln,
				segOrder: order,
				role:     seg.Role,
				text:     cleaned,
			})
			order++
		}
	}
	return tasks
}

func (a *Assembler) runSegmentBatch(ctx context.Context, tasks []*segmentTask, seed seeds.Seed, params Params, roleLabel string) error {
	if len(tasks) == 0 {
		return nil
	}
	texts := make([]string, len(tasks))
	for i, t := range tasks {
		texts[i] = t.text
	}
	outDir := filepath.Join(a.tmpDir, roleLabel)

	a.logger.Debug("submitting segment batch", "role", roleLabel, "segments", len(tasks))
	outputs, err := a.synth.Batch(ctx, voxcpm.BatchRequest{
		Texts:       texts,
		PromptAudio: seed.WAVPath,
		PromptText:  seed.Transcript,
		CFG:         params.CFG,
		Steps:       params.Steps,
		InputFile:   a.inputFile,
		OutputDir:   outDir,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "assemble", "segments",
			fmt.Sprintf("role %s", roleLabel), err)
	}
	if len(outputs) != len(tasks) {
		return services.Wrap(services.ErrExternalTool, "assemble", "segments",
			fmt.Sprintf("role %s: expected %d wavs, got %d", roleLabel, len(tasks), len(outputs)), nil)
	}
	for i, t := range tasks {
		t.wavPath = outputs[i]
	}
	return nil
}

func (a *Assembler) cleanupSegments(tasks []*segmentTask) {
	for _, t := range tasks {
		if t.wavPath == "" {
			continue
		}
		if err := os.Remove(t.wavPath); err != nil && !os.IsNotExist(err) {
			a.logger.Debug("segment cleanup failed", "path", t.wavPath, "error", err)
		}
	}
}
