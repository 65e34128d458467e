package plan

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"autovo/internal/resolver"
)

// Decision is the operator's choice for one line with an existing asset.
type Decision int

const (
	DecisionKeep Decision = iota
	DecisionRegenerate
	DecisionSkip
)

// Target is one substring-scoped regeneration request. CFG and Steps are
// raw operator input; invalid values are ignored with a warning.
type Target struct {
	Substring string
	CFG       string
	Steps     string
}

// DecisionProvider supplies regeneration decisions. KeepAllExisting is
// consulted once, on the first line found with an existing asset; when it
// returns true all remaining existing-asset lines are kept without further
// prompting. NextTarget drives the optional substring pass and reports
// ok=false when the operator declines to search again.
type DecisionProvider interface {
	KeepAllExisting(line resolver.Line) (bool, error)
	Decide(line resolver.Line) (Decision, error)
	NextTarget() (Target, bool, error)
}

// Plan partitions lines into those keeping their current asset and those
// queued for synthesis. Skipped lines appear in neither set.
type Plan struct {
	Keep  []resolver.Line
	Regen []resolver.Line
}

// Build runs the per-line state machine. assetExists reports whether an
// asset is already on disk for the line; askOnExisting enables the
// interactive path for lines that have one.
func Build(lines []resolver.Line, assetExists func(resolver.Line) bool, askOnExisting bool, provider DecisionProvider, logger *slog.Logger) (Plan, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "plan")

	var p Plan
	keepAll := false
	askedGlobal := false

	for _, ln := range lines {
		if !assetExists(ln) {
			p.Regen = append(p.Regen, ln)
			continue
		}
		if !askOnExisting {
			p.Keep = append(p.Keep, ln)
			continue
		}

		if !askedGlobal {
			askedGlobal = true
			all, err := provider.KeepAllExisting(ln)
			if err != nil {
				return Plan{}, fmt.Errorf("keep-all decision: %w", err)
			}
			keepAll = all
			logger.Debug("global existing-audio choice", "keep_all", keepAll)
		}
		if keepAll {
			p.Keep = append(p.Keep, ln)
			continue
		}

		decision, err := provider.Decide(ln)
		if err != nil {
			return Plan{}, fmt.Errorf("per-line decision for strref %d: %w", ln.StrRef, err)
		}
		switch decision {
		case DecisionKeep:
			p.Keep = append(p.Keep, ln)
		case DecisionRegenerate:
			p.Regen = append(p.Regen, ln)
		case DecisionSkip:
			logger.Debug("line skipped entirely", "strref", ln.StrRef)
		}
	}

	return p, nil
}

// ApplyTargets runs the substring pass: each target force-moves matching
// lines (kept or regenerating) into the regenerate set and applies any
// parameter overrides to the matches. Repeats until the provider declines.
func (p *Plan) ApplyTargets(provider DecisionProvider, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "plan")

	for {
		target, ok, err := provider.NextTarget()
		if err != nil {
			return fmt.Errorf("targeted regeneration: %w", err)
		}
		if !ok {
			return nil
		}
		needle := strings.ToLower(strings.TrimSpace(target.Substring))
		if needle == "" {
			continue
		}

		cfg, steps := parseOverrides(target, logger)

		var kept []resolver.Line
		matched := 0
		for _, ln := range p.Keep {
			if strings.Contains(strings.ToLower(ln.Text), needle) {
				applyOverrides(&ln, cfg, steps)
				p.Regen = append(p.Regen, ln)
				matched++
				continue
			}
			kept = append(kept, ln)
		}
		p.Keep = kept

		for i := range p.Regen {
			if strings.Contains(strings.ToLower(p.Regen[i].Text), needle) {
				applyOverrides(&p.Regen[i], cfg, steps)
				matched++
			}
		}

		logger.Info("targeted regeneration pass",
			"substring", target.Substring, "matched", matched)
	}
}

func parseOverrides(target Target, logger *slog.Logger) (*float64, *int) {
	var cfg *float64
	var steps *int
	if raw := strings.TrimSpace(target.CFG); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			logger.Warn("invalid intensity override, ignoring", "value", raw)
		} else {
			cfg = &value
		}
	}
	if raw := strings.TrimSpace(target.Steps); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			logger.Warn("invalid steps override, ignoring", "value", raw)
		} else {
			steps = &value
		}
	}
	return cfg, steps
}

func applyOverrides(ln *resolver.Line, cfg *float64, steps *int) {
	if cfg != nil {
		ln.CFGOverride = cfg
	}
	if steps != nil {
		ln.StepsOverride = steps
	}
}
