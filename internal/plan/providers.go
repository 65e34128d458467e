package plan

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"autovo/internal/resolver"
)

// KeepExisting is the non-interactive provider: every existing asset is
// kept and no targeted pass runs. Used when stdin is not a terminal or
// prompting is disabled in config.
type KeepExisting struct{}

func (KeepExisting) KeepAllExisting(resolver.Line) (bool, error) { return true, nil }

func (KeepExisting) Decide(resolver.Line) (Decision, error) { return DecisionKeep, nil }

func (KeepExisting) NextTarget() (Target, bool, error) { return Target{}, false, nil }

// Terminal prompts the operator on the given streams, one question per
// line of input.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

func (t *Terminal) KeepAllExisting(line resolver.Line) (bool, error) {
	fmt.Fprintf(t.out, "Existing audio found (first: %s, strref %d).\n", line.AssetName, line.StrRef)
	answer, err := t.ask("Keep ALL existing audio without asking per line? [Y/n] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) Decide(line resolver.Line) (Decision, error) {
	fmt.Fprintf(t.out, "\n%s (strref %d)\n  %s\n", line.AssetName, line.StrRef, line.TTSText)
	for {
		answer, err := t.ask("[k]eep / [r]egenerate / [s]kip? [k] ")
		if err != nil {
			return DecisionKeep, err
		}
		switch strings.ToLower(answer) {
		case "", "k", "keep":
			return DecisionKeep, nil
		case "r", "regen", "regenerate":
			return DecisionRegenerate, nil
		case "s", "skip":
			return DecisionSkip, nil
		}
		fmt.Fprintln(t.out, "unrecognized answer")
	}
}

func (t *Terminal) NextTarget() (Target, bool, error) {
	substring, err := t.ask("\nRegenerate lines containing (blank to finish): ")
	if err != nil {
		return Target{}, false, err
	}
	if substring == "" {
		return Target{}, false, nil
	}
	cfg, err := t.ask("Intensity override (blank to keep scheduled): ")
	if err != nil {
		return Target{}, false, err
	}
	steps, err := t.ask("Inference steps override (blank to keep default): ")
	if err != nil {
		return Target{}, false, err
	}
	return Target{Substring: substring, CFG: cfg, Steps: steps}, true, nil
}

func (t *Terminal) ask(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}
