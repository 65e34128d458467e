package voxcpm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"autovo/internal/fileutil"
)

// Synthesizer defines the behaviour required by the scheduling and
// assembly stages.
type Synthesizer interface {
	Batch(ctx context.Context, req BatchRequest) ([]string, error)
	Single(ctx context.Context, req SingleRequest) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// BatchRequest synthesizes N texts in one invocation. Outputs land in
// OutputDir and correspond to Texts positionally when read in lexicographic
// filename order.
type BatchRequest struct {
	Texts       []string
	PromptAudio string
	PromptText  string
	CFG         float64
	Steps       int
	InputFile   string
	OutputDir   string
}

// SingleRequest synthesizes one text directly to OutputPath.
type SingleRequest struct {
	Text        string
	PromptAudio string
	PromptText  string
	CFG         float64
	Steps       int
	OutputPath  string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps VoxCPM CLI interactions.
type Client struct {
	binary    string
	normalize bool
	denoise   bool
	timeout   time.Duration
	exec      Executor
}

// New constructs a VoxCPM client.
func New(binary string, timeoutSeconds int, normalize, denoise bool, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("voxcpm binary required")
	}
	client := &Client{
		binary:    binary,
		normalize: normalize,
		denoise:   denoise,
		timeout:   time.Duration(timeoutSeconds) * time.Second,
		exec:      commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Batch runs one chunk. The input texts are joined with newlines into
// req.InputFile, any stale wav files in req.OutputDir are removed first,
// and the resulting wav paths come back sorted by filename. Output count
// is not validated here; the caller owns the count-matches-input invariant.
func (c *Client) Batch(ctx context.Context, req BatchRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return nil, errors.New("batch request has no texts")
	}
	if req.InputFile == "" || req.OutputDir == "" {
		return nil, errors.New("batch request requires input file and output dir")
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := fileutil.RemoveByExt(req.OutputDir, ".wav"); err != nil {
		return nil, fmt.Errorf("clear output dir: %w", err)
	}
	if err := os.WriteFile(req.InputFile, []byte(strings.Join(req.Texts, "\n")), 0o644); err != nil {
		return nil, fmt.Errorf("write input file: %w", err)
	}

	args := []string{
		"--input", req.InputFile,
		"--output-dir", req.OutputDir,
	}
	args = c.appendCommonArgs(args, req.PromptAudio, req.PromptText, req.CFG, req.Steps)

	if err := c.run(ctx, args); err != nil {
		return nil, fmt.Errorf("voxcpm batch: %w", err)
	}
	return collectWAVs(req.OutputDir)
}

// Single synthesizes one text straight to req.OutputPath.
func (c *Client) Single(ctx context.Context, req SingleRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return errors.New("single request has no text")
	}
	if req.OutputPath == "" {
		return errors.New("single request requires output path")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	args := []string{
		"--text", req.Text,
		"--output", req.OutputPath,
	}
	args = c.appendCommonArgs(args, req.PromptAudio, req.PromptText, req.CFG, req.Steps)

	if err := c.run(ctx, args); err != nil {
		return fmt.Errorf("voxcpm single: %w", err)
	}
	return nil
}

func (c *Client) appendCommonArgs(args []string, promptAudio, promptText string, cfg float64, steps int) []string {
	args = append(args,
		"--prompt-audio", promptAudio,
		"--prompt-text", promptText,
		"--cfg-value", fmt.Sprintf("%.3f", cfg),
		"--inference-timesteps", strconv.Itoa(steps),
	)
	if c.normalize {
		args = append(args, "--normalize")
	}
	if c.denoise {
		args = append(args, "--denoise")
	}
	return args
}

func (c *Client) run(ctx context.Context, args []string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.exec.Run(ctx, c.binary, args, nil)
}

func collectWAVs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("inspect synthesis outputs: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onStdout != nil {
			onStdout(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, forward)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
