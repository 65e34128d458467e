package weidu

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/encoding/charmap"
)

// Decompiler defines the behaviour required by the pipeline.
type Decompiler interface {
	Decompile(ctx context.Context, basename string) (DecompiledDialog, error)
	TraifyTLK(ctx context.Context, outPath string) error
	ListDialogResources(ctx context.Context) ([]string, error)
	AudioRef(ctx context.Context, strref int) (string, error)
}

// Executor abstracts command execution for testability. dir is the working
// directory for the command; WeiDU resolves resources relative to the game
// root.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string, onOutput func(string)) error
}

// DecompiledDialog points at a dialog's source and translation files.
// Created reports whether this run produced the files (so cleanup can
// remove only what it made).
type DecompiledDialog struct {
	SourcePath      string
	TranslationPath string
	Created         bool
}

var (
	dlgResourcePattern = regexp.MustCompile(`(?i)\b([A-Za-z0-9_]+)\.DLG\b`)
	audioRefPattern    = regexp.MustCompile(`(?s)~.*?~\s*\[([^\]]+)\]`)
)

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

// Client wraps WeiDU CLI interactions for one game directory.
type Client struct {
	binary  string
	gameDir string
	lang    string
	force   bool
	exec    Executor

	mu        sync.Mutex
	resources []string
}

// New constructs a WeiDU client. lang selects the game language directory
// (e.g. en_us); force re-decompiles even when source files already exist.
func New(binary, gameDir, lang string, force bool, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("weidu binary required")
	}
	if strings.TrimSpace(gameDir) == "" {
		return nil, errors.New("game directory required")
	}
	if strings.TrimSpace(lang) == "" {
		lang = "en_us"
	}
	client := &Client{
		binary:  binary,
		gameDir: gameDir,
		lang:    lang,
		force:   force,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// TLKPath is the game's string table for the configured language.
func (c *Client) TLKPath() string {
	return filepath.Join(c.gameDir, "lang", c.lang, "dialog.tlk")
}

// Decompile produces <basename>.D and <basename>.TRA in the game dir.
// Existing files are reused unless the client was built with force.
func (c *Client) Decompile(ctx context.Context, basename string) (DecompiledDialog, error) {
	basename = strings.TrimSpace(basename)
	if basename == "" {
		return DecompiledDialog{}, errors.New("dialog basename required")
	}
	result := DecompiledDialog{
		SourcePath:      filepath.Join(c.gameDir, basename+".D"),
		TranslationPath: filepath.Join(c.gameDir, basename+".TRA"),
	}
	if !c.force && fileExists(result.SourcePath) && fileExists(result.TranslationPath) {
		return result, nil
	}

	args := []string{
		"--trans",
		"--transref",
		"--use-lang", c.lang,
		basename + ".DLG",
	}
	if err := c.exec.Run(ctx, c.gameDir, c.binary, args, nil); err != nil {
		return DecompiledDialog{}, fmt.Errorf("weidu decompile %s: %w", basename, err)
	}
	if !fileExists(result.SourcePath) || !fileExists(result.TranslationPath) {
		return DecompiledDialog{}, fmt.Errorf("weidu ran but %s.D or %s.TRA is missing", basename, basename)
	}
	result.Created = true
	return result, nil
}

// TraifyTLK dumps the whole string table to outPath in translation syntax
// (@strref = ~text~).
func (c *Client) TraifyTLK(ctx context.Context, outPath string) error {
	if !fileExists(c.TLKPath()) {
		return fmt.Errorf("dialog.tlk not found at %s", c.TLKPath())
	}
	tlkRel := filepath.Join("lang", c.lang, "dialog.tlk")
	outRel, err := filepath.Rel(c.gameDir, outPath)
	if err != nil {
		outRel = outPath
	}
	args := []string{
		"--traify-tlk", tlkRel,
		"--out", outRel,
	}
	if err := c.exec.Run(ctx, c.gameDir, c.binary, args, nil); err != nil {
		return fmt.Errorf("weidu traify-tlk: %w", err)
	}
	if !fileExists(outPath) {
		return fmt.Errorf("expected table dump at %s but it was not created", outPath)
	}
	return nil
}

// ListDialogResources enumerates every dialog resource the game knows,
// including ones packed in archives with no file on disk. The result is
// cached for the client's lifetime.
func (c *Client) ListDialogResources(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resources != nil {
		return c.resources, nil
	}

	var lines []string
	err := c.exec.Run(ctx, c.gameDir, c.binary, []string{"--list-files"}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil && len(lines) == 0 {
		return nil, fmt.Errorf("weidu list-files: %w", err)
	}

	seen := make(map[string]struct{})
	for _, line := range lines {
		for _, m := range dlgResourcePattern.FindAllStringSubmatch(line, -1) {
			seen[strings.ToUpper(m[1])] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	c.resources = names
	return names, nil
}

// AudioRef looks up the existing audio reference attached to a strref,
// returning "" when the entry has none.
func (c *Client) AudioRef(ctx context.Context, strref int) (string, error) {
	var buf strings.Builder
	args := []string{
		"--use-lang", c.lang,
		"--string", strconv.Itoa(strref),
	}
	err := c.exec.Run(ctx, c.gameDir, c.binary, args, func(line string) {
		buf.WriteString(line)
		buf.WriteString("\n")
	})
	if err != nil && buf.Len() == 0 {
		return "", fmt.Errorf("weidu string lookup %d: %w", strref, err)
	}
	m := audioRefPattern.FindStringSubmatch(buf.String())
	if m == nil {
		return "", nil
	}
	return strings.TrimSpace(m[1]), nil
}

// Cleanup removes the .D/.TRA files this run decompiled itself.
func Cleanup(dialogs []DecompiledDialog) error {
	var firstErr error
	for _, d := range dialogs {
		if !d.Created {
			continue
		}
		for _, path := range []string{d.SourcePath, d.TranslationPath} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ReadSourceFile reads a WeiDU-produced text file, decoding the game's
// cp1252 byte encoding to UTF-8.
func ReadSourceFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return string(decoded), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	var combined bytes.Buffer
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
	var mu sync.Mutex
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			combined.WriteString(line)
			combined.WriteString("\n")
			if onOutput != nil {
				onOutput(line)
			}
			mu.Unlock()
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
