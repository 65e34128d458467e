package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"autovo/internal/textutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains game and output directory configuration.
type Paths struct {
	GameDir   string `toml:"game_dir"`
	VoicesDir string `toml:"voices_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
}

// Decompiler contains configuration for the WeiDU collaborator.
type Decompiler struct {
	Binary          string `toml:"binary"`
	Language        string `toml:"language"`
	ForceDecompile  bool   `toml:"force_decompile"`
	ForceRetraify   bool   `toml:"force_retraify"`
	CleanupSources  bool   `toml:"cleanup_sources"`
	LookupTimeout   int    `toml:"lookup_timeout"`
}

// Synthesis contains configuration for the VoxCPM collaborator.
type Synthesis struct {
	Binary        string  `toml:"binary"`
	Timeout       int     `toml:"timeout"`
	Steps         int     `toml:"inference_steps"`
	CFGMin        float64 `toml:"cfg_min"`
	CFGMax        float64 `toml:"cfg_max"`
	BaselineCFG   float64 `toml:"baseline_cfg"`
	SeedGroupSize int     `toml:"seed_group_size"`
	Normalize     bool    `toml:"normalize"`
	Denoise       bool    `toml:"denoise"`
}

// PronunciationFix is one whole-word substitution applied to synthesis
// text.
type PronunciationFix struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Generation contains pipeline behaviour toggles.
type Generation struct {
	RespectExistingVO  bool               `toml:"respect_existing_vo"`
	AskOnExisting      bool               `toml:"ask_on_existing"`
	DedupAcrossTable   bool               `toml:"dedup_across_table"`
	NarrationStitch    bool               `toml:"narration_stitch"`
	FadeInMS           int                `toml:"fade_in_ms"`
	FadeOutMS          int                `toml:"fade_out_ms"`
	PronunciationFixes []PronunciationFix `toml:"pronunciation_fixes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the pipeline.
//
// Configuration sections by subsystem:
//   - Paths: game root, reference voices, work and log directories
//   - Decompiler: WeiDU binary and dialog extraction behaviour
//   - Synthesis: VoxCPM binary and generation parameters
//   - Generation: existing-audio policy, dedup, stitching, fades,
//     pronunciation fixes
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Decompiler Decompiler `toml:"decompiler"`
	Synthesis  Synthesis  `toml:"synthesis"`
	Generation Generation `toml:"generation"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/autovo/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autovo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Fixes converts the configured pronunciation table into the cleaner's
// representation.
func (c *Config) Fixes() []textutil.Fix {
	fixes := make([]textutil.Fix, 0, len(c.Generation.PronunciationFixes))
	for _, f := range c.Generation.PronunciationFixes {
		fixes = append(fixes, textutil.Fix{From: f.From, To: f.To})
	}
	return fixes
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
