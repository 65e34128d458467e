package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDecompiler()
	c.normalizeSynthesis()
	c.normalizeGeneration()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.GameDir = strings.TrimSpace(c.Paths.GameDir)
	if c.Paths.GameDir != "" {
		if c.Paths.GameDir, err = expandPath(c.Paths.GameDir); err != nil {
			return fmt.Errorf("paths.game_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.VoicesDir) == "" {
		c.Paths.VoicesDir = defaultVoicesDir
	}
	if c.Paths.VoicesDir, err = expandPath(c.Paths.VoicesDir); err != nil {
		return fmt.Errorf("paths.voices_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" && c.Paths.GameDir != "" {
		c.Paths.WorkDir = filepath.Join(c.Paths.GameDir, "autovo")
	}
	if c.Paths.WorkDir != "" {
		if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
			return fmt.Errorf("paths.work_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDecompiler() {
	c.Decompiler.Binary = strings.TrimSpace(c.Decompiler.Binary)
	if c.Decompiler.Binary == "" {
		c.Decompiler.Binary = defaultWeiduBinary
	}
	c.Decompiler.Language = strings.ToLower(strings.TrimSpace(c.Decompiler.Language))
	if c.Decompiler.Language == "" {
		c.Decompiler.Language = defaultLanguage
	}
	if c.Decompiler.LookupTimeout <= 0 {
		c.Decompiler.LookupTimeout = defaultLookupTimeout
	}
}

func (c *Config) normalizeSynthesis() {
	c.Synthesis.Binary = strings.TrimSpace(c.Synthesis.Binary)
	if c.Synthesis.Binary == "" {
		c.Synthesis.Binary = defaultVoxBinary
	}
	if c.Synthesis.Timeout <= 0 {
		c.Synthesis.Timeout = defaultVoxTimeout
	}
	if c.Synthesis.Steps <= 0 {
		c.Synthesis.Steps = defaultSteps
	}
	if c.Synthesis.CFGMin <= 0 {
		c.Synthesis.CFGMin = defaultCFGMin
	}
	if c.Synthesis.CFGMax <= 0 {
		c.Synthesis.CFGMax = defaultCFGMax
	}
	if c.Synthesis.BaselineCFG <= 0 {
		c.Synthesis.BaselineCFG = defaultBaselineCFG
	}
	if c.Synthesis.SeedGroupSize <= 0 {
		c.Synthesis.SeedGroupSize = defaultSeedGroupSize
	}
}

func (c *Config) normalizeGeneration() {
	if c.Generation.FadeInMS < 0 {
		c.Generation.FadeInMS = 0
	}
	if c.Generation.FadeOutMS < 0 {
		c.Generation.FadeOutMS = 0
	}
	if c.Generation.PronunciationFixes == nil {
		c.Generation.PronunciationFixes = defaultPronunciationFixes()
	}
	fixes := make([]PronunciationFix, 0, len(c.Generation.PronunciationFixes))
	for _, f := range c.Generation.PronunciationFixes {
		f.From = strings.TrimSpace(f.From)
		f.To = strings.TrimSpace(f.To)
		if f.From == "" {
			continue
		}
		fixes = append(fixes, f)
	}
	c.Generation.PronunciationFixes = fixes
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
