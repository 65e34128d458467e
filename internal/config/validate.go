package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.GameDir) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/autovo/config.toml"
		}
		return fmt.Errorf("paths.game_dir is required. Edit %s (create with 'autovo config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.CFGMax < c.Synthesis.CFGMin {
		return errors.New("synthesis.cfg_max must be >= synthesis.cfg_min")
	}
	if c.Synthesis.Steps <= 0 {
		return errors.New("synthesis.inference_steps must be positive")
	}
	if c.Synthesis.SeedGroupSize <= 0 {
		return errors.New("synthesis.seed_group_size must be positive")
	}
	return nil
}
