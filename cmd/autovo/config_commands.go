package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autovo/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set paths.game_dir before running autovo.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			rows := [][]string{
				{"paths.game_dir", cfg.Paths.GameDir},
				{"paths.voices_dir", cfg.Paths.VoicesDir},
				{"paths.work_dir", cfg.Paths.WorkDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"decompiler.binary", cfg.Decompiler.Binary},
				{"decompiler.language", cfg.Decompiler.Language},
				{"decompiler.cleanup_sources", yesNo(cfg.Decompiler.CleanupSources)},
				{"synthesis.binary", cfg.Synthesis.Binary},
				{"synthesis.inference_steps", fmt.Sprintf("%d", cfg.Synthesis.Steps)},
				{"synthesis.cfg_range", fmt.Sprintf("[%.2f, %.2f]", cfg.Synthesis.CFGMin, cfg.Synthesis.CFGMax)},
				{"synthesis.baseline_cfg", fmt.Sprintf("%.2f", cfg.Synthesis.BaselineCFG)},
				{"synthesis.seed_group_size", fmt.Sprintf("%d", cfg.Synthesis.SeedGroupSize)},
				{"generation.respect_existing_vo", yesNo(cfg.Generation.RespectExistingVO)},
				{"generation.ask_on_existing", yesNo(cfg.Generation.AskOnExisting)},
				{"generation.dedup_across_table", yesNo(cfg.Generation.DedupAcrossTable)},
				{"generation.narration_stitch", yesNo(cfg.Generation.NarrationStitch)},
				{"generation.fades_ms", fmt.Sprintf("%d / %d", cfg.Generation.FadeInMS, cfg.Generation.FadeOutMS)},
				{"generation.pronunciation_fixes", fmt.Sprintf("%d", len(cfg.Generation.PronunciationFixes))},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
