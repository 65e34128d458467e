package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"autovo/internal/logging"
	"autovo/internal/pipeline"
)

func newSeedsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seeds <dialog>",
		Short: "Show the reference voices a run for this dialog would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			report, err := p.Seeds(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(report.Seeds))
			for _, seed := range report.Seeds {
				role := ""
				if seed.Key == report.Baseline {
					role = "baseline"
				}
				rows = append(rows, []string{
					seed.Key,
					filepath.Base(seed.WAVPath),
					truncate(seed.Transcript, 60),
					role,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d seeds in %s\n", report.Dialog, len(report.Seeds), report.RefDir)
			fmt.Fprintf(out, "Narrator voice available: %s\n", yesNo(report.HasNarrator))
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "File", "Transcript", "Role"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
