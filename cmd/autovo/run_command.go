package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"autovo/internal/logging"
	"autovo/internal/pipeline"
	"autovo/internal/plan"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <dialog>",
		Short: "Generate voice-over for a dialog and package it",
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

			var provider plan.DecisionProvider = plan.KeepExisting{}
			if cfg.Generation.AskOnExisting && isatty.IsTerminal(os.Stdin.Fd()) {
				provider = plan.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			p, err := pipeline.New(cfg, logger, pipeline.WithProvider(provider))
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Dialog", "Variants", "Kept", "Generated", "Narrator", "Stitched", "Duplicates"},
				[][]string{{
					result.RunID,
					result.Dialog,
					strings.Join(result.Variants, ", "),
					strconv.Itoa(result.Kept),
					strconv.Itoa(result.Generated),
					strconv.Itoa(result.NarratorOnly),
					strconv.Itoa(result.Stitched),
					strconv.Itoa(result.Duplicates),
				}},
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Manifest: %s\n", result.ManifestPath)
			fmt.Fprintf(out, "Preview index: %s\n", result.PreviewPath)
			return nil
		},
	}
	return cmd
}
