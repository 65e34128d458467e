package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autovo/internal/logging"
	"autovo/internal/pipeline"
)

func newLinesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lines <dialog>",
		Short: "List the lines a run would voice, without generating audio",
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
			report, err := p.Lines(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(report.Lines))
			for _, ln := range report.Lines {
				rows = append(rows, []string{
					strconv.Itoa(ln.StrRef),
					ln.AssetName,
					truncate(ln.TTSText, 70),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d lines across %s\n", report.Dialog, len(report.Lines), strings.Join(report.Variants, ", "))
			fmt.Fprintln(out, renderTable(
				[]string{"StrRef", "Asset", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
