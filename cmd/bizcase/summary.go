package main

import (
	"fmt"

	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/domain/section"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show portfolio financial effect and target conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withState(cmd, func(s *app.State) error {
				summary := s.Summary(cmd.Context())
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), summary)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Projects: %d\n", summary.ProjectCount)
				for _, year := range section.RollupYears {
					fmt.Fprintf(out, "Effect %s: %.2f\n", year, summary.EffectByYear[year])
				}
				if summary.ConversionSamples == 0 {
					fmt.Fprintln(out, "Target conversion: no data")
				} else {
					fmt.Fprintf(out, "Target conversion: %.1f%% (%d projects)\n", summary.AvgTargetConversion*100, summary.ConversionSamples)
				}
				return nil
			})
		},
	}
}
