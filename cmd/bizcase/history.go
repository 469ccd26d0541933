package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [project]",
		Short: "Show the change log, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := ""
			if len(args) == 1 {
				projectID = args[0]
			}

			return opts.withState(cmd, func(s *app.State) error {
				entries, err := s.Changes.Query(cmd.Context(), changelog.ListOptions{ProjectID: projectID, Limit: limit})
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no changes recorded")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIME\tUSER\tACTION\tPROJECT\tDETAILS")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.DateTime), e.User, e.Action, e.ProjectID, e.Details)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (0 prints all)")
	return cmd
}
