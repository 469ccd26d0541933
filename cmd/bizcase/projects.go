package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/spf13/cobra"
)

func newProjectsCmd(opts *options) *cobra.Command {
	var status, owner, department string
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List registered projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := project.ListOptions{Owner: owner, Department: department}
			if status != "" {
				parsed, err := project.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = parsed
			}

			return opts.withState(cmd, func(s *app.State) error {
				projects := s.Projects.List(cmd.Context(), filter)
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), projects)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTATUS\tOWNER\tNAME\tFILE")
				for _, p := range projects {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Status.Label(), p.Owner, p.Name, p.File)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only projects in this status (L0-L5)")
	cmd.Flags().StringVar(&owner, "owner", "", "Only projects with this owner")
	cmd.Flags().StringVar(&department, "department", "", "Only projects of this department")
	return cmd
}
