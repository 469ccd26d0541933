package main

import (
	"fmt"

	"github.com/sha367/smartPM/internal/app"
	"github.com/spf13/cobra"
)

func newFlushCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "flush <project>",
		Short: "Write a project's sections to its backup workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withState(cmd, func(s *app.State) error {
				if _, err := s.Projects.Get(cmd.Context(), args[0]); err != nil {
					return err
				}
				path, err := s.Sections.Flush(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
}
