package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sha367/smartPM/internal/domain/section"
	"github.com/sha367/smartPM/internal/table"
	"github.com/sha367/smartPM/internal/workbook"
	"github.com/spf13/cobra"
)

type inspectedSheet struct {
	Name string `json:"name"`
	table.Record
}

func newInspectCmd(opts *options) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "inspect <xlsx>",
		Short: "Show how every sheet of a workbook normalizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger, closer, err := opts.logger(cmd, cfg)
			if err != nil {
				return fmt.Errorf("logging: %w", err)
			}
			defer closer.Close()

			loader := workbook.NewLoader(logger, workbook.WithPrefixer(section.PrefixFor))
			wb, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			if opts.json {
				sheets := make([]inspectedSheet, 0, len(wb.Order))
				for _, name := range wb.Order {
					sheets = append(sheets, inspectedSheet{Name: name, Record: wb.Sheets[name]})
				}
				return writeJSON(cmd.OutOrStdout(), sheets)
			}

			out := cmd.OutOrStdout()
			for i, name := range wb.Order {
				if i > 0 {
					fmt.Fprintln(out)
				}
				rec := wb.Sheets[name]
				fmt.Fprintf(out, "== %s (%d columns, %d rows)\n", name, len(rec.Columns), len(rec.Rows))
				printRecord(out, rec, rows)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "Rows to print per sheet (0 prints all)")
	return cmd
}

func printRecord(out io.Writer, rec table.Record, limit int) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rec.Columns, "\t"))
	for i, row := range rec.Rows {
		if limit > 0 && i >= limit {
			fmt.Fprintf(tw, "... %d more\n", len(rec.Rows)-limit)
			break
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}
