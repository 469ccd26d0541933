package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/config"
	"github.com/sha367/smartPM/internal/logging"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "bizcase",
		Short: "Inspect business-case workbooks, projects and their change history",
		Long: `bizcase reads the same configuration, registry and workbooks as the
smartpm server. Use it to check how a workbook normalizes, list projects,
review the change log or write a project's backup workbook.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $SMARTPM_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newInspectCmd(opts),
		newProjectsCmd(opts),
		newHistoryCmd(opts),
		newSummaryCmd(opts),
		newFlushCmd(opts),
	)
	return rootCmd
}

func (o *options) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

func (o *options) logger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, io.Closer, error) {
	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:      level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Console:    cmd.ErrOrStderr(),
	})
}

// withState runs fn against a freshly loaded application state. The
// workbook watcher is never started for one-shot commands.
func (o *options) withState(cmd *cobra.Command, fn func(*app.State) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.Workbook.Watch = false

	logger, closer, err := o.logger(cmd, cfg)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer closer.Close()

	state, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer state.Close()

	return fn(state)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
