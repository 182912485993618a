package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/linkcrawl/internal/config"
	"github.com/nao1215/linkcrawl/internal/log"
)

// stringFlag returns the value of a local or inherited flag, or def when
// the command was built without it.
func stringFlag(cmd *cobra.Command, name, def string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return def
}

// boolFlag is stringFlag for booleans.
func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	return err == nil && v
}

// applyLogFlags copies the global logging flags into cfg.
func applyLogFlags(cmd *cobra.Command, cfg *config.Config) {
	cfg.LogLevel = stringFlag(cmd, "log-level", config.DefaultLogLevel)
	cfg.LogFormat = stringFlag(cmd, "log-format", config.DefaultLogFormat)
	cfg.LogFile = stringFlag(cmd, "log-file", "")
}

// newLogger builds the sink for a validated configuration. Logs go to the
// command's error stream so that reports on stdout stay clean.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*log.Sink, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.New(log.Options{
		Level:   level,
		Format:  log.Format(cfg.LogFormat),
		Output:  cmd.ErrOrStderr(),
		File:    cfg.LogFile,
		NoColor: boolFlag(cmd, "no-color"),
	})
}
