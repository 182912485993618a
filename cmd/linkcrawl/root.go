package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkcrawl/internal/config"
)

// NewRootCmd creates the root command for linkcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkcrawl",
		Short: "Breadth-first web crawler that collects links",
		Long: `linkcrawl explores a website breadth-first from a start URL, follows
hyperlinks up to a maximum depth, and reports every URL it visited.

Seed URLs can be kept in crawler-config.yml (see 'linkcrawl init').
Results can be archived with --save and compared over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel,
		"Minimum log level: ERROR, WARNING, INFO, SUCCESS, ALL")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat,
		"Log output format: console, text, json")
	cmd.PersistentFlags().String("log-file", "",
		"Also write logs to this file")
	cmd.PersistentFlags().Bool("no-color", false,
		"Disable colored console logs")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
