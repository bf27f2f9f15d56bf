package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath     string
	debugLog       string
	severity       []string
	nodes          []string
	include        []string
	exclude        []string
	includePattern string
	excludePattern string
	useRegexp      bool
	noFollow       bool
	absoluteTime   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mconsole [flags] <file>...",
		Short:         "Filtered live console for node logs",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, opts, args)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mconsole/config.toml)")
	flags.StringVar(&opts.debugLog, "debug-log", "", "write debug logging to this file")
	flags.StringSliceVarP(&opts.severity, "severity", "s", nil, "levels to show (debug,info,warn,error,fatal)")
	flags.StringSliceVarP(&opts.nodes, "node", "n", nil, "nodes to show (default all)")
	flags.StringSliceVarP(&opts.include, "include", "i", nil, "show only messages containing one of these")
	flags.StringSliceVarP(&opts.exclude, "exclude", "x", nil, "hide messages containing any of these")
	flags.StringVar(&opts.includePattern, "include-pattern", "", "include regular expression (with --regexp)")
	flags.StringVar(&opts.excludePattern, "exclude-pattern", "", "exclude regular expression (with --regexp)")
	flags.BoolVarP(&opts.useRegexp, "regexp", "r", false, "filter with regular expressions instead of literals")
	flags.BoolVar(&opts.noFollow, "no-follow", false, "do not watch files for new lines")
	flags.BoolVar(&opts.absoluteTime, "absolute", false, "show absolute timestamps")

	cmd.AddCommand(newExportCmd(opts), newConfigCmd())
	return cmd
}

// newLogger returns a debug-level JSON logger appending to path, or a
// disabled logger when path is empty. The returned closer must be called
// on exit.
func newLogger(path string) (*zerolog.Logger, io.Closer, error) {
	if path == "" {
		nop := zerolog.Nop()
		return &nop, nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return &logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
