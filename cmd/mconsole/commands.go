package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/consolidate"
	"github.com/TimelordUK/mconsole/internal/export"
	"github.com/TimelordUK/mconsole/internal/filter"
	"github.com/TimelordUK/mconsole/internal/sched"
	"github.com/TimelordUK/mconsole/internal/source"
	"github.com/TimelordUK/mconsole/internal/ui"
	"github.com/TimelordUK/mconsole/internal/view"
	"github.com/TimelordUK/mconsole/pkg/logformat"
)

// loadConfig reads the config file and applies any flags the user set
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("severity") {
		cfg.Filter.Severity = opts.severity
	}
	if flags.Changed("node") {
		cfg.Filter.Nodes = opts.nodes
	}
	if flags.Changed("include") {
		cfg.Filter.Include = opts.include
	}
	if flags.Changed("exclude") {
		cfg.Filter.Exclude = opts.exclude
	}
	if flags.Changed("include-pattern") {
		cfg.Filter.IncludePattern = opts.includePattern
	}
	if flags.Changed("exclude-pattern") {
		cfg.Filter.ExcludePattern = opts.excludePattern
	}
	if flags.Changed("regexp") {
		cfg.Filter.UseRegexp = opts.useRegexp
	}
	if flags.Changed("absolute") {
		cfg.Display.AbsoluteTime = opts.absoluteTime
	}
	if opts.noFollow {
		cfg.Follow.Enabled = false
	}

	return cfg, nil
}

func runConsole(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(opts.debugLog)
	if err != nil {
		return err
	}
	defer closer.Close()

	model, err := ui.NewModelWithOptions(ui.ModelOptions{
		Paths:  args,
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export -o <output> <file>...",
		Short: "Write filtered or full logs without starting the console",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			f := export.FormatFor(output)
			if format != "" {
				var err error
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			cfg.Follow.Enabled = false

			logger, closer, err := newLogger(root.debugLog)
			if err != nil {
				return err
			}
			defer closer.Close()

			log := source.NewMemoryLog()
			collector, err := consolidate.NewCollector(args, log,
				logformat.NewLineParser(&cfg.LogLevels), false, logger)
			if err != nil {
				return err
			}
			defer collector.Close()

			if _, err := collector.Load(); err != nil {
				return fmt.Errorf("failed to load logs: %w", err)
			}

			nodes := collector.Nodes()
			nodes = append(nodes, log.Nodes()...)
			criteria := filter.FromConfig(cfg.Filter, nodes)

			queue := sched.NewQueue()
			v := view.New(log, queue,
				view.WithLogger(logger),
				view.WithCriteria(criteria),
				view.WithDisplay(cfg.Display.ShowTime, cfg.Display.AbsoluteTime),
			)
			if !v.IsIncludeValid() || !v.IsExcludeValid() {
				return fmt.Errorf("invalid include or exclude pattern")
			}
			if err := queue.Drain(cmd.Context()); err != nil {
				return err
			}

			if err := export.NewExporter(logger).SaveAs(output, f, v); err != nil {
				return err
			}

			if f == export.FormatText {
				pterm.Success.Printfln("wrote %d of %d entries to %s", v.Len(), log.Len(), output)
			} else {
				pterm.Success.Printfln("wrote %d entries to %s", log.Len(), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.jsonl/.yaml write the full log, anything else the filtered text)")
	cmd.Flags().StringVar(&format, "format", "", "override the format implied by the output name (text, jsonl, yaml)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the config path, or write the defaults with --init",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigPath()
			if !initFile {
				pterm.Info.Println(path)
				return nil
			}
			if err := config.Save(config.DefaultConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			pterm.Success.Printfln("wrote default config to %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&initFile, "init", false, "write the default config file")
	return cmd
}
