package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/modoterra/hostsnap/internal/buildinfo"
	"github.com/modoterra/hostsnap/internal/logging"
	"github.com/modoterra/hostsnap/pkg/config"
	"github.com/modoterra/hostsnap/pkg/providers/logs/sdjournal"
	"github.com/modoterra/hostsnap/pkg/summary"
)

func main() {
	root := newRootCmd(selectProviders(runtime.GOOS, sdjournal.Available()))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	outputDir  string
	threshold  uint32
	channels   []string
	lister     string
	table      string
	source     string
	verbose    bool
	quiet      bool

	providers providerFactory
	logger    *zap.Logger
}

func newRootCmd(providers providerFactory) *cobra.Command {
	opts := &options{providers: providers}

	rootCmd := &cobra.Command{
		Use:   "hostsnap",
		Short: "Snapshot listening ports and severe log events to JSON",
		Long: "hostsnap correlates open TCP/UDP ports with their owning processes and extracts\n" +
			"recent critical log events, writing process_ports.json and events.json.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := logging.Level(opts.verbose, opts.quiet)
			opts.logger = logging.NewWithSink(level, zapcore.AddSync(cmd.ErrOrStderr()))
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd, opts, true, true)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to hostsnap.yaml (default: ./hostsnap.yaml if present)")
	pf.StringVar(&opts.outputDir, "output-dir", "", "directory for the JSON files")
	pf.Uint32Var(&opts.threshold, "threshold", 0, "least severe event level to keep (1=critical .. 5=verbose)")
	pf.StringSliceVar(&opts.channels, "channel", nil, "event log channel to read (repeatable)")
	pf.StringVar(&opts.lister, "lister", "", "connection lister: auto, gopsutil, netstat")
	pf.StringVar(&opts.table, "process-table", "", "process table: auto, gopsutil")
	pf.StringVar(&opts.source, "source", "", "log source: auto, wevtutil, journalctl, sdjournal")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug diagnostics")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "only log warnings and print no summary")

	rootCmd.AddCommand(newPortsCmd(opts))
	rootCmd.AddCommand(newEventsCmd(opts))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// --- Pipelines ---

func newPortsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "Only write the process/port snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd, opts, true, false)
		},
	}
}

func newEventsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Only write the event snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd, opts, false, true)
		},
	}
}

// runSnapshot runs the selected pipelines. Pipeline failures are reported as
// diagnostics and never turn into a non-zero exit.
func runSnapshot(cmd *cobra.Command, opts *options, withPorts, withEvents bool) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := opts.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Debug("starting run",
		zap.String("output_dir", cfg.OutputDir),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("ports", withPorts),
		zap.Bool("events", withEvents))

	ctx := cmd.Context()
	set := opts.providers(cfg, logger)
	out := cmd.OutOrStdout()

	if withPorts {
		res, snap := runPorts(ctx, cfg, set, logger)
		if !opts.quiet {
			summary.WriteResult(out, res)
			if res.Err == nil && opts.verbose {
				fmt.Fprintln(out, summary.ProcessTable(snap))
			}
		}
	}
	if withEvents {
		res, evs := runEvents(ctx, cfg, set, logger)
		if !opts.quiet {
			summary.WriteResult(out, res)
			if res.Err == nil && opts.verbose {
				fmt.Fprintln(out, summary.EventCounts(evs))
			}
		}
	}
	return nil
}

// resolveConfig loads the config file, applies flag overrides and validates
// the result.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()
	switch {
	case opts.configPath != "":
		c, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		c, err := config.Load(config.DefaultFile)
		if err == nil {
			cfg = c
			opts.logger.Debug("config loaded", zap.String("path", config.DefaultFile))
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("threshold") {
		cfg.Events.Threshold = opts.threshold
	}
	if flags.Changed("channel") {
		cfg.Events.Channels = opts.channels
	}
	if flags.Changed("lister") {
		cfg.Ports.Lister = opts.lister
	}
	if flags.Changed("process-table") {
		cfg.Ports.ProcessTable = opts.table
	}
	if flags.Changed("source") {
		cfg.Events.Source = opts.source
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// --- Config ---

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hostsnap.yaml",
	}

	var initOutput string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a hostsnap.yaml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(initOutput); err == nil {
				return fmt.Errorf("%s already exists", initOutput)
			}
			data, err := config.Marshal(config.Default())
			if err != nil {
				return err
			}
			if err := os.WriteFile(initOutput, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", initOutput)
			return nil
		},
	}
	initCmd.Flags().StringVar(&initOutput, "output", config.DefaultFile, "output file path")

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a hostsnap.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}

			c, err := config.Load(path)
			if err != nil {
				return err
			}

			errs := config.Validate(c)
			if len(errs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
				return nil
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d error(s)\n", path, len(errs))
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  • %s\n", e)
			}
			return fmt.Errorf("%s is invalid", path)
		},
	}

	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(validateCmd)
	return configCmd
}

// --- Version ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hostsnap %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}
