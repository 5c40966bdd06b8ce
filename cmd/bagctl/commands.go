package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ib-77/intbag/internal/config"
	"github.com/ib-77/intbag/internal/telemetry"
	"github.com/ib-77/intbag/pkg/bag"
	"github.com/ib-77/intbag/pkg/script"
)

type cliOptions struct {
	cfg          config.Config
	seed         int64
	breakOnError bool
	jsonOutput   bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:          "bagctl",
		Short:        "Run integer bag scripts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if !cmd.Flags().Changed("seed") {
				opts.seed = cfg.Seed
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "seed for grab (0 = time based, overrides BAGCTL_SEED)")
	rootCmd.PersistentFlags().BoolVar(&opts.breakOnError, "break-on-error", false, "skip the remaining steps of a script after a failure")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print one JSON object per step")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run FILE...",
			Short: "Run bag scripts from YAML files",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				scripts := make([]*script.Script, 0, len(args))
				for _, path := range args {
					s, err := script.Load(path)
					if err != nil {
						return err
					}
					scripts = append(scripts, s)
				}
				return runScripts(cmd, opts, scripts)
			},
		},
		&cobra.Command{
			Use:   "demo",
			Short: "Run the built-in example script",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runScripts(cmd, opts, []*script.Script{script.Demo()})
			},
		},
	)

	return rootCmd
}

func runScripts(cmd *cobra.Command, opts *cliOptions, scripts []*script.Script) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(cmd.ErrOrStderr(), opts.cfg)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Init(ctx, opts.cfg.TraceExporter, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown", "error", err)
		}
	}()

	rng := bag.NewSeededRand(opts.seed)
	failed, interrupted := 0, 0
	for _, s := range scripts {
		runner := script.NewRunner(
			script.WithSource(rng),
			script.WithLogger(logger),
			script.WithBreakOnError(opts.breakOnError),
		)
		report := runner.Run(ctx, s)

		if err := printReport(cmd.OutOrStdout(), report, opts.jsonOutput); err != nil {
			return err
		}
		switch errs := report.Errors(); {
		case len(errs) == 0:
		case report.Interrupted():
			interrupted++
		default:
			failed++
			logger.Error("script failed", "script", report.Name, "errors", len(errs), "first", errs[0])
		}
	}

	if interrupted > 0 && failed == 0 {
		return fmt.Errorf("interrupted: %d of %d scripts cancelled", interrupted, len(scripts))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts failed", failed, len(scripts))
	}
	return nil
}

func newLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}
