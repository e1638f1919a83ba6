package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"uihlog/internal/config"
	"uihlog/internal/logger"
	"uihlog/internal/metrics"
	"uihlog/internal/worker"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

type flags struct {
	pid         bool
	gzip        bool
	concurrency int
	threshold   int
	report      string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "uihlog [path]",
		Short: "Convert .uihlog files into plain text logs",
		Long: `uihlog decodes binary-delimited .uihlog files into human-readable text.

Given a directory, every "<number>.uihlog" file is decoded in numeric order
and its lines are split into one "<source>.txt" per log source (and one
"<pid>.txt" per process with --pid). Given a single file, the result is
written to "<file>.txt" beside it. The path defaults to the current
directory.

Every flag can also be set through the environment (UIHLOG_*).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			cfg := config.Load()
			applyFlags(cmd, &cfg, f)
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.Init(cfg)
			return run(cmd.Context(), cfg, target, log)
		},
	}

	root.Flags().BoolVar(&f.pid, "pid", false, "Also write one output file per process id")
	root.Flags().BoolVar(&f.gzip, "gzip", false, "Write gzip-compressed outputs (<key>.txt.gz)")
	root.Flags().IntVarP(&f.concurrency, "concurrency", "c", config.DefaultConcurrency, "Files decoded ahead of the writer")
	root.Flags().IntVar(&f.threshold, "threshold", config.DefaultFlushThreshold, "Bytes buffered per output before it is flushed")
	root.Flags().StringVar(&f.report, "report", "", "Write a JSON run report to this file")
	root.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

// applyFlags copies the flags the user actually passed over the env config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	fs := cmd.Flags()
	if fs.Changed("pid") {
		cfg.PidOutput = f.pid
	}
	if fs.Changed("gzip") {
		cfg.Gzip = f.gzip
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if fs.Changed("threshold") {
		cfg.FlushThreshold = f.threshold
	}
	if fs.Changed("report") {
		cfg.ReportPath = f.report
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

func run(ctx context.Context, cfg config.Config, target string, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	m := metrics.New()

	outputs, err := worker.NewConverter(cfg, log, m).Process(target)
	if err != nil {
		return err
	}

	if cfg.S3Enabled() && len(outputs) > 0 {
		exp, err := worker.NewS3Exporter(ctx, cfg, m, log)
		if err != nil {
			return err
		}
		if err := exp.Export(ctx, outputs); err != nil {
			return err
		}
	}

	elapsed := time.Since(started)
	log.Info().
		Str("target", target).
		Int("outputs", len(outputs)).
		Dur("elapsed", elapsed).
		Msg("conversion finished")
	log.Debug().Msg("metrics\n" + m.String())

	if cfg.ReportPath != "" {
		return metrics.WriteReport(cfg.ReportPath, metrics.Report{
			RunID:    cfg.RunID,
			Target:   target,
			Started:  started,
			Elapsed:  elapsed.String(),
			Outputs:  outputs,
			Counters: m.Snapshot(),
		})
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
