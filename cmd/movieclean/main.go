// Package main provides the CLI entry point for the movie metadata cleaner.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/cleaner"
	"github.com/David-Botos/movie-cleaning/pkg/config"
	"github.com/David-Botos/movie-cleaning/pkg/connector"
	"github.com/David-Botos/movie-cleaning/pkg/logging"
	"github.com/David-Botos/movie-cleaning/pkg/pipeline"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitStructuralError = 2
	ExitRuntimeError    = 3
)

// Build information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// exitError carries the process exit code for a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps a command error to the process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return ExitRuntimeError
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// runOptions holds the run command flags
type runOptions struct {
	configPath string
	dataRoot   string
	input      string
	output     string
	minYear    int
	maxYear    int
	workers    int
	verbose    bool
	report     bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "movieclean",
		Short: "Clean raw movie metadata into an analysis-ready table",
		Long: `movieclean normalizes a raw movie metadata table.

Durations become minutes, currency strings and vote counts become numbers,
the genre list is reduced to its primary genre, and rows released outside
the configured year range are dropped.

Examples:
  # Clean the default dataset under ./data
  movieclean run

  # Clean a specific file into an Excel workbook
  movieclean run --input movies.csv --output movies_cleaned.xlsx

  # Load settings from a YAML file
  movieclean run --config movieclean.yaml`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Clean the configured movie table",
		Long: `Load the source table, clean it and write the result.

Flags override the configuration file and environment.

Exit codes:
  0 - Cleaned table written
  1 - Configuration errors
  2 - Source table is missing required columns or is empty
  3 - Runtime errors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd, opts)
		},
	}

	runCmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	runCmd.Flags().StringVar(&opts.dataRoot, "data-root", "", "Directory relative input and output paths are resolved against")
	runCmd.Flags().StringVarP(&opts.input, "input", "i", "", "Source table file")
	runCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Cleaned table file")
	runCmd.Flags().IntVar(&opts.minYear, "min-year", cleaner.DefaultMinYear, "Earliest release year kept")
	runCmd.Flags().IntVar(&opts.maxYear, "max-year", cleaner.DefaultMaxYear, "Latest release year kept")
	runCmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Transform workers, 0 uses the CPU count")
	runCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	runCmd.Flags().BoolVar(&opts.report, "report", false, "Print a metrics report after the run")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, commit hash, and build date information.",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// applyFlags overrides configuration with the flags the user set
func (o *runOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputPath = o.input
	}
	if flags.Changed("output") {
		cfg.OutputPath = o.output
	}
	if flags.Changed("min-year") {
		cfg.MinReleaseYear = o.minYear
	}
	if flags.Changed("max-year") {
		cfg.MaxReleaseYear = o.maxYear
	}
	if flags.Changed("workers") {
		cfg.WorkerPoolSize = o.workers
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if o.dataRoot != "" {
		cfg.InputPath = resolvePath(o.dataRoot, cfg.InputPath)
		cfg.OutputPath = resolvePath(o.dataRoot, cfg.OutputPath)
	}
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func runClean(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	opts.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	defer func() { _ = logger.Sync() }()
	restore := logging.Install(logger)
	defer restore()

	factory := connector.NewConnectorFactory(cfg, logger.Named("factory"))
	defer func() {
		if err := factory.Close(); err != nil {
			logger.Warn("Failed to close connectors", zap.Error(err))
		}
	}()

	source, err := factory.CreateSource(ctx)
	if err != nil {
		return &exitError{code: ExitRuntimeError, err: err}
	}
	sink, err := factory.CreateSink(ctx)
	if err != nil {
		return &exitError{code: ExitRuntimeError, err: err}
	}

	runnerOpts := []pipeline.RunnerOption{
		pipeline.WithYearRange(cfg.MinReleaseYear, cfg.MaxReleaseYear),
		pipeline.WithWorkerCount(cfg.WorkerPoolSize),
		pipeline.WithDescription(describeSource(cfg), describeSink(cfg)),
	}
	if cfg.RecordOperations {
		pg, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			return &exitError{code: ExitRuntimeError, err: err}
		}
		recorder, err := cleaner.NewSQLRecorder(ctx, pg.DB(), "pgx", logger.Named("recorder"))
		if err != nil {
			return &exitError{code: ExitRuntimeError, err: err}
		}
		runnerOpts = append(runnerOpts, pipeline.WithRecorder(recorder))
	}

	runner := pipeline.NewRunner(source, sink, logger.Named("pipeline"), runnerOpts...)
	result, err := runner.Run(ctx)
	if err != nil {
		return &exitError{code: exitCodeForCategory(pipeline.CategoryOf(err)), err: err}
	}

	if opts.report {
		fmt.Fprint(out, runner.Metrics().GenerateMetricsReport())
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	fmt.Fprintf(out, "Cleaned data saved to %s\n", result.Destination)
	return nil
}

func exitCodeForCategory(category pipeline.ErrorCategory) int {
	if category == pipeline.ErrorCategoryStructural {
		return ExitStructuralError
	}
	return ExitRuntimeError
}

func describeSource(cfg *config.Config) string {
	if cfg.SourceKind == config.KindSnowflake {
		return "snowflake:" + cfg.SourceTable
	}
	return cfg.InputPath
}

func describeSink(cfg *config.Config) string {
	if cfg.SinkKind == config.KindPostgres {
		return "postgres:" + cfg.TargetSchema + "." + cfg.TargetTable
	}
	return cfg.OutputPath
}
