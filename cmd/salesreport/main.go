package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/operations"
	"salespulse/internal/report"
	"salespulse/pkg/contracts"
)

// Process exit codes
const (
	exitOK         = 0
	exitInput      = 1
	exitProcessing = 2
	exitExport     = 3
	exitConfig     = 4
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	code := exitOK
	app := newApp(stdout, stderr, &code)

	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if code == exitOK {
			code = exitConfig
		}
	}
	return code
}

func newApp(stdout, stderr io.Writer, code *int) *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, contracts.GetFullVersionString(c.App.Name))
	}

	return &cli.App{
		Name:      "salesreport",
		Usage:     "clean a sales dataset and export revenue KPIs",
		Version:   config.AppVersion,
		Writer:    stdout,
		ErrWriter: stderr,
		// exit codes are decided by run, never by the cli package
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "sales dataset (.csv or .xlsx)",
				EnvVars: []string{config.EnvPrefix + "_INPUT_PATH"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "folder for the exported results",
				Value:   config.DefaultOutputDir,
				EnvVars: []string{config.EnvPrefix + "_OUTPUT_DIR"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "missing-policy",
				Usage: "rows with missing values: drop, keep or fail",
			},
			&cli.StringFlag{
				Name:  "mismatch-policy",
				Usage: "rows whose revenue differs from units x price: annotate, exclude or correct",
			},
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: "output format: csv, xlsx or pdf (repeatable)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write pipeline metrics in the prometheus text format to this file",
			},
			&cli.StringFlag{
				Name:  "trace",
				Usage: "write trace spans as JSON to this file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not print the report",
			},
		},
		Action: func(c *cli.Context) error {
			var err error
			*code, err = execute(c, stdout)
			return err
		},
	}
}

// buildConfig layers command-line flags over the file and environment configuration
func buildConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("input") {
		cfg.Input.Path = c.String("input")
	}
	if c.IsSet("output") {
		cfg.Output.Dir = c.String("output")
	}
	if c.IsSet("missing-policy") {
		cfg.Quality.MissingPolicy = c.String("missing-policy")
	}
	if c.IsSet("mismatch-policy") {
		cfg.Quality.MismatchPolicy = c.String("mismatch-policy")
	}
	if c.IsSet("format") {
		cfg.Report.Formats = c.StringSlice("format")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("metrics-file") {
		cfg.Telemetry.MetricsFile = c.String("metrics-file")
	}
	if c.IsSet("trace") {
		cfg.Telemetry.TraceExporter = "file"
		cfg.Telemetry.TraceFile = c.String("trace")
	}
	if c.Bool("quiet") {
		cfg.Report.Quiet = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func execute(c *cli.Context, stdout io.Writer) (int, error) {
	cfg, err := buildConfig(c)
	if err != nil {
		return exitConfig, err
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return exitConfig, apperrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return exitExport, apperrors.NewWriteError("failed to prepare log folder", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return exitConfig, apperrors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureRunID(c.Context)
	runID := infrastructure.GetRunID(ctx)

	providers, err := infrastructure.InitializeOTel(ctx, cfg.Telemetry, logger)
	if err != nil {
		return exitConfig, apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	telemetry, err := operations.NewTelemetry(providers.Tracer, providers.Meter)
	if err != nil {
		return exitConfig, apperrors.NewConfigError("failed to create pipeline metrics", err)
	}

	runner := operations.NewRunner(logger, telemetry)
	if err := runner.Register(operations.StepFactory(cfg, paths, logger)...); err != nil {
		return exitConfig, apperrors.NewConfigError("failed to register pipeline steps", err)
	}

	console := report.NewConsole(stdout, report.Options{
		Currency: cfg.Report.Currency,
		Quiet:    cfg.Report.Quiet,
	})
	runner.AddObserver(console)

	logger.InfoContext(ctx, "Starting sales report",
		slog.String("version", config.AppVersion),
		slog.String("commit", contracts.GitCommit),
		slog.String("input", paths.InputFile),
		slog.String("output", paths.OutputDir),
		slog.Any("formats", cfg.Report.Formats))

	state := operations.NewRunState(runID, paths.InputFile)
	console.Start(state)
	runErr := runner.Run(ctx, state)
	console.Finish(state, runErr)

	if runErr != nil {
		return exitCode(runErr), runErr
	}
	if err := console.Err(); err != nil {
		logger.ErrorContext(ctx, "Failed to write report", slog.String("error", err.Error()))
		return exitExport, apperrors.NewWriteError("failed to write report", err)
	}
	return exitOK, nil
}

// exitCode maps the error type of a failed run to the process exit code
func exitCode(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeNotFound, apperrors.ErrTypeRead, apperrors.ErrTypeSchema:
		return exitInput
	case apperrors.ErrTypeParse, apperrors.ErrTypeValidation:
		return exitProcessing
	case apperrors.ErrTypeWrite:
		return exitExport
	case apperrors.ErrTypeConfig:
		return exitConfig
	}
	return exitInput
}
