package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"participation/internal/charts"
	"participation/internal/config"
	"participation/internal/dataprocessing"
	"participation/internal/exporter"
	"participation/internal/files"
	"participation/internal/infrastructure"
	"participation/internal/operations"
	"participation/internal/validation"
)

// ShutdownTimeout bounds the telemetry flush at exit
const ShutdownTimeout = 10 * time.Second

// Options control where the application writes and how it logs
type Options struct {
	// Out receives the console report; nil means os.Stdout
	Out io.Writer
	// UseColor enables colored section titles
	UseColor bool
	// Logger replaces the logger built from the logging config
	Logger *slog.Logger
	// BaseDir resolves relative paths; empty means the working directory
	BaseDir string
}

// Application represents one configured report run
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Manager       *operations.Manager
	Discovery     *files.Discovery
}

// NewApplication resolves paths, initializes logging and telemetry and
// registers the report steps. cfg must already be validated.
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	var paths *config.Paths
	if opts.BaseDir != "" {
		paths = config.ResolvePathsFrom(opts.BaseDir, cfg)
	} else {
		var err error
		paths, err = config.ResolvePaths(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve paths: %w", err)
		}
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logCfg := cfg.Logging
		logCfg.FilePath = paths.LogFile
		var err error
		logger, err = infrastructure.InitializeLogger(logCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))
	paths.LogPathResolution(logger)

	validator := validation.NewFileValidator(infrastructure.WithComponent(logger, "validation"))
	if err := validator.ValidateOutputDirectory(paths.ChartsDir); err != nil {
		return nil, fmt.Errorf("charts directory unusable: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, paths, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Discovery:     files.NewDiscovery(infrastructure.WithComponent(logger, "files")),
	}
	if err := app.initializeSteps(out, opts.UseColor, validator); err != nil {
		return nil, fmt.Errorf("failed to initialize steps: %w", err)
	}
	return app, nil
}

// initializeSteps registers the report steps in execution order
func (a *Application) initializeSteps(out io.Writer, useColor bool, validator *validation.FileValidator) error {
	console := exporter.NewConsoleReport(out, useColor)
	metrics := a.OTelProviders.Metrics
	component := func(name string) *slog.Logger {
		return infrastructure.WithComponent(a.Logger, name)
	}

	a.Manager = operations.NewManager(component("operations"), nil, nil,
		operations.NewOperationTracer(a.OTelProviders))

	steps := []operations.Step{
		operations.NewLoadStep(
			dataprocessing.NewLoader(component("loader"), a.Config.Input.Sheet),
			validator, console, metrics, a.Config.Input.HeadRows),
		operations.NewCleanStep(dataprocessing.NewCleaner(component("cleaner")), console, metrics),
		operations.NewAggregateStep(dataprocessing.NewAggregator(component("aggregator")), console),
		operations.NewRetentionStep(dataprocessing.NewRetentionCalculator(component("retention")), console),
		operations.NewRenderStep(
			charts.NewRenderer(component("charts"), a.Paths, a.Config.Report),
			console, metrics),
	}
	for _, step := range steps {
		if err := a.Manager.RegisterStep(step); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the report once. SIGINT and SIGTERM cancel the run between
// steps.
func (a *Application) Run(ctx context.Context) (*operations.OperationState, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := a.Discovery.ResolveInput(a.Paths.InputFile)
	if err != nil {
		return nil, err
	}

	ctx = infrastructure.EnsureRunID(ctx)
	state := operations.NewOperationState(infrastructure.GetRunID(ctx), input)
	err = a.Manager.Run(ctx, state)
	return state, err
}

// Shutdown flushes telemetry and closes the log file
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
			shutdownErr = err
		}
	}

	a.Logger.DebugContext(ctx, "application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	return shutdownErr
}
