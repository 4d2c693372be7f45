package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"participation/internal/app"
	"participation/internal/config"
	"participation/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (defaults to "+config.DefaultConfigFile+" if present)")
	input := flag.String("input", "", "attendance CSV or .xlsx file (default "+config.DefaultInputFile+")")
	outDir := flag.String("out", "", "report output directory")
	chartsDir := flag.String("charts", "", "chart directory, relative to -out unless absolute")
	format := flag.String("format", "", "chart format: png, svg, pdf or jpg")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn or error")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString(config.AppName))
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, *input, *outDir, *chartsDir, *format, *logLevel)
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	application, err := app.NewApplication(cfg, app.Options{
		Out:      os.Stdout,
		UseColor: !color.NoColor,
	})
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	_, runErr := application.Run(ctx)
	if runErr != nil {
		application.Logger.ErrorContext(ctx, "report failed", slog.String("error", runErr.Error()))
	}
	if err := application.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// applyFlags overrides configuration values with the non-empty flags
func applyFlags(cfg *config.Config, input, outDir, chartsDir, format, logLevel string) {
	if input != "" {
		cfg.Input.File = input
	}
	if outDir != "" {
		cfg.Report.OutputDir = outDir
	}
	if chartsDir != "" {
		cfg.Report.ChartsDir = chartsDir
	}
	if format != "" {
		cfg.Report.ChartFormat = format
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}
