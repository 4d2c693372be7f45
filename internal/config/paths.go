package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved file system location used by a run.
// Relative configuration values are resolved against the working
// directory, except a relative charts directory which lives under the
// reports directory.
type Paths struct {
	WorkingDir string
	InputFile  string
	ReportsDir string
	ChartsDir  string
	LogFile    string
	TraceFile  string
	// MetricsFile is empty when metrics are not written
	MetricsFile string
}

// ResolvePaths resolves the configured locations against the working directory.
func ResolvePaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return ResolvePathsFrom(wd, cfg), nil
}

// ResolvePathsFrom resolves the configured locations against baseDir.
func ResolvePathsFrom(baseDir string, cfg *Config) *Paths {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	reportsDir := resolve(cfg.Report.OutputDir)
	chartsDir := cfg.Report.ChartsDir
	if !filepath.IsAbs(chartsDir) {
		chartsDir = filepath.Join(reportsDir, chartsDir)
	}

	return &Paths{
		WorkingDir:  baseDir,
		InputFile:   resolve(cfg.Input.File),
		ReportsDir:  reportsDir,
		ChartsDir:   chartsDir,
		LogFile:     resolve(cfg.Logging.FilePath),
		TraceFile:   resolve(cfg.Telemetry.TraceFile),
		MetricsFile: resolve(cfg.Telemetry.MetricsFile),
	}
}

// EnsureDirectories creates the output directories if they don't exist.
// The input file's directory is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.ReportsDir, p.ChartsDir}
	for _, f := range []string{p.TraceFile, p.MetricsFile} {
		if f != "" {
			directories = append(directories, filepath.Dir(f))
		}
	}

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ChartPath returns the output file for a chart name and format.
func (p *Paths) ChartPath(name, format string) string {
	return filepath.Join(p.ChartsDir, name+"."+format)
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("resolved paths",
		slog.String("working_dir", p.WorkingDir),
		slog.String("input_file", p.InputFile),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("metrics_file", p.MetricsFile))
}
