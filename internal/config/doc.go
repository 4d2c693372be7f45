// Package config provides configuration loading for the participation report.
//
// # Configuration Sources
//
// Configuration is resolved from the following sources in order of precedence:
//
//  1. Command-line flags (applied by cmd/participation-report)
//  2. Environment variables
//  3. YAML configuration file (participation.yaml or -config)
//  4. Default values
//
// # Environment Variables
//
// All environment variables follow the pattern PARTICIPATION_<SECTION>_<FIELD>:
//
//	PARTICIPATION_INPUT_FILE=program_participation.csv
//	PARTICIPATION_REPORT_CHART_FORMAT=svg
//	PARTICIPATION_LOGGING_LEVEL=debug
//	PARTICIPATION_TELEMETRY_METRICS_FILE=reports/metrics.prom
//
// # Path Management
//
// Relative paths are resolved against the working directory by ResolvePaths.
// A relative charts directory is placed under the reports directory, so
// -out moves the charts with it:
//
//	paths, err := config.ResolvePaths(cfg)
//	chart := paths.ChartPath(config.ChartMonthlyTrend, cfg.Report.ChartFormat)
package config
