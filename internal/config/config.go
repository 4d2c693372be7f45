package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "participation/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig describes where attendance records are read from
type InputConfig struct {
	File     string `yaml:"file" envconfig:"FILE" validate:"required"`
	Sheet    string `yaml:"sheet" envconfig:"SHEET"`
	HeadRows int    `yaml:"head_rows" envconfig:"HEAD_ROWS" validate:"gte=0"`
}

// ReportConfig contains chart output configuration. ChartsDir is resolved
// under OutputDir unless it is absolute.
type ReportConfig struct {
	OutputDir     string  `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	ChartsDir     string  `yaml:"charts_dir" envconfig:"CHARTS_DIR" validate:"required"`
	ChartFormat   string  `yaml:"chart_format" envconfig:"CHART_FORMAT" validate:"oneof=png svg pdf jpg"`
	ChartWidth    float64 `yaml:"chart_width" envconfig:"CHART_WIDTH" validate:"gt=0"`
	ChartHeight   float64 `yaml:"chart_height" envconfig:"CHART_HEIGHT" validate:"gt=0"`
	HistogramBins int     `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"gte=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stderr stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Output file,required_if=Output both"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout file"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=TraceExporter file"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			File:     DefaultInputFile,
			HeadRows: DefaultHeadRows,
		},
		Report: ReportConfig{
			OutputDir:     DefaultReportsDir,
			ChartsDir:     DefaultChartsDir,
			ChartFormat:   DefaultChartFormat,
			ChartWidth:    DefaultChartWidthIn,
			ChartHeight:   DefaultChartHeightIn,
			HistogramBins: DefaultHistogramBins,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stderr",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, the YAML file (if any) and
// environment variables, in increasing order of precedence. An empty
// configFile searches the working directory for DefaultConfigFile.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("path", configFile)
		}
	}

	// Fields without a matching variable keep their file/default value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the first config file found, or ""
func getConfigFilePath() string {
	locations := []string{
		DefaultConfigFile,
		"configs/" + DefaultConfigFile,
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and normalises enum casing.
func (c *Config) Validate() error {
	c.Report.ChartFormat = strings.ToLower(strings.TrimPrefix(c.Report.ChartFormat, "."))
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Telemetry.TraceExporter = strings.ToLower(c.Telemetry.TraceExporter)

	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return apperrors.NewConfigError(
				fmt.Sprintf("invalid value for %s (rule %q)", first.Namespace(), first.Tag()), err).
				WithContext("field", first.Namespace())
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}
