package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"participation/internal/config"
)

const (
	ServiceName = config.AppName
	MeterName   = "participation"
)

// OTelProviders holds the OpenTelemetry providers for one run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *PipelineMetrics
	// Registry receives every otel instrument through the prometheus exporter
	Registry *prometheus.Registry
	Logger   *slog.Logger

	metricsFile string
	traceOut    io.Closer
}

// PipelineMetrics are the instruments recorded by the report pipeline
type PipelineMetrics struct {
	RowsLoaded     metric.Int64Counter
	NullValues     metric.Int64Counter
	StepsTotal     metric.Int64Counter
	StepDuration   metric.Float64Histogram
	ChartsRendered metric.Int64Counter
}

// InitializeOTel sets up tracing and metrics. Spans are always recorded so
// logs carry trace IDs; they are exported only when an exporter is configured.
func InitializeOTel(cfg config.TelemetryConfig, paths *config.Paths, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	providers := &OTelProviders{
		Logger:      logger,
		metricsFile: paths.MetricsFile,
	}

	if err := providers.initializeTracing(cfg, paths, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := providers.initializeMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", paths.MetricsFile))

	return providers, nil
}

func (p *OTelProviders) initializeTracing(cfg config.TelemetryConfig, paths *config.Paths, res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	var out io.Writer
	switch cfg.TraceExporter {
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(paths.TraceFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		p.traceOut = f
		out = f
	case "none", "":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if out != nil {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	p.TracerProvider = sdktrace.NewTracerProvider(opts...)
	p.Tracer = p.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	return nil
}

func (p *OTelProviders) initializeMetrics(res *resource.Resource) error {
	p.Registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(p.Registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	p.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	p.Meter = p.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))

	p.Metrics, err = CreatePipelineMetrics(p.Meter)
	return err
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"participation_rows_loaded",
		metric.WithDescription("Attendance rows read from the input file"),
	)
	if err != nil {
		return nil, err
	}

	nullValues, err := meter.Int64Counter(
		"participation_null_values",
		metric.WithDescription("Null or unparseable values per column after cleaning"),
	)
	if err != nil {
		return nil, err
	}

	stepsTotal, err := meter.Int64Counter(
		"participation_steps",
		metric.WithDescription("Pipeline steps executed by status"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"participation_step_duration",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chartsRendered, err := meter.Int64Counter(
		"participation_charts_rendered",
		metric.WithDescription("Charts written to disk"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:     rowsLoaded,
		NullValues:     nullValues,
		StepsTotal:     stepsTotal,
		StepDuration:   stepDuration,
		ChartsRendered: chartsRendered,
	}, nil
}

// RecordStep records one step execution
func (m *PipelineMetrics) RecordStep(ctx context.Context, step, status string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, seconds, attrs)
}

// RecordRowsLoaded counts the data rows read from path
func (m *PipelineMetrics) RecordRowsLoaded(ctx context.Context, path string, rows int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("input", path)))
}

// RecordNullValues counts the null values of one column
func (m *PipelineMetrics) RecordNullValues(ctx context.Context, column string, nulls int) {
	if m == nil {
		return
	}
	m.NullValues.Add(ctx, int64(nulls), metric.WithAttributes(attribute.String("column", column)))
}

// RecordChartRendered counts one chart file written in format
func (m *PipelineMetrics) RecordChartRendered(ctx context.Context, chart, format string) {
	if m == nil {
		return
	}
	m.ChartsRendered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chart", chart),
		attribute.String("format", format),
	))
}

// Shutdown flushes spans, writes the metrics textfile when configured and
// releases the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.traceOut != nil {
		if err := p.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	// must run before the meter provider shuts down its reader
	if p.metricsFile != "" && p.Registry != nil {
		if err := prometheus.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics file: %w", err))
		} else {
			p.Logger.Info("metrics written", slog.String("path", p.metricsFile))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}
