package charts

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"participation/internal/config"
	"participation/internal/dataprocessing"
	"participation/internal/errors"
	"participation/pkg/contracts/domain"
)

// Chart is one rendered chart file
type Chart struct {
	Name string
	Path string
}

// Renderer writes the report charts as image files
type Renderer struct {
	logger *slog.Logger
	paths  *config.Paths
	cfg    config.ReportConfig
}

// NewRenderer creates a renderer writing into paths.ChartsDir
func NewRenderer(logger *slog.Logger, paths *config.Paths, cfg config.ReportConfig) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = config.DefaultHistogramBins
	}
	if cfg.ChartFormat == "" {
		cfg.ChartFormat = config.DefaultChartFormat
	}
	if cfg.ChartWidth <= 0 {
		cfg.ChartWidth = config.DefaultChartWidthIn
	}
	if cfg.ChartHeight <= 0 {
		cfg.ChartHeight = config.DefaultChartHeightIn
	}
	return &Renderer{logger: logger, paths: paths, cfg: cfg}
}

// Format returns the image format charts are written in
func (r *Renderer) Format() string {
	return r.cfg.ChartFormat
}

type chartJob struct {
	name  string
	build func() (*plot.Plot, error)
}

func (r *Renderer) jobs(report *domain.AttendanceReport) []chartJob {
	return []chartJob{
		{config.ChartAttendanceByProgram, func() (*plot.Plot, error) {
			return AttendanceByProgramPlot(report.ProgramRates)
		}},
		{config.ChartMonthlyTrend, func() (*plot.Plot, error) {
			return MonthlyTrendPlot(report.MonthlyRates)
		}},
		{config.ChartMonthlyTrendByProgram, func() (*plot.Plot, error) {
			return MonthlyTrendByProgramPlot(report.MonthlyProgramRates,
				dataprocessing.ProgramsInOrder(report.MonthlyProgramRates))
		}},
		{config.ChartRetentionHistogram, func() (*plot.Plot, error) {
			return RetentionHistogramPlot(dataprocessing.ValidRetentionDays(report.Retention), r.cfg.HistogramBins)
		}},
		{config.ChartRetentionByProgram, func() (*plot.Plot, error) {
			return RetentionByProgramPlot(report.ProgramRetention)
		}},
	}
}

// RenderAll draws every chart concurrently, one file each. Charts are
// returned in a fixed order. The first failure cancels the remaining work.
func (r *Renderer) RenderAll(ctx context.Context, report *domain.AttendanceReport) ([]Chart, error) {
	jobs := r.jobs(report)
	out := make([]Chart, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := r.render(gctx, job)
			if err != nil {
				return err
			}
			out[i] = Chart{Name: job.name, Path: path}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Renderer) render(ctx context.Context, job chartJob) (string, error) {
	p, err := job.build()
	if err != nil {
		return "", errors.NewRenderError("failed to build chart", err).WithContext("chart", job.name)
	}

	path := r.paths.ChartPath(job.name, r.cfg.ChartFormat)
	width := vg.Length(r.cfg.ChartWidth) * vg.Inch
	height := vg.Length(r.cfg.ChartHeight) * vg.Inch
	if err := p.Save(width, height, path); err != nil {
		return "", errors.NewRenderError("failed to save chart", err).
			WithContext("chart", job.name).
			WithContext("path", path)
	}

	r.logger.DebugContext(ctx, "chart written",
		slog.String("chart", job.name),
		slog.String("path", path))
	return path, nil
}
