package operations

import (
	"context"
	"fmt"

	"participation/internal/charts"
	"participation/internal/config"
	"participation/internal/dataprocessing"
	"participation/internal/exporter"
	"participation/internal/infrastructure"
	"participation/internal/validation"
)

// LoadStep reads the input file into the state frame
type LoadStep struct {
	BaseStep
	loader    *dataprocessing.Loader
	validator *validation.FileValidator
	console   *exporter.ConsoleReport
	metrics   *infrastructure.PipelineMetrics
	headRows  int
}

// NewLoadStep creates the load step
func NewLoadStep(loader *dataprocessing.Loader, validator *validation.FileValidator, console *exporter.ConsoleReport, metrics *infrastructure.PipelineMetrics, headRows int) *LoadStep {
	return &LoadStep{
		BaseStep:  NewBaseStep(StepIDLoad, StepNameLoad),
		loader:    loader,
		validator: validator,
		console:   console,
		metrics:   metrics,
		headRows:  headRows,
	}
}

// Validate requires a readable input file
func (s *LoadStep) Validate(state *OperationState) error {
	if state.InputPath == "" {
		return fmt.Errorf("no input file configured")
	}
	return s.validator.ValidateInputFile(state.InputPath)
}

// Execute loads the input and prints its head and schema
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	frame, err := s.loader.Load(ctx, state.InputPath)
	if err != nil {
		return err
	}
	state.Frame = frame
	s.metrics.RecordRowsLoaded(ctx, state.InputPath, frame.Nrow())

	s.console.Head(frame.Names(), frame.Head(s.headRows))
	s.console.Info(frame.Info())
	return nil
}

// CleanStep turns the frame into typed records
type CleanStep struct {
	BaseStep
	cleaner *dataprocessing.Cleaner
	console *exporter.ConsoleReport
	metrics *infrastructure.PipelineMetrics
}

// NewCleanStep creates the clean step
func NewCleanStep(cleaner *dataprocessing.Cleaner, console *exporter.ConsoleReport, metrics *infrastructure.PipelineMetrics) *CleanStep {
	return &CleanStep{
		BaseStep: NewBaseStep(StepIDClean, StepNameClean),
		cleaner:  cleaner,
		console:  console,
		metrics:  metrics,
	}
}

// Validate requires a loaded frame
func (s *CleanStep) Validate(state *OperationState) error {
	if state.Frame == nil {
		return fmt.Errorf("no frame loaded")
	}
	return nil
}

// Execute cleans the frame and prints types, nulls and distinct values
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	records, stats, err := s.cleaner.Clean(ctx, state.Frame)
	if err != nil {
		return err
	}
	state.Records = records
	state.CleanStats = stats

	nulls := stats.NullCounts()
	for _, n := range nulls {
		s.metrics.RecordNullValues(ctx, n.Column, n.Nulls)
	}

	s.console.DataTypes(stats.Columns)
	s.console.NullCounts(nulls)
	s.console.Uniques(config.ColProgramName, stats.Programs)
	s.console.Uniques(config.ColAgeGroup, stats.AgeGroups)
	return nil
}

// requireCleaned is shared by the steps that read cleaned records
func requireCleaned(state *OperationState) error {
	if state.CleanStats == nil {
		return fmt.Errorf("records not cleaned")
	}
	return nil
}

// AggregateStep computes the attendance rate tables
type AggregateStep struct {
	BaseStep
	aggregator *dataprocessing.Aggregator
	console    *exporter.ConsoleReport
}

// NewAggregateStep creates the aggregate step
func NewAggregateStep(aggregator *dataprocessing.Aggregator, console *exporter.ConsoleReport) *AggregateStep {
	return &AggregateStep{
		BaseStep:   NewBaseStep(StepIDAggregate, StepNameAggregate),
		aggregator: aggregator,
		console:    console,
	}
}

// Validate requires cleaned records
func (s *AggregateStep) Validate(state *OperationState) error {
	return requireCleaned(state)
}

// Execute builds the per-program, per-month and month by program tables
func (s *AggregateStep) Execute(ctx context.Context, state *OperationState) error {
	report := &state.Report
	report.ProgramRates = s.aggregator.ByProgram(ctx, state.Records)
	report.MonthlyRates = s.aggregator.ByMonth(ctx, state.Records)
	report.MonthlyProgramRates = s.aggregator.ByMonthAndProgram(ctx, state.Records)

	s.console.ProgramRates(report.ProgramRates)
	s.console.MonthlyRates(report.MonthlyRates, previewRows)
	s.console.MonthlyProgramRates(report.MonthlyProgramRates, previewRows)
	return ctx.Err()
}

// RetentionStep computes participant retention and its summaries
type RetentionStep struct {
	BaseStep
	calculator *dataprocessing.RetentionCalculator
	console    *exporter.ConsoleReport
}

// NewRetentionStep creates the retention step
func NewRetentionStep(calculator *dataprocessing.RetentionCalculator, console *exporter.ConsoleReport) *RetentionStep {
	return &RetentionStep{
		BaseStep:   NewBaseStep(StepIDRetention, StepNameRetention),
		calculator: calculator,
		console:    console,
	}
}

// Validate requires cleaned records
func (s *RetentionStep) Validate(state *OperationState) error {
	return requireCleaned(state)
}

// Execute builds the retention table, its summary and the program averages
func (s *RetentionStep) Execute(ctx context.Context, state *OperationState) error {
	report := &state.Report
	report.Retention = s.calculator.Calculate(ctx, state.Records)
	report.RetentionSummary = s.calculator.Summarize(report.Retention)
	report.ProgramRetention = s.calculator.ByProgram(ctx, report.Retention)

	s.console.Retention(report.Retention, previewRows)
	s.console.RetentionSummary(report.RetentionSummary)
	s.console.ProgramRetention(report.ProgramRetention)
	return ctx.Err()
}

// RenderStep writes the chart files
type RenderStep struct {
	BaseStep
	renderer *charts.Renderer
	console  *exporter.ConsoleReport
	metrics  *infrastructure.PipelineMetrics
}

// NewRenderStep creates the render step
func NewRenderStep(renderer *charts.Renderer, console *exporter.ConsoleReport, metrics *infrastructure.PipelineMetrics) *RenderStep {
	return &RenderStep{
		BaseStep: NewBaseStep(StepIDRender, StepNameRender),
		renderer: renderer,
		console:  console,
		metrics:  metrics,
	}
}

// Validate requires cleaned records
func (s *RenderStep) Validate(state *OperationState) error {
	return requireCleaned(state)
}

// Execute renders every chart and lists the written files
func (s *RenderStep) Execute(ctx context.Context, state *OperationState) error {
	written, err := s.renderer.RenderAll(ctx, &state.Report)
	if err != nil {
		return err
	}
	state.Charts = written

	paths := make([]string, len(written))
	for i, c := range written {
		paths[i] = c.Path
		s.metrics.RecordChartRendered(ctx, c.Name, s.renderer.Format())
	}
	s.console.ChartFiles(paths)
	return nil
}
