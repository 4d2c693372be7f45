package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Manager runs the registered steps in order against one OperationState
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a manager. Nil arguments get defaults: an empty
// registry, NewConfig, a no-op tracer and slog.Default.
func NewManager(logger *slog.Logger, registry *Registry, config *Config, tracer *OperationTracer) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger,
	}
}

// RegisterStep appends a step to the pipeline
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the step registry
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Run executes every registered step in registration order. The first
// failure stops the run; later steps are marked skipped and the failure is
// returned as an *OperationError. Cancellation is checked before each step.
func (m *Manager) Run(ctx context.Context, state *OperationState) error {
	steps := m.registry.List()
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, state.ID, state.InputPath)
	defer span.End()

	state.Start()
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", state.ID),
		slog.String("input", state.InputPath),
		slog.Int("step_count", len(steps)))

	err := m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
		m.logger.InfoContext(ctx, "operation_complete",
			slog.String("operation_id", state.ID),
			slog.Duration("duration", state.Duration()))
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
		m.logger.WarnContext(ctx, "operation_cancelled",
			slog.String("operation_id", state.ID),
			slog.String("error", err.Error()))
	default:
		state.Fail(err)
		m.logger.ErrorContext(ctx, "operation_error",
			slog.String("operation_id", state.ID),
			slog.String("error", err.Error()))
	}
	m.tracer.RecordOperationCompletion(span, state)

	return err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep validates and runs a single step inside its own span
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())

	ctx, span := m.tracer.TraceStepExecution(ctx, state.ID, step.ID())
	defer span.End()

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), err)
		stepState.Fail(opErr)
		m.tracer.RecordStepCompletion(ctx, span, step.ID(), 0, opErr)
		m.logStepError(ctx, state.ID, step.ID(), opErr)
		return opErr
	}

	stepCtx := ctx
	timeout := m.config.GetStepTimeout(step.ID())
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	m.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, err)

	if err == nil {
		stepState.Complete()
		m.logger.InfoContext(ctx, "step_complete",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration))
		return nil
	}

	var opErr *OperationError
	switch {
	case ctx.Err() != nil:
		opErr = NewCancellationError(step.ID(), err)
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
		opErr = NewTimeoutError(step.ID(), timeout.String(), err)
	default:
		opErr = WrapError(err, step.ID())
	}
	stepState.Fail(opErr)
	m.logStepError(ctx, state.ID, step.ID(), opErr)
	return opErr
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (m *Manager) logStepError(ctx context.Context, operationID, stepID string, err error) {
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("error", err.Error()))
}
