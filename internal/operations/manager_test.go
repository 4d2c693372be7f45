package operations

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"participation/internal/config"
	apperrors "participation/internal/errors"
	"participation/internal/infrastructure"
	"participation/internal/shared/testutil"
)

// funcStep is a Step backed by closures
type funcStep struct {
	BaseStep
	execute  func(ctx context.Context, state *OperationState) error
	validate func(state *OperationState) error
}

func newFuncStep(id string, execute func(ctx context.Context, state *OperationState) error) *funcStep {
	return &funcStep{BaseStep: NewBaseStep(id, strings.ToUpper(id)), execute: execute}
}

func (s *funcStep) Execute(ctx context.Context, state *OperationState) error {
	if s.execute == nil {
		return nil
	}
	return s.execute(ctx, state)
}

func (s *funcStep) Validate(state *OperationState) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(state)
}

func newTestManager(t *testing.T, steps ...Step) (*Manager, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	m := NewManager(logger, nil, nil, nil)
	for _, s := range steps {
		require.NoError(t, m.RegisterStep(s))
	}
	return m, handler
}

func TestManager_RunInOrder(t *testing.T) {
	var order []string
	record := func(id string) *funcStep {
		return newFuncStep(id, func(ctx context.Context, state *OperationState) error {
			order = append(order, id)
			return nil
		})
	}
	m, handler := newTestManager(t, record(StepIDLoad), record(StepIDClean), record(StepIDRender))

	state := NewOperationState("run-1", "in.csv")
	require.NoError(t, m.Run(context.Background(), state))

	assert.Equal(t, []string{"load", "clean", "render"}, order)
	assert.Equal(t, OperationStatusCompleted, state.GetStatus())
	assert.Len(t, state.StepsWithStatus(StepStatusCompleted), 3)
	assert.True(t, handler.ContainsMessage("operation_complete"))
	assert.True(t, handler.ContainsAttr("step", "clean"))
	testutil.AssertNoErrors(t, handler)
}

func TestManager_FirstFailureStopsRun(t *testing.T) {
	ran := false
	m, handler := newTestManager(t,
		newFuncStep(StepIDLoad, nil),
		newFuncStep(StepIDClean, func(ctx context.Context, state *OperationState) error {
			return apperrors.NewMissingColumnError("attended")
		}),
		newFuncStep(StepIDAggregate, func(ctx context.Context, state *OperationState) error {
			ran = true
			return nil
		}),
	)

	state := NewOperationState("run-1", "in.csv")
	err := m.Run(context.Background(), state)
	require.Error(t, err)
	assert.False(t, ran)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeExecution, opErr.Type)
	assert.Equal(t, StepIDClean, opErr.Step)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	assert.Equal(t, OperationStatusFailed, state.GetStatus())
	assert.Equal(t, StepStatusCompleted, state.GetStep(StepIDLoad).GetStatus())
	assert.Equal(t, StepStatusFailed, state.GetStep(StepIDClean).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep(StepIDAggregate).GetStatus())
	testutil.AssertLogContains(t, handler, slog.LevelError, "step_error")
}

func TestManager_ValidationFailure(t *testing.T) {
	executed := false
	step := newFuncStep(StepIDClean, func(ctx context.Context, state *OperationState) error {
		executed = true
		return nil
	})
	step.validate = func(state *OperationState) error {
		return errors.New("no frame loaded")
	}
	m, _ := newTestManager(t, step)

	state := NewOperationState("run-1", "in.csv")
	err := m.Run(context.Background(), state)

	assert.False(t, executed)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Contains(t, err.Error(), "no frame loaded")
	assert.Equal(t, StepStatusFailed, state.GetStep(StepIDClean).GetStatus())
}

func TestManager_CancelledBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m, _ := newTestManager(t,
		newFuncStep(StepIDLoad, func(context.Context, *OperationState) error {
			cancel()
			return nil
		}),
		newFuncStep(StepIDClean, nil),
		newFuncStep(StepIDAggregate, nil),
	)

	state := NewOperationState("run-1", "in.csv")
	err := m.Run(ctx, state)

	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OperationStatusCancelled, state.GetStatus())
	assert.Equal(t, StepStatusCompleted, state.GetStep(StepIDLoad).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep(StepIDClean).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep(StepIDAggregate).GetStatus())
}

func TestManager_StepTimeout(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := NewConfig()
	cfg.SetStepTimeout(StepIDRender, 10*time.Millisecond)
	m := NewManager(logger, nil, cfg, nil)
	require.NoError(t, m.RegisterStep(newFuncStep(StepIDRender, func(ctx context.Context, state *OperationState) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	err := m.Run(context.Background(), NewOperationState("run-1", "in.csv"))

	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_EmptyRegistry(t *testing.T) {
	m, _ := newTestManager(t)
	state := NewOperationState("run-1", "in.csv")
	require.NoError(t, m.Run(context.Background(), state))
	assert.Equal(t, OperationStatusCompleted, state.GetStatus())
	assert.Equal(t, 0, m.GetRegistry().Count())
}

func TestManager_Telemetry(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, &config.Paths{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })
	providers.Tracer = tp.Tracer("test")

	logger, handler := testutil.NewTestLogger(t)
	m := NewManager(logger, nil, nil, NewOperationTracer(providers))
	require.NoError(t, m.RegisterStep(newFuncStep(StepIDLoad, nil)))
	require.NoError(t, m.RegisterStep(newFuncStep(StepIDClean, func(context.Context, *OperationState) error {
		return errors.New("bad row")
	})))

	require.Error(t, m.Run(context.Background(), NewOperationState("run-1", "in.csv")))

	spans := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range recorder.Ended() {
		spans[s.Name()] = s
	}
	require.Contains(t, spans, "operation.execute")
	require.Contains(t, spans, StepIDLoad)
	require.Contains(t, spans, StepIDClean)
	assert.Equal(t, codes.Ok, spans[StepIDLoad].Status().Code)
	assert.Equal(t, codes.Error, spans[StepIDClean].Status().Code)
	assert.Equal(t, codes.Error, spans["operation.execute"].Status().Code)
	assert.Equal(t, spans["operation.execute"].SpanContext().TraceID(), spans[StepIDClean].SpanContext().TraceID())

	assert.True(t, handler.ContainsAttr("operation_id", "run-1"))

	families, err := providers.Registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, strings.Join(names, " "), "participation_step_duration")
	assert.Contains(t, strings.Join(names, " "), "participation_steps")
}
