package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationState_Lifecycle(t *testing.T) {
	tests := []struct {
		name       string
		finish     func(s *OperationState)
		wantStatus OperationStatusValue
		wantErr    bool
	}{
		{"complete", func(s *OperationState) { s.Complete() }, OperationStatusCompleted, false},
		{"fail", func(s *OperationState) { s.Fail(errors.New("boom")) }, OperationStatusFailed, true},
		{"cancel", func(s *OperationState) { s.Cancel(errors.New("interrupted")) }, OperationStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewOperationState("run-1", "attendance.csv")
			assert.Equal(t, OperationStatusPending, s.GetStatus())
			assert.Equal(t, "attendance.csv", s.InputPath)

			s.Start()
			assert.Equal(t, OperationStatusRunning, s.GetStatus())
			assert.Nil(t, s.EndTime)

			tt.finish(s)
			assert.Equal(t, tt.wantStatus, s.GetStatus())
			require.NotNil(t, s.EndTime)
			assert.Equal(t, tt.wantErr, s.Error != nil)
			assert.GreaterOrEqual(t, s.Duration().Nanoseconds(), int64(0))
		})
	}
}

func TestOperationState_StepsKeepOrder(t *testing.T) {
	s := NewOperationState("run-1", "in.csv")
	for _, id := range []string{StepIDLoad, StepIDClean, StepIDAggregate} {
		s.SetStep(id, NewStepState(id, id))
	}
	// re-registering keeps the original position
	s.SetStep(StepIDLoad, NewStepState(StepIDLoad, "again"))

	assert.Equal(t, []string{"load", "clean", "aggregate"}, s.Order)
	assert.Equal(t, "again", s.GetStep(StepIDLoad).Name)
	assert.Nil(t, s.GetStep("missing"))
}

func TestOperationState_StepsWithStatus(t *testing.T) {
	s := NewOperationState("run-1", "in.csv")
	for _, id := range []string{StepIDLoad, StepIDClean, StepIDAggregate, StepIDRender} {
		s.SetStep(id, NewStepState(id, id))
	}
	assert.False(t, s.HasFailures())

	s.GetStep(StepIDLoad).Complete()
	s.GetStep(StepIDClean).Fail(errors.New("bad"))
	s.GetStep(StepIDAggregate).Skip("upstream")
	s.GetStep(StepIDRender).Skip("upstream")

	skipped := s.StepsWithStatus(StepStatusSkipped)
	require.Len(t, skipped, 2)
	assert.Equal(t, StepIDAggregate, skipped[0].ID)
	assert.Equal(t, StepIDRender, skipped[1].ID)
	assert.True(t, s.HasFailures())
	assert.Empty(t, s.StepsWithStatus(StepStatusActive))
}
