package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "participation/internal/errors"
)

func TestOperationError_Error(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{"validation", NewValidationError("clean", errors.New("no frame loaded")), "[validation] clean: step validation failed: no frame loaded"},
		{"execution", NewExecutionError("render", cause), "[execution] render: step execution failed: disk full"},
		{"timeout", NewTimeoutError("render", "5m0s", context.DeadlineExceeded), "[timeout] render: step exceeded timeout of 5m0s: context deadline exceeded"},
		{"cancellation", NewCancellationError("load", context.Canceled), "[cancellation] load: operation was cancelled: context canceled"},
		{"no step", &OperationError{Type: ErrorTypeExecution, Message: "failed"}, "[execution] failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "load"))

	t.Run("plain error becomes execution error", func(t *testing.T) {
		cause := apperrors.NewMissingColumnError("attended")
		wrapped := WrapError(cause, "clean")

		assert.Equal(t, ErrorTypeExecution, wrapped.Type)
		assert.Equal(t, "clean", wrapped.Step)
		assert.True(t, apperrors.IsType(wrapped, apperrors.ErrTypeValidation))
		column, ok := apperrors.ContextValue(wrapped, "column")
		require.True(t, ok)
		assert.Equal(t, "attended", column)
	})

	t.Run("operation error keeps its type", func(t *testing.T) {
		inner := &OperationError{Type: ErrorTypeTimeout, Message: "slow"}
		wrapped := WrapError(fmt.Errorf("outer: %w", inner), "render")

		assert.Same(t, inner, wrapped)
		assert.Equal(t, "render", wrapped.Step)
	})
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(fmt.Errorf("wrapped: %w", NewCancellationError("load", nil))))
}
