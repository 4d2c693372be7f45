package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "render error type", errType: ErrTypeRender, expected: "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "missing column \"attended\"",
			},
			wantMessage: "[VALIDATION] missing column \"attended\"",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "failed to read csv",
				Cause:   fmt.Errorf("wrong number of fields"),
			},
			wantMessage: "[PARSING] failed to read csv: wrong number of fields",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeRender,
			},
			wantMessage: "[RENDER] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewStorageError("failed to create charts directory", cause)

	assert.Same(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, NewValidationError("bad").Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad value"}

	got := err.WithContext("row", 12).WithContext("column", "attended")

	require.Same(t, err, got)
	assert.Equal(t, 12, got.Context["row"])
	assert.Equal(t, "attended", got.Context["column"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
		wantWrap bool
	}{
		{"parsing", NewParsingError("bad csv", cause), ErrTypeParsing, "bad csv", true},
		{"storage", NewStorageError("write failed", cause), ErrTypeStorage, "write failed", true},
		{"validation", NewValidationError("invalid"), ErrTypeValidation, "invalid", false},
		{"not found", NewNotFoundError("input file", cause), ErrTypeNotFound, "input file not found", true},
		{"config", NewConfigError("bad config", cause), ErrTypeConfig, "bad config", true},
		{"render", NewRenderError("chart failed", cause), ErrTypeRender, "chart failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.NotNil(t, tt.err.Context)
			if tt.wantWrap {
				assert.ErrorIs(t, tt.err, cause)
			}
		})
	}
}

func TestNewMissingColumnError(t *testing.T) {
	err := NewMissingColumnError("program_name")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Contains(t, err.Error(), `missing column "program_name"`)

	v, ok := ContextValue(fmt.Errorf("clean: %w", err), "column")
	require.True(t, ok)
	assert.Equal(t, "program_name", v)
}

func TestIsType(t *testing.T) {
	inner := NewNotFoundError("input file", errors.New("no such file"))
	outer := NewParsingError("load failed", inner)

	assert.True(t, IsType(outer, ErrTypeParsing))
	assert.True(t, IsType(outer, ErrTypeNotFound))
	assert.True(t, IsType(fmt.Errorf("wrapped: %w", outer), ErrTypeNotFound))
	assert.False(t, IsType(outer, ErrTypeRender))
	assert.False(t, IsType(errors.New("plain"), ErrTypeParsing))
	assert.False(t, IsType(nil, ErrTypeParsing))
}

func TestContextValue_NoAppError(t *testing.T) {
	_, ok := ContextValue(errors.New("plain"), "column")
	assert.False(t, ok)
}
