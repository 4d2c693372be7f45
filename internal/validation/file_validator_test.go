package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"participation/internal/errors"
	"participation/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  errors.ErrorType
	}{
		{
			name: "csv file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteSampleAttendanceCSV(t)
			},
		},
		{
			name: "xlsx file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteRawFile(t, "attendance.xlsx", "stub")
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantType: errors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteRawFile(t, "attendance.json", "{}")
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteRawFile(t, "~$attendance.xlsx", "")
			},
			wantType: errors.ErrTypeValidation,
		},
	}

	validator := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupFunc(t)
			err := validator.ValidateInputFile(path)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), err.Error())
			got, ok := errors.ContextValue(err, "path")
			require.True(t, ok)
			assert.Equal(t, path, got)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	validator := NewFileValidator(logger)

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports", "charts")
		require.NoError(t, validator.ValidateOutputDirectory(dir))
		assert.DirExists(t, dir)
		assert.NoFileExists(t, filepath.Join(dir, ".write_test"))
	})

	t.Run("path is a file", func(t *testing.T) {
		file := testutil.WriteRawFile(t, "blocker", "x")
		err := validator.ValidateOutputDirectory(filepath.Join(file, "charts"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
		assert.True(t, handler.ContainsMessage("Failed to create output directory"))
	})

	t.Run("existing directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.png"), []byte("x"), 0644))
		require.NoError(t, validator.ValidateOutputDirectory(dir))
		assert.FileExists(t, filepath.Join(dir, "keep.png"))
	})
}
