package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"participation/internal/errors"
	"participation/internal/files"
)

// FileValidator checks input and output locations before a run touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path is a readable attendance file with a
// supported extension.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return errors.NewNotFoundError("input file", err).WithContext("path", path)
	}
	if err != nil {
		return errors.NewStorageError("failed to stat input file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path)).
			WithContext("path", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !files.AttendanceExtensions[ext] {
		v.logger.Error("Unsupported input file type",
			slog.String("file", path),
			slog.String("extension", ext))
		return errors.NewValidationError(fmt.Sprintf("unsupported input file type %q", ext)).
			WithContext("path", path)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return errors.NewValidationError("input is a temporary Excel lock file").
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewStorageError("input file is not readable", err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError("failed to create output directory", err).WithContext("path", dir)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError("output directory is not writable", err).WithContext("path", dir)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
