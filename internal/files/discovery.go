package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"participation/internal/errors"
)

// AttendanceExtensions are the file types the loader reads
var AttendanceExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
	".xlsm": true,
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// IsAttendanceFile reports whether name has a loadable extension and is
// not an Excel lock file.
func IsAttendanceFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		return false
	}
	return AttendanceExtensions[strings.ToLower(filepath.Ext(base))]
}

// Discovery finds attendance exports on disk
type Discovery struct {
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{logger: logger}
}

// FindAttendanceFiles lists the attendance files directly inside dir,
// oldest first.
func (d *Discovery) FindAttendanceFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsAttendanceFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// ResolveInput returns path unchanged unless it names a directory, in
// which case the most recently modified attendance file inside it is
// returned.
func (d *Discovery) ResolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}

	files, err := d.FindAttendanceFiles(path)
	if err != nil {
		return "", errors.NewStorageError("failed to scan input directory", err).WithContext("path", path)
	}
	latest, ok := GetLatestFile(files)
	if !ok {
		return "", errors.NewNotFoundError("attendance file", nil).WithContext("path", path)
	}

	d.logger.Info("Resolved input directory",
		slog.String("directory", path),
		slog.String("file", latest.Name),
		slog.Int("candidates", len(files)))
	return latest.Path, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
