package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// AttendanceHeader is the column order of the attendance fixtures
var AttendanceHeader = []string{
	"participant_id", "program_name", "age_group",
	"enrollment_date", "attendance_date", "attended",
}

// SampleAttendanceRows is a small dataset across two programs and two months.
//
//	Camp:  P1 attends 1 of 2 sessions, P2 attends 2 of 2
//	STEM:  P3 attends 1 of 2, P4 has an unparseable attendance date
var SampleAttendanceRows = [][]string{
	{"P1", "Camp", "6-8", "2024-05-20", "2024-06-01", "1"},
	{"P1", "Camp", "6-8", "2024-05-20", "2024-06-15", "0"},
	{"P2", "Camp", "9-12", "2024-05-01", "2024-05-10", "1"},
	{"P2", "Camp", "9-12", "2024-05-01", "2024-06-20", "1"},
	{"P3", "STEM", "13-17", "2024-04-01", "2024-05-03", "1"},
	{"P3", "STEM", "13-17", "2024-04-01", "2024-06-03", "0"},
	{"P4", "STEM", "9-12", "not a date", "someday", "0"},
}

// WriteCSV writes header and rows to name inside a temp dir and returns
// the file path.
func WriteCSV(t *testing.T, name string, header []string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			t.Fatalf("write fixture header: %v", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write fixture rows: %v", err)
	}
	return path
}

// WriteSampleAttendanceCSV writes SampleAttendanceRows with AttendanceHeader
func WriteSampleAttendanceCSV(t *testing.T) string {
	t.Helper()
	return WriteCSV(t, "program_participation.csv", AttendanceHeader, SampleAttendanceRows)
}

// WriteRawFile writes content verbatim and returns the path
func WriteRawFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
