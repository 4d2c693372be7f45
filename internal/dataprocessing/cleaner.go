package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"participation/internal/config"
	"participation/internal/errors"
	"participation/pkg/contracts/domain"
)

const monthLayout = "2006-01"

// Column types reported after cleaning
const (
	DataTypeString   = "string"
	DataTypeDatetime = "datetime"
	DataTypeFloat    = "float"
)

// CleanStats describes the cleaned table: per-column types and non-null
// counts, plus the distinct programs and age groups in order of appearance.
type CleanStats struct {
	Rows      int
	Columns   []domain.ColumnInfo
	Programs  []string
	AgeGroups []string
}

// NullCounts returns the missing values per column in column order
func (s *CleanStats) NullCounts() []domain.NullCount {
	out := make([]domain.NullCount, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = domain.NullCount{Column: c.Name, Nulls: s.Rows - c.NonNull}
	}
	return out
}

// Nulls returns the missing values of one column, or -1 if unknown
func (s *CleanStats) Nulls(column string) int {
	for _, c := range s.Columns {
		if c.Name == column {
			return s.Rows - c.NonNull
		}
	}
	return -1
}

// Cleaner turns a raw frame into typed attendance records
type Cleaner struct {
	logger   *slog.Logger
	location *time.Location
}

// NewCleaner creates a cleaner. Dates without a zone are read as UTC.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger, location: time.UTC}
}

// Clean parses the date and attended columns and derives the attendance
// month. Unparseable dates become zero times; they are counted, not errors.
func (c *Cleaner) Clean(ctx context.Context, frame *Frame) ([]domain.AttendanceRecord, *CleanStats, error) {
	cols := make(map[string]Column, len(config.RequiredColumns))
	for _, name := range config.RequiredColumns {
		col, err := frame.Column(name)
		if err != nil {
			return nil, nil, err
		}
		cols[name] = col
	}

	n := frame.Nrow()
	records := make([]domain.AttendanceRecord, n)

	ids := cols[config.ColParticipantID]
	programs := cols[config.ColProgramName]
	ages := cols[config.ColAgeGroup]
	enrollment := cols[config.ColEnrollmentDate]
	attendance := cols[config.ColAttendanceDate]
	attended := cols[config.ColAttended]

	unparsed := map[string]int{}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		rec := domain.AttendanceRecord{Row: i + 1}
		if !ids.IsNull(i) {
			rec.ParticipantID = ids.Values[i]
		}
		if !programs.IsNull(i) {
			rec.ProgramName = programs.Values[i]
		}
		if !ages.IsNull(i) {
			rec.AgeGroup = ages.Values[i]
		}

		var ok bool
		if !enrollment.IsNull(i) {
			if rec.EnrollmentDate, ok = c.parseDate(enrollment.Values[i]); !ok {
				unparsed[config.ColEnrollmentDate]++
			}
		}
		if !attendance.IsNull(i) {
			if rec.AttendanceDate, ok = c.parseDate(attendance.Values[i]); !ok {
				unparsed[config.ColAttendanceDate]++
			}
		}
		if rec.HasAttendanceDate() {
			rec.AttendanceMonth = rec.AttendanceDate.Format(monthLayout)
		}

		if !attended.IsNull(i) {
			v, err := ParseAttended(attended.Values[i])
			if err != nil {
				return nil, nil, errors.NewParsingError(
					fmt.Sprintf("invalid %s value %q", config.ColAttended, attended.Values[i]), err).
					WithContext("row", i+1).
					WithContext("column", config.ColAttended)
			}
			rec.Attended = v
			rec.AttendedValid = true
		}

		records[i] = rec
	}

	for col, count := range unparsed {
		c.logger.WarnContext(ctx, "unparseable dates treated as missing",
			slog.String("column", col),
			slog.Int("count", count))
	}

	stats := buildStats(frame, records, cols)
	c.logger.InfoContext(ctx, "data cleaned",
		slog.Int("rows", n),
		slog.Int("programs", len(stats.Programs)),
		slog.Int("age_groups", len(stats.AgeGroups)))

	return records, stats, nil
}

// parseDate reads a free-form date string. The second result is false when
// the value cannot be parsed.
func (c *Cleaner) parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(value, c.location)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(c.location), true
}

// ParseAttended converts an attended cell into a 0/1 indicator. Boolean
// words and finite numbers are accepted.
func ParseAttended(value string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y":
		return 1, nil
	case "0", "false", "f", "no", "n":
		return 0, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", value)
	}
	return v, nil
}

func buildStats(frame *Frame, records []domain.AttendanceRecord, cols map[string]Column) *CleanStats {
	stats := &CleanStats{Rows: len(records)}

	count := func(pred func(domain.AttendanceRecord) bool) int {
		n := 0
		for _, r := range records {
			if pred(r) {
				n++
			}
		}
		return n
	}

	for _, name := range frame.Names() {
		info := domain.ColumnInfo{Name: name, DataType: DataTypeString}
		switch name {
		case config.ColEnrollmentDate:
			info.DataType = DataTypeDatetime
			info.NonNull = count(func(r domain.AttendanceRecord) bool { return !r.EnrollmentDate.IsZero() })
		case config.ColAttendanceDate:
			info.DataType = DataTypeDatetime
			info.NonNull = count(domain.AttendanceRecord.HasAttendanceDate)
		case config.ColAttendanceMonth:
			// overwritten by the derived month
			info.NonNull = count(domain.AttendanceRecord.HasAttendanceDate)
		case config.ColAttended:
			info.DataType = DataTypeFloat
			info.NonNull = count(func(r domain.AttendanceRecord) bool { return r.AttendedValid })
		default:
			col, ok := cols[name]
			if !ok {
				var err error
				if col, err = frame.Column(name); err != nil {
					continue
				}
			}
			info.NonNull = col.NonNull()
		}
		stats.Columns = append(stats.Columns, info)
	}

	if !frame.HasColumn(config.ColAttendanceMonth) {
		stats.Columns = append(stats.Columns, domain.ColumnInfo{
			Name:     config.ColAttendanceMonth,
			DataType: DataTypeString,
			NonNull:  count(domain.AttendanceRecord.HasAttendanceDate),
		})
	}

	stats.Programs = uniqueInOrder(cols[config.ColProgramName])
	stats.AgeGroups = uniqueInOrder(cols[config.ColAgeGroup])
	return stats
}

// uniqueInOrder returns distinct non-null values in order of first appearance
func uniqueInOrder(col Column) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i, v := range col.Values {
		if col.Null[i] {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
