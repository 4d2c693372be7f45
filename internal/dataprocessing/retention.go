package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"participation/pkg/contracts/domain"
)

// RetentionCalculator derives how long each participant stayed active
type RetentionCalculator struct {
	logger *slog.Logger
}

// NewRetentionCalculator creates a retention calculator
func NewRetentionCalculator(logger *slog.Logger) *RetentionCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionCalculator{logger: logger}
}

type participantState struct {
	rec        domain.RetentionRecord
	hasProgram bool
}

// Calculate returns one record per participant id, sorted by id.
//
// Enrollment date and program are the first non-missing values in row
// order, so they depend on the order of the input file.
func (c *RetentionCalculator) Calculate(ctx context.Context, records []domain.AttendanceRecord) []domain.RetentionRecord {
	byID := make(map[string]*participantState)
	for _, r := range records {
		if r.ParticipantID == "" {
			continue
		}
		p, ok := byID[r.ParticipantID]
		if !ok {
			p = &participantState{rec: domain.RetentionRecord{ParticipantID: r.ParticipantID}}
			byID[r.ParticipantID] = p
		}

		if p.rec.EnrollmentDate.IsZero() && !r.EnrollmentDate.IsZero() {
			p.rec.EnrollmentDate = r.EnrollmentDate
		}
		if !p.hasProgram && r.ProgramName != "" {
			p.rec.ProgramName = r.ProgramName
			p.hasProgram = true
		}
		if r.HasAttendanceDate() {
			if p.rec.FirstAttendance.IsZero() || r.AttendanceDate.Before(p.rec.FirstAttendance) {
				p.rec.FirstAttendance = r.AttendanceDate
			}
			if p.rec.LastAttendance.IsZero() || r.AttendanceDate.After(p.rec.LastAttendance) {
				p.rec.LastAttendance = r.AttendanceDate
			}
		}
	}

	ids := sortedKeys(byID)
	out := make([]domain.RetentionRecord, 0, len(ids))
	for _, id := range ids {
		rec := byID[id].rec
		if !rec.FirstAttendance.IsZero() {
			rec.RetentionDays = ElapsedDays(rec.FirstAttendance, rec.LastAttendance)
			rec.RetentionValid = true
		}
		out = append(out, rec)
	}

	c.logger.InfoContext(ctx, "retention calculated", slog.Int("participants", len(out)))
	return out
}

// ElapsedDays returns the whole days from first to last, rounded down
func ElapsedDays(first, last time.Time) int {
	return int(math.Floor(last.Sub(first).Hours() / 24))
}

// Summarize computes count, mean, sample standard deviation, min, quartiles
// and max of the valid retention days.
func (c *RetentionCalculator) Summarize(retention []domain.RetentionRecord) domain.RetentionSummary {
	days := ValidRetentionDays(retention)
	if len(days) == 0 {
		return domain.EmptyRetentionSummary()
	}
	sort.Float64s(days)

	mean, std := stat.MeanStdDev(days, nil)
	if len(days) < 2 {
		std = math.NaN()
	}

	return domain.RetentionSummary{
		Count: len(days),
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(days),
		Q25:   LinearQuantile(days, 0.25),
		Q50:   LinearQuantile(days, 0.50),
		Q75:   LinearQuantile(days, 0.75),
		Max:   floats.Max(days),
	}
}

// ByProgram averages retention days per program, sorted by program name.
// Participants without a program or without attendance dates are skipped.
func (c *RetentionCalculator) ByProgram(ctx context.Context, retention []domain.RetentionRecord) []domain.ProgramRetention {
	groups := make(map[string][]float64)
	for _, r := range retention {
		if r.ProgramName == "" {
			continue
		}
		if _, ok := groups[r.ProgramName]; !ok {
			groups[r.ProgramName] = nil
		}
		if r.RetentionValid {
			groups[r.ProgramName] = append(groups[r.ProgramName], float64(r.RetentionDays))
		}
	}

	names := sortedKeys(groups)
	out := make([]domain.ProgramRetention, 0, len(names))
	for _, name := range names {
		days := groups[name]
		avg := math.NaN()
		if len(days) > 0 {
			avg = stat.Mean(days, nil)
		}
		out = append(out, domain.ProgramRetention{
			ProgramName:   name,
			RetentionDays: avg,
			Participants:  len(days),
		})
	}

	c.logger.DebugContext(ctx, "retention by program computed", slog.Int("programs", len(out)))
	return out
}

// ValidRetentionDays returns the retention days of participants that have
// at least one attendance date, in input order.
func ValidRetentionDays(retention []domain.RetentionRecord) []float64 {
	days := make([]float64, 0, len(retention))
	for _, r := range retention {
		if r.RetentionValid {
			days = append(days, float64(r.RetentionDays))
		}
	}
	return days
}

// LinearQuantile returns the q-quantile of sorted data, interpolating
// linearly between the two nearest ranks.
func LinearQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
