package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"participation/pkg/contracts/domain"
)

// accumulator reduces one group's attended values
type accumulator struct {
	sum   float64
	valid int
	rows  int
}

func (a *accumulator) add(r domain.AttendanceRecord) {
	a.rows++
	if r.AttendedValid {
		a.sum += r.Attended
		a.valid++
	}
}

// mean of valid values; NaN when the group has none
func (a *accumulator) mean() float64 {
	if a.valid == 0 {
		return math.NaN()
	}
	return a.sum / float64(a.valid)
}

type monthProgramKey struct {
	month   string
	program string
}

// Aggregator computes attendance rates per group. Tables are sorted by key
// and rows with an empty group key are left out of that grouping.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// ByProgram returns the attendance rate of every program
func (a *Aggregator) ByProgram(ctx context.Context, records []domain.AttendanceRecord) []domain.ProgramAttendanceRate {
	groups := make(map[string]*accumulator)
	for _, r := range records {
		if r.ProgramName == "" {
			continue
		}
		groupFor(groups, r.ProgramName).add(r)
	}

	keys := sortedKeys(groups)
	out := make([]domain.ProgramAttendanceRate, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		m := acc.mean()
		out = append(out, domain.ProgramAttendanceRate{
			ProgramName:    k,
			Attended:       m,
			AttendanceRate: m * 100,
			Rows:           acc.rows,
		})
	}

	a.logger.DebugContext(ctx, "attendance by program computed", slog.Int("groups", len(out)))
	return out
}

// ByMonth returns the attendance rate of every attendance month
func (a *Aggregator) ByMonth(ctx context.Context, records []domain.AttendanceRecord) []domain.MonthlyAttendanceRate {
	groups := make(map[string]*accumulator)
	for _, r := range records {
		if r.AttendanceMonth == "" {
			continue
		}
		groupFor(groups, r.AttendanceMonth).add(r)
	}

	keys := sortedKeys(groups)
	out := make([]domain.MonthlyAttendanceRate, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		m := acc.mean()
		out = append(out, domain.MonthlyAttendanceRate{
			Month:          k,
			Attended:       m,
			AttendanceRate: m * 100,
			Rows:           acc.rows,
		})
	}

	a.logger.DebugContext(ctx, "monthly attendance computed", slog.Int("groups", len(out)))
	return out
}

// ByMonthAndProgram returns the attendance rate per (month, program),
// ordered by month then program.
func (a *Aggregator) ByMonthAndProgram(ctx context.Context, records []domain.AttendanceRecord) []domain.MonthlyProgramAttendanceRate {
	groups := make(map[monthProgramKey]*accumulator)
	for _, r := range records {
		if r.AttendanceMonth == "" || r.ProgramName == "" {
			continue
		}
		k := monthProgramKey{month: r.AttendanceMonth, program: r.ProgramName}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
		}
		acc.add(r)
	}

	keys := make([]monthProgramKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].program < keys[j].program
	})

	out := make([]domain.MonthlyProgramAttendanceRate, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		m := acc.mean()
		out = append(out, domain.MonthlyProgramAttendanceRate{
			Month:          k.month,
			ProgramName:    k.program,
			Attended:       m,
			AttendanceRate: m * 100,
			Rows:           acc.rows,
		})
	}

	a.logger.DebugContext(ctx, "monthly attendance by program computed", slog.Int("groups", len(out)))
	return out
}

// ProgramsInOrder returns the distinct programs of a month-by-program table
// in order of first appearance.
func ProgramsInOrder(rates []domain.MonthlyProgramAttendanceRate) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rates {
		if _, ok := seen[r.ProgramName]; ok {
			continue
		}
		seen[r.ProgramName] = struct{}{}
		out = append(out, r.ProgramName)
	}
	return out
}

func groupFor(groups map[string]*accumulator, key string) *accumulator {
	acc, ok := groups[key]
	if !ok {
		acc = &accumulator{}
		groups[key] = acc
	}
	return acc
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
