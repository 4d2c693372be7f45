package dataprocessing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"participation/internal/shared/testutil"
	"participation/pkg/contracts/domain"
)

func TestRetentionCalculator_Calculate(t *testing.T) {
	retention := NewRetentionCalculator(nil).Calculate(context.Background(), sampleRecords(t))

	require.Len(t, retention, 4)

	p1 := retention[0]
	assert.Equal(t, "P1", p1.ParticipantID)
	assert.Equal(t, date(2024, 5, 20), p1.EnrollmentDate)
	assert.Equal(t, date(2024, 6, 1), p1.FirstAttendance)
	assert.Equal(t, date(2024, 6, 15), p1.LastAttendance)
	assert.Equal(t, 14, p1.RetentionDays)
	assert.True(t, p1.RetentionValid)
	assert.Equal(t, "Camp", p1.ProgramName)

	assert.Equal(t, 41, retention[1].RetentionDays)
	assert.Equal(t, 31, retention[2].RetentionDays)

	// no parseable attendance date
	p4 := retention[3]
	assert.Equal(t, "P4", p4.ParticipantID)
	assert.False(t, p4.RetentionValid)
	assert.True(t, p4.EnrollmentDate.IsZero())
	assert.Equal(t, "STEM", p4.ProgramName)
}

func TestRetentionCalculator_CampScenario(t *testing.T) {
	frame, err := NewFrame([][]string{
		testutil.AttendanceHeader,
		{"P1", "Camp", "6-8", "2024-05-01", "2024-06-01", "1"},
		{"P1", "Camp", "6-8", "2024-05-01", "2024-06-15", "0"},
	})
	require.NoError(t, err)
	records, _, err := NewCleaner(nil).Clean(context.Background(), frame)
	require.NoError(t, err)

	rates := NewAggregator(nil).ByProgram(context.Background(), records)
	require.Len(t, rates, 1)
	assert.Equal(t, 50.0, rates[0].AttendanceRate)

	retention := NewRetentionCalculator(nil).Calculate(context.Background(), records)
	require.Len(t, retention, 1)
	assert.Equal(t, 14, retention[0].RetentionDays)
	assert.Equal(t, "Camp", retention[0].ProgramName)
}

func TestRetentionCalculator_FirstSeenDependsOnOrder(t *testing.T) {
	rows := []domain.AttendanceRecord{
		{ParticipantID: "P1", ProgramName: "Swim", EnrollmentDate: date(2024, 3, 1), AttendanceDate: date(2024, 3, 5)},
		{ParticipantID: "P1", ProgramName: "Camp", EnrollmentDate: date(2024, 1, 1), AttendanceDate: date(2024, 1, 5)},
	}
	calc := NewRetentionCalculator(nil)

	forward := calc.Calculate(context.Background(), rows)
	reversed := calc.Calculate(context.Background(), []domain.AttendanceRecord{rows[1], rows[0]})

	assert.Equal(t, "Swim", forward[0].ProgramName)
	assert.Equal(t, date(2024, 3, 1), forward[0].EnrollmentDate)
	assert.Equal(t, "Camp", reversed[0].ProgramName)
	assert.Equal(t, date(2024, 1, 1), reversed[0].EnrollmentDate)

	// min/max do not depend on order
	assert.Equal(t, forward[0].RetentionDays, reversed[0].RetentionDays)
	assert.Equal(t, 60, forward[0].RetentionDays)
}

func TestRetentionCalculator_SkipsMissingValues(t *testing.T) {
	rows := []domain.AttendanceRecord{
		{ParticipantID: "P1", ProgramName: "", AttendanceDate: date(2024, 1, 5)},
		{ParticipantID: "P1", ProgramName: "Camp", EnrollmentDate: date(2024, 1, 1)},
		{ParticipantID: "", ProgramName: "Camp", AttendanceDate: date(2024, 1, 9)},
	}

	retention := NewRetentionCalculator(nil).Calculate(context.Background(), rows)

	require.Len(t, retention, 1)
	assert.Equal(t, "Camp", retention[0].ProgramName)
	assert.Equal(t, date(2024, 1, 1), retention[0].EnrollmentDate)
	assert.Equal(t, 0, retention[0].RetentionDays)
	assert.True(t, retention[0].RetentionValid)
}

func TestElapsedDays(t *testing.T) {
	base := date(2024, 1, 1)
	tests := []struct {
		name string
		last time.Time
		want int
	}{
		{"same day", base, 0},
		{"partial day rounds down", base.Add(30 * time.Hour), 1},
		{"leap day", date(2024, 3, 1), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedDays(base, tt.last))
		})
	}
}

func TestRetentionCalculator_Summarize(t *testing.T) {
	calc := NewRetentionCalculator(nil)
	summary := calc.Summarize(calc.Calculate(context.Background(), sampleRecords(t)))

	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 86.0/3, summary.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(186.0+1.0/3), summary.Std, 1e-9)
	assert.Equal(t, 14.0, summary.Min)
	assert.Equal(t, 22.5, summary.Q25)
	assert.Equal(t, 31.0, summary.Q50)
	assert.Equal(t, 36.0, summary.Q75)
	assert.Equal(t, 41.0, summary.Max)
}

func TestRetentionCalculator_SummarizeSmall(t *testing.T) {
	calc := NewRetentionCalculator(nil)

	empty := calc.Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.Max))

	one := calc.Summarize([]domain.RetentionRecord{{RetentionDays: 7, RetentionValid: true}})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 7.0, one.Mean)
	assert.True(t, math.IsNaN(one.Std))
	assert.Equal(t, 7.0, one.Q25)
}

func TestRetentionCalculator_ByProgram(t *testing.T) {
	calc := NewRetentionCalculator(nil)
	byProgram := calc.ByProgram(context.Background(), calc.Calculate(context.Background(), sampleRecords(t)))

	want := []domain.ProgramRetention{
		{ProgramName: "Camp", RetentionDays: 27.5, Participants: 2},
		{ProgramName: "STEM", RetentionDays: 31, Participants: 1},
	}
	assert.Equal(t, want, byProgram)
}

func TestRetentionCalculator_ByProgramAllInvalid(t *testing.T) {
	byProgram := NewRetentionCalculator(nil).ByProgram(context.Background(), []domain.RetentionRecord{
		{ParticipantID: "P1", ProgramName: "Swim"},
		{ParticipantID: "P2"},
	})

	require.Len(t, byProgram, 1)
	assert.Equal(t, "Swim", byProgram[0].ProgramName)
	assert.True(t, math.IsNaN(byProgram[0].RetentionDays))
	assert.Equal(t, 0, byProgram[0].Participants)
}

func TestLinearQuantile(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, LinearQuantile(data, tt.q), 1e-12, "q=%v", tt.q)
	}
	assert.True(t, math.IsNaN(LinearQuantile(nil, 0.5)))
}
