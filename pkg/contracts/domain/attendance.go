package domain

import (
	"math"
	"time"
)

// AttendanceRecord is one participant-per-session row after cleaning.
// A zero time.Time is a missing date.
type AttendanceRecord struct {
	Row             int       `json:"row"`
	ParticipantID   string    `json:"participant_id"`
	ProgramName     string    `json:"program_name"`
	AgeGroup        string    `json:"age_group"`
	EnrollmentDate  time.Time `json:"enrollment_date"`
	AttendanceDate  time.Time `json:"attendance_date"`
	AttendanceMonth string    `json:"attendance_month"`
	Attended        float64   `json:"attended"`
	AttendedValid   bool      `json:"attended_valid"`
}

// HasAttendanceDate reports whether the attendance date parsed
func (r AttendanceRecord) HasAttendanceDate() bool {
	return !r.AttendanceDate.IsZero()
}

// ProgramAttendanceRate is the mean attended indicator for one program
type ProgramAttendanceRate struct {
	ProgramName    string  `json:"program_name"`
	Attended       float64 `json:"attended"`
	AttendanceRate float64 `json:"attendance_rate"`
	Rows           int     `json:"rows"`
}

// MonthlyAttendanceRate is the mean attended indicator for one YYYY-MM bucket
type MonthlyAttendanceRate struct {
	Month          string  `json:"attendance_month"`
	Attended       float64 `json:"attended"`
	AttendanceRate float64 `json:"attendance_rate"`
	Rows           int     `json:"rows"`
}

// MonthlyProgramAttendanceRate is keyed by (month, program)
type MonthlyProgramAttendanceRate struct {
	Month          string  `json:"attendance_month"`
	ProgramName    string  `json:"program_name"`
	Attended       float64 `json:"attended"`
	AttendanceRate float64 `json:"attendance_rate"`
	Rows           int     `json:"rows"`
}

// RetentionRecord describes how long one participant stayed active.
// RetentionValid is false when the participant has no attendance date.
type RetentionRecord struct {
	ParticipantID   string    `json:"participant_id"`
	EnrollmentDate  time.Time `json:"enrollment_date"`
	FirstAttendance time.Time `json:"first_attendance"`
	LastAttendance  time.Time `json:"last_attendance"`
	RetentionDays   int       `json:"retention_days"`
	RetentionValid  bool      `json:"retention_valid"`
	ProgramName     string    `json:"program_name"`
}

// ProgramRetention is the mean retention of a program's participants
type ProgramRetention struct {
	ProgramName   string  `json:"program_name"`
	RetentionDays float64 `json:"retention_days"`
	Participants  int     `json:"participants"`
}

// RetentionSummary holds descriptive statistics of retention days.
// Fields other than Count are NaN when they are undefined.
type RetentionSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"25%"`
	Q50   float64 `json:"50%"`
	Q75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// EmptyRetentionSummary returns the summary of an empty sample
func EmptyRetentionSummary() RetentionSummary {
	nan := math.NaN()
	return RetentionSummary{Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
}

// ColumnInfo is one line of a frame schema summary
type ColumnInfo struct {
	Name     string `json:"name"`
	NonNull  int    `json:"non_null"`
	DataType string `json:"dtype"`
}

// FrameInfo summarises a loaded table
type FrameInfo struct {
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// NullCount is the number of missing values in one column
type NullCount struct {
	Column string `json:"column"`
	Nulls  int    `json:"nulls"`
}

// AttendanceReport collects every derived table of one run
type AttendanceReport struct {
	ProgramRates        []ProgramAttendanceRate        `json:"program_rates"`
	MonthlyRates        []MonthlyAttendanceRate        `json:"monthly_rates"`
	MonthlyProgramRates []MonthlyProgramAttendanceRate `json:"monthly_program_rates"`
	Retention           []RetentionRecord              `json:"retention"`
	RetentionSummary    RetentionSummary               `json:"retention_summary"`
	ProgramRetention    []ProgramRetention             `json:"program_retention"`
}
