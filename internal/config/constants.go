package config

import "participation/pkg/contracts"

// Application constants
const (
	AppName    = "participation-report"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. PARTICIPATION_INPUT_FILE.
	EnvPrefix = "PARTICIPATION"

	// Default input, relative to the working directory
	DefaultInputFile = "program_participation.csv"

	// Config file names searched in the working directory
	DefaultConfigFile = "participation.yaml"

	// Output locations. The charts directory is relative to the reports
	// directory, everything else to the working directory.
	DefaultReportsDir = "reports"
	DefaultChartsDir  = "charts"
	DefaultLogFile    = "logs/participation.log"

	// Chart defaults
	DefaultChartFormat   = "png"
	DefaultChartWidthIn  = 8.0
	DefaultChartHeightIn = 5.0
	DefaultHistogramBins = 20

	// Number of rows printed by the head preview
	DefaultHeadRows = 5
)

// Input column names
const (
	ColParticipantID  = "participant_id"
	ColProgramName    = "program_name"
	ColAgeGroup       = "age_group"
	ColEnrollmentDate = "enrollment_date"
	ColAttendanceDate = "attendance_date"
	ColAttended       = "attended"
	// ColAttendanceMonth is derived by the cleaner, never read from input.
	ColAttendanceMonth = "attendance_month"
)

// RequiredColumns lists the input columns the pipeline references.
var RequiredColumns = []string{
	ColParticipantID,
	ColProgramName,
	ColAgeGroup,
	ColEnrollmentDate,
	ColAttendanceDate,
	ColAttended,
}

// Chart file names (extension added from the configured format)
const (
	ChartAttendanceByProgram   = "attendance_rate_by_program"
	ChartMonthlyTrend          = "monthly_attendance_trend"
	ChartMonthlyTrendByProgram = "monthly_attendance_trend_by_program"
	ChartRetentionHistogram    = "retention_distribution"
	ChartRetentionByProgram    = "average_retention_by_program"
)
