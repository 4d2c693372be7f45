package exporter

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"participation/pkg/contracts/domain"
)

// ConsoleReport writes the inspection output and derived tables as text
// tables, one titled section per table.
type ConsoleReport struct {
	w     io.Writer
	title *color.Color
	note  *color.Color
}

// NewConsoleReport creates a report writing to w. Section titles are
// colored only when useColor is set.
func NewConsoleReport(w io.Writer, useColor bool) *ConsoleReport {
	title := color.New(color.FgYellow, color.Bold)
	note := color.New(color.FgCyan)
	if useColor {
		title.EnableColor()
		note.EnableColor()
	} else {
		title.DisableColor()
		note.DisableColor()
	}
	return &ConsoleReport{w: w, title: title, note: note}
}

func (r *ConsoleReport) section(title string) {
	r.title.Fprintf(r.w, "\n%s\n", title)
}

func (r *ConsoleReport) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(r.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// limit returns the first n elements, or all when n <= 0
func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// Head prints the first rows of the loaded table
func (r *ConsoleReport) Head(names []string, rows [][]string) {
	r.section("First rows")
	r.table(names, rows)
}

// Info prints the loaded table schema
func (r *ConsoleReport) Info(info domain.FrameInfo) {
	r.section("Table info")
	r.note.Fprintf(r.w, "%d entries, %d columns\n", info.Rows, len(info.Columns))
	rows := make([][]string, 0, len(info.Columns))
	for i, c := range info.Columns {
		rows = append(rows, []string{formatInt(int64(i)), c.Name, formatInt(int64(c.NonNull)), c.DataType})
	}
	r.table([]string{"#", "Column", "Non-Null Count", "Dtype"}, rows)
}

// DataTypes prints the column types after cleaning
func (r *ConsoleReport) DataTypes(columns []domain.ColumnInfo) {
	r.section("Column types")
	rows := make([][]string, 0, len(columns))
	for _, c := range columns {
		rows = append(rows, []string{c.Name, c.DataType})
	}
	r.table([]string{"Column", "Dtype"}, rows)
}

// NullCounts prints the missing values per column
func (r *ConsoleReport) NullCounts(counts []domain.NullCount) {
	r.section("Missing values")
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Column, formatInt(int64(c.Nulls))})
	}
	r.table([]string{"Column", "Nulls"}, rows)
}

// Uniques prints the distinct values of one column
func (r *ConsoleReport) Uniques(column string, values []string) {
	r.section(fmt.Sprintf("Unique %s values", column))
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v})
	}
	r.table([]string{column}, rows)
}

// ProgramRates prints the attendance rate per program
func (r *ConsoleReport) ProgramRates(rates []domain.ProgramAttendanceRate) {
	r.section("Attendance rate by program")
	rows := make([][]string, 0, len(rates))
	for _, p := range rates {
		rows = append(rows, []string{p.ProgramName, formatFloat(p.Attended), formatFloat(p.AttendanceRate)})
	}
	r.table([]string{"program_name", "attended", "attendance_rate"}, rows)
}

// MonthlyRates prints up to n monthly attendance rates; n <= 0 prints all
func (r *ConsoleReport) MonthlyRates(rates []domain.MonthlyAttendanceRate, n int) {
	r.section("Monthly attendance rate")
	rows := [][]string{}
	for _, m := range limit(rates, n) {
		rows = append(rows, []string{m.Month, formatFloat(m.Attended), formatFloat(m.AttendanceRate)})
	}
	r.table([]string{"attendance_month", "attended", "attendance_rate"}, rows)
}

// MonthlyProgramRates prints up to n rows of the month by program table
func (r *ConsoleReport) MonthlyProgramRates(rates []domain.MonthlyProgramAttendanceRate, n int) {
	r.section("Monthly attendance rate by program")
	rows := [][]string{}
	for _, m := range limit(rates, n) {
		rows = append(rows, []string{m.Month, m.ProgramName, formatFloat(m.Attended), formatFloat(m.AttendanceRate)})
	}
	r.table([]string{"attendance_month", "program_name", "attended", "attendance_rate"}, rows)
}

// Retention prints up to n participant retention rows
func (r *ConsoleReport) Retention(records []domain.RetentionRecord, n int) {
	r.section("Participant retention")
	rows := [][]string{}
	for _, p := range limit(records, n) {
		rows = append(rows, []string{
			p.ParticipantID,
			formatDate(p.EnrollmentDate),
			formatDate(p.FirstAttendance),
			formatDate(p.LastAttendance),
			formatRetention(p.RetentionDays, p.RetentionValid),
		})
	}
	r.table([]string{"participant_id", "enrollment_date", "first_attendance", "last_attendance", "retention_days"}, rows)
}

// RetentionSummary prints the descriptive statistics of retention days
func (r *ConsoleReport) RetentionSummary(s domain.RetentionSummary) {
	r.section("Retention days summary")
	r.table([]string{"statistic", "retention_days"}, [][]string{
		{"count", formatInt(int64(s.Count))},
		{"mean", formatFloat(s.Mean)},
		{"std", formatFloat(s.Std)},
		{"min", formatFloat(s.Min)},
		{"25%", formatFloat(s.Q25)},
		{"50%", formatFloat(s.Q50)},
		{"75%", formatFloat(s.Q75)},
		{"max", formatFloat(s.Max)},
	})
}

// ProgramRetention prints the average retention per program
func (r *ConsoleReport) ProgramRetention(programs []domain.ProgramRetention) {
	r.section("Average retention by program")
	rows := make([][]string, 0, len(programs))
	for _, p := range programs {
		rows = append(rows, []string{p.ProgramName, formatFloat(p.RetentionDays), formatInt(int64(p.Participants))})
	}
	r.table([]string{"program_name", "retention_days", "participants"}, rows)
}

// ChartFiles lists the chart files written by the renderer
func (r *ConsoleReport) ChartFiles(paths []string) {
	r.section("Charts")
	for _, p := range paths {
		r.note.Fprintln(r.w, p)
	}
}
