package charts

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"participation/pkg/contracts/domain"
)

// Fixed chart titles and axis labels
const (
	TitleAttendanceByProgram   = "Attendance Rate by Program"
	TitleMonthlyTrend          = "Monthly Attendance Trend"
	TitleMonthlyTrendByProgram = "Monthly Attendance Trend by Program"
	TitleRetentionHistogram    = "Distribution of Participant Retention (Days)"
	TitleRetentionByProgram    = "Average Participant Retention by Program"

	labelProgram        = "Program"
	labelMonth          = "Month"
	labelAttendanceRate = "Attendance Rate (%)"
	labelDaysActive     = "Days Active"
	labelParticipants   = "Number of Participants"
	labelAverageDays    = "Average Days Active"
)

var barWidth = vg.Points(20)

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// nominalX sets category tick labels rotated by 45 degrees
func nominalX(p *plot.Plot, labels []string) {
	if len(labels) == 0 {
		return
	}
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// barPlot draws one bar per label. An undefined value keeps its label
// and leaves the slot empty.
func barPlot(title, xLabel, yLabel string, labels []string, values []float64) (*plot.Plot, error) {
	p := newPlot(title, xLabel, yLabel)
	if len(labels) == 0 {
		return p, nil
	}

	bars, err := categoryBars(values)
	if err != nil {
		return nil, err
	}
	for _, b := range bars {
		p.Add(b)
	}
	p.Add(plotter.NewGrid())
	nominalX(p, labels)
	p.X.Min = -0.5
	p.X.Max = float64(len(labels)) - 0.5
	return p, nil
}

// categoryBars builds one bar per finite value, placed at its category
// index.
func categoryBars(values []float64) ([]*plotter.BarChart, error) {
	var bars []*plotter.BarChart
	for i, v := range values {
		if !finite(v) {
			continue
		}
		b, err := plotter.NewBarChart(plotter.Values{v}, barWidth)
		if err != nil {
			return nil, err
		}
		b.XMin = float64(i)
		b.Color = plotutil.Color(0)
		b.LineStyle.Width = vg.Length(0)
		bars = append(bars, b)
	}
	return bars, nil
}

// AttendanceByProgramPlot is the per-program attendance bar chart
func AttendanceByProgramPlot(rates []domain.ProgramAttendanceRate) (*plot.Plot, error) {
	labels := make([]string, len(rates))
	values := make([]float64, len(rates))
	for i, r := range rates {
		labels[i] = r.ProgramName
		values[i] = r.AttendanceRate
	}
	return barPlot(TitleAttendanceByProgram, labelProgram, labelAttendanceRate, labels, values)
}

// RetentionByProgramPlot is the average retention bar chart
func RetentionByProgramPlot(programs []domain.ProgramRetention) (*plot.Plot, error) {
	labels := make([]string, len(programs))
	values := make([]float64, len(programs))
	for i, r := range programs {
		labels[i] = r.ProgramName
		values[i] = r.RetentionDays
	}
	return barPlot(TitleRetentionByProgram, labelProgram, labelAverageDays, labels, values)
}

// MonthlyTrendPlot is the overall monthly attendance line with markers
func MonthlyTrendPlot(rates []domain.MonthlyAttendanceRate) (*plot.Plot, error) {
	p := newPlot(TitleMonthlyTrend, labelMonth, labelAttendanceRate)

	months := make([]string, len(rates))
	var pts plotter.XYs
	for i, r := range rates {
		months[i] = r.Month
		if finite(r.AttendanceRate) {
			pts = append(pts, plotter.XY{X: float64(i), Y: r.AttendanceRate})
		}
	}
	nominalX(p, months)
	if len(pts) == 0 {
		return p, nil
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = plotutil.Color(0)
	points.GlyphStyle.Color = plotutil.Color(0)
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, points, plotter.NewGrid())
	return p, nil
}

// MonthlyTrendByProgramPlot draws one line per program over the sorted
// union of months, programs in order of first appearance.
func MonthlyTrendByProgramPlot(rates []domain.MonthlyProgramAttendanceRate, programs []string) (*plot.Plot, error) {
	p := newPlot(TitleMonthlyTrendByProgram, labelMonth, labelAttendanceRate)

	monthIndex := make(map[string]int)
	var months []string
	for _, r := range rates {
		if _, ok := monthIndex[r.Month]; !ok {
			monthIndex[r.Month] = len(months)
			months = append(months, r.Month)
		}
	}
	nominalX(p, months)

	series := make(map[string]plotter.XYs, len(programs))
	for _, r := range rates {
		if finite(r.AttendanceRate) {
			series[r.ProgramName] = append(series[r.ProgramName], plotter.XY{
				X: float64(monthIndex[r.Month]),
				Y: r.AttendanceRate,
			})
		}
	}

	for i, program := range programs {
		pts := series[program]
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(program, line)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p, nil
}

// RetentionHistogramPlot is the distribution of retention days
func RetentionHistogramPlot(days []float64, bins int) (*plot.Plot, error) {
	p := newPlot(TitleRetentionHistogram, labelDaysActive, labelParticipants)

	var values plotter.Values
	for _, d := range days {
		if finite(d) {
			values = append(values, d)
		}
	}
	if len(values) == 0 {
		return p, nil
	}

	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = plotutil.Color(0)
	p.Add(hist)
	return p, nil
}
