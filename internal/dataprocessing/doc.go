// Package dataprocessing turns a program attendance table into attendance
// rates and participant retention figures.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Loader: reads a CSV or Excel sheet into a string-typed Frame
// 2. Cleaner: parses dates and the attended indicator into AttendanceRecords
// 3. Aggregator: attendance rate per program, per month and per month and program
// 4. RetentionCalculator: first/last attendance per participant and averages
//
// # Usage
//
//	frame, err := dataprocessing.NewLoader(logger, "").Load(ctx, "program_participation.csv")
//	if err != nil {
//	    return err
//	}
//	records, stats, err := dataprocessing.NewCleaner(logger).Clean(ctx, frame)
//	if err != nil {
//	    return err
//	}
//	rates := dataprocessing.NewAggregator(logger).ByProgram(ctx, records)
//
// # Data Flow
//
//	CSV/XLSX → Loader → Frame → Cleaner → AttendanceRecords → Aggregator / RetentionCalculator → tables
//
// # Missing values
//
// Cells equal to one of NullMarkers are missing. Unparseable dates are
// treated as missing rather than failing the run: such rows still count
// toward attendance means but drop out of month grouping and retention
// min/max. Rows with an empty group key are excluded from that grouping.
// Groups whose attended values are all missing report NaN.
//
// # Errors
//
// A missing input file is a NOT_FOUND error, a malformed file or a
// non-numeric attended value is a PARSING error, and a column the cleaner
// needs but the file lacks is a VALIDATION error carrying the column name.
package dataprocessing
