// Package exporter writes the report's console output.
//
// ConsoleReport renders each inspection result and derived table as a
// text table with a titled section:
//
//	report := exporter.NewConsoleReport(os.Stdout, !color.NoColor)
//	report.ProgramRates(rates)
//	report.RetentionSummary(summary)
//
// Floats print with up to six decimals and NaN for undefined values;
// missing dates print as NaT.
package exporter
