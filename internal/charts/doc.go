// Package charts draws the attendance and retention charts with
// gonum.org/v1/plot and saves each one as an image file.
//
// The file format follows the configured extension (png, svg, pdf or
// jpg). Undefined values are left out of a chart and an empty table still
// produces a titled blank chart.
package charts
