// Package shared holds code used across packages that belongs to no
// single pipeline stage.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log output
//   - attendance CSV fixtures written to a test temp dir
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteSampleAttendanceCSV(t)
//	    // load path with logger, then inspect handler
//	}
package shared
