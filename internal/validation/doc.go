// Package validation checks the file system locations of a report run:
// the attendance input file and the writable chart directory.
package validation
