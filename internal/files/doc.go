// Package files locates attendance exports on disk.
//
// When the configured input is a directory, Discovery.ResolveInput picks
// the most recently modified .csv, .txt, .xlsx or .xlsm file in it. Excel
// lock files (~$name.xlsx) are ignored.
//
//	discovery := files.NewDiscovery(logger)
//	input, err := discovery.ResolveInput(paths.InputFile)
package files
