// Package operations runs the participation report as a sequence of steps.
//
// A Manager holds a Registry of Step implementations and executes them in
// registration order against a shared OperationState. The report pipeline
// registers five steps:
//
//	load      read the CSV or Excel input into a frame
//	clean     parse dates and attendance, derive attendance_month
//	aggregate attendance rates by program, month and month by program
//	retention per-participant retention, its summary and program averages
//	render    write the chart files
//
// Each step is traced with an OpenTelemetry span named after its ID and
// timed into the step duration histogram. The first failing step stops the
// run and its error is returned as an *OperationError; the steps after it
// are marked skipped.
//
// Example usage:
//
//	manager := operations.NewManager(logger, nil, nil, operations.NewOperationTracer(providers))
//	manager.RegisterStep(operations.NewLoadStep(loader, validation.NewFileValidator(logger), console, providers.Metrics, 5))
//	// ...
//	state := operations.NewOperationState(runID, cfg.Input.File)
//	if err := manager.Run(ctx, state); err != nil {
//		// handle error
//	}
package operations
