// Package app wires the participation report together.
//
// NewApplication resolves the configured paths, initializes slog and
// OpenTelemetry and registers the five report steps with an
// operations.Manager. Run executes them once; Shutdown flushes traces and
// the metrics textfile.
//
//	application, err := app.NewApplication(cfg, app.Options{UseColor: true})
//	if err != nil {
//		return err
//	}
//	defer application.Shutdown(context.Background())
//	_, err = application.Run(ctx)
//
// Errors are returned to the caller; the package never calls os.Exit.
package app
