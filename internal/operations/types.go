package operations

import "time"

// Report step identifiers
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDAggregate = "aggregate"
	StepIDRetention = "retention"
	StepIDRender    = "render"
)

// Report step names
const (
	StepNameLoad      = "Load Attendance"
	StepNameClean     = "Clean Records"
	StepNameAggregate = "Attendance Rates"
	StepNameRetention = "Participant Retention"
	StepNameRender    = "Render Charts"
)

// Default timeouts
const (
	DefaultStepTimeout   = 10 * time.Minute
	DefaultRenderTimeout = 5 * time.Minute
)

// Number of rows printed for long derived tables
const previewRows = 5
