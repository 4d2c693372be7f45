package operations

import (
	"sync"
	"time"

	"participation/internal/charts"
	"participation/internal/dataprocessing"
	"participation/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState is the state of one report run. Steps hand their results
// to later steps through the typed data fields; only the step that
// produces a field writes it.
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Status    OperationStatusValue
	StartTime time.Time
	EndTime   *time.Time
	Error     error

	// Steps holds per-step state, Order their registration order
	Steps map[string]*StepState
	Order []string

	// Input path read by the load step
	InputPath string

	Frame      *dataprocessing.Frame
	Records    []domain.AttendanceRecord
	CleanStats *dataprocessing.CleanStats
	Report     domain.AttendanceReport
	Charts     []charts.Chart
}

// NewOperationState creates a new operation state for the given input
func NewOperationState(id, inputPath string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		InputPath: inputPath,
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStep returns the state of a specific step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep registers the state of a step, keeping first registration order
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.Steps[stepID]; !exists {
		p.Order = append(p.Order, stepID)
	}
	p.Steps[stepID] = state
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// StepsWithStatus returns the step states with the given status in
// registration order
func (p *OperationState) StepsWithStatus(status StepStatus) []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*StepState
	for _, id := range p.Order {
		if s := p.Steps[id]; s.GetStatus() == status {
			out = append(out, s)
		}
	}
	return out
}

// HasFailures returns true if any step has failed
func (p *OperationState) HasFailures() bool {
	return len(p.StepsWithStatus(StepStatusFailed)) > 0
}
