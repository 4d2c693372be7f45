package operations

import (
	"time"
)

// Config represents the pipeline execution configuration
type Config struct {
	// Step-specific timeouts
	StepTimeouts map[string]time.Duration

	// Timeout for steps without an entry in StepTimeouts; zero disables it
	DefaultTimeout time.Duration
}

// NewConfig returns the default pipeline configuration
func NewConfig() *Config {
	return &Config{
		StepTimeouts: map[string]time.Duration{
			StepIDRender: DefaultRenderTimeout,
		},
		DefaultTimeout: DefaultStepTimeout,
	}
}

// GetStepTimeout returns the timeout for a specific step
func (c *Config) GetStepTimeout(stepID string) time.Duration {
	if timeout, ok := c.StepTimeouts[stepID]; ok {
		return timeout
	}
	return c.DefaultTimeout
}

// SetStepTimeout sets the timeout for a specific step
func (c *Config) SetStepTimeout(stepID string, timeout time.Duration) {
	if c.StepTimeouts == nil {
		c.StepTimeouts = make(map[string]time.Duration)
	}
	c.StepTimeouts[stepID] = timeout
}
