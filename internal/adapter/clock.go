package adapter

import "time"

// Clock defines an interface for time operations to enable mocking.
// The compute pipeline depends on "now" for CAC lookback windows, so
// tests inject a fixed clock instead of reading the wall clock.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the standard time package
type RealClock struct{}

// NewClock creates a new real clock implementation
func NewClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
