package stats

import "time"

// TestStatus is the lifecycle state of a test relative to a point in time.
type TestStatus string

const (
	StatusScheduled TestStatus = "Scheduled"
	StatusRunning   TestStatus = "Running"
	StatusCompleted TestStatus = "Completed"
)

// Status places now relative to a test's window. Both bounds are inclusive
// of the running state.
func Status(start, end, now time.Time) TestStatus {
	if now.Before(start) {
		return StatusScheduled
	}
	if now.After(end) {
		return StatusCompleted
	}
	return StatusRunning
}

// Class returns the palette class the dashboard colours the status with.
func (s TestStatus) Class() string {
	switch s {
	case StatusScheduled:
		return "info"
	case StatusCompleted:
		return "success"
	default:
		return "warning"
	}
}
