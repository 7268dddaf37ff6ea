package looprunner

import "github.com/aa-workflow/slopscan/pkg/models"

// Result summarizes one completed (or errored, or stopped) pass of a loop.
type Result struct {
	LoopName      string
	Status        models.LoopStatus
	Iterations    int
	MaxIterations int
	FindingsCount int
	DurationMS    int64
	Error         string
}

// StatusSnapshot is a read-only view of a loop's current state, safe to
// read while the loop is running.
type StatusSnapshot struct {
	Name          string
	DisplayName   string
	Status        models.LoopStatus
	Iteration     int
	MaxIterations int
	FindingsCount int
	Description   string
}
