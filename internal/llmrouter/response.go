package llmrouter

import (
	"time"

	"github.com/aa-workflow/slopscan/pkg/models"
)

// Response is the result of a single Analyze call.
type Response struct {
	Text      string
	Findings  []models.Finding
	Done      bool
	Backend   string
	LatencyMS int64
	Success   bool
	Error     string
	Timestamp time.Time
}
