package models

import "time"

// Finding is a single defect report, the persisted unit of output of the
// service. The four-tuple (File, Line, Category, Description) is unique
// across the store; re-observing a duplicate updates LastSeenAt and may
// overwrite Severity and Suggestion without resetting DetectedAt.
type Finding struct {
	ID          string         `json:"id"`
	Loop        string         `json:"loop"`
	File        string         `json:"file"`
	Line        int            `json:"line"`
	Category    Category       `json:"category"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Suggestion  string         `json:"suggestion,omitempty"`
	Tool        string         `json:"tool,omitempty"`
	RawOutput   map[string]any `json:"raw_output,omitempty"`
	DetectedAt  time.Time      `json:"detected_at"`
	LastSeenAt  time.Time      `json:"last_seen_at"`
	Status      Status         `json:"status"`
	AckedAt     *time.Time     `json:"acknowledged_at,omitempty"`
	FixedAt     *time.Time     `json:"fixed_at,omitempty"`
	GitCommit   string         `json:"git_commit,omitempty"`
}

// ScanRun is a single orchestrated pass across one or more loops. It is
// created once, at the end of the pass, and never mutated afterward.
type ScanRun struct {
	ID             int64     `json:"id"`
	ScanType       string    `json:"scan_type"`
	LoopsRun       []string  `json:"loops_run"`
	FilesScanned   int       `json:"files_scanned"`
	FindingsCount  int       `json:"findings_count"`
	DurationMS     int64     `json:"duration_ms"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// LoopRun is a single execution of one named loop within a scan. Like
// ScanRun, it is created at termination and never mutated afterward.
type LoopRun struct {
	ID            int64      `json:"id"`
	LoopName      string     `json:"loop_name"`
	Status        LoopStatus `json:"status"`
	Iterations    int        `json:"iterations"`
	FindingsCount int        `json:"findings_count"`
	DurationMS    int64      `json:"duration_ms"`
	Error         string     `json:"error,omitempty"`
	CompletedAt   time.Time  `json:"completed_at"`
}

// Stats is the aggregate snapshot returned by the Findings Store.
type Stats struct {
	Total      int            `json:"total"`
	ByLoop     map[string]int `json:"by_loop"`
	ByCategory map[string]int `json:"by_category"`
	BySeverity map[string]int `json:"by_severity"`
	ByStatus   map[string]int `json:"by_status"`
}

// Filters narrows a Findings Store list query. Zero-value fields are
// unfiltered. FileLike and DescriptionLike are substring matches; the rest
// are exact matches.
type Filters struct {
	Loop             string
	File             string
	Category         string
	Severity         string
	Status           string
	FileLike         string
	DescriptionLike  string
}
