// Package models defines the shared data model for slopscan: findings,
// scan and loop run records, and the descriptors that enumerate the analysis
// loops and LLM backends available to the service.
package models

import "fmt"

// Severity is a closed enumeration of finding severities, ordered from least
// to most urgent. It replaces the original service's bare severity strings
// with a validated Go type.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Rank gives a total order over severities, low to critical, for sorting and
// threshold comparisons.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// ParseSeverity validates a raw string against the known severities.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.Valid() {
		return "", fmt.Errorf("models: invalid severity %q", s)
	}
	return sev, nil
}
