package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Severity classifies how old the average review request is.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// ParseSeverity validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityNeutral, SeverityWarning, SeverityDanger:
		return Severity(s), nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// SeverityThreshold assigns Severity to any mean age of at least MinAge.
type SeverityThreshold struct {
	Severity Severity
	MinAge   time.Duration
}

// SeverityTable is an ordered set of thresholds. An empty table classifies
// every age as SeverityNeutral.
type SeverityTable []SeverityThreshold

// ErrInvalidThreshold indicates a severity table that cannot be used.
var ErrInvalidThreshold = errors.New("invalid severity threshold")

// Validate rejects negative ages and severities listed more than once.
func (t SeverityTable) Validate() error {
	seen := make(map[Severity]bool, len(t))
	for _, th := range t {
		if _, err := ParseSeverity(string(th.Severity)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidThreshold, err)
		}
		if th.MinAge < 0 {
			return fmt.Errorf("%w: %s has negative age %s", ErrInvalidThreshold, th.Severity, th.MinAge)
		}
		if seen[th.Severity] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidThreshold, th.Severity)
		}
		seen[th.Severity] = true
	}
	return nil
}

// Classify returns the severity of the highest threshold that age reaches.
func (t SeverityTable) Classify(age time.Duration) Severity {
	sorted := make(SeverityTable, len(t))
	copy(sorted, t)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinAge > sorted[j].MinAge
	})

	for _, th := range sorted {
		if age >= th.MinAge {
			return th.Severity
		}
	}
	return SeverityNeutral
}

// AgeSummary is the aggregate age of all review requests on a page.
// Empty is set when there were no requests to average; Label and MeanAge
// are meaningless in that case.
type AgeSummary struct {
	Label    string
	Severity Severity
	MeanAge  time.Duration
	Empty    bool
}
