package domain

import (
	"fmt"
	"strings"
	"time"
)

// RunReport summarizes one pipeline run.
type RunReport struct {
	Queries    int
	Results    int
	Stored     int
	Duplicates int
	Skipped    map[FailureKind]int
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunReport starts an empty report.
func NewRunReport(startedAt time.Time) RunReport {
	return RunReport{
		Skipped:   make(map[FailureKind]int),
		StartedAt: startedAt,
	}
}

// Skip records n skipped items of the given kind.
func (r *RunReport) Skip(kind FailureKind, n int) {
	if n <= 0 {
		return
	}
	if r.Skipped == nil {
		r.Skipped = make(map[FailureKind]int)
	}
	r.Skipped[kind] += n
}

// TotalSkipped sums all skipped items.
func (r RunReport) TotalSkipped() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// Duration is the wall time of the run.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r RunReport) String() string {
	parts := make([]string, 0, len(FailureKinds))
	for _, kind := range FailureKinds {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, r.Skipped[kind]))
	}
	if n := r.Skipped[FailureUnknown]; n > 0 {
		parts = append(parts, fmt.Sprintf("%s=%d", FailureUnknown, n))
	}
	return fmt.Sprintf("queries=%d results=%d stored=%d duplicates=%d skipped[%s]",
		r.Queries, r.Results, r.Stored, r.Duplicates, strings.Join(parts, " "))
}
