// Package report aggregates the outcomes of a conformance run into a
// serializable record and renders it for terminals and machines.
package report

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"specprobe/internal/outcome"
)

// Summary counts outcomes by terminal status.
type Summary struct {
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
	Warning int `json:"warning"`
	Manual  int `json:"manual"`
	NA      int `json:"na"`
}

// Total returns the number of counted outcomes.
func (s Summary) Total() int {
	return s.Pass + s.Fail + s.Warning + s.Manual + s.NA
}

// Report is the durable record of one conformance run.
type Report struct {
	RunID      string            `json:"run_id"`
	Target     string            `json:"target"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Summary    Summary           `json:"summary"`
	Results    []outcome.Outcome `json:"results"`
}

// Begin opens a report for a run against the named target and stamps its
// run identifier and start time.
func Begin(target string) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Target:    target,
		StartedAt: time.Now().UTC(),
	}
}

// Finish closes the report with the run's outcomes, preserving their
// execution order.
func (r *Report) Finish(results []outcome.Outcome) *Report {
	r.FinishedAt = time.Now().UTC()
	r.Results = results
	r.Summary = summarize(results)
	return r
}

// Failed reports whether any check failed. Warnings and manual checks do
// not fail a run.
func (r *Report) Failed() bool {
	return r.Summary.Fail > 0
}

// Duration returns the wall-clock time the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func summarize(results []outcome.Outcome) Summary {
	var s Summary
	for _, res := range results {
		switch res.Status {
		case outcome.StatusPass:
			s.Pass++
		case outcome.StatusFail:
			s.Fail++
		case outcome.StatusWarning:
			s.Warning++
		case outcome.StatusManual:
			s.Manual++
		case outcome.StatusNA:
			s.NA++
		}
	}
	return s
}

// SortedBySeverity returns a copy of the results ordered most urgent first,
// ties broken by check name. Execution order in the report itself is never
// touched.
func SortedBySeverity(results []outcome.Outcome) []outcome.Outcome {
	sorted := make([]outcome.Outcome, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Status.Rank() != sorted[j].Status.Rank() {
			return sorted[i].Status.Rank() < sorted[j].Status.Rank()
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
