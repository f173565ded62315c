package domain

import "time"

// Status is the outcome of a step, case or suite.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"   // a previous step in the case failed at backend level
	StatusCancelled Status = "cancelled" // the run was cancelled before this case started
	StatusAborted   Status = "aborted"   // the backend session was lost
)

// StepResult is the recorded outcome of one step.
type StepResult struct {
	Step      Step   `json:"step"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
	Expected  string `json:"expected,omitempty"`
	Actual    string `json:"actual,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Passed reports whether the step passed.
func (r StepResult) Passed() bool {
	return r.Status == StatusPassed
}

// TestCaseResult aggregates the step results of one case.
type TestCaseResult struct {
	Name   string       `json:"name"`
	Status Status       `json:"status"`
	Steps  []StepResult `json:"steps"`
}

// Passed reports whether every step of the case passed.
func (r TestCaseResult) Passed() bool {
	return r.Status == StatusPassed
}

// Failures returns the steps that did not pass, skipped ones excluded.
func (r TestCaseResult) Failures() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			out = append(out, s)
		}
	}
	return out
}

// SuiteResult aggregates the case results of one suite. Timing lives on
// RunResult only.
type SuiteResult struct {
	Name    string           `json:"name"`
	Path    string           `json:"path"`
	Status  Status           `json:"status"`
	Message string           `json:"message,omitempty"`
	Cases   []TestCaseResult `json:"cases"`
}

// Passed reports whether every case of the suite passed.
func (r SuiteResult) Passed() bool {
	return r.Status == StatusPassed
}

// Counts tallies case outcomes by status.
func (r SuiteResult) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, c := range r.Cases {
		counts[c.Status]++
	}
	return counts
}

// RunResult is the outcome of one invocation of the runner over several suites.
type RunResult struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"-"`
	Suites    []SuiteResult `json:"suites"`
}

// Passed reports whether every executed suite passed. An empty run passes.
func (r RunResult) Passed() bool {
	for _, s := range r.Suites {
		if !s.Passed() {
			return false
		}
	}
	return true
}

// Totals counts cases across all suites by status.
func (r RunResult) Totals() map[Status]int {
	totals := make(map[Status]int)
	for _, s := range r.Suites {
		for st, n := range s.Counts() {
			totals[st] += n
		}
	}
	return totals
}
