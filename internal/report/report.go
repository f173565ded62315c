// Package report turns run results into human-readable reports, JSON result
// files and live progress.
package report

import (
	"io"
	"time"

	"github.com/frherrer/pagecheck/internal/domain"
	tmpl "github.com/frherrer/pagecheck/internal/template"
)

// Totals counts suites, cases by outcome, and steps. Only steps are ever
// skipped, so skips are counted at step level.
type Totals struct {
	Suites       int `json:"suites"`
	Cases        int `json:"cases"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Cancelled    int `json:"cancelled"`
	Aborted      int `json:"aborted"`
	Steps        int `json:"steps"`
	FailedSteps  int `json:"failed_steps"`
	SkippedSteps int `json:"skipped_steps"`
}

// View is the data handed to report templates.
type View struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Passed    bool
	Totals    Totals
	Suites    []domain.SuiteResult
}

// NewView summarizes res.
func NewView(res domain.RunResult) View {
	return View{
		RunID:     res.RunID,
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
		Passed:    res.Passed(),
		Totals:    totals(res),
		Suites:    res.Suites,
	}
}

func totals(res domain.RunResult) Totals {
	t := Totals{Suites: len(res.Suites)}
	for status, n := range res.Totals() {
		t.Cases += n
		switch status {
		case domain.StatusPassed:
			t.Passed += n
		case domain.StatusFailed:
			t.Failed += n
		case domain.StatusCancelled:
			t.Cancelled += n
		case domain.StatusAborted:
			t.Aborted += n
		}
	}
	for _, s := range res.Suites {
		for _, c := range s.Cases {
			t.Steps += len(c.Steps)
			t.FailedSteps += len(c.Failures())
			for _, st := range c.Steps {
				if st.Status == domain.StatusSkipped {
					t.SkippedSteps++
				}
			}
		}
	}
	return t
}

// Reporter renders run results with one of the engine's templates.
type Reporter struct {
	engine tmpl.TemplateEngine
	format string
}

// NewReporter creates a Reporter that renders with the template called format.
func NewReporter(engine tmpl.TemplateEngine, format string) *Reporter {
	return &Reporter{engine: engine, format: format}
}

// Render writes the report for res to w.
func (r *Reporter) Render(w io.Writer, res domain.RunResult) error {
	return r.engine.Render(w, r.format, NewView(res))
}
