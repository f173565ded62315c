package report

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/frherrer/pagecheck/internal/domain"
)

// resultsFile is the JSON layout written by WriteResults.
type resultsFile struct {
	RunID      string               `json:"run_id"`
	StartedAt  time.Time            `json:"started_at"`
	DurationMS int64                `json:"duration_ms"`
	Passed     bool                 `json:"passed"`
	Totals     Totals               `json:"totals"`
	Suites     []domain.SuiteResult `json:"suites"`
}

// EncodeResults writes res to w as indented JSON.
func EncodeResults(w io.Writer, res domain.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultsFile{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt.UTC(),
		DurationMS: res.Duration.Milliseconds(),
		Passed:     res.Passed(),
		Totals:     totals(res),
		Suites:     res.Suites,
	})
}

// WriteResults writes res as JSON to path, replacing any existing file.
func WriteResults(path string, res domain.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return domain.NewErrorWithSuggestion("report", path, 0,
			"failed to create results file",
			"check that the directory exists and has write permissions",
			err)
	}
	if err := EncodeResults(f, res); err != nil {
		f.Close()
		return domain.NewError("report", path, 0, "failed to write results", err)
	}
	if err := f.Close(); err != nil {
		return domain.NewError("report", path, 0, "failed to write results", err)
	}
	return nil
}
