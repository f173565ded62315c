package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Progress draws a progress bar over the cases of a run. It implements
// runner.Observer and is safe for concurrent use.
type Progress struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	passed int
	failed int
}

// NewProgress creates a bar for total cases written to w.
func NewProgress(w io.Writer, total int) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Progress{bar: bar}
}

func describe(passed, failed int) string {
	return color.CyanString("Running cases: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// SuiteStarted implements runner.Observer.
func (p *Progress) SuiteStarted(domain.Suite) {}

// CaseFinished advances the bar by one case.
func (p *Progress) CaseFinished(_ domain.Suite, res domain.TestCaseResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res.Passed() {
		p.passed++
	} else {
		p.failed++
	}
	p.bar.Describe(describe(p.passed, p.failed))
	_ = p.bar.Add(1)
}

// SuiteFinished implements runner.Observer.
func (p *Progress) SuiteFinished(domain.SuiteResult) {}

// Counts returns the cases seen so far.
func (p *Progress) Counts() (passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.passed, p.failed
}

// Finish completes the bar.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}
