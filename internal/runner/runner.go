// Package runner executes suites against a backend and aggregates results.
//
// Within a suite, cases and their steps run strictly in order on a single
// backend session. A failure that leaves the page state unknown (navigation,
// timeout, no page loaded) skips the rest of the case; assertion failures are
// handled by the configured Policy. Losing the session aborts the suite.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/frherrer/pagecheck/internal/backend"
	"github.com/frherrer/pagecheck/internal/domain"
	"github.com/frherrer/pagecheck/internal/suite"
)

// DefaultTimeout bounds each backend operation when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Policy decides what happens to the rest of a case after a failed assertion.
type Policy string

const (
	// PolicyContinue records the failure and runs the remaining steps.
	PolicyContinue Policy = "continue"
	// PolicyAbort skips the remaining steps of the case.
	PolicyAbort Policy = "abort"
)

// ParsePolicy converts a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyContinue, PolicyAbort:
		return p, nil
	case "":
		return PolicyContinue, nil
	default:
		return "", fmt.Errorf("unknown assertion failure policy %q", s)
	}
}

// Options tune a Runner.
type Options struct {
	// Timeout bounds every backend call.
	Timeout time.Duration
	// OnAssertionFailure defaults to PolicyContinue.
	OnAssertionFailure Policy
	// Parallelism is the number of suites RunAll runs at once. Each suite
	// still gets its own session.
	Parallelism int
	// FailFast cancels the suites not yet started once one suite fails.
	FailFast bool
}

// Observer is told about progress. With Parallelism above 1 its methods are
// called from several goroutines.
type Observer interface {
	SuiteStarted(s domain.Suite)
	CaseFinished(s domain.Suite, res domain.TestCaseResult)
	SuiteFinished(res domain.SuiteResult)
}

type nopObserver struct{}

func (nopObserver) SuiteStarted(domain.Suite)                        {}
func (nopObserver) CaseFinished(domain.Suite, domain.TestCaseResult) {}
func (nopObserver) SuiteFinished(domain.SuiteResult)                 {}

// Runner executes suites. It only reads the registry.
type Runner struct {
	registry *suite.Registry
	backend  backend.Backend
	opts     Options
	observer Observer
	log      *logrus.Logger
}

// New creates a Runner.
func New(registry *suite.Registry, b backend.Backend, opts Options, log *logrus.Logger) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.OnAssertionFailure == "" {
		opts.OnAssertionFailure = PolicyContinue
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Runner{
		registry: registry,
		backend:  b,
		opts:     opts,
		observer: nopObserver{},
		log:      log,
	}
}

// WithObserver sets the progress observer.
func (r *Runner) WithObserver(o Observer) *Runner {
	if o == nil {
		o = nopObserver{}
	}
	r.observer = o
	return r
}

// RunPath runs the registered suite at path.
func (r *Runner) RunPath(ctx context.Context, path string) (domain.SuiteResult, error) {
	s, err := r.registry.Lookup(path)
	if err != nil {
		return domain.SuiteResult{}, err
	}
	return r.Run(ctx, s), nil
}

// RunAll runs every registered suite in registration order.
func (r *Runner) RunAll(ctx context.Context) domain.RunResult {
	return r.RunSuites(ctx, r.registry.All())
}

// RunSuites runs suites and returns their results in the order given.
func (r *Runner) RunSuites(ctx context.Context, suites []domain.Suite) domain.RunResult {
	start := time.Now()
	res := domain.RunResult{
		RunID:     uuid.Must(uuid.NewV7()).String(),
		StartedAt: start,
		Suites:    make([]domain.SuiteResult, len(suites)),
	}
	r.log.WithFields(logrus.Fields{"run": res.RunID, "suites": len(suites)}).Info("starting run")

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var g errgroup.Group
	g.SetLimit(r.opts.Parallelism)
	for i, s := range suites {
		i, s := i, s
		g.Go(func() error {
			res.Suites[i] = r.Run(runCtx, s)
			if r.opts.FailFast && !res.Suites[i].Passed() {
				stop()
			}
			return nil
		})
	}
	_ = g.Wait()

	res.Duration = time.Since(start)
	r.log.WithFields(logrus.Fields{"run": res.RunID, "passed": res.Passed(), "duration": res.Duration}).Info("run finished")
	return res
}

// Run executes one suite. Execution errors are recorded in the result and
// never returned.
func (r *Runner) Run(ctx context.Context, s domain.Suite) domain.SuiteResult {
	log := r.log.WithFields(logrus.Fields{"suite": s.Name, "path": s.Path})
	res := domain.SuiteResult{
		Name:  s.Name,
		Path:  s.Path,
		Cases: make([]domain.TestCaseResult, 0, len(s.TestCases)),
	}
	r.observer.SuiteStarted(s)

	if ctx.Err() != nil {
		r.finishEarly(&res, s, 0, domain.StatusCancelled, "run cancelled")
		return r.finish(log, res)
	}

	session, err := r.openSession(ctx)
	if err != nil {
		log.WithError(err).Error("could not open backend session")
		status := domain.StatusFailed
		if errors.Is(err, domain.ErrSessionLost) {
			status = domain.StatusAborted
		}
		res.Status = status
		res.Message = fmt.Sprintf("open session: %v", err)
		for _, tc := range s.TestCases {
			stepStatus := domain.StatusSkipped
			if status == domain.StatusAborted {
				stepStatus = domain.StatusAborted
			}
			cr := haltedCase(tc, status, stepStatus, res.Message)
			res.Cases = append(res.Cases, cr)
			r.observer.CaseFinished(s, cr)
		}
		return r.finish(log, res)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("closing backend session")
		}
	}()

	for i, tc := range s.TestCases {
		if ctx.Err() != nil {
			r.finishEarly(&res, s, i, domain.StatusCancelled, "run cancelled")
			break
		}

		cr, lost := r.runCase(ctx, session, tc)
		res.Cases = append(res.Cases, cr)
		r.observer.CaseFinished(s, cr)
		log.WithFields(logrus.Fields{"case": tc.Name, "status": cr.Status}).Info("case finished")

		if lost {
			res.Message = "backend session lost"
			r.finishEarly(&res, s, i+1, domain.StatusAborted, res.Message)
			break
		}
	}

	if res.Status == "" {
		res.Status = domain.StatusPassed
		for _, cr := range res.Cases {
			if !cr.Passed() {
				res.Status = domain.StatusFailed
				break
			}
		}
	}
	return r.finish(log, res)
}

func (r *Runner) finish(log *logrus.Entry, res domain.SuiteResult) domain.SuiteResult {
	log.WithField("status", res.Status).Info("suite finished")
	r.observer.SuiteFinished(res)
	return res
}

// finishEarly marks the cases from index from onwards with status and sets
// the suite status.
func (r *Runner) finishEarly(res *domain.SuiteResult, s domain.Suite, from int, status domain.Status, msg string) {
	for _, tc := range s.TestCases[from:] {
		cr := haltedCase(tc, status, status, msg)
		res.Cases = append(res.Cases, cr)
		r.observer.CaseFinished(s, cr)
	}
	res.Status = status
	if res.Message == "" {
		res.Message = msg
	}
}

func (r *Runner) openSession(ctx context.Context) (backend.Session, error) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	defer cancel()
	session, err := r.backend.NewSession(opCtx)
	return session, classify(err)
}

// runCase runs the steps of tc in order. It reports whether the session was lost.
func (r *Runner) runCase(ctx context.Context, session backend.Session, tc domain.TestCase) (domain.TestCaseResult, bool) {
	cr := domain.TestCaseResult{Name: tc.Name, Steps: make([]domain.StepResult, 0, len(tc.Steps))}

	var page *backend.Page
	for i, step := range tc.Steps {
		sr, next := r.runStep(ctx, session, page, step)
		if next != nil {
			page = next
		}
		cr.Steps = append(cr.Steps, sr)
		r.log.WithFields(logrus.Fields{
			"case":   tc.Name,
			"step":   step.String(),
			"status": sr.Status,
		}).Debug(sr.Message)

		if sr.Passed() {
			continue
		}
		switch {
		case sr.ErrorKind == domain.ErrorKind(domain.ErrSessionLost):
			cr.Steps = append(cr.Steps, haltedSteps(tc.Steps[i+1:], domain.StatusAborted, "backend session lost")...)
			cr.Status = domain.StatusAborted
			return cr, true
		case sr.ErrorKind != domain.ErrorKind(domain.ErrAssertion):
			cr.Steps = append(cr.Steps, haltedSteps(tc.Steps[i+1:], domain.StatusSkipped, "skipped after backend failure")...)
			cr.Status = domain.StatusFailed
			return cr, false
		case r.opts.OnAssertionFailure == PolicyAbort:
			cr.Steps = append(cr.Steps, haltedSteps(tc.Steps[i+1:], domain.StatusSkipped, "skipped after failed assertion")...)
			cr.Status = domain.StatusFailed
			return cr, false
		}
	}

	cr.Status = domain.StatusPassed
	for _, sr := range cr.Steps {
		if !sr.Passed() {
			cr.Status = domain.StatusFailed
			break
		}
	}
	return cr, false
}

func haltedCase(tc domain.TestCase, caseStatus, stepStatus domain.Status, msg string) domain.TestCaseResult {
	return domain.TestCaseResult{Name: tc.Name, Status: caseStatus, Steps: haltedSteps(tc.Steps, stepStatus, msg)}
}

func haltedSteps(steps []domain.Step, status domain.Status, msg string) []domain.StepResult {
	out := make([]domain.StepResult, 0, len(steps))
	for _, step := range steps {
		out = append(out, domain.StepResult{Step: step, Status: status, Message: msg})
	}
	return out
}
