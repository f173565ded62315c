package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/frherrer/pagecheck/internal/backend"
	"github.com/frherrer/pagecheck/internal/domain"
)

var errNoPage = fmt.Errorf("%w: no page loaded, navigate first", domain.ErrNavigation)

// runStep executes one step. Backend calls run detached from ctx's
// cancellation and are bounded by the configured timeout. The returned page
// is non-nil after a successful navigation.
func (r *Runner) runStep(ctx context.Context, session backend.Session, page *backend.Page, step domain.Step) (domain.StepResult, *backend.Page) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	defer cancel()

	switch step.Kind {
	case domain.StepNavigate:
		next, err := session.Navigate(opCtx, step.URL)
		if err != nil {
			return failed(step, classify(err)), nil
		}
		return domain.StepResult{
			Step:    step,
			Status:  domain.StatusPassed,
			Message: fmt.Sprintf("navigated to %s", step.URL),
			Actual:  next.Location,
		}, next

	case domain.StepAssertLocation:
		if page == nil {
			return failed(step, errNoPage), nil
		}
		actual, err := session.Location(opCtx, page)
		if err != nil {
			return failed(step, classify(err)), nil
		}
		return assertLocation(step, session.Resolve(step.URL), actual), nil

	case domain.StepAssertVisible:
		if page == nil {
			return failed(step, errNoPage), nil
		}
		vis, err := session.Visibility(opCtx, page, step.Selector)
		if err != nil {
			return failed(step, classify(err)), nil
		}
		return assertVisible(step, vis), nil

	default:
		return failed(step, fmt.Errorf("%w: unknown step type %q", domain.ErrInvalidDefinition, string(step.Kind))), nil
	}
}

// assertLocation passes iff (actual == expected) == step.Expected. expected is
// step.URL resolved the way the session reports locations.
func assertLocation(step domain.Step, expected, actual string) domain.StepResult {
	sr := domain.StepResult{Step: step, Actual: actual}
	matched := actual == expected
	if step.Expected {
		sr.Expected = expected
	} else {
		sr.Expected = "not " + expected
	}

	switch {
	case matched == step.Expected && matched:
		sr.Status = domain.StatusPassed
		sr.Message = fmt.Sprintf("location is %s", actual)
	case matched == step.Expected:
		sr.Status = domain.StatusPassed
		sr.Message = fmt.Sprintf("location %s is not %s", actual, expected)
	case step.Expected:
		sr.Status = domain.StatusFailed
		sr.ErrorKind = domain.ErrorKind(domain.ErrAssertion)
		sr.Message = fmt.Sprintf("expected location %s, got %s", expected, actual)
	default:
		sr.Status = domain.StatusFailed
		sr.ErrorKind = domain.ErrorKind(domain.ErrAssertion)
		sr.Message = fmt.Sprintf("expected location other than %s", expected)
	}
	return sr
}

// assertVisible passes iff the computed visibility equals step.Expected. A
// selector that matches nothing is not visible.
func assertVisible(step domain.Step, vis backend.Visibility) domain.StepResult {
	sr := domain.StepResult{
		Step:     step,
		Expected: visibilityWord(step.Expected),
		Actual:   visibilityWord(vis.Visible),
	}
	if !vis.Found() {
		sr.Actual = "not found"
	}

	if vis.Visible == step.Expected {
		sr.Status = domain.StatusPassed
		switch {
		case !vis.Found():
			sr.Message = fmt.Sprintf("selector not found: %s", step.Selector)
		default:
			sr.Message = fmt.Sprintf("%s is %s", step.Selector, sr.Actual)
		}
		return sr
	}

	sr.Status = domain.StatusFailed
	sr.ErrorKind = domain.ErrorKind(domain.ErrAssertion)
	switch {
	case !vis.Found():
		sr.Message = fmt.Sprintf("selector not found: %s", step.Selector)
	default:
		sr.Message = fmt.Sprintf("expected %s to be %s, but it is %s (%d match(es))",
			step.Selector, sr.Expected, sr.Actual, vis.Matched)
	}
	return sr
}

func visibilityWord(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}

func failed(step domain.Step, err error) domain.StepResult {
	return domain.StepResult{
		Step:      step,
		Status:    domain.StatusFailed,
		Message:   err.Error(),
		ErrorKind: domain.ErrorKind(err),
	}
}

// classify maps raw context errors onto ErrTimeout so that every backend
// reports timeouts the same way.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}
