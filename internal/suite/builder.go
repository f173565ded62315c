package suite

import (
	"fmt"
	"strings"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Options are the recognized suite configuration options.
type Options struct {
	// Path identifies the suite for registration and lookup.
	Path string
	// Register adds the suite to the registry when it is defined.
	Register bool
}

// TestSuite is a fluent, append-only suite under construction.
//
// Builder methods never return errors so that definitions can be chained.
// The first definition error is kept and reported by Err and Build; once an
// error is recorded further AddTestCase calls are ignored.
type TestSuite struct {
	name   string
	opts   Options
	source string
	cases  []*TestCase
	names  map[string]bool
	err    error
}

// NewTestSuite creates an empty suite.
func NewTestSuite(name string, opts Options) *TestSuite {
	return &TestSuite{
		name:  name,
		opts:  opts,
		names: make(map[string]bool),
	}
}

// WithSource records the file the suite was declared in, for error messages.
func (s *TestSuite) WithSource(file string) *TestSuite {
	s.source = file
	return s
}

// AddTestCase appends a case and returns the suite for chaining.
// A case whose name is already used in the suite records ErrDuplicateCaseName.
func (s *TestSuite) AddTestCase(tc *TestCase) *TestSuite {
	if s.err != nil {
		return s
	}
	if tc == nil {
		s.err = s.definitionError(0, "nil test case", domain.ErrInvalidDefinition)
		return s
	}
	if s.names[tc.name] {
		s.err = s.definitionError(tc.line, fmt.Sprintf("test case %q already exists in suite %q", tc.name, s.name),
			domain.ErrDuplicateCaseName)
		return s
	}
	s.names[tc.name] = true
	s.cases = append(s.cases, tc)
	return s
}

// Name returns the suite name.
func (s *TestSuite) Name() string { return s.name }

// Options returns the suite options.
func (s *TestSuite) Options() Options { return s.opts }

// Err returns the first definition error, if any.
func (s *TestSuite) Err() error { return s.err }

// Build validates the definition and returns an immutable suite.
func (s *TestSuite) Build() (domain.Suite, error) {
	if s.err != nil {
		return domain.Suite{}, s.err
	}
	if strings.TrimSpace(s.name) == "" {
		return domain.Suite{}, s.definitionError(0, "suite name must not be empty", domain.ErrInvalidDefinition)
	}
	if s.opts.Register && strings.TrimSpace(s.opts.Path) == "" {
		return domain.Suite{}, s.definitionError(0,
			fmt.Sprintf("suite %q is registered but has no path", s.name), domain.ErrInvalidDefinition)
	}
	if len(s.cases) == 0 {
		return domain.Suite{}, s.definitionError(0,
			fmt.Sprintf("suite %q has no test cases", s.name), domain.ErrInvalidDefinition)
	}

	out := domain.Suite{
		Name:       s.name,
		Path:       s.opts.Path,
		Register:   s.opts.Register,
		SourceFile: s.source,
		TestCases:  make([]domain.TestCase, 0, len(s.cases)),
	}
	for _, tc := range s.cases {
		if strings.TrimSpace(tc.name) == "" {
			return domain.Suite{}, s.definitionError(tc.line, "test case name must not be empty", domain.ErrInvalidDefinition)
		}
		if len(tc.steps) == 0 {
			return domain.Suite{}, s.definitionError(tc.line,
				fmt.Sprintf("test case %q has no steps", tc.name), domain.ErrInvalidDefinition)
		}
		for _, step := range tc.steps {
			if err := validateStep(step); err != nil {
				return domain.Suite{}, s.definitionError(step.LineNumber,
					fmt.Sprintf("test case %q: %s", tc.name, err.Error()), domain.ErrInvalidDefinition)
			}
		}
		out.TestCases = append(out.TestCases, domain.TestCase{
			Name:  tc.name,
			Steps: append([]domain.Step(nil), tc.steps...),
		})
	}
	return out, nil
}

func (s *TestSuite) definitionError(line int, msg string, cause error) error {
	return domain.NewError("define", s.source, line, msg, cause)
}

func validateStep(step domain.Step) error {
	switch step.Kind {
	case domain.StepNavigate, domain.StepAssertLocation:
		if strings.TrimSpace(step.URL) == "" {
			return fmt.Errorf("%s requires a url", step.Kind)
		}
	case domain.StepAssertVisible:
		if strings.TrimSpace(step.Selector) == "" {
			return fmt.Errorf("%s requires a selector", step.Kind)
		}
	default:
		return fmt.Errorf("unknown step type %q", string(step.Kind))
	}
	return nil
}

// TestCase is a fluent, append-only test case under construction.
type TestCase struct {
	name  string
	line  int
	steps []domain.Step

	// Asserts appends assertion steps: tc.Asserts.Location(...), tc.Asserts.Visible(...).
	Asserts Asserts
}

// NewTestCase creates an empty test case.
func NewTestCase(name string) *TestCase {
	tc := &TestCase{name: name}
	tc.Asserts = Asserts{tc: tc}
	return tc
}

// AtLine records the source line of the case, for error messages.
func (tc *TestCase) AtLine(line int) *TestCase {
	tc.line = line
	return tc
}

// Name returns the case name.
func (tc *TestCase) Name() string { return tc.name }

// Steps returns a copy of the steps appended so far.
func (tc *TestCase) Steps() []domain.Step {
	return append([]domain.Step(nil), tc.steps...)
}

// NavigateTo appends a navigate step.
func (tc *TestCase) NavigateTo(url string) *TestCase {
	return tc.Append(domain.Step{Kind: domain.StepNavigate, URL: url})
}

// Append appends an already-formed step. Definition loaders use it to carry line numbers.
func (tc *TestCase) Append(step domain.Step) *TestCase {
	tc.steps = append(tc.steps, step)
	return tc
}

// Asserts groups the assertion builders of a test case.
type Asserts struct {
	tc *TestCase
}

// Location appends an assertLocation step. The assertion passes iff
// (actual == url) == expectedMatch.
func (a Asserts) Location(url string, expectedMatch bool) *TestCase {
	return a.tc.Append(domain.Step{Kind: domain.StepAssertLocation, URL: url, Expected: expectedMatch})
}

// Visible appends an assertVisible step. The assertion passes iff the
// computed visibility of selector equals expectedVisible.
func (a Asserts) Visible(selector string, expectedVisible bool) *TestCase {
	return a.tc.Append(domain.Step{Kind: domain.StepAssertVisible, Selector: selector, Expected: expectedVisible})
}
