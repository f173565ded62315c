package domain

import "fmt"

// StepKind identifies one of the closed set of step variants.
type StepKind string

const (
	StepNavigate       StepKind = "navigate"
	StepAssertLocation StepKind = "assertLocation"
	StepAssertVisible  StepKind = "assertVisible"
)

// Valid reports whether k is a known step kind.
func (k StepKind) Valid() bool {
	switch k {
	case StepNavigate, StepAssertLocation, StepAssertVisible:
		return true
	}
	return false
}

// Step is one atomic navigate-or-assert action.
// URL is used by navigate and assertLocation, Selector by assertVisible.
// Expected is expectedMatch for assertLocation and expectedVisible for assertVisible.
type Step struct {
	Kind       StepKind `json:"type"`
	URL        string   `json:"url,omitempty"`
	Selector   string   `json:"selector,omitempty"`
	Expected   bool     `json:"expected"`
	LineNumber int      `json:"line,omitempty"`
}

// String renders the step the way it reads in a suite definition.
func (s Step) String() string {
	switch s.Kind {
	case StepNavigate:
		return fmt.Sprintf("navigateTo(%q)", s.URL)
	case StepAssertLocation:
		return fmt.Sprintf("asserts.location(%q, %t)", s.URL, s.Expected)
	case StepAssertVisible:
		return fmt.Sprintf("asserts.visible(%q, %t)", s.Selector, s.Expected)
	default:
		return fmt.Sprintf("unknown step %q", string(s.Kind))
	}
}

// TestCase is a named, ordered sequence of steps.
type TestCase struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Suite is a named, ordered collection of test cases.
type Suite struct {
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	Register   bool       `json:"register"`
	SourceFile string     `json:"source_file,omitempty"`
	TestCases  []TestCase `json:"testCases"`
}

// Clone returns a deep copy so that callers cannot mutate a registered suite.
func (s Suite) Clone() Suite {
	out := s
	out.TestCases = make([]TestCase, len(s.TestCases))
	for i, tc := range s.TestCases {
		out.TestCases[i] = TestCase{
			Name:  tc.Name,
			Steps: append([]Step(nil), tc.Steps...),
		}
	}
	return out
}

// StepCount returns the number of steps across all cases.
func (s Suite) StepCount() int {
	n := 0
	for _, tc := range s.TestCases {
		n += len(tc.Steps)
	}
	return n
}

// SuiteDefinition is the serializable form of a suite, as read from YAML or JSON.
type SuiteDefinition struct {
	Name       string           `yaml:"name"`
	Path       string           `yaml:"path"`
	Register   *bool            `yaml:"register,omitempty"` // pointer to distinguish unset from false
	TestCases  []CaseDefinition `yaml:"testCases"`
	SourceFile string           `yaml:"-"`
	LineNumber int              `yaml:"-"`
}

// CaseDefinition is the serializable form of a test case.
type CaseDefinition struct {
	Name       string           `yaml:"name"`
	Steps      []StepDefinition `yaml:"steps"`
	LineNumber int              `yaml:"-"`
}

// StepDefinition is the serializable form of a step.
// Expected defaults to true when omitted.
type StepDefinition struct {
	Type       string `yaml:"type"`
	URL        string `yaml:"url,omitempty"`
	Selector   string `yaml:"selector,omitempty"`
	Expected   *bool  `yaml:"expected,omitempty"`
	LineNumber int    `yaml:"-"`
}

// ParsedDocument holds the result of parsing a single documentation file.
type ParsedDocument struct {
	FilePath string
	FileType string            // "markdown", "asciidoc", "plaintext"
	Blocks   []CodeBlock       // All extracted code blocks (tagged ones)
	Headings []Heading         // Document structure (for suite and case naming)
	Metadata map[string]string // Document-level markers such as suite-path
	Suites   []SuiteDefinition // Filled directly by structured formats
}

// CodeBlock represents a single tagged code block extracted from a document.
type CodeBlock struct {
	Tag        string            // The matched tag (e.g. "pagecheck")
	Content    string            // Raw content of the block
	LineNumber int               // 1-based line number of the first content line
	Attributes map[string]string // Key-value attributes from the fence info
	Context    string            // Nearest level-2 heading
	TestGroup  string            // test-start group name (empty if ungrouped)
}

// Heading represents a document heading.
type Heading struct {
	Level int
	Text  string
	Line  int
}
