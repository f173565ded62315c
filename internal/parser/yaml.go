package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/frherrer/pagecheck/internal/domain"
)

// YAMLParser reads suites in their serializable form. JSON is accepted as the
// YAML subset it is. A document holds one suite or a list of suites; separate
// documents with ---.
type YAMLParser struct{}

// NewYAMLParser creates a new YAMLParser.
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *YAMLParser) SupportedExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// Parse decodes every document of the file. Unknown fields are rejected so
// that typos such as "testcases:" do not silently drop cases.
func (p *YAMLParser) Parse(filePath string, content []byte, _ []string) (*domain.ParsedDocument, error) {
	parsed := newDocument(filePath, "yaml")

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	for {
		var n yaml.Node
		err := decoder.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			err = p.collect(parsed, &n)
		}
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("parse", filePath, lineOf(err),
				"failed to parse suite definition",
				"check indentation and field names: name, path, register, testCases, steps, type, url, selector, expected",
				err)
		}
	}

	return parsed, nil
}

// collect appends the suites held by one YAML document: a single mapping or a
// sequence of them.
func (p *YAMLParser) collect(parsed *domain.ParsedDocument, n *yaml.Node) error {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}
	for _, item := range items {
		if item.Kind == yaml.ScalarNode && item.ShortTag() == "!!null" {
			continue
		}
		var s yamlSuite
		if err := item.Decode(&s); err != nil {
			return err
		}
		def := s.SuiteDefinition
		def.SourceFile = parsed.FilePath
		parsed.Suites = append(parsed.Suites, def)
	}
	return nil
}

type yamlSuite struct {
	domain.SuiteDefinition
}

type yamlCase struct {
	domain.CaseDefinition
}

type yamlStep struct {
	domain.StepDefinition
}

func (s *yamlSuite) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "name", "path", "register", "testCases"); err != nil {
		return err
	}
	var raw struct {
		Name      string     `yaml:"name"`
		Path      string     `yaml:"path"`
		Register  *bool      `yaml:"register"`
		TestCases []yamlCase `yaml:"testCases"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	s.Name = raw.Name
	s.Path = raw.Path
	s.Register = raw.Register
	s.LineNumber = n.Line
	for _, c := range raw.TestCases {
		s.TestCases = append(s.TestCases, c.CaseDefinition)
	}
	return nil
}

func (c *yamlCase) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "name", "steps"); err != nil {
		return err
	}
	var raw struct {
		Name  string     `yaml:"name"`
		Steps []yamlStep `yaml:"steps"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.LineNumber = n.Line
	for _, st := range raw.Steps {
		c.Steps = append(c.Steps, st.StepDefinition)
	}
	return nil
}

func (st *yamlStep) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "type", "url", "selector", "expected"); err != nil {
		return err
	}
	if err := n.Decode(&st.StepDefinition); err != nil {
		return err
	}
	st.LineNumber = n.Line
	return nil
}

// positionError carries the line of a structural problem.
type positionError struct {
	line int
	msg  string
}

func (e *positionError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

// checkKeys rejects mappings with keys outside allowed.
func checkKeys(n *yaml.Node, allowed ...string) error {
	if n.Kind != yaml.MappingNode {
		return &positionError{line: n.Line, msg: "expected a mapping"}
	}
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !ok[key.Value] {
			return &positionError{line: key.Line, msg: fmt.Sprintf("unknown field %q", key.Value)}
		}
	}
	return nil
}

func lineOf(err error) int {
	var pe *positionError
	if errors.As(err, &pe) {
		return pe.line
	}
	return 0
}
