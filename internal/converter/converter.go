package converter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/frherrer/pagecheck/internal/config"
	"github.com/frherrer/pagecheck/internal/domain"
	"github.com/frherrer/pagecheck/internal/parser"
	"github.com/frherrer/pagecheck/internal/suite"
)

// Converter turns parsed documents into suite builders.
type Converter interface {
	Convert(doc *domain.ParsedDocument, tagCfg *config.TagConfig) ([]*suite.TestSuite, error)
}

// DefaultConverter implements Converter.
type DefaultConverter struct {
	runConfig *config.RunConfig
}

// NewConverter creates a new DefaultConverter.
func NewConverter(runCfg *config.RunConfig) *DefaultConverter {
	return &DefaultConverter{runConfig: runCfg}
}

// Convert returns one builder per suite in doc. Structured documents carry
// their suites directly; documentation files produce at most one suite whose
// cases are formed from the tagged blocks.
func (c *DefaultConverter) Convert(doc *domain.ParsedDocument, tagCfg *config.TagConfig) ([]*suite.TestSuite, error) {
	var suites []*suite.TestSuite
	for _, def := range doc.Suites {
		s, err := c.fromDefinition(def)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	if len(doc.Blocks) == 0 {
		return suites, nil
	}

	s, err := c.fromBlocks(doc, tagCfg)
	if err != nil {
		return nil, err
	}
	return append(suites, s), nil
}

// fromDefinition converts the serializable form. Omitted register and
// expected values default to true.
func (c *DefaultConverter) fromDefinition(def domain.SuiteDefinition) (*suite.TestSuite, error) {
	register := true
	if def.Register != nil {
		register = *def.Register
	}
	s := suite.NewTestSuite(def.Name, suite.Options{Path: def.Path, Register: register}).
		WithSource(def.SourceFile)

	for _, cd := range def.TestCases {
		tc := suite.NewTestCase(cd.Name).AtLine(cd.LineNumber)
		for _, sd := range cd.Steps {
			step, err := c.definitionStep(def.SourceFile, sd)
			if err != nil {
				return nil, err
			}
			tc.Append(step)
		}
		s.AddTestCase(tc)
	}
	return s, nil
}

func (c *DefaultConverter) definitionStep(file string, sd domain.StepDefinition) (domain.Step, error) {
	kind := domain.StepKind(sd.Type)
	if !kind.Valid() {
		return domain.Step{}, domain.NewErrorWithSuggestion("convert", file, sd.LineNumber,
			fmt.Sprintf("unknown step type %q", sd.Type),
			"use one of: navigate, assertLocation, assertVisible",
			domain.ErrInvalidDefinition)
	}
	step := domain.Step{
		Kind:       kind,
		URL:        sd.URL,
		Selector:   sd.Selector,
		Expected:   true,
		LineNumber: sd.LineNumber,
	}
	if sd.Expected != nil {
		step.Expected = *sd.Expected
	}
	if err := c.screen(file, step); err != nil {
		return domain.Step{}, err
	}
	return step, nil
}

// fromBlocks builds the suite of a documentation file. Blocks are grouped
// into cases by, in order of precedence, a case name attribute, the
// test-start group, or the nearest section heading. Ungrouped blocks outside
// any section form a case named after the suite.
func (c *DefaultConverter) fromBlocks(doc *domain.ParsedDocument, tagCfg *config.TagConfig) (*suite.TestSuite, error) {
	attrs := tagCfg.Attributes
	name := inferSuiteName(doc)
	path := doc.Metadata[parser.MetaSuitePath]
	register := true

	var (
		order []string
		cases = make(map[string]*suite.TestCase)
	)
	for _, block := range doc.Blocks {
		if path == "" {
			path = resolveAttribute(block.Attributes, attrs["suite_path"])
		}
		if v := resolveAttribute(block.Attributes, attrs["register"]); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, domain.NewError("convert", doc.FilePath, block.LineNumber,
					fmt.Sprintf("register attribute must be true or false (got %q)", v), domain.ErrInvalidDefinition)
			}
			register = register && b
		}

		caseName := resolveAttribute(block.Attributes, attrs["case_name"])
		if caseName == "" {
			caseName = block.TestGroup
		}
		if caseName == "" {
			caseName = block.Context
		}
		if caseName == "" {
			caseName = name
		}

		steps, err := ParseSteps(block.Content, block.LineNumber)
		if err != nil {
			return nil, positioned(doc.FilePath, err)
		}
		tc, ok := cases[caseName]
		if !ok {
			tc = suite.NewTestCase(caseName).AtLine(block.LineNumber)
			cases[caseName] = tc
			order = append(order, caseName)
		}
		for _, step := range steps {
			if err := c.screen(doc.FilePath, step); err != nil {
				return nil, err
			}
			tc.Append(step)
		}
	}

	s := suite.NewTestSuite(name, suite.Options{Path: path, Register: register}).WithSource(doc.FilePath)
	for _, caseName := range order {
		s.AddTestCase(cases[caseName])
	}
	return s, nil
}

// screen rejects URLs whose scheme is blocked by run.blocked_url_schemes.
func (c *DefaultConverter) screen(file string, step domain.Step) error {
	if step.URL == "" || c.runConfig == nil {
		return nil
	}
	if err := ValidateURL(step.URL, c.runConfig.BlockedURLSchemes); err != nil {
		return domain.NewError("convert", file, step.LineNumber, err.Error(), domain.ErrInvalidDefinition)
	}
	return nil
}

// resolveAttribute looks up an attribute value using a list of possible key names.
func resolveAttribute(attrs map[string]string, keys []string) string {
	for _, key := range keys {
		if val, ok := attrs[key]; ok {
			return val
		}
	}
	return ""
}

// inferSuiteName uses the suite-name marker, then the level-1 heading, then
// the file name.
func inferSuiteName(doc *domain.ParsedDocument) string {
	if name := doc.Metadata[parser.MetaSuiteName]; name != "" {
		return name
	}
	for _, h := range doc.Headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return strings.TrimSuffix(filepath.Base(doc.FilePath), filepath.Ext(doc.FilePath))
}
