package converter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Step verbs of the block syntax, one step per line:
//
//	navigate /content/sample/en.html
//	location /content/sample/en.html
//	not-location /content/sample/fr.html
//	visible .helloworld
//	hidden .cookie-banner
//
// Blank lines and lines starting with # are ignored.
var verbs = map[string]struct {
	kind     domain.StepKind
	expected bool
}{
	"navigate":     {domain.StepNavigate, true},
	"location":     {domain.StepAssertLocation, true},
	"not-location": {domain.StepAssertLocation, false},
	"visible":      {domain.StepAssertVisible, true},
	"hidden":       {domain.StepAssertVisible, false},
}

// stepError is a syntax error at a line of a block.
type stepError struct {
	line int
	msg  string
}

func (e *stepError) Error() string { return e.msg }

// ParseSteps reads the block syntax. firstLine is the source line of the first
// content line and is used to number the steps.
func ParseSteps(content string, firstLine int) ([]domain.Step, error) {
	var steps []domain.Step
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lineNo := firstLine + i

		verb, arg := line, ""
		if n := strings.IndexFunc(line, unicode.IsSpace); n >= 0 {
			verb, arg = line[:n], strings.TrimSpace(line[n:])
		}
		v, ok := verbs[verb]
		if !ok {
			return nil, &stepError{line: lineNo, msg: fmt.Sprintf("unknown step %q", verb)}
		}
		if arg == "" {
			return nil, &stepError{line: lineNo, msg: fmt.Sprintf("%s requires an argument", verb)}
		}

		step := domain.Step{Kind: v.kind, Expected: v.expected, LineNumber: lineNo}
		if v.kind == domain.StepAssertVisible {
			step.Selector = arg
		} else {
			step.URL = arg
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func positioned(file string, err error) error {
	if se, ok := err.(*stepError); ok {
		return domain.NewErrorWithSuggestion("convert", file, se.line, se.msg,
			"use one of: navigate <url>, location <url>, not-location <url>, visible <selector>, hidden <selector>",
			domain.ErrInvalidDefinition)
	}
	return domain.NewError("convert", file, 0, err.Error(), domain.ErrInvalidDefinition)
}
