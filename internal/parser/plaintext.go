package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frherrer/pagecheck/internal/domain"
)

// PlaintextParser parses generic text files using configurable regex patterns.
// The start pattern captures the tag in group 1 and optional attributes in group 2.
type PlaintextParser struct {
	blockStartPattern *regexp.Regexp
	blockEndPattern   *regexp.Regexp
}

// NewPlaintextParser creates a new PlaintextParser with the given regex patterns.
func NewPlaintextParser(blockStart, blockEnd string) (*PlaintextParser, error) {
	startRe, err := regexp.Compile(blockStart)
	if err != nil {
		return nil, fmt.Errorf("invalid block_start pattern: %w", err)
	}
	endRe, err := regexp.Compile(blockEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid block_end pattern: %w", err)
	}
	return &PlaintextParser{
		blockStartPattern: startRe,
		blockEndPattern:   endRe,
	}, nil
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *PlaintextParser) SupportedExtensions() []string {
	return []string{".txt"}
}

// Parse finds tagged blocks between the start and end patterns. Headings are
// lines underlined with === (level 1) or --- (level 2); markers are lines
// starting with # or //.
func (p *PlaintextParser) Parse(filePath string, content []byte, tags []string) (*domain.ParsedDocument, error) {
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	parsed := newDocument(filePath, "plaintext")
	wanted := tagSet(tags)

	var (
		markers markerState
		context string
	)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if c, ok := lineComment(trimmed); ok {
			markers.apply(parsed, c)
			continue
		}

		if level := underlineLevel(lines, i); level > 0 {
			parsed.Headings = append(parsed.Headings, domain.Heading{Level: level, Text: trimmed, Line: i + 1})
			if level == 1 {
				context = ""
			} else {
				context = trimmed
			}
			i++ // skip the underline
			continue
		}

		m := p.blockStartPattern.FindStringSubmatch(line)
		if m == nil || len(m) < 2 || !wanted[m[1]] {
			continue
		}
		attrs := make(map[string]string)
		if len(m) > 2 && m[2] != "" {
			attrs = parsePlaintextAttrs(m[2])
		}

		start := i + 2
		i++
		var body []string
		for i < len(lines) && !p.blockEndPattern.MatchString(lines[i]) {
			body = append(body, lines[i])
			i++
		}

		parsed.Blocks = append(parsed.Blocks, domain.CodeBlock{
			Tag:        m[1],
			Content:    strings.Join(body, "\n"),
			LineNumber: start,
			Attributes: attrs,
			Context:    context,
			TestGroup:  markers.group,
		})
	}

	return parsed, nil
}

func lineComment(trimmed string) (string, bool) {
	for _, prefix := range []string{"//", "#"} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimPrefix(trimmed, prefix), true
		}
	}
	return "", false
}

// underlineLevel returns the heading level of lines[i] when the next line is an
// underline, or 0.
func underlineLevel(lines []string, i int) int {
	if i+1 >= len(lines) || strings.TrimSpace(lines[i]) == "" {
		return 0
	}
	underline := strings.TrimSpace(lines[i+1])
	if len(underline) < 3 {
		return 0
	}
	switch {
	case allChar(underline, '='):
		return 1
	case allChar(underline, '-'):
		return 2
	}
	return 0
}

// parsePlaintextAttrs parses space-separated key=value or key="value" attributes.
func parsePlaintextAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range splitInfoString(s) {
		if key, val, ok := strings.Cut(part, "="); ok && key != "" {
			attrs[key] = strings.Trim(val, "\"'")
		}
	}
	return attrs
}

// allChar checks if s consists entirely of character c.
func allChar(s string, c byte) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			return false
		}
	}
	return true
}
