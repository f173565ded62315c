package parser

import (
	"regexp"
	"strings"

	"github.com/frherrer/pagecheck/internal/domain"
)

// AsciiDocParser extracts suites from [source,<tag>] listing blocks in AsciiDoc.
type AsciiDocParser struct{}

// NewAsciiDocParser creates a new AsciiDocParser.
func NewAsciiDocParser() *AsciiDocParser {
	return &AsciiDocParser{}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *AsciiDocParser) SupportedExtensions() []string {
	return []string{".adoc", ".asciidoc"}
}

var (
	// Matches [source,tag,attr1="val1",attr2="val2"]
	asciidocSourceRe = regexp.MustCompile(`^\[source,([^,\]]+)(?:,(.+))?\]\s*$`)
	// Matches ---- delimiter
	asciidocDelimRe = regexp.MustCompile(`^----+\s*$`)
	// Matches = Title, == Section, === Subsection, etc.
	asciidocHeadingRe = regexp.MustCompile(`^(={1,6})\s+(.+)$`)
)

// Parse scans the document line by line. "= Title" is a level-1 heading and
// names the suite; markers are written as // line comments.
func (p *AsciiDocParser) Parse(filePath string, content []byte, tags []string) (*domain.ParsedDocument, error) {
	lines := strings.Split(string(content), "\n")
	parsed := newDocument(filePath, "asciidoc")
	wanted := tagSet(tags)

	var (
		markers markerState
		context string
	)
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "////") {
			markers.apply(parsed, strings.TrimPrefix(trimmed, "//"))
			continue
		}

		if m := asciidocHeadingRe.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			text := strings.TrimSpace(m[2])
			parsed.Headings = append(parsed.Headings, domain.Heading{Level: level, Text: text, Line: i + 1})
			if level == 1 {
				context = ""
			} else {
				context = text
			}
			continue
		}

		m := asciidocSourceRe.FindStringSubmatch(line)
		if m == nil || !wanted[strings.TrimSpace(m[1])] {
			continue
		}
		tag := strings.TrimSpace(m[1])
		attrs := make(map[string]string)
		if m[2] != "" {
			attrs = parseAsciidocAttrs(m[2])
		}

		// The listing delimiter must follow the directive.
		if i+1 >= len(lines) || !asciidocDelimRe.MatchString(strings.TrimRight(lines[i+1], "\r")) {
			continue
		}
		i += 2
		start := i + 1
		var body []string
		for i < len(lines) && !asciidocDelimRe.MatchString(strings.TrimRight(lines[i], "\r")) {
			body = append(body, strings.TrimRight(lines[i], "\r"))
			i++
		}

		parsed.Blocks = append(parsed.Blocks, domain.CodeBlock{
			Tag:        tag,
			Content:    strings.Join(body, "\n"),
			LineNumber: start,
			Attributes: attrs,
			Context:    context,
			TestGroup:  markers.group,
		})
	}

	return parsed, nil
}

// parseAsciidocAttrs parses comma-separated key="value" or key=value attributes.
func parseAsciidocAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range splitAsciidocAttrs(s) {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		attrs[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(val), "\"'")
	}
	return attrs
}

// splitAsciidocAttrs splits on commas, respecting quoted values.
func splitAsciidocAttrs(s string) []string {
	var parts []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			current.WriteByte(c)
		case c == '"' || c == '\'':
			quote = c
			current.WriteByte(c)
		case c == ',':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
