package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/frherrer/pagecheck/internal/domain"
)

// MarkdownParser extracts suites written as tagged fenced code blocks in
// Markdown documentation.
type MarkdownParser struct {
	md goldmark.Markdown
}

// NewMarkdownParser creates a new MarkdownParser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{md: goldmark.New()}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *MarkdownParser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Parse walks the Markdown AST collecting headings, markers in HTML comments
// and fenced code blocks whose info string starts with one of tags.
func (p *MarkdownParser) Parse(filePath string, content []byte, tags []string) (*domain.ParsedDocument, error) {
	doc := p.md.Parser().Parse(text.NewReader(content))
	parsed := newDocument(filePath, "markdown")
	wanted := tagSet(tags)

	var (
		markers markerState
		context string
	)
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := extractText(node, content)
			parsed.Headings = append(parsed.Headings, domain.Heading{
				Level: node.Level,
				Text:  headingText,
				Line:  headingLine(node, content),
			})
			if node.Level == 1 {
				context = ""
			} else {
				context = headingText
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			var info string
			if node.Info != nil {
				info = string(node.Info.Segment.Value(content))
			}
			parts := parseInfoString(info)
			tag := parts["_tag"]
			if !wanted[tag] {
				return ast.WalkContinue, nil
			}

			var buf bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(content))
			}
			delete(parts, "_tag")

			line := 0
			if lines.Len() > 0 {
				line = lineNumber(content, lines.At(0).Start)
			}
			parsed.Blocks = append(parsed.Blocks, domain.CodeBlock{
				Tag:        tag,
				Content:    strings.TrimRight(buf.String(), "\n"),
				LineNumber: line,
				Attributes: parts,
				Context:    context,
				TestGroup:  markers.group,
			})

		case *ast.HTMLBlock:
			var buf bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(content))
			}
			if node.HasClosure() {
				buf.Write(node.ClosureLine.Value(content))
			}
			for _, c := range htmlComments(buf.String()) {
				markers.apply(parsed, c)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("parse", filePath, 0,
			"failed to walk markdown AST",
			"check the markdown file for syntax issues and ensure fenced code blocks use triple backticks",
			err)
	}

	return parsed, nil
}

// htmlComments returns the bodies of the <!-- ... --> comments in s.
func htmlComments(s string) []string {
	var out []string
	for {
		start := strings.Index(s, "<!--")
		if start < 0 {
			return out
		}
		s = s[start+len("<!--"):]
		end := strings.Index(s, "-->")
		if end < 0 {
			return append(out, s)
		}
		out = append(out, s[:end])
		s = s[end+len("-->"):]
	}
}

// parseInfoString parses a fenced code block info string like:
//
//	pagecheck name="Hello World component on english page" register=false
//
// Returns map with _tag for the language tag and other key-value pairs.
func parseInfoString(info string) map[string]string {
	result := make(map[string]string)
	parts := splitInfoString(strings.TrimSpace(info))
	if len(parts) == 0 {
		return result
	}

	result["_tag"] = parts[0]
	for _, part := range parts[1:] {
		if key, val, ok := strings.Cut(part, "="); ok && key != "" {
			result[key] = strings.Trim(val, "\"'")
		}
	}
	return result
}

// splitInfoString splits on whitespace, keeping quoted values together.
func splitInfoString(s string) []string {
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
		case c == ' ' || c == '\t':
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

// extractText gets the text content of a heading node.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(buf.String())
}

func headingLine(node *ast.Heading, content []byte) int {
	if node.Lines().Len() > 0 {
		return lineNumber(content, node.Lines().At(0).Start)
	}
	if first, ok := node.FirstChild().(*ast.Text); ok {
		return lineNumber(content, first.Segment.Start)
	}
	return 0
}

// lineNumber calculates the 1-based line number for a byte offset.
func lineNumber(content []byte, offset int) int {
	return bytes.Count(content[:offset], []byte("\n")) + 1
}
