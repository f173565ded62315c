package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Parser reads suite definitions from one kind of file.
//
// Structured formats (YAML, JSON) fill ParsedDocument.Suites; documentation
// formats fill Blocks, Headings and Metadata and leave the conversion to the
// converter.
type Parser interface {
	Parse(filePath string, content []byte, tags []string) (*domain.ParsedDocument, error)
	SupportedExtensions() []string
}

// ParserRegistry maps file extensions to parsers.
type ParserRegistry interface {
	Register(parser Parser)
	ParserFor(extension string) (Parser, error)
}

// DefaultRegistry is a thread-safe parser registry with fallback support.
type DefaultRegistry struct {
	mu       sync.RWMutex
	parsers  map[string]Parser
	fallback Parser
}

// NewRegistry creates a new DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		parsers: make(map[string]Parser),
	}
}

// NewDefaultRegistry returns a registry holding every built-in parser.
func NewDefaultRegistry(plaintext *PlaintextParser) *DefaultRegistry {
	r := NewRegistry()
	r.Register(NewYAMLParser())
	r.Register(NewMarkdownParser())
	r.Register(NewAsciiDocParser())
	if plaintext != nil {
		r.Register(plaintext)
	}
	return r
}

// Register adds a parser to the registry for each of its supported extensions.
func (r *DefaultRegistry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range p.SupportedExtensions() {
		r.parsers[normalizeExt(ext)] = p
	}
}

// SetFallback sets the fallback parser for unregistered extensions.
func (r *DefaultRegistry) SetFallback(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = p
}

// ParserFor returns the parser registered for the given file extension.
// If no parser is found, it returns the fallback parser if set.
func (r *DefaultRegistry) ParserFor(extension string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.parsers[normalizeExt(extension)]; ok {
		return p, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no parser registered for extension %q", extension)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Document markers, written as comments in documentation formats:
//
//	suite-path: /apps/sample/tests/SampleTests.js
//	test-start: Hello World component on english page
//	test-end
const (
	markerSuitePath = "suite-path:"
	markerSuiteName = "suite-name:"
	markerTestStart = "test-start:"
	markerTestEnd   = "test-end"
)

// MetaSuitePath and MetaSuiteName are the ParsedDocument.Metadata keys set by markers.
const (
	MetaSuitePath = "suite-path"
	MetaSuiteName = "suite-name"
)

// markerState tracks the open test-start group while a document is walked.
type markerState struct {
	group string
}

// apply interprets a comment body. It reports whether the comment was a marker.
func (s *markerState) apply(doc *domain.ParsedDocument, comment string) bool {
	comment = strings.TrimSpace(comment)
	switch {
	case strings.HasPrefix(comment, markerSuitePath):
		doc.Metadata[MetaSuitePath] = strings.TrimSpace(strings.TrimPrefix(comment, markerSuitePath))
	case strings.HasPrefix(comment, markerSuiteName):
		doc.Metadata[MetaSuiteName] = strings.TrimSpace(strings.TrimPrefix(comment, markerSuiteName))
	case strings.HasPrefix(comment, markerTestStart):
		s.group = strings.TrimSpace(strings.TrimPrefix(comment, markerTestStart))
	case strings.HasPrefix(comment, markerTestEnd):
		s.group = ""
	default:
		return false
	}
	return true
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

func newDocument(filePath, fileType string) *domain.ParsedDocument {
	return &domain.ParsedDocument{
		FilePath: filePath,
		FileType: fileType,
		Metadata: make(map[string]string),
	}
}
