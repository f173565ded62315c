package loader

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/frherrer/pagecheck/internal/config"
	"github.com/frherrer/pagecheck/internal/converter"
	"github.com/frherrer/pagecheck/internal/domain"
	"github.com/frherrer/pagecheck/internal/parser"
	"github.com/frherrer/pagecheck/internal/scanner"
	"github.com/frherrer/pagecheck/internal/suite"
)

// Loader fills a registry from suite definition files.
type Loader interface {
	Load(cfg *config.Config, registry *suite.Registry) (*Summary, error)
}

// Summary describes what a load found.
type Summary struct {
	Files  []string       // files that defined at least one suite
	Suites []domain.Suite // every suite defined, registered or not, in load order
}

// Unregistered returns the suites defined with register set to false.
func (s *Summary) Unregistered() []domain.Suite {
	var out []domain.Suite
	for _, st := range s.Suites {
		if !st.Register {
			out = append(out, st)
		}
	}
	return out
}

// DefaultLoader implements Loader by wiring all components together.
type DefaultLoader struct {
	scanner   scanner.Scanner
	registry  parser.ParserRegistry
	converter converter.Converter
	log       *logrus.Logger
}

// NewLoader creates a new DefaultLoader with all dependencies.
func NewLoader(
	s scanner.Scanner,
	r parser.ParserRegistry,
	c converter.Converter,
	log *logrus.Logger,
) *DefaultLoader {
	return &DefaultLoader{
		scanner:   s,
		registry:  r,
		converter: c,
		log:       log,
	}
}

// New builds a DefaultLoader with the built-in parsers configured from cfg.
func New(cfg *config.Config, log *logrus.Logger) (*DefaultLoader, error) {
	plain, err := parser.NewPlaintextParser(cfg.PlaintextPatterns.BlockStart, cfg.PlaintextPatterns.BlockEnd)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("config", "", 0,
			"invalid plaintext patterns",
			"fix plaintext_patterns in pagecheck.yaml",
			err)
	}
	recursive := cfg.Input.Recursive == nil || *cfg.Input.Recursive
	return NewLoader(
		scanner.NewScanner(recursive),
		parser.NewDefaultRegistry(plain),
		converter.NewConverter(&cfg.Run),
		log,
	), nil
}

// Load runs the pipeline: scan → parse → convert → define.
// Definition errors abort the load; the registry may then hold the suites
// defined before the failing file.
func (l *DefaultLoader) Load(cfg *config.Config, registry *suite.Registry) (*Summary, error) {
	var allFiles []string
	for _, dir := range cfg.Input.Directories {
		l.log.WithField("dir", dir).Debug("scanning")
		files, err := l.scanner.Scan(dir, cfg.Input.Include, cfg.Input.Exclude)
		if err != nil {
			l.log.WithError(err).Warnf("Failed to scan directory %s", dir)
			continue
		}
		allFiles = append(allFiles, files...)
	}

	summary := &Summary{}
	if len(allFiles) == 0 {
		l.log.Warn("No suite definition files found")
		return summary, nil
	}
	l.log.Infof("Found %d suite definition file(s)", len(allFiles))

	seen := make(map[string]bool)
	for _, filePath := range allFiles {
		if abs, err := filepath.Abs(filePath); err == nil {
			if seen[abs] {
				continue
			}
			seen[abs] = true
		}

		suites, err := l.loadFile(filePath, cfg)
		if err != nil {
			return summary, err
		}
		if len(suites) == 0 {
			l.log.Debugf("No suites found in %s", filePath)
			continue
		}

		for _, ts := range suites {
			built, err := registry.Define(ts)
			if err != nil {
				return summary, err
			}
			l.log.WithFields(logrus.Fields{
				"suite":      built.Name,
				"path":       built.Path,
				"cases":      len(built.TestCases),
				"registered": built.Register,
			}).Debug("defined suite")
			summary.Suites = append(summary.Suites, built)
		}
		summary.Files = append(summary.Files, filePath)
	}

	l.log.Infof("Defined %d suite(s), %d registered", len(summary.Suites), registry.Len())
	return summary, nil
}

func (l *DefaultLoader) loadFile(filePath string, cfg *config.Config) ([]*suite.TestSuite, error) {
	l.log.Debugf("Processing: %s", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("parse", filePath, 0,
			"failed to read file",
			"check that the file exists and has read permissions",
			err)
	}

	ext := filepath.Ext(filePath)
	p, err := l.registry.ParserFor(ext)
	if err != nil {
		l.log.Warnf("No parser for %s, skipping %s", ext, filePath)
		return nil, nil
	}

	doc, err := p.Parse(filePath, content, cfg.Tags.StepTags)
	if err != nil {
		return nil, err
	}
	if len(doc.Blocks) == 0 && len(doc.Suites) == 0 {
		return nil, nil
	}
	l.log.Debugf("Found %d tagged block(s) and %d suite definition(s) in %s", len(doc.Blocks), len(doc.Suites), filePath)

	return l.converter.Convert(doc, &cfg.Tags)
}
