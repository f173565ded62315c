package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/frherrer/pagecheck/internal/backend"
	"github.com/frherrer/pagecheck/internal/loader"
	"github.com/frherrer/pagecheck/internal/suite"
)

// loadSuites defines every suite found under input.directories.
func (a *app) loadSuites() (*suite.Registry, *loader.Summary, error) {
	l, err := loader.New(a.cfg, a.log)
	if err != nil {
		return nil, nil, err
	}
	registry := suite.NewRegistry()
	summary, err := l.Load(a.cfg, registry)
	if err != nil {
		return nil, nil, err
	}
	return registry, summary, nil
}

// newBackend serves backend.pages_dir when set and backend.base_url otherwise.
func (a *app) newBackend() (backend.Backend, error) {
	rules := backend.VisibilityRules{HiddenClasses: a.cfg.Backend.HiddenClasses}

	if dir := a.cfg.Backend.PagesDir; dir != "" {
		static, err := backend.LoadDir(dir, rules, a.log)
		if err != nil {
			return nil, err
		}
		return static, nil
	}

	b := a.cfg.Backend
	httpBackend, err := backend.NewHTTP(backend.HTTPOptions{
		BaseURL:    b.BaseURL,
		Username:   b.Username,
		Password:   b.Password,
		Headers:    b.Headers,
		UserAgent:  b.UserAgent,
		Visibility: rules,
	}, a.log)
	if err != nil {
		return nil, err
	}
	return httpBackend, nil
}

// colorize reports whether output to w gets ANSI colours.
func (a *app) colorize(w io.Writer) bool {
	switch a.cfg.Report.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
