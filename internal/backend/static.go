package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/frherrer/pagecheck/internal/domain"
)

const maxRedirects = 10

// Static serves pages from memory. It backs --pages-dir and the tests.
type Static struct {
	mu        sync.RWMutex
	pages     map[string]string
	statuses  map[string]int
	redirects map[string]string
	lostOn    map[string]bool
	latency   time.Duration
	rules     VisibilityRules
}

// NewStatic creates an empty Static backend.
func NewStatic(rules VisibilityRules) *Static {
	return &Static{
		pages:     make(map[string]string),
		statuses:  make(map[string]int),
		redirects: make(map[string]string),
		lostOn:    make(map[string]bool),
		rules:     rules,
	}
}

// AddPage serves body at path with status 200.
func (s *Static) AddPage(path, body string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[normalizePath(path)] = body
	return s
}

// AddStatus makes path answer with code.
func (s *Static) AddStatus(path string, code int) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[normalizePath(path)] = code
	return s
}

// AddRedirect makes from redirect to to.
func (s *Static) AddRedirect(from, to string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirects[normalizePath(from)] = normalizePath(to)
	return s
}

// SetLatency delays every navigation by d.
func (s *Static) SetLatency(d time.Duration) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
	return s
}

// LoseSessionOn destroys the session when path is navigated to.
func (s *Static) LoseSessionOn(path string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lostOn[normalizePath(path)] = true
	return s
}

// Len returns the number of pages served.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// NewSession creates an isolated session.
func (s *Static) NewSession(_ context.Context) (Session, error) {
	return &staticSession{backend: s}, nil
}

type staticSession struct {
	backend *Static

	mu     sync.Mutex
	closed bool
}

func (s *staticSession) Navigate(ctx context.Context, raw string) (*Page, error) {
	if s.isClosed() {
		return nil, domain.ErrSessionLost
	}

	b := s.backend
	b.mu.RLock()
	latency := b.latency
	b.mu.RUnlock()
	if latency > 0 {
		t := time.NewTimer(latency)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctxErr(ctx, "navigate "+raw)
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	loc := normalizePath(raw)
	if b.lostOn[loc] {
		s.Close()
		return nil, fmt.Errorf("%w: navigating to %s", domain.ErrSessionLost, raw)
	}
	for hops := 0; ; hops++ {
		next, ok := b.redirects[loc]
		if !ok {
			break
		}
		if hops >= maxRedirects {
			return nil, fmt.Errorf("%w: %s: too many redirects", domain.ErrNavigation, raw)
		}
		loc = next
	}

	status := http.StatusOK
	if code, ok := b.statuses[loc]; ok {
		status = code
	}
	body, ok := b.pages[loc]
	if !ok && status == http.StatusOK {
		status = http.StatusNotFound
	}
	if err := checkStatus(raw, status); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrNavigation, raw, err)
	}
	return NewPage(raw, loc, status, doc), nil
}

func (s *staticSession) Location(ctx context.Context, page *Page) (string, error) {
	if s.isClosed() {
		return "", domain.ErrSessionLost
	}
	if err := ctxErr(ctx, "location"); err != nil {
		return "", err
	}
	return page.Location, nil
}

func (s *staticSession) Resolve(raw string) string {
	return normalizePath(raw)
}

func (s *staticSession) Visibility(ctx context.Context, page *Page, selector string) (Visibility, error) {
	if s.isClosed() {
		return Visibility{}, domain.ErrSessionLost
	}
	if err := ctxErr(ctx, "query "+selector); err != nil {
		return Visibility{}, err
	}
	return s.backend.rules.Evaluate(page, selector)
}

func (s *staticSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *staticSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// normalizePath reduces a URL to the path?query key pages are stored under.
func normalizePath(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}
