package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/frherrer/pagecheck/internal/domain"
)

// HTTPOptions configure an HTTP backend.
type HTTPOptions struct {
	BaseURL    string
	Username   string
	Password   string
	Headers    map[string]string
	UserAgent  string
	Transport  http.RoundTripper // nil means http.DefaultTransport
	Visibility VisibilityRules
}

// HTTP loads pages from a live server, such as an AEM author or publish instance.
type HTTP struct {
	base *url.URL
	opts HTTPOptions
	log  *logrus.Logger
}

// NewHTTP creates an HTTP backend rooted at opts.BaseURL.
func NewHTTP(opts HTTPOptions, log *logrus.Logger) (*HTTP, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, domain.NewError("config", "", 0, fmt.Sprintf("invalid base url %q", opts.BaseURL), err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, domain.NewErrorWithSuggestion("config", "", 0,
			fmt.Sprintf("base url %q must be http or https", opts.BaseURL),
			"set backend.base_url, e.g. http://localhost:4502", nil)
	}
	return &HTTP{base: base, opts: opts, log: log}, nil
}

// NewSession creates a session with its own cookie jar.
func (b *HTTP) NewSession(_ context.Context) (Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &httpSession{
		backend: b,
		client:  &http.Client{Jar: jar, Transport: b.opts.Transport, CheckRedirect: b.checkRedirect},
	}, nil
}

type httpSession struct {
	backend *HTTP
	client  *http.Client

	mu     sync.Mutex
	closed bool
}

func (s *httpSession) Navigate(ctx context.Context, raw string) (*Page, error) {
	if s.isClosed() {
		return nil, domain.ErrSessionLost
	}
	target, err := s.backend.base.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q: %v", domain.ErrNavigation, raw, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNavigation, raw, err)
	}
	s.decorate(req)

	s.backend.log.WithFields(logrus.Fields{"url": target.String()}).Debug("navigating")
	resp, err := s.client.Do(req)
	if err != nil {
		if cerr := ctxErr(ctx, "navigate "+raw); cerr != nil {
			return nil, cerr
		}
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			return nil, fmt.Errorf("%w: navigate %s", domain.ErrTimeout, raw)
		}
		return nil, fmt.Errorf("%w: %s unreachable: %v", domain.ErrNavigation, raw, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(raw, resp.StatusCode); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		if cerr := ctxErr(ctx, "read "+raw); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrNavigation, raw, err)
	}

	return NewPage(raw, s.backend.relativize(resp.Request.URL), resp.StatusCode, doc), nil
}

func (s *httpSession) Location(ctx context.Context, page *Page) (string, error) {
	if s.isClosed() {
		return "", domain.ErrSessionLost
	}
	if err := ctxErr(ctx, "location"); err != nil {
		return "", err
	}
	return page.Location, nil
}

func (s *httpSession) Resolve(raw string) string {
	target, err := s.backend.base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return s.backend.relativize(target)
}

func (s *httpSession) Visibility(ctx context.Context, page *Page, selector string) (Visibility, error) {
	if s.isClosed() {
		return Visibility{}, domain.ErrSessionLost
	}
	if err := ctxErr(ctx, "query "+selector); err != nil {
		return Visibility{}, err
	}
	return s.backend.opts.Visibility.Evaluate(page, selector)
}

func (s *httpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.client.CloseIdleConnections()
	}
	return nil
}

func (s *httpSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// decorate sets credentials and configured headers only on requests to the
// base origin.
func (s *httpSession) decorate(req *http.Request) {
	b := s.backend
	if b.sameOrigin(req.URL) {
		if b.opts.Username != "" {
			req.SetBasicAuth(b.opts.Username, b.opts.Password)
		}
		for k, v := range b.opts.Headers {
			req.Header.Set(k, v)
		}
	}
	if b.opts.UserAgent != "" {
		req.Header.Set("User-Agent", b.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
}

// checkRedirect drops credentials and configured headers when a redirect
// leaves the base origin.
func (b *HTTP) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !b.sameOrigin(req.URL) {
		req.Header.Del("Authorization")
		for k := range b.opts.Headers {
			req.Header.Del(k)
		}
	}
	return nil
}

// relativize reports locations on the base origin as path?query, the form suites assert on.
func (b *HTTP) relativize(u *url.URL) string {
	if b.sameOrigin(u) {
		return u.RequestURI()
	}
	abs := *u
	abs.Fragment, abs.RawFragment = "", ""
	return abs.String()
}

func (b *HTTP) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, b.base.Scheme) && strings.EqualFold(u.Host, b.base.Host)
}
