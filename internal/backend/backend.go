// Package backend talks to the page-serving collaborator that suites run against.
//
// A Backend hands out Sessions. A session is one isolated browsing context
// (cookies, current page) and is owned by a single suite run at a time.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Backend creates isolated sessions.
type Backend interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session is the navigation state exclusively owned by one suite run.
type Session interface {
	// Navigate loads url and returns the resulting page.
	Navigate(ctx context.Context, url string) (*Page, error)
	// Location returns the resolved location of page after redirects.
	Location(ctx context.Context, page *Page) (string, error)
	// Resolve returns url in the form Location reports it, so the two can be
	// compared as strings.
	Resolve(url string) string
	// Visibility reports how many elements match selector on page and whether any is visible.
	Visibility(ctx context.Context, page *Page, selector string) (Visibility, error)
	Close() error
}

// Page is the state left behind by a successful navigation.
type Page struct {
	Requested  string
	Location   string
	StatusCode int

	doc *goquery.Document
}

// NewPage wraps a parsed document.
func NewPage(requested, location string, status int, doc *goquery.Document) *Page {
	return &Page{
		Requested:  requested,
		Location:   location,
		StatusCode: status,
		doc:        doc,
	}
}

// Visibility is the answer to a visibility query.
type Visibility struct {
	Matched int
	Visible bool
}

// Found reports whether the selector matched anything.
func (v Visibility) Found() bool { return v.Matched > 0 }

// checkStatus maps a response status to ErrNavigation when it is outside 2xx/3xx.
func checkStatus(url string, status int) error {
	if status < 200 || status >= 400 {
		return fmt.Errorf("%w: %s returned HTTP %d", domain.ErrNavigation, url, status)
	}
	return nil
}

// ctxErr maps a done context to the taxonomy used by the runner.
func ctxErr(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", domain.ErrTimeout, op)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
