package backend

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/frherrer/pagecheck/internal/domain"
)

// nonRendered elements never produce a box.
var nonRendered = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
	"title":    true,
	"meta":     true,
	"link":     true,
}

// VisibilityRules decides whether an element of a static document is visible.
//
// There is no layout engine: an element is visible unless it or an ancestor
// is a non-rendered element, carries the hidden attribute, is a hidden input,
// has an inline display:none or visibility:hidden|collapse, or carries one of
// HiddenClasses.
type VisibilityRules struct {
	HiddenClasses []string
}

// Evaluate reports how many elements match selector and whether any of them is visible.
func (r VisibilityRules) Evaluate(page *Page, selector string) (Visibility, error) {
	if page == nil || page.doc == nil {
		return Visibility{}, fmt.Errorf("%w: no page loaded", domain.ErrNavigation)
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return Visibility{}, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	sel := page.doc.FindMatcher(m)
	v := Visibility{Matched: sel.Length()}
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if r.visible(s.Get(0)) {
			v.Visible = true
			return false
		}
		return true
	})
	return v, nil
}

func (r VisibilityRules) visible(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && r.hides(cur) {
			return false
		}
	}
	return true
}

func (r VisibilityRules) hides(n *html.Node) bool {
	if nonRendered[n.Data] {
		return true
	}
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "type":
			if n.Data == "input" && strings.EqualFold(strings.TrimSpace(a.Val), "hidden") {
				return true
			}
		case "style":
			if styleHides(a.Val) {
				return true
			}
		case "class":
			if r.hasHiddenClass(a.Val) {
				return true
			}
		}
	}
	return false
}

func (r VisibilityRules) hasHiddenClass(classAttr string) bool {
	if len(r.HiddenClasses) == 0 {
		return false
	}
	for _, c := range strings.Fields(classAttr) {
		for _, hidden := range r.HiddenClasses {
			if c == hidden {
				return true
			}
		}
	}
	return false
}

// styleHides inspects an inline style attribute.
func styleHides(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		switch prop {
		case "display":
			if val == "none" {
				return true
			}
		case "visibility":
			if val == "hidden" || val == "collapse" {
				return true
			}
		}
	}
	return false
}
