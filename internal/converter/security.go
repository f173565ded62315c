package converter

import (
	"fmt"
	"strings"
)

// ValidateURL checks a step URL against the blocked schemes. Matching is
// case-insensitive and ignores surrounding whitespace.
func ValidateURL(rawURL string, blockedSchemes []string) error {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(u, strings.ToLower(scheme)) {
			return fmt.Errorf("url %q blocked by security policy: scheme %q is not allowed; if this is intentional, remove it from run.blocked_url_schemes in pagecheck.yaml", rawURL, scheme)
		}
	}
	return nil
}
