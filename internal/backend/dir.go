package backend

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/frherrer/pagecheck/internal/domain"
	"github.com/frherrer/pagecheck/internal/scanner"
)

// LoadDir serves every HTML file under root from memory, keyed by its path
// relative to root: root/content/sample/en.html answers /content/sample/en.html.
// An index.html also answers its directory path.
func LoadDir(root string, rules VisibilityRules, log *logrus.Logger) (*Static, error) {
	files, err := scanner.NewScanner(true).Scan(root, []string{"*.html", "*.htm"}, nil)
	if err != nil {
		return nil, err
	}

	static := NewStatic(rules)
	for _, f := range files {
		body, err := os.ReadFile(f)
		if err != nil {
			return nil, domain.NewError("backend", f, 0, "failed to read page", err)
		}
		rel, err := filepath.Rel(root, f)
		if err != nil {
			return nil, domain.NewError("backend", f, 0, "failed to resolve page path", err)
		}
		path := "/" + filepath.ToSlash(rel)
		static.AddPage(path, string(body))
		if filepath.Base(rel) == "index.html" {
			static.AddPage(strings.TrimSuffix(path, "index.html"), string(body))
		}
		log.WithFields(logrus.Fields{"path": path, "file": f}).Debug("serving page")
	}

	if static.Len() == 0 {
		log.WithField("dir", root).Warn("no HTML pages found")
	}
	return static, nil
}
