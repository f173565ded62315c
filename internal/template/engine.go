package template

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/frherrer/pagecheck/internal/domain"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// TemplateEngine renders report data with named templates.
type TemplateEngine interface {
	Render(w io.Writer, name string, data any) error
	ListTemplates() []string
}

// DefaultEngine implements TemplateEngine.
type DefaultEngine struct {
	templates   map[string]*template.Template
	templateDir string
}

// NewEngine loads the built-in templates, then every .tmpl file in
// templateDir (if set). A user template replaces the built-in one of the
// same name.
func NewEngine(templateDir string, funcs template.FuncMap) (*DefaultEngine, error) {
	engine := &DefaultEngine{
		templates:   make(map[string]*template.Template),
		templateDir: templateDir,
	}

	if err := engine.loadTemplates(builtin, "templates", funcs); err != nil {
		return nil, err
	}
	if templateDir != "" {
		if err := engine.loadTemplates(os.DirFS(templateDir), ".", funcs); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// loadTemplates reads all .tmpl files from dir in fsys.
func (e *DefaultEngine) loadTemplates(fsys fs.FS, dir string, funcs template.FuncMap) error {
	source := e.templateDir
	if dir == "templates" {
		source = "builtin"
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return domain.NewError("report", source, 0, "failed to read template directory", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}

		path := filepath.ToSlash(filepath.Join(dir, entry.Name()))
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return domain.NewError("report", path, 0, "failed to read template file", err)
		}

		name := strings.TrimSuffix(entry.Name(), ".tmpl")
		tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
		if err != nil {
			return domain.NewError("report", path, 0, "failed to parse template", err)
		}

		e.templates[name] = tmpl
		loaded++
	}

	if loaded == 0 {
		return domain.NewErrorWithSuggestion("report", source, 0, "no templates found",
			"put one <name>.tmpl file per report format in report.template_dir", nil)
	}

	return nil
}

// Render executes the template called name with data.
func (e *DefaultEngine) Render(w io.Writer, name string, data any) error {
	tmpl, ok := e.templates[name]
	if !ok {
		return domain.NewError("report", "", 0,
			fmt.Sprintf("template %q not found (available: %s)", name, strings.Join(e.ListTemplates(), ", ")), nil)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return domain.NewError("report", name, 0, "failed to execute template", err)
	}
	return nil
}

// ListTemplates returns the sorted names of all loaded templates.
func (e *DefaultEngine) ListTemplates() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
