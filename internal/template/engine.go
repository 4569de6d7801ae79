package template

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

//go:embed templates/*.html.tmpl
var builtin embed.FS

const templateSuffix = ".html.tmpl"

// TemplateEngine renders receipt markup into a printable HTML document.
type TemplateEngine interface {
	Render(data ReceiptData) (string, error)
	ListTemplates() []string
}

// ReceiptData is passed to receipt templates. Body must already be sanitized.
type ReceiptData struct {
	Title       string
	OrderNumber string
	Reference   string
	CapturedAt  time.Time
	Body        template.HTML
}

// DefaultEngine implements TemplateEngine.
type DefaultEngine struct {
	templates   map[string]*template.Template
	defaultName string
}

// NewEngine creates a new template engine. Templates ship with the binary;
// a non-empty templateDir adds (and may override) templates read from disk.
func NewEngine(templateDir string, defaultTemplate string) (*DefaultEngine, error) {
	engine := &DefaultEngine{
		templates:   make(map[string]*template.Template),
		defaultName: defaultTemplate,
	}

	builtinFS, err := fs.Sub(builtin, "templates")
	if err != nil {
		return nil, domain.NewError(domain.ErrConfig, "config", "", "failed to open built-in templates", err)
	}
	if err := engine.loadTemplates(builtinFS, "built-in"); err != nil {
		return nil, err
	}
	if templateDir != "" {
		if err := engine.loadTemplates(os.DirFS(templateDir), templateDir); err != nil {
			return nil, err
		}
	}

	if _, ok := engine.templates[defaultTemplate]; !ok {
		return nil, domain.NewError(domain.ErrConfig, "config", templateDir,
			fmt.Sprintf("template %q not found (available: %s)", defaultTemplate, strings.Join(engine.ListTemplates(), ", ")), nil)
	}

	return engine, nil
}

// loadTemplates reads all .html.tmpl files from fsys.
func (e *DefaultEngine) loadTemplates(fsys fs.FS, origin string) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return domain.NewError(domain.ErrConfig, "config", origin, "failed to read template directory", err)
	}

	funcMap := CustomFuncMap()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateSuffix) {
			continue
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return domain.NewError(domain.ErrConfig, "config", entry.Name(), "failed to read template file", err)
		}

		name := strings.TrimSuffix(entry.Name(), templateSuffix)
		tmpl, err := template.New(name).Funcs(funcMap).Parse(string(content))
		if err != nil {
			return domain.NewError(domain.ErrConfig, "config", entry.Name(), "failed to parse template", err)
		}

		e.templates[name] = tmpl
	}

	return nil
}

// Render renders the default template.
func (e *DefaultEngine) Render(data ReceiptData) (string, error) {
	tmpl, ok := e.templates[e.defaultName]
	if !ok {
		return "", domain.NewError(domain.ErrReceipt, "receipt", "",
			fmt.Sprintf("template %q not found (available: %s)", e.defaultName, strings.Join(e.ListTemplates(), ", ")), nil)
	}

	if data.Title == "" {
		data.Title = "Robot order receipt"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", domain.NewError(domain.ErrReceipt, "receipt", data.OrderNumber, "failed to execute template", err)
	}
	return buf.String(), nil
}

// ListTemplates returns the names of all loaded templates, sorted.
func (e *DefaultEngine) ListTemplates() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
