// Package templating renders email and report templates embedded in the binary.
package templating

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"text/template"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var embedded embed.FS

const (
	extension   = ".html"
	plainSuffix = "_subject"
)

// Engine renders named templates. Names are paths below the template root without
// the extension, e.g. "emails/Welcome_subject" or "reports/ticket_summary".
// Subject templates end up in mail headers and are rendered as plain text;
// everything else goes through the html engine.
type Engine struct {
	views *html.Engine
	plain map[string]*template.Template
}

// New loads the embedded templates.
func New() (*Engine, error) {
	root, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, err
	}
	return NewFromFS(root)
}

// NewFromFS loads templates from fsys.
func NewFromFS(fsys fs.FS) (*Engine, error) {
	views := html.NewFileSystem(http.FS(fsys), extension)
	if err := views.Load(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	plain, err := loadPlain(fsys)
	if err != nil {
		return nil, err
	}
	return &Engine{views: views, plain: plain}, nil
}

func loadPlain(fsys fs.FS) (map[string]*template.Template, error) {
	plain := map[string]*template.Template{}
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, plainSuffix+extension) {
			return err
		}
		src, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(path, extension)
		tmpl, err := template.New(key).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		plain[key] = tmpl
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load plain templates: %w", err)
	}
	return plain, nil
}

// Has reports whether a template with the given key is registered.
func (e *Engine) Has(key string) bool {
	if _, ok := e.plain[key]; ok {
		return true
	}
	return e.views.Templates != nil && e.views.Templates.Lookup(key) != nil
}

// Render executes the template key against model.
func (e *Engine) Render(key string, model any) (string, error) {
	if !e.Has(key) {
		return "", fmt.Errorf("template %q does not exist", key)
	}
	var buf bytes.Buffer
	if tmpl, ok := e.plain[key]; ok {
		if err := tmpl.Execute(&buf, model); err != nil {
			return "", fmt.Errorf("render %s: %w", key, err)
		}
	} else if err := e.views.Render(&buf, key, model); err != nil {
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// EmailSubjectKey names the subject template for an email type.
func EmailSubjectKey(emailType string) string {
	return "emails/" + emailType + "_subject"
}

// EmailBodyKey names the body template for an email type.
func EmailBodyKey(emailType string) string {
	return "emails/" + emailType + "_body"
}
