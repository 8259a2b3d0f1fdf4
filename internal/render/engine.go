// Package render provides the template engine and theme selection used by the
// HTTP server and the static generator.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Engine implements interfaces.TemplateRenderer over html/template. Templates
// are parsed once at construction; the engine is safe for concurrent use.
type Engine struct {
	templates *template.Template

	mu     sync.RWMutex
	global any
}

// NewEngine parses every template matching pattern (defaults to "*.html")
// from the supplied filesystem.
func NewEngine(filesystem fs.FS, pattern string) (*Engine, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.html"
	}

	templates, err := template.New("").Funcs(helperFuncs()).ParseFS(filesystem, pattern)
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}

	return &Engine{templates: templates}, nil
}

// Render executes the named template with the provided data. When writers are
// supplied the output is streamed to each of them as well as returned.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templates == nil {
		return "", fmt.Errorf("render: engine not configured")
	}

	payload := e.wrapData(data)

	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, payload); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}

	rendered := buf.String()
	for _, writer := range out {
		if writer == nil {
			continue
		}
		if _, err := io.WriteString(writer, rendered); err != nil {
			return rendered, fmt.Errorf("render template %s write: %w", name, err)
		}
	}
	return rendered, nil
}

// RenderString parses and executes an inline template body. Intended for
// one-off snippets (e.g. feed descriptions); named templates should use Render.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	parsed, err := template.New("inline").Funcs(helperFuncs()).Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("render: parse inline template: %w", err)
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, e.wrapData(data)); err != nil {
		return "", fmt.Errorf("render inline template: %w", err)
	}

	rendered := buf.String()
	for _, writer := range out {
		if writer == nil {
			continue
		}
		if _, err := io.WriteString(writer, rendered); err != nil {
			return rendered, fmt.Errorf("render inline template write: %w", err)
		}
	}
	return rendered, nil
}

// GlobalContext registers data merged into every render call under the
// "Global" key. Typically the site metadata.
func (e *Engine) GlobalContext(data any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.global = data
	return nil
}

func (e *Engine) wrapData(data any) any {
	e.mu.RLock()
	global := e.global
	e.mu.RUnlock()

	if global == nil {
		return data
	}
	return map[string]any{
		"Global": global,
		"Data":   data,
	}
}

func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(value string) template.HTML {
			return template.HTML(value)
		},
		"formatDate": func(layout string, value any) string {
			type timeLike interface{ Format(string) string }
			if ts, ok := value.(timeLike); ok {
				return ts.Format(layout)
			}
			return fmt.Sprint(value)
		},
	}
}

var _ interfaces.TemplateRenderer = (*Engine)(nil)
