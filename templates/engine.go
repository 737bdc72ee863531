package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/wudi/podpdf/fields"
	"github.com/wudi/podpdf/labels"
)

//go:embed html/*.html
var embedded embed.FS

// Engine renders templates by id. It is safe for concurrent use.
type Engine struct {
	tpl *template.Template
	md  goldmark.Markdown
}

type engineConfig struct {
	dir string
	fs  fs.FS
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithDir loads *.html files from dir on top of the embedded templates. A file
// named like an embedded template replaces it.
func WithDir(dir string) EngineOption {
	return func(c *engineConfig) { c.dir = dir }
}

// WithFS is WithDir for an arbitrary file system.
func WithFS(fsys fs.FS) EngineOption {
	return func(c *engineConfig) { c.fs = fsys }
}

// NewEngine parses the embedded templates and any overrides.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	cfg := engineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		md: goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps())),
	}
	root := template.New("podpdf").Funcs(e.funcs())

	base, err := fs.Sub(embedded, "html")
	if err != nil {
		return nil, err
	}
	if root, err = root.ParseFS(base, "*.html"); err != nil {
		return nil, fmt.Errorf("templates: parse embedded: %w", err)
	}

	override := cfg.fs
	if cfg.dir != "" {
		if _, err := os.Stat(cfg.dir); err != nil {
			return nil, fmt.Errorf("templates: override dir: %w", err)
		}
		override = os.DirFS(cfg.dir)
	}
	if override != nil {
		matches, err := fs.Glob(override, "*.html")
		if err != nil {
			return nil, fmt.Errorf("templates: scan overrides: %w", err)
		}
		if len(matches) > 0 {
			if root, err = root.ParseFS(override, "*.html"); err != nil {
				return nil, fmt.Errorf("templates: parse overrides: %w", err)
			}
		}
	}

	e.tpl = root
	return e, nil
}

// Has reports whether id names a parsed template.
func (e *Engine) Has(id ID) bool {
	return e.tpl.Lookup(string(id)) != nil
}

// Render executes template id against ctx and returns the markup.
func (e *Engine) Render(id ID, ctx map[string]any) (string, error) {
	t := e.tpl.Lookup(string(id))
	if t == nil {
		return "", fmt.Errorf("templates: %w: no template %q", ErrUnknownTemplate, id)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("templates: render %s: %w", id, err)
	}
	return buf.String(), nil
}

func (e *Engine) funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": formatDate,
		"formatQty":  formatQty,
		"dataURI":    dataURI,
		"markdown":   e.markdown,
		"field":      field,
		"isReturn":   isReturn,
	}
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return fields.AsString(v)
}

// formatQty prints quantities without trailing zeros: 3.50 becomes "3.5".
func formatQty(v any) string {
	switch t := v.(type) {
	case float64:
		return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(t, 'f', 2, 64), "0"), ".")
	case float32:
		return formatQty(float64(t))
	}
	return fields.AsString(v)
}

// dataURI marks an image data URI as safe for src attributes. Anything that
// is not an image data URI is dropped.
func dataURI(v any) template.URL {
	s := fields.AsString(v)
	if !strings.HasPrefix(s, "data:image/") {
		return ""
	}
	return template.URL(s)
}

func (e *Engine) markdown(v any) (template.HTML, error) {
	src := fields.AsString(v)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func isReturn(v any) bool {
	return labels.ParseMode(fields.AsString(v)) == labels.ModeReturn
}

// field looks up key in a map value and returns nil for anything else.
func field(v any, key string) any {
	return fields.AsMap(v)[key]
}
