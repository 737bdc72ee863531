// Package render rasterizes rendered HTML into PDF bytes.
//
// A Renderer prepares a Job (base location for relative resources, the
// Arabic-capable font, right-to-left default direction, fast mode) and hands
// it to a Backend. The native backend lays the document out with fpdf; a
// headless Chromium backend lives in render/chromium.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/wudi/podpdf/assets"
	"github.com/wudi/podpdf/fonts"
	"github.com/wudi/podpdf/layout"
	"github.com/wudi/podpdf/observability"
)

// ErrRendering matches every rasterization failure.
var ErrRendering = errors.New("render: rasterization failed")

// RenderError reports the stage at which rasterization failed.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() []error { return []error{ErrRendering, e.Err} }

var errEmptyOutput = errors.New("backend produced no output")

// Job is one rasterization request.
type Job struct {
	HTML string
	// BaseURI is the file:// URI relative resources resolve against, and
	// Base the same directory as a file system.
	BaseURI string
	Base    fs.FS
	// Font is nil when no font could be loaded.
	Font       *fonts.Face
	FontFamily string
	Lang       string
	PageSize   string
	RTL        bool
	Fast       bool
}

// Backend turns a Job into PDF bytes.
type Backend interface {
	Rasterize(ctx context.Context, job Job, w io.Writer) ([]observability.Warning, error)
	// Bidi reports whether the backend runs the bidi algorithm itself, in
	// which case text must reach it in logical order.
	Bidi() bool
}

// Config holds renderer settings. It is read-only after construction.
type Config struct {
	// StaticDir is the directory relative resources (images/logo.png)
	// resolve against. The working directory is used when it is missing.
	StaticDir string
	// FontFS and FontName locate the bundled font; FallbackFont is a path
	// tried when the bundled font is unavailable.
	FontFS       fs.FS
	FontName     string
	FallbackFont string
	FontFamily   string
	PageSize     string
	Fast         bool
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		StaticDir:    filepath.Join("assets", "static"),
		FontFS:       assets.Fonts,
		FontName:     assets.ArabicFont,
		FallbackFont: "/usr/share/fonts/truetype/noto/NotoNaskhArabic-Regular.ttf",
		FontFamily:   "Arabic",
		PageSize:     "A4",
		Fast:         true,
	}
}

// Output is a rendered document.
type Output struct {
	PDF      []byte
	Warnings []observability.Warning
}

// Renderer rasterizes HTML. It holds no per-call state.
type Renderer struct {
	cfg     Config
	backend Backend
	logger  observability.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for font and rendering diagnostics.
func WithLogger(l observability.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBackend replaces the native fpdf backend.
func WithBackend(b Backend) Option {
	return func(r *Renderer) {
		if b != nil {
			r.backend = b
		}
	}
}

// New creates a Renderer.
func New(cfg Config, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:    cfg,
		logger: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.backend == nil {
		r.backend = NewNative(r.logger)
	}
	return r
}

// Bidi reports whether the configured backend wants logical-order text.
func (r *Renderer) Bidi() bool { return r.backend.Bidi() }

// Render rasterizes src. On failure no bytes are returned and the error
// matches ErrRendering.
func (r *Renderer) Render(ctx context.Context, src string) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Op: "start", Err: err}
	}

	var warns []observability.Warning
	baseDir := r.baseDir()
	job := Job{
		HTML:       src,
		BaseURI:    fileURI(baseDir),
		Base:       os.DirFS(baseDir),
		FontFamily: r.cfg.FontFamily,
		Lang:       documentLang(src),
		PageSize:   r.cfg.PageSize,
		RTL:        true,
		Fast:       r.cfg.Fast,
	}
	job.Font = r.loadFont(&warns)

	var buf bytes.Buffer
	bw, err := r.backend.Rasterize(ctx, job, &buf)
	warns = append(warns, bw...)
	if err != nil {
		return nil, &RenderError{Op: "rasterize", Err: err}
	}
	if buf.Len() == 0 {
		return nil, &RenderError{Op: "rasterize", Err: errEmptyOutput}
	}
	r.logger.Debug("pdf rendered", observability.Int("bytes", buf.Len()), observability.Int("warnings", len(warns)))
	return &Output{PDF: buf.Bytes(), Warnings: warns}, nil
}

// baseDir returns the absolute static directory, or the working directory
// when the static directory does not exist.
func (r *Renderer) baseDir() string {
	if r.cfg.StaticDir != "" {
		if abs, err := filepath.Abs(r.cfg.StaticDir); err == nil {
			if st, err := os.Stat(abs); err == nil && st.IsDir() {
				return abs
			}
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func fileURI(dir string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}
	s := u.String()
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

// loadFont reads the font for this call. A missing font degrades to the
// writer's core font; a font without Arabic glyphs is still used.
func (r *Renderer) loadFont(warns *[]observability.Warning) *fonts.Face {
	face, err := fonts.LoadFace(r.cfg.FontFS, r.cfg.FontName, r.cfg.FallbackFont)
	if err != nil {
		*warns = append(*warns, observability.Warn(r.logger,
			observability.Warning{Code: observability.WarnFontMissing, Detail: "no usable font, Arabic text will not render"},
			observability.String("font", r.cfg.FontName), observability.Error("error", err)))
		return nil
	}
	if !face.CoversArabic() {
		*warns = append(*warns, observability.Warn(r.logger,
			observability.Warning{Code: observability.WarnFontNoArabic, Detail: "font has no Arabic glyphs"},
			observability.String("font", face.Source)))
	}
	return face
}

// documentLang returns the lang attribute of the html element.
func documentLang(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "html" {
				if string(name) == "body" {
					return ""
				}
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "lang" {
					return string(val)
				}
			}
			return ""
		}
	}
}

// Native rasterizes with the layout engine.
type Native struct {
	logger observability.Logger
}

// NewNative returns the fpdf backend. A nil logger discards output.
func NewNative(logger observability.Logger) *Native {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Native{logger: logger}
}

// Bidi is false: text must arrive in visual order.
func (n *Native) Bidi() bool { return false }

func (n *Native) Rasterize(ctx context.Context, job Job, w io.Writer) ([]observability.Warning, error) {
	canvas, err := layout.NewPDF(layout.PDFConfig{
		PageSize:   job.PageSize,
		Font:       job.Font,
		FontFamily: job.FontFamily,
		Lang:       job.Lang,
		Compress:   true,
	})
	if err != nil {
		return nil, err
	}
	engine := layout.NewEngine(canvas,
		layout.WithRTL(job.RTL),
		layout.WithFastMode(job.Fast),
		layout.WithBaseFS(job.Base),
		layout.WithLogger(n.logger),
	)
	if err := engine.RenderHTML(job.HTML); err != nil {
		return engine.Warnings(), err
	}
	if err := ctx.Err(); err != nil {
		return engine.Warnings(), err
	}
	return engine.Warnings(), canvas.Output(w)
}
