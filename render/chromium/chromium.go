// Package chromium rasterizes documents with headless Chromium over the
// DevTools protocol. Chromium shapes Arabic and runs the bidi algorithm
// itself, so text must reach it in logical order.
package chromium

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/podpdf/observability"
	"github.com/wudi/podpdf/render"
)

// Paper sizes in inches.
var paperSizes = map[string][2]float64{
	"A4":     {8.27, 11.69},
	"A5":     {5.83, 8.27},
	"LETTER": {8.5, 11},
	"LEGAL":  {8.5, 14},
}

// Backend prints pages to PDF with Chromium. A browser is started per call.
type Backend struct {
	execPath string
	timeout  time.Duration
	logger   observability.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithExecPath sets the Chromium binary. By default chromedp searches the
// usual install locations.
func WithExecPath(path string) Option {
	return func(b *Backend) { b.execPath = path }
}

// WithTimeout bounds a single rasterization. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Backend) { b.timeout = d }
}

// WithLogger sets the logger for print diagnostics.
func WithLogger(l observability.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// New returns a Backend with a 30 second timeout.
func New(opts ...Option) *Backend {
	b := &Backend{
		timeout: 30 * time.Second,
		logger:  observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bidi is true: Chromium reorders text itself.
func (b *Backend) Bidi() bool { return true }

func (b *Backend) Rasterize(ctx context.Context, job render.Job, w io.Writer) ([]observability.Warning, error) {
	doc, err := Prepare(job)
	if err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if b.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.execPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()
	if b.timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, b.timeout)
		defer cancelTimeout()
	}

	width, height := paperSize(job.PageSize)
	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(width).
				WithPaperHeight(height).
				Do(ctx)
			if err == nil {
				pdf = buf
			}
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromium: print: %w", err)
	}
	b.logger.Debug("chromium printed document", observability.Int("bytes", len(pdf)))
	_, err = w.Write(pdf)
	return nil, err
}

func paperSize(name string) (float64, float64) {
	if s, ok := paperSizes[strings.ToUpper(name)]; ok {
		return s[0], s[1]
	}
	s := paperSizes["A4"]
	return s[0], s[1]
}

// Prepare returns the document Chromium loads: a <base> pointing at the
// job's base URI, the job font declared as an @font-face data URI, and a
// right-to-left default direction unless the document sets its own.
func Prepare(job render.Job) (string, error) {
	doc, err := html.Parse(strings.NewReader(job.HTML))
	if err != nil {
		return "", fmt.Errorf("chromium: parse html: %w", err)
	}
	root := findElement(doc, atom.Html)
	head := findElement(doc, atom.Head)
	if root == nil || head == nil {
		return "", errors.New("chromium: document has no html head")
	}

	if job.RTL && !hasAttr(root, "dir") {
		root.Attr = append(root.Attr, html.Attribute{Key: "dir", Val: "rtl"})
	}

	var css strings.Builder
	if job.Font != nil && len(job.Font.Data) > 0 {
		family := job.FontFamily
		if family == "" {
			family = "Arabic"
		}
		fmt.Fprintf(&css, "@font-face { font-family: %q; src: url(data:font/ttf;base64,%s) format(\"truetype\"); }\n",
			family, base64.StdEncoding.EncodeToString(job.Font.Data))
		fmt.Fprintf(&css, "body { font-family: %q, sans-serif; }\n", family)
	}

	var inject []*html.Node
	if job.BaseURI != "" {
		inject = append(inject, &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Base,
			Data:     "base",
			Attr:     []html.Attribute{{Key: "href", Val: job.BaseURI}},
		})
	}
	if css.Len() > 0 {
		style := &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style"}
		style.AppendChild(&html.Node{Type: html.TextNode, Data: css.String()})
		inject = append(inject, style)
	}
	// <base> must precede anything that uses a URL.
	for i := len(inject) - 1; i >= 0; i-- {
		head.InsertBefore(inject[i], head.FirstChild)
	}

	var out strings.Builder
	if err := html.Render(&out, doc); err != nil {
		return "", fmt.Errorf("chromium: render html: %w", err)
	}
	return out.String(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
