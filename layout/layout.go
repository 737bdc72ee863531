package layout

import (
	"io/fs"
	"strings"

	"github.com/wudi/podpdf/observability"
)

// Engine lays out HTML onto a Canvas. Coordinates are in points with the
// origin at the top-left corner of the page.
type Engine struct {
	c Canvas

	// Configuration
	DefaultFontSize float64
	LineHeight      float64 // Multiplier, e.g., 1.2
	Margins         Margins
	// RTL is the document's default direction. dir attributes override it
	// for their subtree.
	RTL bool
	// Fast sizes table columns equally and reuses images by content.
	Fast bool

	base   fs.FS
	logger observability.Logger

	// State
	pageOpen   bool
	cursorY    float64
	pageWidth  float64
	pageHeight float64
	boxX       float64
	boxW       float64
	images     map[string]imageInfo
	imageSeq   int
	warnings   []observability.Warning
}

// Margins defines page margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithDefaultFontSize sets the body font size in points.
func WithDefaultFontSize(size float64) Option {
	return func(e *Engine) {
		e.DefaultFontSize = size
	}
}

// WithLineHeight sets the line height multiplier.
func WithLineHeight(height float64) Option {
	return func(e *Engine) {
		e.LineHeight = height
	}
}

// WithMargins sets the page margins.
func WithMargins(margins Margins) Option {
	return func(e *Engine) {
		e.Margins = margins
	}
}

// WithRTL sets the default text direction.
func WithRTL(rtl bool) Option {
	return func(e *Engine) {
		e.RTL = rtl
	}
}

// WithFastMode trades layout fidelity for speed.
func WithFastMode(fast bool) Option {
	return func(e *Engine) {
		e.Fast = fast
	}
}

// WithBaseFS sets the root relative image paths are resolved against.
func WithBaseFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.base = fsys
	}
}

// WithLogger sets the logger skipped content is reported to.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a new layout engine drawing on c.
func NewEngine(c Canvas, opts ...Option) *Engine {
	e := &Engine{
		c:               c,
		DefaultFontSize: 10,
		LineHeight:      1.35,
		Margins: Margins{
			Top:    36,
			Bottom: 36,
			Left:   36,
			Right:  36,
		},
		RTL:    true,
		logger: observability.NopLogger{},
		images: make(map[string]imageInfo),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pageWidth, e.pageHeight = c.PageSize()
	e.boxX = e.Margins.Left
	e.boxW = e.pageWidth - e.Margins.Left - e.Margins.Right
	return e
}

// Warnings returns the degraded outcomes met while rendering.
func (e *Engine) Warnings() []observability.Warning {
	return e.warnings
}

func (e *Engine) warn(code, detail string, fields ...observability.Field) {
	e.warnings = append(e.warnings, observability.Warn(e.logger, observability.Warning{Code: code, Detail: detail}, fields...))
}

// ensurePage makes sure there is a current page and the cursor is valid.
func (e *Engine) ensurePage() {
	if !e.pageOpen {
		e.newPage()
	}
}

// newPage starts a new page and resets the cursor.
func (e *Engine) newPage() {
	e.c.AddPage()
	e.pageOpen = true
	e.cursorY = e.Margins.Top
}

// checkPageBreak starts a new page if height does not fit below the cursor.
// A block taller than a whole page is placed at the top of a fresh page and
// allowed to overflow.
func (e *Engine) checkPageBreak(height float64) {
	e.ensurePage()
	if e.cursorY+height > e.pageHeight-e.Margins.Bottom && e.cursorY > e.Margins.Top {
		e.newPage()
	}
}

func (e *Engine) gap(h float64) {
	if e.pageOpen {
		e.cursorY += h
	}
}

// TextSpan represents a segment of text with specific styling.
type TextSpan struct {
	Text  string
	Bold  bool
	Size  float64
	Break bool // forced line break; Text is ignored
}

type word struct {
	text  string
	bold  bool
	size  float64
	width float64
	space float64
}

type textLine struct {
	words  []word
	width  float64
	height float64
	size   float64
}

// wrap breaks spans into lines no wider than width.
//
// Text reaching the engine is already in display order within each span, so
// for right-to-left content the spans are laid out in reverse and lines are
// filled starting from the rightmost word.
func (e *Engine) wrap(spans []TextSpan, width float64, rtl bool) []textLine {
	var lines []textLine
	for _, seg := range splitBreaks(spans) {
		words := e.words(seg, rtl)
		if len(words) == 0 {
			continue
		}
		lines = append(lines, e.fill(words, width, rtl)...)
	}
	return lines
}

func splitBreaks(spans []TextSpan) [][]TextSpan {
	var out [][]TextSpan
	var cur []TextSpan
	for _, s := range spans {
		if s.Break {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, s)
	}
	return append(out, cur)
}

func (e *Engine) words(spans []TextSpan, rtl bool) []word {
	var out []word
	for i := range spans {
		span := spans[i]
		if rtl {
			span = spans[len(spans)-1-i]
		}
		size := span.Size
		if size == 0 {
			size = e.DefaultFontSize
		}
		e.c.SetFont(span.Bold, size)
		space := e.c.TextWidth(" ")
		for _, f := range strings.Fields(span.Text) {
			out = append(out, word{
				text:  f,
				bold:  span.Bold,
				size:  size,
				width: e.c.TextWidth(f),
				space: space,
			})
		}
	}
	return out
}

func (e *Engine) fill(words []word, width float64, rtl bool) []textLine {
	var lines []textLine
	var cur textLine

	flush := func() {
		if len(cur.words) == 0 {
			return
		}
		cur.height = cur.size * e.LineHeight
		lines = append(lines, cur)
		cur = textLine{}
	}
	add := func(w word) {
		if len(cur.words) > 0 {
			cur.width += w.space
		}
		if rtl {
			cur.words = append([]word{w}, cur.words...)
		} else {
			cur.words = append(cur.words, w)
		}
		cur.width += w.width
		if w.size > cur.size {
			cur.size = w.size
		}
	}

	for i := range words {
		w := words[i]
		if rtl {
			w = words[len(words)-1-i]
		}
		need := w.width
		if len(cur.words) > 0 {
			need += w.space
		}
		if cur.width+need <= width {
			add(w)
			continue
		}
		flush()
		if w.width <= width {
			add(w)
			continue
		}
		for _, piece := range e.splitWord(w, width, rtl) {
			add(piece)
			flush()
		}
	}
	flush()
	return lines
}

// splitWord breaks a word wider than width at rune boundaries. Pieces are
// returned in reading order, so right-to-left words are cut from the right.
func (e *Engine) splitWord(w word, width float64, rtl bool) []word {
	e.c.SetFont(w.bold, w.size)
	runes := []rune(w.text)
	var out []word
	for len(runes) > 0 {
		n := 1
		for n < len(runes) {
			var candidate string
			if rtl {
				candidate = string(runes[len(runes)-n-1:])
			} else {
				candidate = string(runes[:n+1])
			}
			if e.c.TextWidth(candidate) > width {
				break
			}
			n++
		}
		var piece []rune
		if rtl {
			piece, runes = runes[len(runes)-n:], runes[:len(runes)-n]
		} else {
			piece, runes = runes[:n], runes[n:]
		}
		p := w
		p.text = string(piece)
		p.width = e.c.TextWidth(p.text)
		out = append(out, p)
	}
	return out
}

type align int

const (
	alignStart align = iota
	alignLeft
	alignRight
	alignCenter
)

func (a align) resolve(rtl bool) align {
	if a != alignStart {
		return a
	}
	if rtl {
		return alignRight
	}
	return alignLeft
}

// drawLines draws lines inside the box [x, x+width] starting at y and returns
// the total height used.
func (e *Engine) drawLines(lines []textLine, x, width, y float64, a align) float64 {
	top := y
	for _, l := range lines {
		lx := x
		switch a {
		case alignRight:
			lx = x + width - l.width
		case alignCenter:
			lx = x + (width-l.width)/2
		}
		baseline := y + (l.height-l.size)/2 + l.size*0.8
		for i, w := range l.words {
			if i > 0 {
				lx += w.space
			}
			e.c.SetFont(w.bold, w.size)
			e.c.DrawText(w.text, lx, baseline)
			lx += w.width
		}
		y += l.height
	}
	return y - top
}

// renderSpans wraps spans into the current box, breaking pages between lines.
func (e *Engine) renderSpans(spans []TextSpan, rtl bool, a align) {
	lines := e.wrap(spans, e.boxW, rtl)
	a = a.resolve(rtl)
	for _, l := range lines {
		e.checkPageBreak(l.height)
		e.cursorY += e.drawLines([]textLine{l}, e.boxX, e.boxW, e.cursorY, a)
	}
}
