package layout

import (
	"fmt"
	"strings"

	"github.com/go-text/typesetting/di"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/podpdf/fonts"
)

// style is the inherited state of the element being walked.
type style struct {
	rtl  bool
	bold bool
	size float64
}

var headingScale = map[atom.Atom]float64{
	atom.H1: 2.0,
	atom.H2: 1.6,
	atom.H3: 1.3,
	atom.H4: 1.15,
	atom.H5: 1.0,
	atom.H6: 0.9,
}

const listIndent = 14.0

// RenderHTML renders an HTML document. Pages are added as content flows.
func (e *Engine) RenderHTML(source string) error {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return fmt.Errorf("layout: parse html: %w", err)
	}
	e.renderBlock(doc, style{rtl: e.RTL, size: e.DefaultFontSize}, nil)
	e.ensurePage()
	return e.c.Err()
}

func (e *Engine) walkHTML(n *html.Node, st style) {
	if n.Type != html.ElementNode {
		return
	}
	st = direction(n, st)
	switch n.DataAtom {
	case atom.Head:
		e.renderHTMLHead(n)
	case atom.Style, atom.Script, atom.Noscript, atom.Template:
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		e.renderHTMLHeader(n, st)
	case atom.P:
		e.renderBlock(n, st, nil)
		e.gap(st.size * 0.5)
	case atom.Ul, atom.Ol:
		e.renderHTMLList(n, st)
	case atom.Li:
		e.renderHTMLListItem(n, st, "-")
	case atom.Hr:
		e.renderHTMLRule()
	case atom.Header:
		e.renderBlock(n, st, nil)
		e.renderHTMLRule()
	case atom.Footer:
		e.renderHTMLRule()
		e.renderBlock(n, st, nil)
	case atom.Table:
		e.renderHTMLTable(n, st)
	case atom.Img:
		e.renderHTMLImage(n, st)
	default:
		e.renderBlock(n, st, nil)
	}
}

// renderBlock renders the children of a block element. Consecutive inline
// children form one paragraph; block children are walked in between. lead is
// prepended to the first paragraph, e.g. a list marker.
func (e *Engine) renderBlock(n *html.Node, st style, lead []TextSpan) {
	spans := lead
	flush := func() {
		if hasText(spans) {
			e.renderSpans(spans, st.rtl, alignStart)
		}
		spans = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isInline(c) {
			spans = collectInline(c, st, spans)
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}
		flush()
		e.walkHTML(c, st)
	}
	flush()
}

func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
	default:
		return false
	}
	switch n.DataAtom {
	case atom.Span, atom.Strong, atom.B, atom.Em, atom.I, atom.U, atom.A, atom.Small,
		atom.Label, atom.Code, atom.Sub, atom.Sup, atom.Bdi, atom.Bdo, atom.Font, atom.Br:
		return true
	}
	return false
}

// collectInline appends the text below n as styled spans.
func collectInline(n *html.Node, st style, spans []TextSpan) []TextSpan {
	switch n.Type {
	case html.TextNode:
		return append(spans, TextSpan{Text: n.Data, Bold: st.bold, Size: st.size})
	case html.ElementNode:
	default:
		return spans
	}
	switch n.DataAtom {
	case atom.Br:
		return append(spans, TextSpan{Break: true})
	case atom.Script, atom.Style, atom.Img:
		return spans
	case atom.Strong, atom.B, atom.Th:
		st.bold = true
	case atom.Small:
		st.size *= 0.85
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		spans = collectInline(c, st, spans)
	}
	return spans
}

func hasText(spans []TextSpan) bool {
	for _, s := range spans {
		if !s.Break && strings.TrimSpace(s.Text) != "" {
			return true
		}
	}
	return false
}

// direction applies the dir attribute of n. dir="auto" follows the dominant
// script of the element's text.
func direction(n *html.Node, st style) style {
	switch strings.ToLower(strings.TrimSpace(attr(n, "dir"))) {
	case "rtl":
		st.rtl = true
	case "ltr":
		st.rtl = false
	case "auto":
		script := fonts.DetectScript([]rune(extractText(n)))
		st.rtl = fonts.ScriptDirection(script) == di.DirectionRTL
	}
	return st
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func (e *Engine) renderHTMLHead(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Title {
			if title := extractText(c); title != "" {
				e.c.SetTitle(title)
			}
		}
	}
}

func (e *Engine) renderHTMLHeader(n *html.Node, st style) {
	st.bold = true
	st.size = e.DefaultFontSize * headingScale[n.DataAtom]
	e.gap(st.size * 0.3)
	e.renderBlock(n, st, nil)
	e.gap(st.size * 0.3)
}

func (e *Engine) renderHTMLList(n *html.Node, st style) {
	ordered := n.DataAtom == atom.Ol
	index := 0

	x, w := e.boxX, e.boxW
	if !st.rtl {
		e.boxX += listIndent
	}
	e.boxW -= listIndent
	defer func() { e.boxX, e.boxW = x, w }()

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		index++
		marker := "-"
		if ordered {
			if st.rtl {
				marker = fmt.Sprintf(".%d", index)
			} else {
				marker = fmt.Sprintf("%d.", index)
			}
		}
		e.renderHTMLListItem(c, direction(c, st), marker)
	}
	e.gap(st.size * 0.5)
}

func (e *Engine) renderHTMLListItem(n *html.Node, st style, marker string) {
	e.renderBlock(n, st, []TextSpan{{Text: marker, Bold: st.bold, Size: st.size}})
}

func (e *Engine) renderHTMLRule() {
	const h = 6.0
	e.checkPageBreak(h)
	y := e.cursorY + h/2
	e.c.DrawLine(e.boxX, y, e.boxX+e.boxW, y)
	e.cursorY += h
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(sb.String())
}
