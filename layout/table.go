package layout

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const cellPadding = 4.0

type tableCell struct {
	spans  []TextSpan
	rtl    bool
	header bool
}

type tableRow []tableCell

func (e *Engine) renderHTMLTable(n *html.Node, st style) {
	rows := tableRows(n, st, nil)
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return
	}

	var widths []float64
	if e.Fast {
		widths = e.equalWidths(cols)
	} else {
		widths = e.measuredWidths(rows, cols)
	}

	e.gap(st.size * 0.3)
	for _, r := range rows {
		e.renderTableRow(r, widths, st.rtl)
	}
	e.gap(st.size * 0.5)
}

// tableRows collects rows from n, descending through row groups.
func tableRows(n *html.Node, st style, rows []tableRow) []tableRow {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead, atom.Tbody, atom.Tfoot:
			rows = tableRows(c, direction(c, st), rows)
		case atom.Tr:
			rows = append(rows, tableCells(c, direction(c, st)))
		}
	}
	return rows
}

func tableCells(tr *html.Node, st style) tableRow {
	var row tableRow
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cs := direction(c, st)
		header := c.DataAtom == atom.Th
		if header {
			cs.bold = true
		}
		var spans []TextSpan
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			spans = collectInline(cc, cs, spans)
		}
		row = append(row, tableCell{spans: spans, rtl: cs.rtl, header: header})
	}
	return row
}

func (e *Engine) equalWidths(cols int) []float64 {
	widths := make([]float64, cols)
	for i := range widths {
		widths[i] = e.boxW / float64(cols)
	}
	return widths
}

// measuredWidths sizes columns by content. Each column gets at least its
// widest word; the rest of the box is shared in proportion to how much more
// room each column would need to fit on one line.
func (e *Engine) measuredWidths(rows []tableRow, cols int) []float64 {
	natural := make([]float64, cols)
	minimum := make([]float64, cols)
	for _, r := range rows {
		for i, cell := range r {
			var line, widest float64
			for j, w := range e.words(cell.spans, cell.rtl) {
				if j > 0 {
					line += w.space
				}
				line += w.width
				widest = max(widest, w.width)
			}
			natural[i] = max(natural[i], line+2*cellPadding)
			minimum[i] = max(minimum[i], widest+2*cellPadding)
		}
	}

	var sumNatural, sumMin float64
	for i := range natural {
		sumNatural += natural[i]
		sumMin += minimum[i]
	}
	widths := make([]float64, cols)
	switch {
	case sumNatural == 0:
		return e.equalWidths(cols)
	case sumNatural <= e.boxW:
		for i := range widths {
			widths[i] = natural[i] * e.boxW / sumNatural
		}
	case sumMin >= e.boxW:
		for i := range widths {
			widths[i] = minimum[i] * e.boxW / sumMin
		}
	default:
		extra := e.boxW - sumMin
		for i := range widths {
			widths[i] = minimum[i] + extra*(natural[i]-minimum[i])/(sumNatural-sumMin)
		}
	}
	return widths
}

// renderTableRow draws one bordered row. In right-to-left tables the first
// column is the rightmost.
func (e *Engine) renderTableRow(r tableRow, widths []float64, rtl bool) {
	lines := make([][]textLine, len(widths))
	height := e.DefaultFontSize*e.LineHeight + 2*cellPadding
	for i := range widths {
		if i >= len(r) {
			continue
		}
		lines[i] = e.wrap(r[i].spans, widths[i]-2*cellPadding, r[i].rtl)
		var h float64
		for _, l := range lines[i] {
			h += l.height
		}
		height = max(height, h+2*cellPadding)
	}

	e.checkPageBreak(height)
	x := e.boxX
	if rtl {
		x = e.boxX + e.boxW
	}
	for i, w := range widths {
		if rtl {
			x -= w
		}
		e.c.DrawRect(x, e.cursorY, w, height)
		if i < len(r) {
			a := alignStart.resolve(r[i].rtl)
			if r[i].header {
				a = alignCenter
			}
			e.drawLines(lines[i], x+cellPadding, w-2*cellPadding, e.cursorY+cellPadding, a)
		}
		if !rtl {
			x += w
		}
	}
	e.cursorY += height
}
