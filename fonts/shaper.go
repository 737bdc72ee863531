// Package fonts loads the Arabic-capable font embedded in documents and
// shapes Arabic text into presentation forms for writers without OpenType
// shaping.
package fonts

import (
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
)

// Shaper converts logical Arabic text into presentation forms for writers
// that place glyphs one by one without OpenType shaping.
//
// By default each line is also reordered into visual (left-to-right glyph)
// order. Renderers that run the bidi algorithm themselves should use
// WithLogicalOrder.
type Shaper struct {
	logical bool
}

// ShaperOption configures a Shaper.
type ShaperOption func(*Shaper)

// WithLogicalOrder keeps shaped text in logical order.
func WithLogicalOrder() ShaperOption {
	return func(s *Shaper) { s.logical = true }
}

// NewShaper returns a Shaper that emits visual order unless configured
// otherwise.
func NewShaper(opts ...ShaperOption) *Shaper {
	s := &Shaper{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogicalOrder reports whether s leaves text in logical order.
func (s *Shaper) LogicalOrder() bool { return s.logical }

// Process shapes text. Blank input returns "" without shaping. The result must
// not be passed to Process again.
func (s *Shaper) Process(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		shaped := string(shapeRunes([]rune(line)))
		if !s.logical {
			shaped = visualOrder(shaped)
		}
		lines[i] = shaped
	}
	return strings.Join(lines, "\n")
}

type joining uint8

const (
	joinNone joining = iota
	joinRight
	joinDual
	joinCausing
	joinTransparent
)

func joiningType(r rune) joining {
	switch {
	case r == 0x0640 || r == 0x200D: // tatweel, ZWJ
		return joinCausing
	case unicode.Is(unicode.Mn, r):
		return joinTransparent
	}
	f, ok := arabicForms[r]
	switch {
	case !ok:
		return joinNone
	case f[formInitial] != 0:
		return joinDual
	case f[formFinal] != 0:
		return joinRight
	}
	return joinNone
}

func shapeRunes(in []rune) []rune {
	types := make([]joining, len(in))
	for i, r := range in {
		types[i] = joiningType(r)
	}

	// joinsBefore reports whether the nearest non-transparent rune before i
	// connects towards i.
	joinsBefore := func(i int) bool {
		for j := i - 1; j >= 0; j-- {
			switch types[j] {
			case joinTransparent:
				continue
			case joinDual, joinCausing:
				return true
			}
			return false
		}
		return false
	}
	joinsAfter := func(i int) bool {
		for j := i + 1; j < len(in); j++ {
			switch types[j] {
			case joinTransparent:
				continue
			case joinDual, joinRight, joinCausing:
				return true
			}
			return false
		}
		return false
	}

	out := make([]rune, 0, len(in))
	for i := 0; i < len(in); i++ {
		r := in[i]
		switch r {
		case 0x200C, 0x200D:
			// Zero-width joiners only steer joining; fonts rarely carry them.
			continue
		}
		if r == 0x0644 {
			// Marks between lam and alef follow the ligature.
			j := i + 1
			for j < len(in) && types[j] == joinTransparent {
				j++
			}
			if j < len(in) {
				if lig, ok := lamAlef[in[j]]; ok {
					if joinsBefore(i) {
						out = append(out, lig[1])
					} else {
						out = append(out, lig[0])
					}
					out = append(out, in[i+1:j]...)
					i = j
					continue
				}
			}
		}

		forms := arabicForms[r]
		form := formIsolated
		switch types[i] {
		case joinDual:
			before, after := joinsBefore(i), joinsAfter(i)
			switch {
			case before && after:
				form = formMedial
			case before:
				form = formFinal
			case after:
				form = formInitial
			}
		case joinRight:
			if joinsBefore(i) {
				form = formFinal
			}
		default:
			// Non-joining letters such as hamza still take their isolated form.
			if g := forms[formIsolated]; g != 0 && types[i] == joinNone {
				out = append(out, g)
			} else {
				out = append(out, r)
			}
			continue
		}
		if g := forms[form]; g != 0 {
			out = append(out, g)
		} else {
			out = append(out, forms[formIsolated])
		}
	}
	return out
}

// visualOrder lays out one line as a right-to-left paragraph and returns its
// runes in display order. Lines without right-to-left text are unchanged.
func visualOrder(line string) string {
	if !hasRTL(line) {
		return line
	}
	runes := []rune(line)
	var p bidi.Paragraph
	if _, err := p.SetString(string(numberIslands(runes)), bidi.DefaultDirection(bidi.RightToLeft)); err != nil {
		return reverseClusters(line)
	}
	o, err := p.Order()
	if err != nil {
		return reverseClusters(line)
	}
	var b strings.Builder
	b.Grow(len(line))
	for i := o.NumRuns() - 1; i >= 0; i-- {
		run := o.Run(i)
		start, end := run.Pos()
		text := string(runes[start : end+1])
		if run.Direction() == bidi.RightToLeft {
			b.WriteString(reverseClusters(text))
		} else {
			b.WriteString(text)
		}
	}
	return b.String()
}

// numberIslands returns a copy of runes in which a single separator between
// two digits, and a plus sign leading a digit, are replaced by a digit. The
// copy is only used to resolve levels, so dates (2025-03-01), times, amounts
// and phone numbers (+962-6-4022251) stay one left-to-right run inside
// right-to-left text instead of having their parts reordered.
func numberIslands(runes []rune) []rune {
	out := make([]rune, len(runes))
	copy(out, runes)
	for i, r := range runes {
		next := i+1 < len(runes) && unicode.IsDigit(runes[i+1])
		switch r {
		case '-', '/', '.', ':', ',':
			if next && i > 0 && unicode.IsDigit(runes[i-1]) {
				out[i] = '0'
			}
		case '+':
			if next {
				out[i] = '0'
			}
		}
	}
	return out
}

// reverseClusters reverses s while keeping combining marks after their base
// and swapping paired punctuation.
func reverseClusters(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	end := len(runes)
	for end > 0 {
		start := end - 1
		for start > 0 && unicode.Is(unicode.Mn, runes[start]) {
			start--
		}
		for _, r := range runes[start:end] {
			if m, ok := mirrored[r]; ok {
				r = m
			}
			out = append(out, r)
		}
		end = start
	}
	return string(out)
}

func hasRTL(s string) bool {
	for _, r := range s {
		if ScriptDirection(language.LookupScript(r)) == di.DirectionRTL {
			return true
		}
	}
	return false
}

// ScriptDirection returns the writing direction of script.
func ScriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// DetectScript returns the most frequent script in runes, ignoring common
// and inherited characters. Ties keep the script seen first; text with no
// script-specific characters is Latin.
func DetectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin

	for _, r := range runes {
		script := language.LookupScript(r)
		switch script {
		case language.Unknown, language.Common, language.Inherited:
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			best = script
		}
	}
	return best
}
