package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"
)

// ErrFontNotFound is returned by LoadFace when no candidate is a usable font.
var ErrFontNotFound = errors.New("fonts: no usable font found")

// Face is a parsed TrueType/OpenType font held in memory.
type Face struct {
	// Data is the raw font file, ready to be embedded.
	Data []byte
	// Source records where the font was loaded from.
	Source string
	Family string
	// PostScriptName is empty when the font has no name table entry.
	PostScriptName string

	face *gofont.Face
}

// ParseFace validates data as a font and reads its names.
func ParseFace(source string, data []byte) (*Face, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("fonts: %s: empty font data", source)
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", source, err)
	}
	f := &Face{
		Data:   data,
		Source: source,
		Family: face.Describe().Family,
		face:   face,
	}
	if sf, err := sfnt.Parse(data); err == nil {
		if ps, err := sf.Name(&sfnt.Buffer{}, sfnt.NameIDPostScript); err == nil {
			f.PostScriptName = ps
		}
	}
	return f, nil
}

// LoadFace looks for bundledName in bundled first and then reads fallbackPath
// from disk. Either may be empty to skip that candidate.
func LoadFace(bundled fs.FS, bundledName, fallbackPath string) (*Face, error) {
	var causes []string

	if bundled != nil && bundledName != "" {
		data, err := fs.ReadFile(bundled, bundledName)
		if err == nil {
			var face *Face
			if face, err = ParseFace("bundled:"+bundledName, data); err == nil {
				return face, nil
			}
		}
		causes = append(causes, err.Error())
	}

	if fallbackPath != "" {
		data, err := os.ReadFile(fallbackPath)
		if err == nil {
			var face *Face
			if face, err = ParseFace(fallbackPath, data); err == nil {
				return face, nil
			}
		}
		causes = append(causes, err.Error())
	}

	if len(causes) == 0 {
		return nil, ErrFontNotFound
	}
	return nil, fmt.Errorf("%w: %s", ErrFontNotFound, strings.Join(causes, "; "))
}

var arabicProbe = []rune{
	0x0627, 0x0628, 0x0644, 0x0645, // base letters
	0xFE8E, 0xFE91, 0xFEDF, 0xFEFB, // presentation forms
}

// CoversArabic reports whether the font maps the Arabic letters and the
// presentation forms produced by Shaper.
func (f *Face) CoversArabic() bool {
	if f == nil || f.face == nil {
		return false
	}
	for _, r := range arabicProbe {
		if _, ok := f.face.NominalGlyph(r); !ok {
			return false
		}
	}
	return true
}

// Covers reports whether every non-space rune of s has a glyph in the font.
func (f *Face) Covers(s string) bool {
	if f == nil || f.face == nil {
		return false
	}
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			continue
		}
		if _, ok := f.face.NominalGlyph(r); !ok {
			return false
		}
	}
	return true
}
