// Package labels holds the localized text used to fill document contexts.
//
// Labels are kept as lookup tables keyed by language rather than as branches,
// so adding a language means adding a table. Arabic text is stored in logical
// Unicode order; shaping is applied by the caller after lookup.
package labels

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrUnsupportedLanguage is returned for languages outside Arabic and English.
var ErrUnsupportedLanguage = errors.New("labels: unsupported language")

// Language selects the label table and whether text is shaped.
type Language int

const (
	Arabic Language = iota
	English
)

func (l Language) String() string {
	switch l {
	case Arabic:
		return "Arabic"
	case English:
		return "English"
	}
	return fmt.Sprintf("Language(%d)", int(l))
}

// Tag returns the BCP 47 tag of l.
func (l Language) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.Arabic
}

// RTL reports whether l is written right to left.
func (l Language) RTL() bool { return l == Arabic }

// ParseLanguage accepts enum names ("Arabic", "english") and BCP 47 tags
// ("ar", "ar-JO", "en-US"). A blank string selects Arabic.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return Arabic, nil
	case "arabic":
		return Arabic, nil
	case "english":
		return English, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Arabic, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ar":
		return Arabic, nil
	case "en":
		return English, nil
	}
	return Arabic, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

func (l Language) MarshalText() ([]byte, error) {
	if l != Arabic && l != English {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedLanguage, int(l))
	}
	return []byte(l.String()), nil
}

func (l *Language) UnmarshalText(b []byte) error {
	v, err := ParseLanguage(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
