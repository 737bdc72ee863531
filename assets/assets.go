// Package assets embeds the default font directory and static resources.
package assets

import (
	"embed"
	"io/fs"
)

// ArabicFont is the bundled font looked up in Fonts.
const ArabicFont = "fonts/NotoNaskhArabic-Regular.ttf"

// LogoPath is the logo location relative to the static root. It doubles as
// the logoUrl published to templates.
const LogoPath = "/images/logo.png"

//go:embed fonts
var Fonts embed.FS

//go:embed static
var static embed.FS

// Static returns the embedded static root (the directory holding images/).
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
