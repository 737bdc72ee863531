package layout

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/net/html"

	"github.com/wudi/podpdf/images"
	"github.com/wudi/podpdf/observability"
)

const pxToPt = 0.75

var (
	errRemoteImage = errors.New("remote images are not fetched")
	errNoBase      = errors.New("no base directory for relative image")
)

type imageInfo struct {
	name string
	w, h float64 // natural size in points
}

func (e *Engine) renderHTMLImage(n *html.Node, st style) {
	src := strings.TrimSpace(attr(n, "src"))
	if src == "" {
		return
	}
	img, err := e.loadImage(src)
	if err != nil {
		e.warn(observability.WarnImageSkipped, err.Error(), observability.String("src", abbreviate(src)))
		return
	}

	w, h := e.imageSize(n, img)
	e.checkPageBreak(h)
	x := e.boxX
	if st.rtl {
		x = e.boxX + e.boxW - w
	}
	e.c.DrawImage(img.name, x, e.cursorY, w, h)
	e.cursorY += h + st.size*0.5
}

// loadImage registers the image behind src with the canvas. In fast mode
// identical payloads are registered once.
func (e *Engine) loadImage(src string) (imageInfo, error) {
	mime, data, err := e.readImage(src)
	if err != nil {
		return imageInfo{}, err
	}
	if mime == "image/svg+xml" {
		return imageInfo{}, fmt.Errorf("unsupported image type %s", mime)
	}
	mime, data, err = images.Normalize(mime, data)
	if err != nil {
		return imageInfo{}, err
	}

	var name string
	if e.Fast {
		sum := blake2b.Sum256(data)
		name = "img-" + hex.EncodeToString(sum[:8])
		if info, ok := e.images[name]; ok {
			return info, nil
		}
	} else {
		e.imageSeq++
		name = "img-" + strconv.Itoa(e.imageSeq)
	}

	w, h, err := e.c.RegisterImage(name, mime, data)
	if err != nil {
		return imageInfo{}, err
	}
	info := imageInfo{name: name, w: w * pxToPt, h: h * pxToPt}
	if e.Fast {
		e.images[name] = info
	}
	return info, nil
}

func (e *Engine) readImage(src string) (string, []byte, error) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "data:"):
		return images.Decode(src)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "//"):
		return "", nil, errRemoteImage
	}
	if e.base == nil {
		return "", nil, errNoBase
	}
	name := strings.TrimPrefix(strings.TrimPrefix(src, "file://"), "/")
	data, err := fs.ReadFile(e.base, name)
	if err != nil {
		return "", nil, err
	}
	return images.MIMEByExt(name), data, nil
}

// imageSize applies the width and height attributes (CSS pixels), keeping the
// aspect ratio when only one is given, and scales the result down to fit the
// box and the page.
func (e *Engine) imageSize(n *html.Node, img imageInfo) (float64, float64) {
	w, h := img.w, img.h
	aw, okW := pixels(attr(n, "width"))
	ah, okH := pixels(attr(n, "height"))
	switch {
	case okW && okH:
		w, h = aw, ah
	case okW && img.w > 0:
		w, h = aw, img.h*aw/img.w
	case okH && img.h > 0:
		w, h = img.w*ah/img.h, ah
	}

	if w > e.boxW && w > 0 {
		h = h * e.boxW / w
		w = e.boxW
	}
	if maxH := e.pageHeight - e.Margins.Top - e.Margins.Bottom; h > maxH && h > 0 {
		w = w * maxH / h
		h = maxH
	}
	return w, h
}

func pixels(v string) (float64, bool) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f * pxToPt, true
}

func abbreviate(src string) string {
	const limit = 48
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}
