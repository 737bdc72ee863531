package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/url"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrMalformed is returned by Decode for strings that are not data URIs.
var ErrMalformed = errors.New("images: malformed data URI")

// Decode splits a data URI into its MIME type and payload.
func Decode(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrMalformed
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrMalformed
	}
	mime, params, _ := strings.Cut(meta, ";")
	if strings.Contains(params, "base64") {
		payload = strings.TrimSpace(payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return mime, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return mime, []byte(text), nil
}

// Normalize returns data in a format the PDF writer can embed directly
// (PNG, JPEG or GIF). WebP, BMP and TIFF are re-encoded as PNG.
func Normalize(mime string, data []byte) (string, []byte, error) {
	switch mime {
	case "image/png", "image/jpeg", "image/gif":
		return mime, data, nil
	}

	var (
		img image.Image
		err error
	)
	switch mime {
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(data))
	case "image/bmp", "image/x-ms-bmp":
		img, err = bmp.Decode(bytes.NewReader(data))
	case "image/tiff":
		img, err = tiff.Decode(bytes.NewReader(data))
	default:
		// Mislabelled payloads are common; trust the bytes over the label.
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return "", nil, fmt.Errorf("images: decode %s: %w", mime, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, fmt.Errorf("images: encode png: %w", err)
	}
	return "image/png", buf.Bytes(), nil
}

// ImageType maps a MIME type to the short name the PDF writer expects.
func ImageType(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	}
	return "png"
}
