// Package images turns image references of unknown shape into data URIs.
package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/wudi/podpdf/fields"
)

// ErrNotFound is wrapped by EncodeFile when the file cannot be read.
var ErrNotFound = errors.New("images: file not found")

const (
	dataPrefix = "data:image/"
	sniffLen   = 16
)

var magic = []struct {
	prefix string
	mime   string
}{
	{"iVBOR", "image/png"},
	{"/9j/", "image/jpeg"},
	{"R0lGOD", "image/gif"},
	{"PHN2Zy", "image/svg+xml"},
}

// SniffMIME classifies a base64 payload by the encoded form of its magic
// bytes. Payloads shorter than 16 characters and unknown prefixes are PNG.
func SniffMIME(b64 string) string {
	if len(b64) < sniffLen {
		return "image/png"
	}
	head := b64[:sniffLen]
	for _, m := range magic {
		if strings.HasPrefix(head, m.prefix) {
			return m.mime
		}
	}
	return "image/png"
}

// ToDataURI wraps a raw base64 payload in a data URI. Existing image data
// URIs are returned unchanged, so ToDataURI is idempotent on its output.
func ToDataURI(raw string) string {
	if strings.HasPrefix(raw, dataPrefix) {
		return raw
	}
	return "data:" + SniffMIME(raw) + ";base64," + raw
}

// Collect builds the ordered image collection of a payload: the legacy
// "imageBase64" field first, then every non-blank entry of "imageBase64List".
func Collect(payload map[string]any) []string {
	out := []string{}
	if payload == nil {
		return out
	}
	if s := fields.AsString(payload["imageBase64"]); s != "" {
		out = append(out, ToDataURI(s))
	}
	for _, v := range fields.AsSlice(payload["imageBase64List"]) {
		if s := fields.AsString(v); s != "" {
			out = append(out, ToDataURI(s))
		}
	}
	return out
}

// EncodeFile reads name from fsys and returns it as a data URI, with the MIME
// type taken from the extension.
func EncodeFile(fsys fs.FS, name string) (string, error) {
	if fsys == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := fs.ReadFile(fsys, strings.TrimPrefix(name, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	return "data:" + MIMEByExt(name) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// MIMEByExt maps a file name to the MIME type used for logos.
func MIMEByExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	}
	return "application/octet-stream"
}
