package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/wudi/podpdf/fonts"
	"github.com/wudi/podpdf/images"
)

// Canvas is the drawing surface the engine lays out onto. All measurements
// are in points; y grows downward from the top of the page.
type Canvas interface {
	AddPage()
	PageSize() (w, h float64)
	SetFont(bold bool, size float64)
	TextWidth(s string) float64
	DrawText(s string, x, baseline float64)
	DrawLine(x1, y1, x2, y2 float64)
	DrawRect(x, y, w, h float64)
	// RegisterImage makes an image available under name and returns its
	// natural size. Registering the same name twice is a no-op.
	RegisterImage(name, mime string, data []byte) (w, h float64, err error)
	DrawImage(name string, x, y, w, h float64)
	SetTitle(title string)
	Err() error
}

// PDFConfig configures a PDF canvas.
type PDFConfig struct {
	PageSize  string // fpdf size name, e.g. "A4"
	Landscape bool
	// Font is embedded as a UTF-8 font for regular and bold text. When nil
	// the core Helvetica font is used with cp1252 translation.
	Font         *fonts.Face
	FontFamily   string
	Lang         string
	Compress     bool
	CreationDate time.Time
}

// PDF is a Canvas backed by fpdf.
type PDF struct {
	doc       *fpdf.Fpdf
	family    string
	translate func(string) string
}

// NewPDF creates a canvas with no pages.
func NewPDF(cfg PDFConfig) (*PDF, error) {
	orientation := "P"
	if cfg.Landscape {
		orientation = "L"
	}
	size := cfg.PageSize
	if size == "" {
		size = "A4"
	}
	doc := fpdf.New(orientation, "pt", size, "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetCompression(cfg.Compress)
	if !cfg.CreationDate.IsZero() {
		doc.SetCreationDate(cfg.CreationDate)
	}
	if cfg.Lang != "" {
		doc.SetLang(cfg.Lang)
	}

	p := &PDF{doc: doc}
	if cfg.Font != nil && len(cfg.Font.Data) > 0 {
		p.family = cfg.FontFamily
		if p.family == "" {
			p.family = "Arabic"
		}
		doc.AddUTF8FontFromBytes(p.family, "", cfg.Font.Data)
		doc.AddUTF8FontFromBytes(p.family, "B", cfg.Font.Data)
		p.translate = func(s string) string { return s }
	} else {
		p.family = "Helvetica"
		p.translate = doc.UnicodeTranslatorFromDescriptor("")
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("layout: register font: %w", err)
	}
	doc.SetFont(p.family, "", 10)
	return p, nil
}

func (p *PDF) AddPage() { p.doc.AddPage() }

func (p *PDF) PageSize() (float64, float64) { return p.doc.GetPageSize() }

func (p *PDF) SetFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	p.doc.SetFont(p.family, style, size)
}

func (p *PDF) TextWidth(s string) float64 {
	return p.doc.GetStringWidth(p.translate(s))
}

func (p *PDF) DrawText(s string, x, baseline float64) {
	p.doc.Text(x, baseline, p.translate(s))
}

func (p *PDF) DrawLine(x1, y1, x2, y2 float64) {
	p.doc.Line(x1, y1, x2, y2)
}

func (p *PDF) DrawRect(x, y, w, h float64) {
	p.doc.Rect(x, y, w, h, "D")
}

// RegisterImage embeds data under name. fpdf errors are sticky, so a failed
// image is cleared here and reported to the caller instead of failing the
// whole document.
func (p *PDF) RegisterImage(name, mime string, data []byte) (float64, float64, error) {
	if err := p.doc.Error(); err != nil {
		return 0, 0, err
	}
	opts := fpdf.ImageOptions{ImageType: images.ImageType(mime)}
	info := p.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := p.doc.Error(); err != nil {
		p.doc.ClearError()
		return 0, 0, fmt.Errorf("layout: register image %s: %w", name, err)
	}
	if info == nil {
		return 0, 0, errors.New("layout: register image: no image info")
	}
	return info.Width(), info.Height(), nil
}

func (p *PDF) DrawImage(name string, x, y, w, h float64) {
	p.doc.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
}

func (p *PDF) SetTitle(title string) { p.doc.SetTitle(title, true) }

func (p *PDF) Err() error { return p.doc.Error() }

// Output writes the finished document to w.
func (p *PDF) Output(w io.Writer) error {
	if err := p.doc.Error(); err != nil {
		return err
	}
	if p.doc.PageCount() == 0 {
		p.doc.AddPage()
	}
	return p.doc.Output(w)
}
