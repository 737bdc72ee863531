package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wudi/podpdf/observability"
)

type fakeBackend struct {
	jobs  []Job
	out   []byte
	warns []observability.Warning
	err   error
	bidi  bool
}

func (f *fakeBackend) Rasterize(_ context.Context, job Job, w io.Writer) ([]observability.Warning, error) {
	f.jobs = append(f.jobs, job)
	if f.err != nil {
		w.Write([]byte("%PDF-partial"))
		return f.warns, f.err
	}
	_, err := w.Write(f.out)
	return f.warns, err
}

func (f *fakeBackend) Bidi() bool { return f.bidi }

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		StaticDir:  t.TempDir(),
		FontFS:     fstest.MapFS{"fonts/go.ttf": {Data: goregular.TTF}},
		FontName:   "fonts/go.ttf",
		FontFamily: "Arabic",
		PageSize:   "A4",
		Fast:       true,
	}
}

func hasWarning(warns []observability.Warning, code string) bool {
	for _, w := range warns {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestRenderJob(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBackend{out: []byte("%PDF-1.4 fake")}
	r := New(cfg, WithBackend(fb))

	out, err := r.Render(context.Background(), `<html lang="ar" dir="rtl"><body>x</body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if string(out.PDF) != "%PDF-1.4 fake" {
		t.Errorf("pdf = %q", out.PDF)
	}
	if len(fb.jobs) != 1 {
		t.Fatalf("backend called %d times", len(fb.jobs))
	}
	job := fb.jobs[0]
	if !job.RTL || !job.Fast {
		t.Error("jobs must default to RTL and fast mode")
	}
	if job.Lang != "ar" {
		t.Errorf("lang = %q", job.Lang)
	}
	abs, _ := filepath.Abs(cfg.StaticDir)
	if want := "file://" + filepath.ToSlash(abs) + "/"; job.BaseURI != want {
		t.Errorf("base uri = %q, want %q", job.BaseURI, want)
	}
	if job.Font == nil || job.Font.Source != "bundled:fonts/go.ttf" {
		t.Errorf("font = %+v", job.Font)
	}
	if !hasWarning(out.Warnings, observability.WarnFontNoArabic) {
		t.Errorf("warnings = %v", out.Warnings)
	}
}

func TestRenderBaseFallsBackToWorkingDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.StaticDir = filepath.Join(cfg.StaticDir, "missing")
	fb := &fakeBackend{out: []byte("%PDF")}
	if _, err := New(cfg, WithBackend(fb)).Render(context.Background(), "<p>x</p>"); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if want := "file://" + filepath.ToSlash(wd) + "/"; fb.jobs[0].BaseURI != want {
		t.Errorf("base uri = %q, want %q", fb.jobs[0].BaseURI, want)
	}
}

func TestRenderFontMissing(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := testConfig(t)
	cfg.FontFS = fstest.MapFS{}
	cfg.FallbackFont = filepath.Join(t.TempDir(), "none.ttf")
	fb := &fakeBackend{out: []byte("%PDF")}
	r := New(cfg, WithBackend(fb), WithLogger(observability.NewZapLogger(zap.New(core))))

	out, err := r.Render(context.Background(), "<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	if fb.jobs[0].Font != nil {
		t.Error("font should be nil")
	}
	if !hasWarning(out.Warnings, observability.WarnFontMissing) {
		t.Errorf("warnings = %v", out.Warnings)
	}
	if n := logs.FilterField(zap.String("code", observability.WarnFontMissing)).Len(); n != 1 {
		t.Errorf("logged %d font warnings, want 1", n)
	}
}

func TestRenderFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		fb   *fakeBackend
		ctx  func() context.Context
		op   string
	}{
		{"backend error", &fakeBackend{err: boom}, context.Background, "rasterize"},
		{"empty output", &fakeBackend{}, context.Background, "rasterize"},
		{"cancelled", &fakeBackend{out: []byte("%PDF")}, func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		}, "start"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := New(testConfig(t), WithBackend(tc.fb)).Render(tc.ctx(), "<p>x</p>")
			if out != nil {
				t.Error("no output expected on failure")
			}
			if !errors.Is(err, ErrRendering) {
				t.Fatalf("err = %v, want ErrRendering", err)
			}
			var re *RenderError
			if !errors.As(err, &re) || re.Op != tc.op {
				t.Errorf("err = %#v, want op %q", err, tc.op)
			}
		})
	}
	_, err := New(testConfig(t), WithBackend(&fakeBackend{err: boom})).Render(context.Background(), "")
	if !errors.Is(err, boom) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestRenderCancelledSkipsBackend(t *testing.T) {
	fb := &fakeBackend{out: []byte("%PDF")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	New(testConfig(t), WithBackend(fb)).Render(ctx, "<p>x</p>")
	if len(fb.jobs) != 0 {
		t.Error("backend called after cancellation")
	}
}

func TestBidi(t *testing.T) {
	if New(testConfig(t)).Bidi() {
		t.Error("native backend expects visual order")
	}
	if !New(testConfig(t), WithBackend(&fakeBackend{bidi: true})).Bidi() {
		t.Error("backend bidi not reported")
	}
}

func TestDocumentLang(t *testing.T) {
	tests := map[string]string{
		`<!DOCTYPE html><html lang="en" dir="ltr"><body></body></html>`: "en",
		`<html dir="rtl" lang="ar">`:                                    "ar",
		`<html><body lang="fr"></body></html>`:                          "",
		`<p>no html element</p>`:                                        "",
		``:                                                              "",
	}
	for src, want := range tests {
		if got := documentLang(src); got != want {
			t.Errorf("documentLang(%q) = %q, want %q", src, got, want)
		}
	}
}

func writeLogo(t *testing.T, dir string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 0x1f, G: 0x5f, B: 0x9f, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "images", "logo.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNativeRender(t *testing.T) {
	cfg := testConfig(t)
	writeLogo(t, cfg.StaticDir)

	src := `<!DOCTYPE html><html lang="en" dir="ltr"><head><title>Proof</title></head><body>
<header><img src="images/logo.png" height="36"><h3>Fine Hygienic Holding</h3></header>
<p>Below is the partial delivery performed by driver Omar to customer Lina</p>
<table><tr><th>Item</th><th>Qty</th></tr><tr><td>Tissue</td><td>2.5</td></tr></table>
</body></html>`
	out, err := New(cfg).Render(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out.PDF, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if hasWarning(out.Warnings, observability.WarnImageSkipped) {
		t.Errorf("logo should resolve against the static dir: %v", out.Warnings)
	}
	if !strings.Contains(string(out.PDF), "%%EOF") {
		t.Error("pdf trailer missing")
	}
}
