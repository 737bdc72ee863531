package document

import (
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wudi/podpdf/fonts"
	"github.com/wudi/podpdf/labels"
	"github.com/wudi/podpdf/observability"
)

var logicalShaper = fonts.NewShaper(fonts.WithLogicalOrder())

func staticFS() fstest.MapFS {
	return fstest.MapFS{"images/logo.png": {Data: []byte("\x89PNG\r\n\x1a\n")}}
}

func newTestBuilder(opts ...Option) *Builder {
	base := []Option{WithShaper(logicalShaper), WithStatic(staticFS())}
	return NewBuilder(append(base, opts...)...)
}

func hasBaseArabic(s string) bool {
	for _, r := range s {
		if r >= 0x0621 && r <= 0x064A {
			return true
		}
	}
	return false
}

func warningCodes(ws []observability.Warning) []string {
	var out []string
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

func TestFullProofEndToEnd(t *testing.T) {
	b := newTestBuilder()
	ctx, warns := b.BuildFullProof(Request{
		APIKey: "invoice:v1",
		Data: map[string]any{
			"driverName":   "Omar",
			"customerName": "Lina",
			"deliveryDate": "2025-03-01",
		},
	})
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings %v", warns)
	}

	line, ok := ctx["proofLine"].(string)
	if !ok {
		t.Fatalf("proofLine is %T", ctx["proofLine"])
	}
	want := logicalShaper.Process(labels.FullProofLine.Compose("", "Omar", "Lina", "2025-03-01"))
	if line != want {
		t.Errorf("proofLine = %q, want %q", line, want)
	}
	for _, part := range []string{"Omar", "Lina", "2025-03-01"} {
		if !strings.Contains(line, part) {
			t.Errorf("proofLine missing %q", part)
		}
	}
	if hasBaseArabic(line) {
		t.Error("proofLine was not shaped")
	}

	got, ok := ctx["deliveryDateObj"].(time.Time)
	if !ok {
		t.Fatalf("deliveryDateObj is %T", ctx["deliveryDateObj"])
	}
	if !got.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("deliveryDateObj = %v", got)
	}
}

func TestFullProofVisualOrderKeepsNames(t *testing.T) {
	b := NewBuilder(WithStatic(staticFS()))
	ctx, _ := b.BuildFullProof(Request{Data: map[string]any{
		"driver":   map[string]any{"name": "Omar"},
		"customer": map[string]any{"customerName": "Lina"},
	}})
	line := ctx["proofLine"].(string)
	if !strings.Contains(line, "Omar") || !strings.Contains(line, "Lina") {
		t.Errorf("names lost in %q", line)
	}
}

func TestVisualOrderKeepsDates(t *testing.T) {
	b := NewBuilder(WithStatic(staticFS()))
	data := map[string]any{
		"driverName":   "Omar",
		"customerName": "Lina",
		"deliveryDate": "2025-03-01",
	}

	full, _ := b.BuildFullProof(Request{Data: data})
	line := full["proofLine"].(string)
	for _, part := range []string{"Omar", "Lina", "2025-03-01"} {
		if !strings.Contains(line, part) {
			t.Errorf("full proofLine %q missing %q", line, part)
		}
	}
	if !strings.HasPrefix(line, "2025-03-01 ") {
		t.Errorf("date should close the right-to-left line: %q", line)
	}

	partial, _ := b.BuildPartialProof(Request{Language: labels.Arabic, Data: data})
	if line := partial["proofLine"].(string); !strings.HasPrefix(line, "2025-03-01 ") {
		t.Errorf("partial proofLine = %q", line)
	}
	if got := partial["deliveryDate"]; got != "2025-03-01" {
		t.Errorf("deliveryDate = %q", got)
	}
	if hasBaseArabic(line) {
		t.Error("proofLine was not shaped")
	}
}

func TestFullProofUnparseableDate(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := newTestBuilder(WithLogger(observability.NewZapLogger(zap.New(core))))

	ctx, warns := b.BuildFullProof(Request{Data: map[string]any{"deliveryDate": "next Tuesday"}})
	if _, ok := ctx["deliveryDateObj"]; ok {
		t.Error("deliveryDateObj should be omitted")
	}
	if !strings.Contains(ctx["proofLine"].(string), "next Tuesday") {
		t.Error("raw date should still appear in the proof line")
	}
	if diff := cmp.Diff([]string{observability.WarnDateUnparsed}, warningCodes(warns)); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterField(zap.String("deliveryDate", "next Tuesday")).Len() != 1 {
		t.Error("date warning was not logged")
	}
}

func TestFullProofLetterhead(t *testing.T) {
	b := newTestBuilder()
	ctx, _ := b.BuildFullProof(Request{})
	for _, key := range labels.Letterhead.Keys(labels.Arabic) {
		raw := labels.Letterhead.Lookup(labels.Arabic, key)
		if got := ctx[string(key)]; got != logicalShaper.Process(raw) {
			t.Errorf("%s = %q, want shaped %q", key, got, raw)
		}
	}
	if hasBaseArabic(ctx["compName"].(string)) {
		t.Error("compName not shaped")
	}
	if ctx["logoUrl"] != "/images/logo.png" {
		t.Errorf("logoUrl = %v", ctx["logoUrl"])
	}
	if !strings.HasPrefix(ctx["logoBase64"].(string), "data:image/png;base64,") {
		t.Errorf("logoBase64 = %v", ctx["logoBase64"])
	}
}

func TestFullProofNilData(t *testing.T) {
	b := newTestBuilder()
	ctx, warns := b.BuildFullProof(Request{})
	if len(warns) != 0 {
		t.Errorf("unexpected warnings %v", warns)
	}
	if ctx["proofLine"] != "" || ctx["proofBase64"] != "" {
		t.Errorf("absent fields should be blank: %q %q", ctx["proofLine"], ctx["proofBase64"])
	}
	if imgs := ctx["podImages"].([]string); len(imgs) != 0 {
		t.Errorf("podImages = %v", imgs)
	}
}

func TestImageCollection(t *testing.T) {
	b := newTestBuilder()
	data := map[string]any{
		"imageBase64":     "abcd",
		"imageBase64List": []any{"efgh", "data:image/png;base64,ijkl"},
	}
	for _, build := range []func(Request) (Context, []observability.Warning){b.BuildFullProof, b.BuildPartialProof} {
		ctx, _ := build(Request{Data: data})
		imgs := ctx["podImages"].([]string)
		want := []string{"data:image/png;base64,abcd", "data:image/png;base64,efgh", "data:image/png;base64,ijkl"}
		if diff := cmp.Diff(want, imgs); diff != "" {
			t.Errorf("podImages mismatch (-want +got):\n%s", diff)
		}
		if ctx["proofBase64"] != want[0] {
			t.Errorf("proofBase64 = %v", ctx["proofBase64"])
		}
	}
}

func TestLogoMissing(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := NewBuilder(
		WithShaper(logicalShaper),
		WithStatic(fstest.MapFS{}),
		WithLogger(observability.NewZapLogger(zap.New(core))),
	)
	ctx, warns := b.BuildFullProof(Request{})
	if ctx["logoBase64"] != "" {
		t.Errorf("logoBase64 = %q", ctx["logoBase64"])
	}
	if diff := cmp.Diff([]string{observability.WarnLogoMissing}, warningCodes(warns)); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterField(zap.String("code", observability.WarnLogoMissing)).Len() != 1 {
		t.Error("logo warning not logged")
	}
}

func TestPartialProofMode(t *testing.T) {
	b := newTestBuilder()
	tests := []struct {
		lang      labels.Language
		mode      string
		wantMode  labels.Mode
		wantProof string
	}{
		{labels.Arabic, "return", labels.ModeReturn, "إثبات الإرجاع الجزئي"},
		{labels.Arabic, "RETURN", labels.ModeReturn, "إثبات الإرجاع الجزئي"},
		{labels.Arabic, "DELIVERY", labels.ModeDelivery, "إثبات التسليم الجزئي"},
		{labels.Arabic, "", labels.ModeDelivery, "إثبات التسليم الجزئي"},
		{labels.English, "Return", labels.ModeReturn, "partial return"},
		{labels.English, "anything", labels.ModeDelivery, "partial delivery"},
	}
	for _, tc := range tests {
		t.Run(tc.lang.String()+"/"+tc.mode, func(t *testing.T) {
			ctx, _ := b.BuildPartialProof(Request{Language: tc.lang, Data: map[string]any{
				"mode":       tc.mode,
				"driverName": "Omar",
			}})
			if ctx["mode"] != tc.mode {
				t.Errorf("mode = %q, want verbatim %q", ctx["mode"], tc.mode)
			}
			wantLabel := labels.ModeLabel(tc.lang, tc.wantMode)
			wantProof := tc.wantProof
			if tc.lang == labels.Arabic {
				wantLabel = logicalShaper.Process(wantLabel)
				wantProof = logicalShaper.Process(wantProof)
			}
			if ctx["modeLabelAr"] != wantLabel {
				t.Errorf("modeLabelAr = %q, want %q", ctx["modeLabelAr"], wantLabel)
			}
			if !strings.Contains(ctx["proofLine"].(string), wantProof) {
				t.Errorf("proofLine %q does not use %q", ctx["proofLine"], wantProof)
			}
		})
	}
}

func TestPartialProofNilData(t *testing.T) {
	b := newTestBuilder()
	for _, lang := range []labels.Language{labels.Arabic, labels.English} {
		ctx, _ := b.BuildPartialProof(Request{Language: lang})
		if ctx["mode"] != "DELIVERY" {
			t.Errorf("%v: mode = %v", lang, ctx["mode"])
		}
		want := labels.ModeLabel(lang, labels.ModeDelivery)
		if lang == labels.Arabic {
			want = logicalShaper.Process(want)
		}
		if ctx["modeLabelAr"] != want {
			t.Errorf("%v: modeLabelAr = %q, want %q", lang, ctx["modeLabelAr"], want)
		}
		for _, k := range []string{"customerName", "driverName", "reason", "routeId"} {
			if ctx[k] != "" {
				t.Errorf("%v: %s = %v, want blank", lang, k, ctx[k])
			}
		}
	}
}

func TestPartialProofLabels(t *testing.T) {
	b := newTestBuilder()

	en, _ := b.BuildPartialProof(Request{Language: labels.English, Data: map[string]any{
		"driver":   map[string]any{"driverName": "Sara"},
		"reason":   "Customer closed",
		"routeId":  12.0,
		"siteId":   json.Number("0042"),
		"customer": "not a map",
	}})
	for _, key := range labels.Partial.Keys(labels.English) {
		if got := en[string(key)]; got != labels.Partial.Lookup(labels.English, key) {
			t.Errorf("English %s = %q", key, got)
		}
	}
	wantFields := map[string]any{
		"driverName":   "Sara",
		"customerName": "",
		"reason":       "Customer closed",
		"routeId":      "12",
		"siteId":       "0042",
		"dir":          "ltr",
		"lang":         "en",
	}
	for k, want := range wantFields {
		if en[k] != want {
			t.Errorf("English %s = %q, want %q", k, en[k], want)
		}
	}

	ar, _ := b.BuildPartialProof(Request{Data: map[string]any{"reason": "العميل مغلق"}})
	if ar["dir"] != "rtl" {
		t.Errorf("dir = %v", ar["dir"])
	}
	if ar["title"] != logicalShaper.Process(labels.Partial.Lookup(labels.Arabic, labels.Title)) {
		t.Errorf("Arabic title not shaped: %q", ar["title"])
	}
	if r := ar["reason"].(string); r == "" || hasBaseArabic(r) {
		t.Errorf("reason not shaped: %q", r)
	}
}

func TestPartialProofItems(t *testing.T) {
	b := newTestBuilder()
	rows := []any{
		map[string]any{"lineId": 1.0, "orderedQty": 10.0, "returnedQty": 2.0, "itemCode": "A-1", "description": "مناديل"},
		map[string]any{"lineId": 2.0, "orderedQty": json.Number("4"), "deliveredQty": 4, "itemCode": "B-2", "description": "Towels"},
		"garbage",
	}

	ar, _ := b.BuildPartialProof(Request{Data: map[string]any{"items": rows, "totals": map[string]any{"orderedQty": 14.0}}})
	items := ar["items"].([]Item)
	if len(items) != len(rows) {
		t.Fatalf("got %d items, want %d", len(items), len(rows))
	}
	want := []Item{
		{LineID: 1.0, OrderedQty: 10.0, ReturnedQty: 2.0, ItemCode: "A-1", Description: logicalShaper.Process("مناديل")},
		{LineID: 2.0, OrderedQty: json.Number("4"), DeliveredQty: 4, ItemCode: "B-2", Description: "Towels"},
		{},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"orderedQty": 14.0}, ar["totals"]); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}

	en, _ := b.BuildPartialProof(Request{Language: labels.English, Data: map[string]any{"items": rows}})
	if got := en["items"].([]Item)[0].Description; got != "مناديل" {
		t.Errorf("English path shaped description: %q", got)
	}

	none, _ := b.BuildPartialProof(Request{Data: map[string]any{"items": "nope"}})
	if got := none["items"].([]Item); len(got) != 0 {
		t.Errorf("non-list items = %v", got)
	}
}

func TestRequestJSON(t *testing.T) {
	var req Request
	src := `{"apiKey":"delivery:v1","language":"English","data":{"mode":"RETURN"}}`
	if err := json.Unmarshal([]byte(src), &req); err != nil {
		t.Fatal(err)
	}
	if req.APIKey != "delivery:v1" || req.Language != labels.English || req.Data["mode"] != "RETURN" {
		t.Errorf("decoded %+v", req)
	}

	var def Request
	if err := json.Unmarshal([]byte(`{"apiKey":"invoice:v1"}`), &def); err != nil {
		t.Fatal(err)
	}
	if def.Language != labels.Arabic {
		t.Errorf("default language = %v", def.Language)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"full": FullProof, "partial-proof": PartialProof} {
		if got, err := ParseKind(in); err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("other"); err == nil {
		t.Error("expected error")
	}
}
