package labels

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"", Arabic},
		{"Arabic", Arabic},
		{"arabic", Arabic},
		{"ar", Arabic},
		{"ar-JO", Arabic},
		{"English", English},
		{"en", English},
		{"en-US", English},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLanguage(tc.in)
			if err != nil {
				t.Fatalf("ParseLanguage(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseLanguage(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	for _, bad := range []string{"fr", "French", "zz-!!"} {
		if _, err := ParseLanguage(bad); !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("ParseLanguage(%q) err = %v, want ErrUnsupportedLanguage", bad, err)
		}
	}
}

func TestLanguageJSON(t *testing.T) {
	var req struct {
		Language Language `json:"language"`
	}
	if err := json.Unmarshal([]byte(`{"language":"English"}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Language != English {
		t.Fatalf("got %v", req.Language)
	}
	out, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"language":"English"}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestCatalogsAreBilingual(t *testing.T) {
	for _, key := range Partial.Keys(Arabic) {
		if Partial.Lookup(English, key) == "" {
			t.Errorf("key %q has no English text", key)
		}
	}
	if len(Partial.Keys(Arabic)) != len(Partial.Keys(English)) {
		t.Error("Arabic and English tables differ in size")
	}
	if Letterhead.Lookup(Arabic, CompName) == "" {
		t.Error("letterhead is missing the company name")
	}
	if Letterhead.Lookup(English, CompName) != "" {
		t.Error("letterhead should be Arabic only")
	}
}

func TestParseMode(t *testing.T) {
	for _, in := range []string{"RETURN", "return", " Return "} {
		if ParseMode(in) != ModeReturn {
			t.Errorf("ParseMode(%q) should be return", in)
		}
	}
	for _, in := range []string{"", "DELIVERY", "returned", "x"} {
		if ParseMode(in) != ModeDelivery {
			t.Errorf("ParseMode(%q) should be delivery", in)
		}
	}
}

func TestPartialProofLine(t *testing.T) {
	got := PartialProofLine(English, ModeReturn, "Omar", "Lina", "2025-03-01")
	want := "Below is the partial return performed by driver Omar to customer Lina on 2025-03-01"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}

	got = PartialProofLine(English, ModeDelivery, "Omar", "Lina", "")
	if strings.Contains(got, " on ") || !strings.Contains(got, "partial delivery") {
		t.Errorf("unexpected sentence %q", got)
	}

	ar := PartialProofLine(Arabic, ModeReturn, "Omar", "Lina", "2025-03-01")
	for _, part := range []string{"إثبات الإرجاع الجزئي", "Omar", "Lina", "بتاريخ 2025-03-01"} {
		if !strings.Contains(ar, part) {
			t.Errorf("Arabic sentence %q is missing %q", ar, part)
		}
	}
}

func TestFullProofLineKeepsDateClause(t *testing.T) {
	got := FullProofLine.Compose("", "Omar", "Lina", "")
	if !strings.HasSuffix(got, "بتاريخ ") {
		t.Errorf("full proof sentence should always end with the date clause, got %q", got)
	}
}
