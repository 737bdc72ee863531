// Package fields extracts logical values from loosely shaped request payloads.
//
// Upstream producers disagree about where a value lives: a driver name may be a
// flat "driverName" string or a "driver" object carrying "name". Each logical
// field is described by a Rule and resolved by Extract, which never fails;
// anything missing or of the wrong shape yields "".
package fields

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rule locates one logical field. Primary is looked up on the payload first;
// if it is blank, Nested names a sub-object probed for Aliases in order.
type Rule struct {
	Primary string
	Nested  string
	Aliases []string
}

// Predefined rules for the fields the document builders read.
var (
	CustomerName  = Rule{Primary: "customerName", Nested: "customer", Aliases: []string{"name", "customerName"}}
	DriverName    = Rule{Primary: "driverName", Nested: "driver", Aliases: []string{"name", "driverName"}}
	DeliveryDate  = Rule{Primary: "deliveryDate"}
	Mode          = Rule{Primary: "mode"}
	Reason        = Rule{Primary: "reason"}
	SiteID        = Rule{Primary: "siteId"}
	InvoiceNumber = Rule{Primary: "invoiceNumber"}
	SalesOrder    = Rule{Primary: "salesOrder"}
	RouteID       = Rule{Primary: "routeId"}
)

// Extract resolves r against payload and returns the trimmed value, or "".
func Extract(payload map[string]any, r Rule) string {
	if payload == nil {
		return ""
	}
	if v := AsString(payload[r.Primary]); v != "" {
		return v
	}
	if r.Nested == "" {
		return ""
	}
	nested := AsMap(payload[r.Nested])
	for _, alias := range r.Aliases {
		if v := AsString(nested[alias]); v != "" {
			return v
		}
	}
	return ""
}

// ExtractField is Extract with the rule spelled out inline.
func ExtractField(payload map[string]any, primary, nested string, aliases ...string) string {
	return Extract(payload, Rule{Primary: primary, Nested: nested, Aliases: aliases})
}

// AsString converts v to a trimmed string. nil becomes "". Floats are printed
// in their shortest form so JSON numbers like 12 do not come out as "12.000000".
func AsString(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	return strings.TrimSpace(s)
}

// AsMap returns v as a map, or nil if it is not one.
func AsMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return m
	}
	return nil
}

// AsSlice returns v as a list, or nil if it is not one.
func AsSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	}
	return nil
}
