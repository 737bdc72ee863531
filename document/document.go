// Package document assembles the rendering context of proof-of-delivery
// documents from loosely structured requests.
package document

import (
	"fmt"
	"time"

	"github.com/wudi/podpdf/labels"
)

// Kind selects which builder entry point produced a context.
type Kind string

const (
	FullProof    Kind = "full-proof"
	PartialProof Kind = "partial-proof"
)

// ParseKind accepts "full", "partial" and the full kind names.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "full", string(FullProof):
		return FullProof, nil
	case "partial", string(PartialProof):
		return PartialProof, nil
	}
	return "", fmt.Errorf("document: unknown kind %q", s)
}

// Request is one document job.
type Request struct {
	APIKey   string          `json:"apiKey"`
	Language labels.Language `json:"language"`
	Data     map[string]any  `json:"data"`
}

// Context is the key-value data handed to the template engine. It is built
// fresh for every request.
type Context map[string]any

// Item is one line of a partial proof. Quantities are passed through with
// their original type.
type Item struct {
	LineID         any    `json:"lineId"`
	OrderedQty     any    `json:"orderedQty"`
	ReturnedQty    any    `json:"returnedQty"`
	UndeliveredQty any    `json:"undeliveredQty"`
	DeliveredQty   any    `json:"deliveredQty"`
	ItemCode       string `json:"itemCode"`
	Description    string `json:"description"`
}

// DateLayout is the only accepted deliveryDate format.
const DateLayout = "2006-01-02"

// parseDate parses an ISO calendar date as UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
