// Package templates resolves caller keys to document templates and renders
// them with html/template.
package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownTemplate matches every *UnknownTemplateError.
var ErrUnknownTemplate = errors.New("templates: unknown template")

// UnknownTemplateError reports a key that maps to no template.
type UnknownTemplateError struct {
	Key string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("templates: unknown template key %q", e.Key)
}

func (e *UnknownTemplateError) Unwrap() error { return ErrUnknownTemplate }

// ID names a template file known to the Engine.
type ID string

const (
	InvoiceV1  ID = "invoice.v1.html"
	DeliveryV1 ID = "delivery.v1.html"
)

// DefaultKeys is the stock key mapping.
var DefaultKeys = map[string]ID{
	"invoice:v1":  InvoiceV1,
	"delivery:v1": DeliveryV1,
}

// Registry maps caller keys to template ids. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	keys map[string]ID
}

// NewRegistry copies keys, normalizing each key. Entries with a blank id are
// kept so they resolve to an error rather than being silently dropped.
func NewRegistry(keys map[string]ID) *Registry {
	r := &Registry{keys: make(map[string]ID, len(keys))}
	for k, id := range keys {
		r.keys[NormalizeKey(k)] = id
	}
	return r
}

// DefaultRegistry returns a registry over DefaultKeys.
func DefaultRegistry() *Registry { return NewRegistry(DefaultKeys) }

// Resolve returns the template id for apiKey.
func (r *Registry) Resolve(apiKey string) (ID, error) {
	key := NormalizeKey(apiKey)
	if key == "" {
		return "", &UnknownTemplateError{Key: apiKey}
	}
	id, ok := r.keys[key]
	if !ok || strings.TrimSpace(string(id)) == "" {
		return "", &UnknownTemplateError{Key: apiKey}
	}
	return id, nil
}

// Keys lists the registered keys in sorted order.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.keys))
	for k := range r.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NormalizeKey folds the accepted spellings of a key into "name:version":
// surrounding space and case are ignored, "." may separate the version and a
// trailing ".html" is dropped. "Delivery.v1.html" becomes "delivery:v1".
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.TrimSuffix(key, ".html")
	return strings.ReplaceAll(key, ".", ":")
}
