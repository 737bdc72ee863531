package observability

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type boolField struct {
	key string
	val bool
}

func (f boolField) Key() string        { return f.key }
func (f boolField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field  { return stringField{key, value} }
func Int(key string, value int) Field { return intField{key, value} }
func Bool(key string, value bool) Field {
	return boolField{key, value}
}
func Error(key string, err error) Field { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Tracer provides distributed tracing hooks for pipeline stages.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a tracing span.
type Span interface {
	SetTag(key string, value interface{})
	SetError(err error)
	Finish()
}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

// NopTracer returns a tracer that does nothing.
func NopTracer() Tracer { return nopTracer{} }

type nopSpan struct{}

func (nopSpan) SetTag(string, interface{}) {}
func (nopSpan) SetError(error)             {}
func (nopSpan) Finish()                    {}

// Span names opened by the pipeline.
const (
	SpanResolve  = "podpdf.template.resolve"
	SpanContext  = "podpdf.context.build"
	SpanTemplate = "podpdf.template.render"
	SpanRaster   = "podpdf.pdf.render"
)

// Warning codes for degraded-but-successful outcomes.
const (
	WarnDateUnparsed = "date_unparsed"
	WarnLogoMissing  = "logo_missing"
	WarnFontMissing  = "font_missing"
	WarnFontNoArabic = "font_no_arabic"
	WarnImageSkipped = "image_skipped"
)

// Warning describes a degraded outcome that did not fail the request.
type Warning struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (w Warning) String() string {
	if w.Detail == "" {
		return w.Code
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Detail)
}

// Warn logs w on logger and returns it, so callers can record and report in one step.
func Warn(logger Logger, w Warning, fields ...Field) Warning {
	if logger == nil {
		return w
	}
	fields = append([]Field{String("code", w.Code)}, fields...)
	logger.Warn(w.Detail, fields...)
	return w
}
