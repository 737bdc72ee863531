// Package pipeline turns document requests into PDF bytes:
// template key -> context -> HTML -> PDF.
package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/crypto/blake2b"

	"github.com/wudi/podpdf/document"
	"github.com/wudi/podpdf/fonts"
	"github.com/wudi/podpdf/observability"
	"github.com/wudi/podpdf/render"
	"github.com/wudi/podpdf/templates"
)

// TemplateEngine renders a resolved template with a context.
type TemplateEngine interface {
	Render(id templates.ID, ctx map[string]any) (string, error)
}

// Rasterizer turns HTML into PDF bytes.
type Rasterizer interface {
	Render(ctx context.Context, html string) (*render.Output, error)
	Bidi() bool
}

// Config wires the pipeline stages. Registry, Engine and Renderer are
// required; Static and Logo override where the logo is read from.
type Config struct {
	Registry *templates.Registry
	Engine   TemplateEngine
	Renderer Rasterizer
	Static   fs.FS
	Logo     string
}

// Result is one generated document.
type Result struct {
	PDF      []byte
	Kind     document.Kind
	Template templates.ID
	Warnings []observability.Warning
	// Fingerprint is the first 16 hex digits of the BLAKE2b-256 digest of PDF.
	Fingerprint string
}

// Service generates documents. It is safe for concurrent use when its
// engine and renderer are.
type Service struct {
	registry *templates.Registry
	engine   TemplateEngine
	renderer Rasterizer
	builder  *document.Builder
	logger   observability.Logger
	tracer   observability.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger shared by the pipeline stages.
func WithLogger(l observability.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer opens a span per pipeline stage.
func WithTracer(t observability.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New creates a Service. The Arabic shaper follows the renderer: visual order
// for renderers without bidi support, logical order otherwise.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.Registry == nil || cfg.Engine == nil || cfg.Renderer == nil {
		return nil, errors.New("pipeline: registry, engine and renderer are required")
	}
	s := &Service{
		registry: cfg.Registry,
		engine:   cfg.Engine,
		renderer: cfg.Renderer,
		logger:   observability.NopLogger{},
		tracer:   observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var shaperOpts []fonts.ShaperOption
	if cfg.Renderer.Bidi() {
		shaperOpts = append(shaperOpts, fonts.WithLogicalOrder())
	}
	builderOpts := []document.Option{
		document.WithLogger(s.logger),
		document.WithShaper(fonts.NewShaper(shaperOpts...)),
	}
	if cfg.Static != nil {
		builderOpts = append(builderOpts, document.WithStatic(cfg.Static))
	}
	if cfg.Logo != "" {
		builderOpts = append(builderOpts, document.WithLogo(cfg.Logo))
	}
	s.builder = document.NewBuilder(builderOpts...)
	return s, nil
}

// GenerateFullProof renders the Arabic full delivery proof.
func (s *Service) GenerateFullProof(ctx context.Context, req document.Request) (*Result, error) {
	return s.Generate(ctx, document.FullProof, req)
}

// GeneratePartialProof renders the partial delivery/return proof in the
// request's language.
func (s *Service) GeneratePartialProof(ctx context.Context, req document.Request) (*Result, error) {
	return s.Generate(ctx, document.PartialProof, req)
}

// Generate runs the pipeline for kind. The template key is resolved first,
// so an unknown key fails before any other work.
func (s *Service) Generate(ctx context.Context, kind document.Kind, req document.Request) (*Result, error) {
	logger := s.logger.With(observability.String("kind", string(kind)))

	var id templates.ID
	err := s.stage(ctx, observability.SpanResolve, func(context.Context) error {
		var err error
		id, err = s.registry.Resolve(req.APIKey)
		return err
	})
	if err != nil {
		logger.Warn("template not resolved", observability.String("apiKey", req.APIKey))
		return nil, err
	}
	logger = logger.With(observability.String("template", string(id)))

	var (
		dctx  document.Context
		warns []observability.Warning
	)
	_ = s.stage(ctx, observability.SpanContext, func(context.Context) error {
		dctx, warns = s.builder.Build(kind, req)
		return nil
	})

	var src string
	err = s.stage(ctx, observability.SpanTemplate, func(context.Context) error {
		var err error
		src, err = s.engine.Render(id, dctx)
		return err
	})
	if err != nil {
		logger.Error("template rendering failed", observability.Error("error", err))
		return nil, fmt.Errorf("pipeline: render template %s: %w", id, err)
	}

	var out *render.Output
	err = s.stage(ctx, observability.SpanRaster, func(ctx context.Context) error {
		var err error
		out, err = s.renderer.Render(ctx, src)
		return err
	})
	if err != nil {
		logger.Error("pdf rendering failed", observability.Error("error", err))
		return nil, err
	}

	res := &Result{
		PDF:         out.PDF,
		Kind:        kind,
		Template:    id,
		Warnings:    append(warns, out.Warnings...),
		Fingerprint: Fingerprint(out.PDF),
	}
	logger.Info("document generated",
		observability.String("fingerprint", res.Fingerprint),
		observability.Int("bytes", len(res.PDF)),
		observability.Int("warnings", len(res.Warnings)))
	return res, nil
}

func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.StartSpan(ctx, name)
	defer span.Finish()
	if err := fn(ctx); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// Fingerprint identifies pdf by content.
func Fingerprint(pdf []byte) string {
	sum := blake2b.Sum256(pdf)
	return hex.EncodeToString(sum[:8])
}
