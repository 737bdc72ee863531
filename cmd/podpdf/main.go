package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/wudi/podpdf/document"
	"github.com/wudi/podpdf/observability"
	"github.com/wudi/podpdf/pipeline"
	"github.com/wudi/podpdf/render"
	"github.com/wudi/podpdf/render/chromium"
	"github.com/wudi/podpdf/templates"
)

type options struct {
	kind      document.Kind
	inPath    string
	outDir    string
	staticDir string
	fontPath  string
	backend   string
	chrome    string
	timeout   time.Duration
	tplDir    string
	verbose   bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "podpdf: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "podpdf: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	defaults := render.DefaultConfig()
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: podpdf [flags]\n\nReads a JSON request {\"apiKey\", \"language\", \"data\"} and writes a PDF.\n\n")
		flag.PrintDefaults()
	}
	kind := flag.String("kind", "full", "Document kind: full or partial")
	flag.StringVar(&opts.inPath, "in", "-", "Request JSON file, - for stdin")
	flag.StringVar(&opts.outDir, "out", "results", "Output directory")
	flag.StringVar(&opts.staticDir, "static", defaults.StaticDir, "Static directory holding images/logo.png")
	flag.StringVar(&opts.fontPath, "font", defaults.FallbackFont, "Font file used when no font is bundled")
	flag.StringVar(&opts.backend, "backend", "native", "Rasterizer: native or chromium")
	flag.StringVar(&opts.chrome, "chrome", "", "Chromium binary for -backend chromium")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Chromium print timeout")
	flag.StringVar(&opts.tplDir, "templates", "", "Directory of template overrides")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		return options{}, fmt.Errorf("unexpected arguments %v", flag.Args())
	}
	k, err := document.ParseKind(*kind)
	if err != nil {
		return options{}, err
	}
	opts.kind = k
	if opts.backend != "native" && opts.backend != "chromium" {
		return options{}, fmt.Errorf("unknown backend %q", opts.backend)
	}
	return opts, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(opts options) error {
	zl, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer zl.Sync()
	logger := observability.NewZapLogger(zl)

	req, err := readRequest(opts.inPath)
	if err != nil {
		return err
	}

	var engineOpts []templates.EngineOption
	if opts.tplDir != "" {
		engineOpts = append(engineOpts, templates.WithDir(opts.tplDir))
	}
	engine, err := templates.NewEngine(engineOpts...)
	if err != nil {
		return err
	}

	rcfg := render.DefaultConfig()
	rcfg.StaticDir = opts.staticDir
	rcfg.FallbackFont = opts.fontPath
	renderOpts := []render.Option{render.WithLogger(logger)}
	if opts.backend == "chromium" {
		renderOpts = append(renderOpts, render.WithBackend(chromium.New(
			chromium.WithExecPath(opts.chrome),
			chromium.WithTimeout(opts.timeout),
			chromium.WithLogger(logger),
		)))
	}

	pcfg := pipeline.Config{
		Registry: templates.DefaultRegistry(),
		Engine:   engine,
		Renderer: render.New(rcfg, renderOpts...),
	}
	if st, err := os.Stat(opts.staticDir); err == nil && st.IsDir() {
		pcfg.Static = os.DirFS(opts.staticDir)
	}
	svc, err := pipeline.New(pcfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := svc.Generate(ctx, opts.kind, req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(opts.outDir, fmt.Sprintf("%s-%s.pdf", res.Kind, res.Fingerprint))
	if err := os.WriteFile(path, res.PDF, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	fmt.Println(path)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}

func readRequest(path string) (document.Request, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return document.Request{}, fmt.Errorf("read request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var req document.Request
	if err := dec.Decode(&req); err != nil {
		return document.Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
