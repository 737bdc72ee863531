package document

import (
	"errors"
	"io/fs"

	"github.com/wudi/podpdf/assets"
	"github.com/wudi/podpdf/fields"
	"github.com/wudi/podpdf/fonts"
	"github.com/wudi/podpdf/images"
	"github.com/wudi/podpdf/labels"
	"github.com/wudi/podpdf/observability"
)

// Builder assembles contexts. It holds no mutable state and may be shared.
type Builder struct {
	logger observability.Logger
	shaper *fonts.Shaper
	static fs.FS
	logo   string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger degraded outcomes are reported to.
func WithLogger(l observability.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithShaper sets the Arabic shaper. The shaper's ordering must match the
// renderer: visual for the native backend, logical for Chromium.
func WithShaper(s *fonts.Shaper) Option {
	return func(b *Builder) {
		if s != nil {
			b.shaper = s
		}
	}
}

// WithStatic sets the static root the logo is read from.
func WithStatic(fsys fs.FS) Option {
	return func(b *Builder) { b.static = fsys }
}

// WithLogo sets the logo path inside the static root.
func WithLogo(name string) Option {
	return func(b *Builder) { b.logo = name }
}

// NewBuilder returns a Builder reading the bundled logo and shaping in
// visual order unless options say otherwise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: observability.NopLogger{},
		shaper: fonts.NewShaper(),
		static: assets.Static(),
		logo:   assets.LogoPath,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build dispatches to the entry point for kind.
func (b *Builder) Build(kind Kind, req Request) (Context, []observability.Warning) {
	if kind == PartialProof {
		return b.BuildPartialProof(req)
	}
	return b.BuildFullProof(req)
}

// BuildFullProof builds the Arabic full delivery proof context.
func (b *Builder) BuildFullProof(req Request) (Context, []observability.Warning) {
	var warns []observability.Warning
	ctx := Context{}

	b.addLogo(ctx, &warns)
	b.addImages(ctx, req.Data)
	b.addTable(ctx, labels.Letterhead, labels.Arabic, true)

	ctx["proofLine"] = ""
	if req.Data != nil {
		driver := fields.Extract(req.Data, fields.DriverName)
		customer := fields.Extract(req.Data, fields.CustomerName)
		date := fields.Extract(req.Data, fields.DeliveryDate)
		ctx["proofLine"] = b.shape(labels.FullProofLine.Compose("", driver, customer, date), true)
		b.addDate(ctx, date, &warns)
	}
	return ctx, warns
}

// BuildPartialProof builds the partial delivery/return context in the
// request's language.
func (b *Builder) BuildPartialProof(req Request) (Context, []observability.Warning) {
	var warns []observability.Warning
	lang := req.Language
	arabic := lang == labels.Arabic

	ctx := Context{
		"lang": lang.Tag().String(),
		"dir":  "ltr",
	}
	if lang.RTL() {
		ctx["dir"] = "rtl"
	}

	b.addLogo(ctx, &warns)
	b.addImages(ctx, req.Data)
	b.addTable(ctx, labels.Partial, lang, arabic)

	data := req.Data
	if data == nil {
		ctx["mode"] = "DELIVERY"
		ctx["modeLabelAr"] = b.shape(labels.ModeLabel(lang, labels.ModeDelivery), arabic)
		for _, k := range []string{"customerName", "driverName", "deliveryDate", "reason", "siteId",
			"invoiceNumber", "salesOrder", "routeId", "proofLine"} {
			ctx[k] = ""
		}
		ctx["items"] = []Item{}
		ctx["totals"] = nil
		return ctx, warns
	}

	modeRaw := fields.Extract(data, fields.Mode)
	mode := labels.ParseMode(modeRaw)
	customer := fields.Extract(data, fields.CustomerName)
	driver := fields.Extract(data, fields.DriverName)
	date := fields.Extract(data, fields.DeliveryDate)

	ctx["mode"] = modeRaw
	ctx["modeLabelAr"] = b.shape(labels.ModeLabel(lang, mode), arabic)
	ctx["proofLine"] = b.shape(labels.PartialProofLine(lang, mode, driver, customer, date), arabic)
	ctx["customerName"] = b.shape(customer, arabic)
	ctx["driverName"] = b.shape(driver, arabic)
	ctx["deliveryDate"] = b.shape(date, arabic)
	for key, rule := range map[string]fields.Rule{
		"reason":        fields.Reason,
		"siteId":        fields.SiteID,
		"invoiceNumber": fields.InvoiceNumber,
		"salesOrder":    fields.SalesOrder,
		"routeId":       fields.RouteID,
	} {
		ctx[key] = b.shape(fields.Extract(data, rule), arabic)
	}

	ctx["items"] = b.items(data["items"], arabic)
	ctx["totals"] = data["totals"]
	b.addDate(ctx, date, &warns)
	return ctx, warns
}

func (b *Builder) shape(s string, arabic bool) string {
	if !arabic {
		return s
	}
	return b.shaper.Process(s)
}

func (b *Builder) addTable(ctx Context, c labels.Catalog, lang labels.Language, arabic bool) {
	for _, key := range c.Keys(lang) {
		ctx[string(key)] = b.shape(c.Lookup(lang, key), arabic)
	}
}

func (b *Builder) addLogo(ctx Context, warns *[]observability.Warning) {
	ctx["logoUrl"] = assets.LogoPath
	ctx["logoBase64"] = ""
	if b.logo == "" {
		return
	}
	uri, err := images.EncodeFile(b.static, b.logo)
	if err != nil {
		detail := "logo not found"
		if !errors.Is(err, images.ErrNotFound) {
			detail = "logo unreadable"
		}
		*warns = append(*warns, observability.Warn(b.logger,
			observability.Warning{Code: observability.WarnLogoMissing, Detail: detail},
			observability.String("path", b.logo), observability.Error("error", err)))
		return
	}
	ctx["logoUrl"] = b.logo
	ctx["logoBase64"] = uri
}

func (b *Builder) addImages(ctx Context, data map[string]any) {
	imgs := images.Collect(data)
	ctx["podImages"] = imgs
	ctx["proofBase64"] = ""
	if len(imgs) > 0 {
		ctx["proofBase64"] = imgs[0]
	}
}

// addDate publishes deliveryDateObj when date is an ISO date. A blank date is
// not a failure; anything else unparseable is reported.
func (b *Builder) addDate(ctx Context, date string, warns *[]observability.Warning) {
	if date == "" {
		return
	}
	d, err := parseDate(date)
	if err != nil {
		*warns = append(*warns, observability.Warn(b.logger,
			observability.Warning{Code: observability.WarnDateUnparsed, Detail: "deliveryDate is not an ISO date"},
			observability.String("deliveryDate", date)))
		return
	}
	ctx["deliveryDateObj"] = d
}

func (b *Builder) items(v any, arabic bool) []Item {
	rows := fields.AsSlice(v)
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		m := fields.AsMap(r)
		out = append(out, Item{
			LineID:         m["lineId"],
			OrderedQty:     m["orderedQty"],
			ReturnedQty:    m["returnedQty"],
			UndeliveredQty: m["undeliveredQty"],
			DeliveredQty:   m["deliveredQty"],
			ItemCode:       b.shape(fields.AsString(m["itemCode"]), arabic),
			Description:    b.shape(fields.AsString(m["description"]), arabic),
		})
	}
	return out
}
