package invoicepdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed templates/invoice.html.tmpl templates/invoice.css
var assets embed.FS

// Markup is a complete HTML document ready for an [Engine].
type Markup string

// Brand is the static letterhead and footer content. It is not derived
// from the invoice and is identical on every render.
type Brand struct {
	Initials  string
	Name      string
	Tagline   string
	Address   []string
	Telephone string
	Copyright string
}

// DefaultBrand is the letterhead printed when no [WithBrand] option is given.
var DefaultBrand = Brand{
	Initials:  "ZY",
	Name:      "Zyentra Apparel Store",
	Tagline:   "Defining Style — Redefining You",
	Address:   []string{"Matara"},
	Telephone: "0789822147",
	Copyright: "©2025 Zyentra",
}

// Composer turns an [InvoiceRecord] into [Markup].
//
// Every text field is escaped by html/template before it reaches the
// document, so record content can never add elements or scripts. A
// Composer holds no per-call state and is safe for concurrent use.
type Composer struct {
	tmpl     *template.Template
	css      template.CSS
	brand    Brand
	currency string
	baseURL  template.URL
	body     string
}

// ComposerOption configures a [Composer].
type ComposerOption func(*Composer)

// WithBrand replaces [DefaultBrand].
func WithBrand(b Brand) ComposerOption {
	return func(c *Composer) {
		c.brand = b
	}
}

// WithCurrency sets the label printed before amounts. Defaults to
// [DefaultCurrency].
func WithCurrency(code string) ComposerOption {
	return func(c *Composer) {
		c.currency = code
	}
}

// WithBaseURL sets the URL relative photo references are resolved
// against. It is emitted as the document's <base> element; see
// [DirBaseURL] for a local directory. Without it relative references
// resolve against wherever the engine loads the markup from.
func WithBaseURL(u string) ComposerOption {
	return func(c *Composer) {
		c.baseURL = template.URL(u)
	}
}

// DirBaseURL returns the file:// URL of dir, with a trailing slash, for
// use with [WithBaseURL].
func DirBaseURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invoicepdf: resolving base directory: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

// WithTemplate replaces the document body with text, an html/template
// source executed against the same data as the built-in "invoice"
// template. The "letterhead", "footer" and "sizes" templates and the
// money and photoURL functions remain available to it.
func WithTemplate(text string) ComposerOption {
	return func(c *Composer) {
		c.body = text
	}
}

// NewComposer creates a Composer with the embedded invoice template.
func NewComposer(opts ...ComposerOption) (*Composer, error) {
	c := &Composer{
		brand:    DefaultBrand,
		currency: DefaultCurrency,
	}
	for _, o := range opts {
		o(c)
	}

	css, err := assets.ReadFile("templates/invoice.css")
	if err != nil {
		return nil, fmt.Errorf("invoicepdf: reading stylesheet: %w", err)
	}
	c.css = template.CSS(css)

	tmpl, err := template.New("document").
		Funcs(template.FuncMap{
			"money":    FormatMoney,
			"photoURL": photoURL,
		}).
		ParseFS(assets, "templates/invoice.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("invoicepdf: parsing template: %w", err)
	}
	if c.body != "" {
		if _, err := tmpl.New("invoice").Parse(c.body); err != nil {
			return nil, fmt.Errorf("invoicepdf: parsing custom template: %w", err)
		}
	}
	c.tmpl = tmpl
	return c, nil
}

// documentView is the data the "invoice" template is executed against.
type documentView struct {
	Record   *InvoiceRecord
	Brand    Brand
	Currency string
	BaseURL  template.URL
	CSS      template.CSS
}

// Compose renders rec as a standalone HTML document.
//
// Compose performs no I/O and never inspects or recomputes the record's
// numbers. A nil record renders as an empty invoice. An error is only
// possible when a template supplied with [WithTemplate] fails to execute.
func (c *Composer) Compose(rec *InvoiceRecord) (Markup, error) {
	if rec == nil {
		rec = &InvoiceRecord{}
	}
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, "invoice", documentView{
		Record:   rec,
		Brand:    c.brand,
		Currency: c.currency,
		BaseURL:  c.baseURL,
		CSS:      c.css,
	}); err != nil {
		return "", fmt.Errorf("invoicepdf: composing invoice %q: %w", rec.InvoiceNumber, err)
	}
	return Markup(buf.String()), nil
}

// Letterhead renders only the static letterhead fragment.
func (c *Composer) Letterhead() (template.HTML, error) {
	return c.fragment("letterhead")
}

// Footer renders only the static footer fragment.
func (c *Composer) Footer() (template.HTML, error) {
	return c.fragment("footer")
}

func (c *Composer) fragment(name string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, name, c.brand); err != nil {
		return "", fmt.Errorf("invoicepdf: rendering %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

var defaultComposer = sync.OnceValues(func() (*Composer, error) {
	return NewComposer()
})

// Compose renders rec with a shared Composer using the default brand and
// currency.
func Compose(rec *InvoiceRecord) (Markup, error) {
	c, err := defaultComposer()
	if err != nil {
		return "", err
	}
	return c.Compose(rec)
}

// photoURL admits image references the engine can resolve: http(s) and
// file URLs, relative or drive-letter paths, and data:image URIs. Anything
// else, javascript: included, yields an empty URL and the image is omitted.
func photoURL(ref string) template.URL {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	scheme, _, found := strings.Cut(ref, ":")
	if !found || strings.ContainsAny(scheme, "/?#") || len(scheme) == 1 {
		return template.URL(ref)
	}
	switch strings.ToLower(scheme) {
	case "http", "https", "file":
		return template.URL(ref)
	case "data":
		if strings.HasPrefix(strings.ToLower(ref), "data:image/") {
			return template.URL(ref)
		}
	}
	return ""
}
