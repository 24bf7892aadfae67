package invoicepdf

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Paper sizes. Invoices print on A4; Letter is for callers rendering
// their own markup through [Engine.Render].
var (
	A4     = PageSize{Width: 21.0, Height: 29.7}
	Letter = PageSize{Width: 21.59, Height: 27.94}
)

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// Margin represents page margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// cssPixelsPerInch is the fixed CSS reference resolution.
const cssPixelsPerInch = 96.0

// PixelMargin returns a uniform Margin of px CSS pixels.
func PixelMargin(px float64) Margin {
	return UniformMargin(px / cssPixelsPerInch * 2.54)
}

// InvoiceMarginPixels is the margin, in CSS pixels, on every side of an
// invoice page.
const InvoiceMarginPixels = 20

// PageConfig controls the PDF output parameters.
//
// A nil PageConfig or zero-value fields fall back to [InvoicePageConfig]:
// A4 portrait, 20px margins, scale 1.0, background graphics enabled.
type PageConfig struct {
	// Size specifies the paper size. Defaults to A4.
	Size PageSize

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// Margin specifies page margins in centimeters.
	Margin Margin

	// Scale of the webpage rendering. Must be between 0.1 and 2.0. Defaults to 1.0.
	Scale float64

	// PrintBackground enables printing of background colors and images.
	PrintBackground bool

	// DisplayHeaderFooter lets the engine add its own header and footer.
	// Invoices never set it; the letterhead and footer are part of the markup.
	DisplayHeaderFooter bool

	// HeaderTemplate and FooterTemplate use Chrome's print template format
	// (classes date, title, url, pageNumber, totalPages).
	HeaderTemplate string
	FooterTemplate string

	// PreferCSSPageSize gives precedence to any CSS @page size declared
	// in the document over the Size field.
	PreferCSSPageSize bool
}

// InvoicePageConfig returns the fixed configuration every invoice is
// printed with: A4 portrait, background graphics on, uniform 20px margins
// and no engine-injected header or footer.
func InvoicePageConfig() PageConfig {
	return PageConfig{
		Size:            A4,
		Orientation:     Portrait,
		Margin:          PixelMargin(InvoiceMarginPixels),
		Scale:           1.0,
		PrintBackground: true,
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := InvoicePageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	return r
}

// cmToInches converts centimeters to inches.
func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// paperDimensions returns the paper width and height in inches,
// accounting for orientation.
func (p *PageConfig) paperDimensions() (width, height float64) {
	r := p.resolved()
	w := cmToInches(r.Size.Width)
	h := cmToInches(r.Size.Height)
	if r.Orientation == Landscape {
		return h, w
	}
	return w, h
}

// marginInches returns margins converted to inches.
func (p *PageConfig) marginInches() (top, right, bottom, left float64) {
	r := p.resolved()
	return cmToInches(r.Margin.Top),
		cmToInches(r.Margin.Right),
		cmToInches(r.Margin.Bottom),
		cmToInches(r.Margin.Left)
}
