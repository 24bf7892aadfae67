package invoicepdf

import "github.com/shopspring/decimal"

// InvoiceRecord is the input to a single render. It is read, never
// mutated, and not retained after the call returns.
//
// The numeric fields are trusted as given. The composer renders whatever
// totals the caller supplies and never recomputes them, so keeping
// SizeBreakdown.Total, LineItem.TotalQuantity, LineItem.TotalAmount and
// Totals consistent is the caller's responsibility. [InvoiceRecord.Validate]
// checks them on request.
type InvoiceRecord struct {
	// InvoiceNumber identifies the invoice. It is also used to build the
	// suggested file name, see [SuggestedFileName].
	InvoiceNumber string `json:"invoiceNumber" yaml:"invoiceNumber" validate:"required"`

	// InvoiceDate is displayed verbatim.
	InvoiceDate string `json:"invoiceDate" yaml:"invoiceDate"`

	// ShopName is displayed verbatim.
	ShopName string `json:"shopName" yaml:"shopName"`

	// Items are rendered in slice order.
	Items []LineItem `json:"items" yaml:"items" validate:"dive"`

	Totals Totals `json:"totals" yaml:"totals"`
}

// LineItem is one dress on the invoice with its per-size breakdown.
type LineItem struct {
	DressCode string `json:"dressCode" yaml:"dressCode"`
	DressName string `json:"dressName" yaml:"dressName"`

	// Photo is an image reference (URL, file URL or data URI). It is passed
	// through to the markup and resolved by the export engine.
	Photo string `json:"photo" yaml:"photo"`

	// Sizes are rendered in slice order.
	Sizes []SizeBreakdown `json:"sizes" yaml:"sizes" validate:"dive"`

	// TotalQuantity is expected to equal the sum of Sizes[i].Quantity.
	TotalQuantity int `json:"totalQuantity" yaml:"totalQuantity" validate:"gte=0"`

	// TotalAmount is expected to equal the sum of Sizes[i].Total.
	TotalAmount decimal.Decimal `json:"totalAmount" yaml:"totalAmount" validate:"gte=0"`
}

// SizeBreakdown is the quantity and price of one size of a LineItem.
type SizeBreakdown struct {
	Size     string          `json:"size" yaml:"size"`
	Quantity int             `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" yaml:"price" validate:"gte=0"`

	// Total is expected to equal Quantity × Price.
	Total decimal.Decimal `json:"total" yaml:"total" validate:"gte=0"`
}

// Totals summarises the whole invoice.
type Totals struct {
	TotalItems    int             `json:"totalItems" yaml:"totalItems" validate:"gte=0"`
	TotalQuantity int             `json:"totalQuantity" yaml:"totalQuantity" validate:"gte=0"`
	GrandTotal    decimal.Decimal `json:"grandTotal" yaml:"grandTotal" validate:"gte=0"`
}
