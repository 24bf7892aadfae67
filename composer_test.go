package invoicepdf_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoicepdf "github.com/porticus-lab/go-invoice-pdf"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// sampleInvoice is the single-item INV-001 record.
func sampleInvoice() *invoicepdf.InvoiceRecord {
	return &invoicepdf.InvoiceRecord{
		InvoiceNumber: "INV-001",
		InvoiceDate:   "2025-01-01",
		ShopName:      "Shop A",
		Items: []invoicepdf.LineItem{{
			DressCode: "D1",
			DressName: "Red",
			Sizes: []invoicepdf.SizeBreakdown{
				{Size: "M", Quantity: 2, Price: dec("500"), Total: dec("1000")},
			},
			TotalQuantity: 2,
			TotalAmount:   dec("1000"),
		}},
		Totals: invoicepdf.Totals{TotalItems: 1, TotalQuantity: 2, GrandTotal: dec("1000")},
	}
}

func compose(t *testing.T, rec *invoicepdf.InvoiceRecord, opts ...invoicepdf.ComposerOption) *goquery.Document {
	t.Helper()
	c, err := invoicepdf.NewComposer(opts...)
	require.NoError(t, err)
	markup, err := c.Compose(rec)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(markup)))
	require.NoError(t, err)
	return doc
}

func cellTexts(s *goquery.Selection) []string {
	var out []string
	s.Each(func(_ int, td *goquery.Selection) {
		out = append(out, strings.TrimSpace(td.Text()))
	})
	return out
}

func outerRows(doc *goquery.Document) *goquery.Selection {
	return doc.Find("table.items-table > tbody > tr")
}

func TestCompose_EndToEnd(t *testing.T) {
	doc := compose(t, sampleInvoice())

	assert.Equal(t, "INV-001", doc.Find(".invoice-number").Text())
	assert.Equal(t, "2025-01-01", doc.Find(".invoice-date").Text())
	assert.Equal(t, "Shop A", doc.Find(".invoice-shop").Text())
	assert.Equal(t, "Invoice INV-001", doc.Find("title").Text())

	rows := outerRows(doc)
	require.Equal(t, 1, rows.Length())

	inner := rows.First().Find("table.size-table > tbody > tr")
	require.Equal(t, 1, inner.Length())
	assert.Equal(t, []string{"M", "2", "500.00", "1000.00"}, cellTexts(inner.First().Children()))

	outer := cellTexts(rows.First().ChildrenFiltered("td"))
	assert.Equal(t, "D1", outer[0])
	assert.Equal(t, "Red", outer[1])
	assert.Equal(t, "2", outer[4])
	assert.Equal(t, "LKR 1000.00", outer[5])

	var totals []string
	doc.Find(".totals-box .total-line").Each(func(_ int, s *goquery.Selection) {
		totals = append(totals, strings.TrimSpace(s.Find("span").Last().Text()))
	})
	assert.Equal(t, []string{"1", "2", "LKR 1000.00"}, totals)
	assert.Equal(t, 1, doc.Find(".total-line.grand-total").Length())
	assert.Equal(t, 1, doc.Find(".settle-section .settle-line").Length())
}

func TestCompose_RowCounts(t *testing.T) {
	rec := &invoicepdf.InvoiceRecord{InvoiceNumber: "INV-2"}
	sizeCounts := []int{3, 0, 1, 5}
	for i, n := range sizeCounts {
		item := invoicepdf.LineItem{DressCode: string(rune('A' + i))}
		for j := range n {
			item.Sizes = append(item.Sizes, invoicepdf.SizeBreakdown{Size: string(rune('a' + j)), Quantity: 1})
		}
		rec.Items = append(rec.Items, item)
	}

	doc := compose(t, rec)

	rows := outerRows(doc)
	require.Equal(t, len(sizeCounts), rows.Length())
	rows.Each(func(i int, row *goquery.Selection) {
		assert.Equal(t, 1, row.Find("table.size-table").Length(), "row %d", i)
		assert.Equal(t, 1, row.Find("table.size-table > thead > tr").Length(), "row %d", i)
		assert.Equal(t, sizeCounts[i], row.Find("table.size-table > tbody > tr").Length(), "row %d", i)
	})
}

func TestCompose_PreservesOrder(t *testing.T) {
	rec := sampleInvoice()
	rec.Items = append(rec.Items, invoicepdf.LineItem{DressCode: "D2"}, invoicepdf.LineItem{DressCode: "D0"})
	rec.Items[0].Sizes = append(rec.Items[0].Sizes,
		invoicepdf.SizeBreakdown{Size: "XL"}, invoicepdf.SizeBreakdown{Size: "S"})

	doc := compose(t, rec)

	var codes []string
	outerRows(doc).Each(func(_ int, row *goquery.Selection) {
		codes = append(codes, strings.TrimSpace(row.ChildrenFiltered("td").First().Text()))
	})
	assert.Equal(t, []string{"D1", "D2", "D0"}, codes)

	var sizes []string
	outerRows(doc).First().Find("table.size-table > tbody > tr").Each(func(_ int, tr *goquery.Selection) {
		sizes = append(sizes, strings.TrimSpace(tr.Children().First().Text()))
	})
	assert.Equal(t, []string{"M", "XL", "S"}, sizes)
}

func TestCompose_EmptyItems(t *testing.T) {
	rec := &invoicepdf.InvoiceRecord{
		InvoiceNumber: "INV-0",
		Totals:        invoicepdf.Totals{TotalItems: 0, TotalQuantity: 0, GrandTotal: decimal.Zero},
	}

	doc := compose(t, rec)

	assert.Equal(t, 0, outerRows(doc).Length())
	assert.Equal(t, 1, doc.Find("table.items-table > thead > tr").Length())
	assert.Equal(t, 3, doc.Find(".totals-box .total-line").Length())
	assert.Contains(t, doc.Find(".grand-total").Text(), "LKR 0.00")
}

func TestCompose_Escaping(t *testing.T) {
	rec := sampleInvoice()
	rec.ShopName = "<script>alert(1)</script>"
	rec.InvoiceNumber = `"><img src=x onerror=alert(1)>`
	rec.Items[0].DressName = "<b>bold</b> & co"
	rec.Items[0].Sizes[0].Size = "<i>M</i>"

	c, err := invoicepdf.NewComposer()
	require.NoError(t, err)
	markup, err := c.Compose(rec)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(markup)))
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, 0, doc.Find("img[onerror]").Length())
	assert.Equal(t, 0, doc.Find("b").Length())
	assert.Equal(t, 0, doc.Find("i").Length())
	assert.Equal(t, "<script>alert(1)</script>", doc.Find(".invoice-shop").Text())
	assert.Equal(t, "<b>bold</b> & co", strings.TrimSpace(outerRows(doc).First().ChildrenFiltered("td").Eq(1).Text()))
	assert.NotContains(t, string(markup), "<script>")
}

func TestCompose_TotalsAreNotRecomputed(t *testing.T) {
	rec := sampleInvoice()
	rec.Items[0].Sizes[0].Total = dec("7")
	rec.Items[0].TotalAmount = dec("-3.5")
	rec.Totals = invoicepdf.Totals{TotalItems: 9, TotalQuantity: 0, GrandTotal: dec("12.345")}

	doc := compose(t, rec)

	row := outerRows(doc).First()
	assert.Equal(t, "7.00", strings.TrimSpace(row.Find("table.size-table > tbody > tr > td").Last().Text()))
	assert.Equal(t, "LKR -3.50", strings.TrimSpace(row.ChildrenFiltered("td").Last().Text()))
	assert.Contains(t, doc.Find(".totals-box").Text(), "9")
	assert.Contains(t, doc.Find(".grand-total").Text(), "LKR 12.35")
}

func TestCompose_Photo(t *testing.T) {
	tests := []struct {
		name    string
		photo   string
		wantSrc string
		wantImg bool
	}{
		{"https", "https://cdn.example.com/d1.jpg", "https://cdn.example.com/d1.jpg", true},
		{"file", "file:///home/shop/d1.jpg", "file:///home/shop/d1.jpg", true},
		{"relative", "photos/d1.jpg", "photos/d1.jpg", true},
		{"data image", "data:image/png;base64,iVBORw0KGgo=", "data:image/png;base64,iVBORw0KGgo=", true},
		{"empty", "", "", false},
		{"javascript", "javascript:alert(1)", "", false},
		{"data html", "data:text/html,<script>alert(1)</script>", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleInvoice()
			rec.Items[0].Photo = tt.photo

			img := compose(t, rec).Find("img.item-photo")

			if !tt.wantImg {
				assert.Equal(t, 0, img.Length())
				return
			}
			require.Equal(t, 1, img.Length())
			src, _ := img.Attr("src")
			assert.Equal(t, tt.wantSrc, src)
		})
	}
}

func TestCompose_NilRecord(t *testing.T) {
	doc := compose(t, nil)

	assert.Equal(t, 0, outerRows(doc).Length())
	assert.Equal(t, "", doc.Find(".invoice-number").Text())
	assert.Contains(t, doc.Find(".grand-total").Text(), "LKR 0.00")
}

func TestCompose_Deterministic(t *testing.T) {
	a, err := invoicepdf.Compose(sampleInvoice())
	require.NoError(t, err)
	b, err := invoicepdf.Compose(sampleInvoice())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompose_DoesNotMutate(t *testing.T) {
	rec := sampleInvoice()
	_, err := invoicepdf.Compose(rec)
	require.NoError(t, err)
	assert.Equal(t, sampleInvoice(), rec)
}

func TestComposer_LetterheadAndFooter(t *testing.T) {
	c, err := invoicepdf.NewComposer()
	require.NoError(t, err)

	head, err := c.Letterhead()
	require.NoError(t, err)
	hd, err := goquery.NewDocumentFromReader(strings.NewReader(string(head)))
	require.NoError(t, err)
	assert.Equal(t, "ZY", hd.Find(".invoice-logo").Text())
	assert.Equal(t, "Zyentra Apparel Store", hd.Find(".invoice-company h1").Text())
	assert.Contains(t, hd.Find(".invoice-tagline").Text(), "Defining Style")
	assert.Contains(t, hd.Find(".invoice-address").Text(), "Matara")
	assert.Contains(t, hd.Find(".invoice-address").Text(), "Telephone: 0789822147")

	foot, err := c.Footer()
	require.NoError(t, err)
	fd, err := goquery.NewDocumentFromReader(strings.NewReader(string(foot)))
	require.NoError(t, err)
	text := fd.Find(".invoice-footer").Text()
	assert.Contains(t, text, "©2025 Zyentra")
	assert.Contains(t, text, "Zyentra Apparel Store")
	assert.Contains(t, text, "0789822147")
}

func TestComposer_Options(t *testing.T) {
	brand := invoicepdf.Brand{
		Initials:  "AC",
		Name:      "Acme <Dresses>",
		Tagline:   "Fit for all",
		Address:   []string{"1 Main St", "Colombo"},
		Telephone: "011-000",
		Copyright: "©2026 Acme",
	}

	doc := compose(t, sampleInvoice(), invoicepdf.WithBrand(brand), invoicepdf.WithCurrency("USD"))

	assert.Equal(t, "Acme <Dresses>", doc.Find(".invoice-company h1").Text())
	assert.Equal(t, 2, doc.Find(".invoice-address br").Length())
	assert.Contains(t, doc.Find(".grand-total").Text(), "USD 1000.00")
	assert.Contains(t, doc.Find("table.items-table > thead").Text(), "Amount (USD)")
}

func TestComposer_WithTemplate(t *testing.T) {
	c, err := invoicepdf.NewComposer(invoicepdf.WithTemplate(
		`<html><body>{{template "letterhead" .Brand}}<p id="n">{{.Record.InvoiceNumber}}</p><p id="t">{{money .Record.Totals.GrandTotal}}</p></body></html>`))
	require.NoError(t, err)

	markup, err := c.Compose(sampleInvoice())
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(markup)))
	require.NoError(t, err)

	assert.Equal(t, "INV-001", doc.Find("#n").Text())
	assert.Equal(t, "1000.00", doc.Find("#t").Text())
	assert.Equal(t, "ZY", doc.Find(".invoice-logo").Text())
}

func TestComposer_WithTemplateErrors(t *testing.T) {
	_, err := invoicepdf.NewComposer(invoicepdf.WithTemplate(`{{.Record.InvoiceNumber`))
	assert.Error(t, err)

	c, err := invoicepdf.NewComposer(invoicepdf.WithTemplate(`{{.Record.NoSuchField}}`))
	require.NoError(t, err)
	_, err = c.Compose(sampleInvoice())
	assert.Error(t, err)
}

func TestComposer_BaseURL(t *testing.T) {
	rec := sampleInvoice()
	rec.Items[0].Photo = "photos/d1.jpg"

	assert.Equal(t, 0, compose(t, rec).Find("base").Length())

	doc := compose(t, rec, invoicepdf.WithBaseURL("file:///srv/shop/records/"))
	base := doc.Find("head > base")
	require.Equal(t, 1, base.Length())
	href, _ := base.Attr("href")
	assert.Equal(t, "file:///srv/shop/records/", href)
	src, _ := doc.Find("img.item-photo").Attr("src")
	assert.Equal(t, "photos/d1.jpg", src)
}

func TestDirBaseURL(t *testing.T) {
	dir := t.TempDir()

	got, err := invoicepdf.DirBaseURL(dir)
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(dir)+"/", got)

	spaced := filepath.Join(dir, "shop photos")
	got, err = invoicepdf.DirBaseURL(spaced)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "/shop%20photos/"), got)

	wd, err := os.Getwd()
	require.NoError(t, err)
	got, err = invoicepdf.DirBaseURL(".")
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(wd)+"/", got)
}
