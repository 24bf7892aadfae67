// Package invoicepdf renders invoice records into printable A4 PDFs.
//
// The pipeline runs one way: an [InvoiceRecord] is turned into HTML
// [Markup] by a [Composer], printed to a [Document] by an [Engine], and
// written where a [Destination] points using a [Store]. An [Exporter]
// drives the whole sequence and [Exporter.Generate] reports the outcome as
// a [Response]:
//
//	exp, err := invoicepdf.NewExporter(
//	    invoicepdf.NewChromeLauncher(invoicepdf.WithTimeout(20*time.Second)),
//	    invoicepdf.DirDestination("out"),
//	    invoicepdf.FileStore{CreateDirs: true},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp := exp.Generate(ctx, rec)
//	// {"success":true,"filePath":"out/Invoice-INV-001.pdf"}
//
// # Markup
//
// The composer only formats. Totals are printed exactly as supplied and
// never recomputed; call [InvoiceRecord.Validate] to check them. All text
// fields are escaped, and amounts are printed with two decimals:
//
//	markup, err := invoicepdf.Compose(rec)
//
// # Rendering
//
// [ChromeEngine] drives headless Chrome over the DevTools Protocol. It
// waits for every image in the markup to load or fail before printing.
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	eng, err := invoicepdf.NewChromeEngine(ctx, invoicepdf.WithAutoDownload())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	pg := invoicepdf.InvoicePageConfig()
//	doc, err := eng.Render(ctx, markup, &pg)
//
// # Errors
//
// Failures carry a [Kind] that [KindOf] extracts. A dismissed destination
// is reported as [ErrCancelled], which is not a failure.
package invoicepdf
