// invoicepdf renders invoice records to PDF.
//
// Usage:
//
//	invoicepdf generate [options] <invoice.json|yaml>...
//	invoicepdf html [options] <invoice.json|yaml>
//	invoicepdf serve [options]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	streams := streams{in: stdin, out: stdout, err: stderr}
	var err error
	switch args[0] {
	case "generate":
		var failed bool
		failed, err = runGenerate(ctx, args[1:], streams)
		if err == nil && failed {
			return 1
		}
	case "html":
		err = runHTML(args[1:], streams)
	case "serve":
		err = runServe(ctx, args[1:], streams)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `invoicepdf - render invoices to A4 PDF

Usage:
  invoicepdf generate [options] <invoice.json|yaml>...
  invoicepdf html [options] <invoice.json|yaml>
  invoicepdf serve [options]

Commands:
  generate  Render each invoice and save it, printing one JSON result per input
  html      Print the composed HTML without rendering it
  serve     Serve the HTTP API

Generate options:
  -o <path>       Save to path (single input only; s3://bucket/key when S3 is configured)
  -dir <dir>      Directory for suggested file names (default: output.dir or Downloads)
  -yes            Accept the suggested path without prompting
  -validate       Reject records whose totals do not add up
  -j <n>          Render up to n invoices at once (default 1)
  -config <file>  Configuration file (default: invoicepdf.toml search path)

Examples:
  invoicepdf generate -yes -dir out INV-001.json INV-002.yaml
  invoicepdf generate -o /tmp/invoice.pdf INV-001.json
  invoicepdf html INV-001.json > preview.html
  INVOICEPDF_SERVER_ADDR=:9090 invoicepdf serve
`)
}
