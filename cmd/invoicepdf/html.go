package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	invoicepdf "github.com/porticus-lab/go-invoice-pdf"
)

// runHTML implements the "html" command.
func runHTML(args []string, s streams) error {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	fs.SetOutput(s.err)
	output := fs.String("o", "", "write markup to `file` (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("html takes exactly one input file")
	}

	rec, err := invoicepdf.LoadRecord(fs.Arg(0))
	if err != nil {
		return err
	}
	composer, err := newComposer(filepath.Dir(fs.Arg(0)))
	if err != nil {
		return err
	}
	markup, err := composer.Compose(rec)
	if err != nil {
		return err
	}

	var w io.Writer = s.out
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *output, err)
		}
		defer f.Close()
		w = f
	}
	_, err = io.WriteString(w, string(markup))
	return err
}
