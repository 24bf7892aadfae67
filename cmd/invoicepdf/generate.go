package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	invoicepdf "github.com/porticus-lab/go-invoice-pdf"
)

// runGenerate implements the "generate" command. It reports failed == true
// when at least one input failed; a cancelled save is not a failure.
func runGenerate(ctx context.Context, args []string, s streams) (failed bool, err error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(s.err)
	var (
		output     = fs.String("o", "", "save to `path` (single input only)")
		dir        = fs.String("dir", "", "`directory` for suggested file names")
		yes        = fs.Bool("yes", false, "accept the suggested path without prompting")
		validate   = fs.Bool("validate", false, "reject records whose totals do not add up")
		jobs       = fs.Int("j", 1, "render up to `n` invoices at once")
		configPath = fs.String("config", "", "configuration `file`")
	)
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		return false, errors.New("no input files specified")
	}
	if *output != "" && len(inputs) > 1 {
		return false, errors.New("-o accepts a single input")
	}
	if *jobs < 1 {
		return false, fmt.Errorf("-j must be at least 1, got %d", *jobs)
	}

	a, err := newApp(ctx, *configPath, s.err)
	if err != nil {
		return false, err
	}
	defer a.close(context.WithoutCancel(ctx))

	defaultDir := a.outputDir(*dir)
	var dest invoicepdf.Destination
	switch {
	case *output != "":
		dest = invoicepdf.FixedDestination(*output)
	case *yes:
		dest = invoicepdf.DirDestination(defaultDir)
	default:
		dest = invoicepdf.NewPromptDestination(s.in, s.err)
	}

	// Photos in a record are relative to the record's own directory, so
	// each input gets an exporter with a matching composer.
	exporterFor := func(path string) (*invoicepdf.Exporter, error) {
		c, err := newComposer(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		return invoicepdf.NewExporter(a.launcher, dest, a.store,
			invoicepdf.WithComposer(c),
			invoicepdf.WithValidation(*validate),
			invoicepdf.WithDefaultDir(defaultDir),
			invoicepdf.WithLogger(a.logger),
		)
	}

	results := make([]invoicepdf.Response, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*jobs)
	for i, path := range inputs {
		g.Go(func() error {
			rec, err := invoicepdf.LoadRecord(path)
			if err != nil {
				results[i] = invoicepdf.Response{Success: false, Error: err.Error()}
				return nil
			}
			exporter, err := exporterFor(path)
			if err != nil {
				results[i] = invoicepdf.Response{Success: false, Error: err.Error()}
				return nil
			}
			results[i] = exporter.Generate(gctx, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	enc := json.NewEncoder(s.out)
	for _, resp := range results {
		if err := enc.Encode(resp); err != nil {
			return false, err
		}
		if !resp.Success && resp.Error != invoicepdf.ErrCancelled.Error() {
			failed = true
		}
	}
	return failed, nil
}
