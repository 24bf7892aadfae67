package invoicepdf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/porticus-lab/go-invoice-pdf"

// Response is the uniform result of [Exporter.Generate]. It is the only
// thing that crosses the boundary; errors never do.
type Response struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Outcome labels used for logs and the exports counter.
const (
	outcomeSuccess   = "success"
	outcomeCancelled = "cancelled"
	outcomeFailure   = "failure"
)

// Exporter renders invoices and saves them where a [Destination] says.
//
// Every call acquires its own [Engine] from the [Launcher] and releases it
// before returning, whatever the outcome. An Exporter keeps no state
// between calls and is safe for concurrent use.
type Exporter struct {
	launcher   Launcher
	dest       Destination
	store      Store
	composer   *Composer
	validate   bool
	defaultDir string
	logger     *zap.Logger
	tp         trace.TracerProvider
	mp         metric.MeterProvider
	tracer     trace.Tracer
	exports    metric.Int64Counter
}

// ExporterOption configures an [Exporter].
type ExporterOption func(*Exporter)

// WithValidation makes every export run [InvoiceRecord.Validate] before
// the engine is started.
func WithValidation(on bool) ExporterOption {
	return func(e *Exporter) {
		e.validate = on
	}
}

// WithComposer replaces the default [Composer].
func WithComposer(c *Composer) ExporterOption {
	return func(e *Exporter) {
		if c != nil {
			e.composer = c
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) ExporterOption {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaultDir sets the directory the suggested path is placed in.
// Defaults to [DefaultDownloadsDir].
func WithDefaultDir(dir string) ExporterOption {
	return func(e *Exporter) {
		e.defaultDir = dir
	}
}

// WithTracerProvider sets the provider export spans are created with.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) ExporterOption {
	return func(e *Exporter) {
		e.tp = tp
	}
}

// WithMeterProvider sets the provider of the exports counter. Defaults to
// the global provider.
func WithMeterProvider(mp metric.MeterProvider) ExporterOption {
	return func(e *Exporter) {
		e.mp = mp
	}
}

// NewExporter creates an Exporter. A nil store writes to the local file
// system.
func NewExporter(launcher Launcher, dest Destination, store Store, opts ...ExporterOption) (*Exporter, error) {
	if launcher == nil {
		return nil, errors.New("invoicepdf: launcher is required")
	}
	if dest == nil {
		return nil, errors.New("invoicepdf: destination is required")
	}
	if store == nil {
		store = FileStore{}
	}

	e := &Exporter{
		launcher: launcher,
		dest:     dest,
		store:    store,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.composer == nil {
		c, err := NewComposer()
		if err != nil {
			return nil, err
		}
		e.composer = c
	}
	if e.defaultDir == "" {
		e.defaultDir = DefaultDownloadsDir()
	}

	if e.tp == nil {
		e.tp = otel.GetTracerProvider()
	}
	if e.mp == nil {
		e.mp = otel.GetMeterProvider()
	}
	e.tracer = e.tp.Tracer(instrumentationName)

	counter, err := e.mp.Meter(instrumentationName).Int64Counter(
		"invoicepdf.exports",
		metric.WithDescription("Invoice exports by outcome"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		e.logger.Warn("exports counter unavailable", zap.Error(err))
		counter, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("invoicepdf.exports")
	}
	e.exports = counter

	return e, nil
}

// Export renders rec and saves it, returning the chosen path.
//
// The sequence is: validate (when enabled), acquire an engine, compose,
// render with [InvoicePageConfig], release the engine, ask the
// [Destination] for a path seeded with the suggested file name, and write
// the bytes with the [Store]. If the destination is dismissed Export
// returns [ErrCancelled] and nothing is written. Other failures are
// *[Error] values carrying a [Kind].
func (e *Exporter) Export(ctx context.Context, rec *InvoiceRecord) (string, error) {
	ctx, span := e.tracer.Start(ctx, "invoicepdf.export")
	defer span.End()

	if rec == nil {
		rec = &InvoiceRecord{}
	}
	span.SetAttributes(
		attribute.String("invoice.number", rec.InvoiceNumber),
		attribute.Int("invoice.items", len(rec.Items)),
	)

	path, err := e.export(ctx, rec)
	switch {
	case errors.Is(err, ErrCancelled):
		span.SetAttributes(attribute.String("invoicepdf.outcome", outcomeCancelled))
		e.count(ctx, outcomeCancelled, KindUnknown)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.count(ctx, outcomeFailure, KindOf(err))
	default:
		span.SetAttributes(attribute.String("invoicepdf.outcome", outcomeSuccess))
		span.SetStatus(codes.Ok, "")
		e.count(ctx, outcomeSuccess, KindUnknown)
	}
	return path, err
}

func (e *Exporter) export(ctx context.Context, rec *InvoiceRecord) (string, error) {
	if e.validate {
		if err := rec.Validate(); err != nil {
			return "", newError(KindInvalidRecord, "invoicepdf: invalid record", err)
		}
	}

	doc, err := e.render(ctx, rec)
	if err != nil {
		return "", err
	}

	suggested := filepath.Join(e.defaultDir, SuggestedFileName(rec.InvoiceNumber))
	path, ok, err := e.dest.Choose(ctx, suggested)
	if err != nil {
		return "", newError(KindPersistenceFailure, "invoicepdf: choosing destination", err)
	}
	if !ok || path == "" {
		return "", ErrCancelled
	}

	if err := e.store.Save(ctx, path, doc.Bytes()); err != nil {
		return "", newError(KindPersistenceFailure, "invoicepdf: saving document", err)
	}
	return path, nil
}

// render holds the engine only for as long as composing and rendering
// take. The engine is closed on every return, including panics.
func (e *Exporter) render(ctx context.Context, rec *InvoiceRecord) (*Document, error) {
	eng, err := e.launcher.Launch(ctx)
	if err != nil {
		return nil, classify(KindEngineUnavailable, "invoicepdf: starting engine", err)
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			e.logger.Warn("closing engine", zap.Error(cerr))
		}
	}()

	markup, err := e.composer.Compose(rec)
	if err != nil {
		return nil, newError(KindRenderFailure, "invoicepdf: composing markup", err)
	}

	pg := InvoicePageConfig()
	doc, err := eng.Render(ctx, markup, &pg)
	if err != nil {
		return nil, classify(KindRenderFailure, "invoicepdf: rendering", err)
	}
	if doc == nil || doc.Len() == 0 {
		return nil, newError(KindRenderFailure, "invoicepdf: engine produced no output", nil)
	}
	return doc, nil
}

// Generate runs [Exporter.Export] and folds every outcome, including a
// panic, into a [Response].
func (e *Exporter) Generate(ctx context.Context, rec *InvoiceRecord) (resp Response) {
	number := ""
	if rec != nil {
		number = rec.InvoiceNumber
	}
	log := e.logger.With(zap.String("invoice", number))

	defer func() {
		if r := recover(); r != nil {
			log.Error("export panicked", zap.Any("panic", r), zap.Stack("stack"))
			resp = Response{Success: false, Error: fmt.Sprintf("invoicepdf: internal error: %v", r)}
		}
	}()

	path, err := e.Export(ctx, rec)
	switch {
	case errors.Is(err, ErrCancelled):
		log.Info("export cancelled")
		return Response{Success: false, Error: ErrCancelled.Error()}
	case err != nil:
		log.Error("export failed", zap.Stringer("kind", KindOf(err)), zap.Error(err))
		return Response{Success: false, Error: err.Error()}
	}

	log.Info("invoice exported", zap.String("path", path))
	return Response{Success: true, FilePath: path}
}

func (e *Exporter) count(ctx context.Context, outcome string, kind Kind) {
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	if outcome == outcomeFailure {
		attrs = append(attrs, attribute.String("kind", kind.String()))
	}
	e.exports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// classify keeps the Kind of an error that already has one and wraps
// anything else as kind.
func classify(kind Kind, message string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if kind == KindRenderFailure && errors.Is(err, context.DeadlineExceeded) {
		return newError(KindRenderTimeout, message, err)
	}
	return newError(kind, message, err)
}
