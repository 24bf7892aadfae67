package invoicepdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Engine converts markup into a paginated PDF.
//
// An Engine is a scoped resource: whoever obtains one from a [Launcher]
// must Close it on every exit path.
type Engine interface {
	// Render loads markup, waits for its images, and captures it as a PDF.
	// A nil pg uses [InvoicePageConfig].
	Render(ctx context.Context, markup Markup, pg *PageConfig) (*Document, error)
	// Close releases the engine. It is idempotent.
	Close() error
}

// Launcher acquires a fresh [Engine].
type Launcher interface {
	Launch(ctx context.Context) (Engine, error)
}

// LauncherFunc adapts a function to the [Launcher] interface.
type LauncherFunc func(ctx context.Context) (Engine, error)

// Launch calls f(ctx).
func (f LauncherFunc) Launch(ctx context.Context) (Engine, error) {
	return f(ctx)
}

// ChromeLauncher starts a new headless Chrome for every Launch.
type ChromeLauncher struct {
	opts []Option
}

// NewChromeLauncher returns a Launcher whose engines are configured with
// opts.
func NewChromeLauncher(opts ...Option) *ChromeLauncher {
	return &ChromeLauncher{opts: opts}
}

// Launch starts a browser. Failures are reported with
// [KindEngineUnavailable].
func (l *ChromeLauncher) Launch(ctx context.Context) (Engine, error) {
	return NewChromeEngine(ctx, l.opts...)
}

// ChromeEngine renders markup with headless Chrome through the Chrome
// DevTools Protocol.
//
// The browser process is started by [NewChromeEngine] and lives until
// [ChromeEngine.Close]. Each Render uses its own tab, so a ChromeEngine is
// safe for concurrent use.
type ChromeEngine struct {
	cfg           engineConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewChromeEngine starts a headless browser with the given options.
//
// The browser is started eagerly so errors surface here rather than on
// the first Render. The browser outlives ctx's cancellation but keeps its
// values; the caller must call [ChromeEngine.Close].
func NewChromeEngine(ctx context.Context, opts ...Option) (*ChromeEngine, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.remoteURL == "" && cfg.autoDownload {
		path, err := resolveBrowser(cfg.logger)
		if err != nil {
			return nil, newError(KindEngineUnavailable, "invoicepdf: locating browser", err)
		}
		cfg.chromePath = path
	}

	parent := context.WithoutCancel(ctx)
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.remoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, cfg.remoteURL)
	} else {
		allocOpts := append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-background-networking", true),
			chromedp.Flag("disable-sync", true),
			chromedp.Flag("disable-translate", true),
			chromedp.Flag("no-first-run", true),
			chromedp.Flag("font-render-hinting", "none"),
			chromedp.Flag("headless", cfg.headless),
		)
		if cfg.chromePath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
		}
		if cfg.noSandbox {
			allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, allocOpts...)
	}

	logger := cfg.logger
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...), zap.String("source", "chromedp"))
		}),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, newError(KindEngineUnavailable, "invoicepdf: starting browser", err)
	}

	return &ChromeEngine{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the engine, including the
// browser process. Close is idempotent.
func (e *ChromeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.browserCancel()
	e.allocCancel()
	return nil
}

// waitForAssets resolves once web fonts are ready and every <img> has
// either loaded or failed, and reports how many images failed.
const waitForAssets = `document.fonts.ready.then(() => Promise.all(
	Array.from(document.images, img => img.complete ? null : new Promise(resolve => {
		img.addEventListener('load', resolve, {once: true});
		img.addEventListener('error', resolve, {once: true});
	}))
)).then(() => ({
	total: document.images.length,
	broken: Array.from(document.images).filter(img => img.naturalWidth === 0).length,
}))`

type assetStatus struct {
	Total  int `json:"total"`
	Broken int `json:"broken"`
}

// Render loads markup in a new tab and prints it to PDF.
//
// Printing starts only after every image referenced by the markup has
// settled. Timeouts are reported with [KindRenderTimeout], other
// load or capture problems with [KindRenderFailure].
func (e *ChromeEngine) Render(ctx context.Context, markup Markup, pg *PageConfig) (*Document, error) {
	if err := e.checkClosed(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(markup)) == "" {
		return nil, newError(KindRenderFailure, "invoicepdf: markup is empty", nil)
	}

	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	target, cleanup, err := writeMarkup(markup)
	if err != nil {
		return nil, newError(KindRenderFailure, "invoicepdf: staging markup", err)
	}
	defer cleanup()

	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	resolved := pg.resolved()
	width, height := resolved.paperDimensions()
	marginTop, marginRight, marginBottom, marginLeft := resolved.marginInches()

	var (
		assets assetStatus
		buf    []byte
	)
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(waitForAssets, &assets, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(marginTop).
				WithMarginRight(marginRight).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithScale(resolved.Scale).
				WithPrintBackground(resolved.PrintBackground).
				WithLandscape(resolved.Orientation == Landscape).
				WithPreferCSSPageSize(resolved.PreferCSSPageSize).
				WithDisplayHeaderFooter(resolved.DisplayHeaderFooter)

			if resolved.HeaderTemplate != "" {
				params = params.WithHeaderTemplate(resolved.HeaderTemplate)
			}
			if resolved.FooterTemplate != "" {
				params = params.WithFooterTemplate(resolved.FooterTemplate)
			}

			var err error
			buf, _, err = params.Do(ctx)
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, newError(KindRenderTimeout,
				fmt.Sprintf("invoicepdf: rendering timed out after %v", e.cfg.timeout), err)
		}
		if ctx.Err() != nil {
			return nil, newError(KindRenderFailure, "invoicepdf: rendering cancelled", ctx.Err())
		}
		return nil, newError(KindRenderFailure, "invoicepdf: conversion failed", err)
	}
	if len(buf) == 0 {
		return nil, newError(KindRenderFailure, "invoicepdf: generated PDF is empty", nil)
	}

	if assets.Broken > 0 {
		e.cfg.logger.Warn("images failed to load",
			zap.Int("broken", assets.Broken),
			zap.Int("total", assets.Total))
	}

	doc := &Document{data: buf}
	e.cfg.logger.Debug("PDF rendered",
		zap.Int("bytes", doc.Len()),
		zap.Int("pages", doc.PageCount()),
		zap.Int("images", assets.Total))
	return doc, nil
}

// writeMarkup stores markup in a temporary file and returns its file://
// URL. Loading from a file URL lets the page read file:// images; relative
// references resolve against the temp directory unless the markup carries
// a <base> element (see [WithBaseURL]).
func writeMarkup(markup Markup) (target string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "invoicepdf-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()
	cleanup = func() { os.Remove(name) }

	if _, err := f.WriteString(string(markup)); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), cleanup, nil
}

func (e *ChromeEngine) checkClosed() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

// RenderInvoice composes rec with the default [Composer] and renders it on
// a temporary [ChromeEngine] with [InvoicePageConfig]. For repeated use,
// keep an engine from [NewChromeEngine] or use an [Exporter].
func RenderInvoice(ctx context.Context, rec *InvoiceRecord, opts ...Option) (*Document, error) {
	markup, err := Compose(rec)
	if err != nil {
		return nil, newError(KindRenderFailure, "invoicepdf: composing markup", err)
	}
	eng, err := NewChromeEngine(ctx, opts...)
	if err != nil {
		return nil, err
	}
	defer eng.Close()
	pg := InvoicePageConfig()
	return eng.Render(ctx, markup, &pg)
}

var (
	_ Engine   = (*ChromeEngine)(nil)
	_ Launcher = (*ChromeLauncher)(nil)
)
