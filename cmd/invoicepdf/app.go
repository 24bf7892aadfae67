package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	invoicepdf "github.com/porticus-lab/go-invoice-pdf"
	"github.com/porticus-lab/go-invoice-pdf/internal/config"
	"github.com/porticus-lab/go-invoice-pdf/internal/logger"
	"github.com/porticus-lab/go-invoice-pdf/internal/s3store"
	"github.com/porticus-lab/go-invoice-pdf/internal/telemetry"
)

// app holds what every command builds from configuration.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	launcher invoicepdf.Launcher
	store    invoicepdf.Store
	shutdown telemetry.ShutdownFunc
}

// newLauncher is replaced in tests.
var newLauncher = func(cfg config.ChromeConfig, log *zap.Logger) invoicepdf.Launcher {
	opts := []invoicepdf.Option{
		invoicepdf.WithTimeout(cfg.Timeout),
		invoicepdf.WithEngineLogger(log.Named("engine")),
	}
	if cfg.Path != "" {
		opts = append(opts, invoicepdf.WithChromePath(cfg.Path))
	}
	if cfg.RemoteURL != "" {
		opts = append(opts, invoicepdf.WithRemoteURL(cfg.RemoteURL))
	}
	if cfg.NoSandbox {
		opts = append(opts, invoicepdf.WithNoSandbox())
	}
	if cfg.AutoDownload {
		opts = append(opts, invoicepdf.WithAutoDownload())
	}
	return invoicepdf.NewChromeLauncher(opts...)
}

func newApp(ctx context.Context, configPath string, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	var log *zap.Logger
	if cfg.Log.Output == "" || cfg.Log.Output == "stderr" {
		log = logger.NewWithWriter(logCfg, stderr)
	} else if log, err = logger.New(logCfg); err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SamplingRatio:  cfg.Telemetry.SamplingRatio,
		ServiceName:    cfg.Telemetry.ServiceName,
		ExportInterval: cfg.Telemetry.ExportInterval,
	}, log)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		launcher: newLauncher(cfg.Chrome, log),
		store:    store,
		shutdown: shutdown,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (invoicepdf.Store, error) {
	files := invoicepdf.FileStore{CreateDirs: cfg.Output.CreateDirs}
	if !cfg.S3.Enabled() {
		return files, nil
	}

	objects, err := s3store.New(ctx, s3store.Config{
		Endpoint:     cfg.S3.Endpoint,
		Region:       cfg.S3.Region,
		Bucket:       cfg.S3.Bucket,
		AccessKey:    cfg.S3.AccessKey,
		SecretKey:    cfg.S3.SecretKey,
		UsePathStyle: cfg.S3.UsePathStyle,
	}, s3store.WithLogger(log.Named("s3")))
	if err != nil {
		return nil, fmt.Errorf("configuring s3: %w", err)
	}
	return invoicepdf.NewRouteStore(files).Handle(s3store.Scheme, objects), nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newComposer returns a Composer that resolves relative photo paths
// against dir.
func newComposer(dir string) (*invoicepdf.Composer, error) {
	base, err := invoicepdf.DirBaseURL(dir)
	if err != nil {
		return nil, err
	}
	return invoicepdf.NewComposer(invoicepdf.WithBaseURL(base))
}

// outputDir picks the directory suggested paths are placed in.
func (a *app) outputDir(override string) string {
	switch {
	case override != "":
		return override
	case a.cfg.Output.Dir != "":
		return a.cfg.Output.Dir
	default:
		return invoicepdf.DefaultDownloadsDir()
	}
}
