package main

import (
	"context"
	"flag"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/porticus-lab/go-invoice-pdf/internal/server"
)

// runServe implements the "serve" command. It returns when ctx is
// cancelled and in-flight requests have drained.
func runServe(ctx context.Context, args []string, s streams) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(s.err)
	var (
		addr       = fs.String("addr", "", "listen `address` (default: server.addr)")
		configPath = fs.String("config", "", "configuration `file`")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, *configPath, s.err)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Relative photo paths in posted records resolve against the working
	// directory.
	composer, err := newComposer(".")
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Launcher:     a.launcher,
		Composer:     composer,
		Store:        a.store,
		OutputDir:    a.outputDir(""),
		MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
		ServiceName:  a.cfg.Telemetry.ServiceName,
		Logger:       a.logger.Named("http"),
	})
	if err != nil {
		return err
	}

	listen := a.cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}
	if err := srv.ListenAndServe(ctx, listen, a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout); err != nil {
		return err
	}
	a.logger.Info("server stopped", zap.String("addr", listen))
	return nil
}
