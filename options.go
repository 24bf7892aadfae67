package invoicepdf

import (
	"time"

	"go.uber.org/zap"
)

// engineConfig holds internal configuration for a ChromeEngine.
type engineConfig struct {
	chromePath   string
	remoteURL    string
	timeout      time.Duration
	noSandbox    bool
	autoDownload bool
	headless     string
	logger       *zap.Logger
}

func defaultConfig() engineConfig {
	return engineConfig{
		timeout:  30 * time.Second,
		headless: "new",
		logger:   zap.NewNop(),
	}
}

// Option configures a [ChromeEngine] or [ChromeLauncher].
type Option func(*engineConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default chromedp searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *engineConfig) {
		c.chromePath = path
	}
}

// WithRemoteURL connects to an already running browser through its
// DevTools websocket URL instead of starting one.
func WithRemoteURL(url string) Option {
	return func(c *engineConfig) {
		c.remoteURL = url
	}
}

// WithTimeout sets the maximum duration for loading and capturing one
// document. Defaults to 30 seconds. A zero or negative value disables the
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *engineConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build when no executable
// path is configured. The binary is cached between runs.
func WithAutoDownload() Option {
	return func(c *engineConfig) {
		c.autoDownload = true
	}
}

// WithEngineLogger routes engine diagnostics, including chromedp's own
// protocol log at debug level, to l.
func WithEngineLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
