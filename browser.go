package invoicepdf

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// resolveBrowser returns an installed Chrome or Chromium, falling back to
// a Chromium build downloaded into rod's cache (~/.cache/rod/browser on
// Unix, %APPDATA%\rod\browser on Windows). The download happens once.
func resolveBrowser(logger *zap.Logger) (string, error) {
	if path, found := launcher.LookPath(); found {
		logger.Debug("using installed browser", zap.String("path", path))
		return path, nil
	}

	b := launcher.NewBrowser()
	logger.Info("fetching chromium", zap.String("dir", b.RootDir))
	path, err := b.Get()
	if err != nil {
		return "", fmt.Errorf("invoicepdf: downloading browser: %w", err)
	}
	return path, nil
}
