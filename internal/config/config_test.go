package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoicepdf.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults when no file is found", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HOME", t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, 30*time.Second, cfg.Chrome.Timeout)
		assert.True(t, cfg.Output.CreateDirs)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, int64(10<<20), cfg.Server.MaxBodyBytes)
		assert.False(t, cfg.S3.Enabled())
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "invoicepdf", cfg.Telemetry.ServiceName)
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("reads an explicit file", func(t *testing.T) {
		path := writeConfig(t, `
[chrome]
path = "/usr/bin/chromium"
no_sandbox = true
timeout = "45s"

[output]
dir = "/srv/invoices"
create_dirs = false

[log]
level = "debug"
format = "json"

[s3]
bucket = "invoices"
endpoint = "http://localhost:9000"
access_key = "key"
secret_key = "secret"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/usr/bin/chromium", cfg.Chrome.Path)
		assert.True(t, cfg.Chrome.NoSandbox)
		assert.Equal(t, 45*time.Second, cfg.Chrome.Timeout)
		assert.Equal(t, "/srv/invoices", cfg.Output.Dir)
		assert.False(t, cfg.Output.CreateDirs)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.True(t, cfg.S3.Enabled())
		assert.Equal(t, "us-east-1", cfg.S3.Region)
		assert.True(t, cfg.S3.UsePathStyle)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "[log]\nlevel = \"debug\"\n")
		t.Setenv("INVOICEPDF_LOG_LEVEL", "error")
		t.Setenv("INVOICEPDF_CHROME_TIMEOUT", "5s")
		t.Setenv("INVOICEPDF_OUTPUT_DIR", "/tmp/out")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, 5*time.Second, cfg.Chrome.Timeout)
		assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, "[log]\nformat = \"xml\"\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.format")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative timeout", func(c *Config) { c.Chrome.Timeout = -time.Second }, "chrome.timeout"},
		{"remote url scheme", func(c *Config) { c.Chrome.RemoteURL = "ftp://host" }, "chrome.remote_url"},
		{"remote url ok", func(c *Config) { c.Chrome.RemoteURL = "ws://127.0.0.1:9222/devtools/browser/x" }, ""},
		{"body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "server.max_body_bytes"},
		{"half credentials", func(c *Config) {
			c.S3.Bucket = "b"
			c.S3.AccessKey = "k"
		}, "s3.access_key"},
		{"sampling ratio", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, "telemetry.sampling_ratio"},
		{"telemetry endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "telemetry.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
