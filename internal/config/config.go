// Package config loads invoicepdf settings from an optional TOML file and
// INVOICEPDF_ environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// INVOICEPDF_CHROME_TIMEOUT.
const EnvPrefix = "INVOICEPDF"

// Config holds all invoicepdf configuration.
type Config struct {
	Chrome    ChromeConfig
	Output    OutputConfig
	Log       LogConfig
	Server    ServerConfig
	S3        S3Config
	Telemetry TelemetryConfig
}

// ChromeConfig selects and tunes the rendering browser.
type ChromeConfig struct {
	Path         string // executable; empty searches PATH
	RemoteURL    string // DevTools websocket of a running browser
	NoSandbox    bool
	AutoDownload bool
	Timeout      time.Duration // per render
}

// OutputConfig controls where documents are written.
type OutputConfig struct {
	Dir        string // empty uses the downloads directory
	CreateDirs bool
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
}

// S3Config enables s3:// destinations when Bucket is set.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// TelemetryConfig enables OTLP export of traces and metrics.
type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string // collector host:port
	Insecure       bool
	SamplingRatio  float64
	ServiceName    string
	ExportInterval time.Duration
}

// Enabled reports whether an S3 store should be configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration. Priority, highest first:
//  1. Environment variables with the INVOICEPDF_ prefix
//  2. The file at path, or invoicepdf.toml in ., $HOME/.config/invoicepdf
//     or /etc/invoicepdf when path is empty
//  3. Built-in defaults
//
// A missing invoicepdf.toml is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("invoicepdf")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/invoicepdf")
		v.AddConfigPath("/etc/invoicepdf")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Chrome: ChromeConfig{
			Path:         v.GetString("chrome.path"),
			RemoteURL:    v.GetString("chrome.remote_url"),
			NoSandbox:    v.GetBool("chrome.no_sandbox"),
			AutoDownload: v.GetBool("chrome.auto_download"),
			Timeout:      v.GetDuration("chrome.timeout"),
		},
		Output: OutputConfig{
			Dir:        v.GetString("output.dir"),
			CreateDirs: v.GetBool("output.create_dirs"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
		},
		S3: S3Config{
			Endpoint:     v.GetString("s3.endpoint"),
			Region:       v.GetString("s3.region"),
			Bucket:       v.GetString("s3.bucket"),
			AccessKey:    v.GetString("s3.access_key"),
			SecretKey:    v.GetString("s3.secret_key"),
			UsePathStyle: v.GetBool("s3.use_path_style"),
		},
		Telemetry: TelemetryConfig{
			Enabled:        v.GetBool("telemetry.enabled"),
			Endpoint:       v.GetString("telemetry.endpoint"),
			Insecure:       v.GetBool("telemetry.insecure"),
			SamplingRatio:  v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:    v.GetString("telemetry.service_name"),
			ExportInterval: v.GetDuration("telemetry.export_interval"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns the built-in configuration without reading any file or
// environment variable.
func defaults() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		Chrome: ChromeConfig{Timeout: v.GetDuration("chrome.timeout")},
		Output: OutputConfig{CreateDirs: v.GetBool("output.create_dirs")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
		},
		S3: S3Config{
			Region:       v.GetString("s3.region"),
			UsePathStyle: v.GetBool("s3.use_path_style"),
		},
		Telemetry: TelemetryConfig{
			Endpoint:       v.GetString("telemetry.endpoint"),
			SamplingRatio:  v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:    v.GetString("telemetry.service_name"),
			ExportInterval: v.GetDuration("telemetry.export_interval"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chrome.timeout", 30*time.Second)
	v.SetDefault("chrome.no_sandbox", false)
	v.SetDefault("chrome.auto_download", false)
	v.SetDefault("output.create_dirs", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_body_bytes", int64(10<<20))
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_path_style", true)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.service_name", "invoicepdf")
	v.SetDefault("telemetry.export_interval", 60*time.Second)
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Chrome.Timeout < 0 {
		return errors.New("chrome.timeout cannot be negative")
	}
	if c.Chrome.RemoteURL != "" {
		u, err := url.Parse(c.Chrome.RemoteURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss" && u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("chrome.remote_url %q must be a ws://, wss://, http:// or https:// URL", c.Chrome.RemoteURL)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	if c.S3.Enabled() && (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return errors.New("s3.access_key and s3.secret_key must be set together")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be within [0, 1], got %v", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}
	return nil
}
