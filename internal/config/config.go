// Package config provides configuration management for go-paradigmas.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var AppVersion = "-unset-" // will be set at build time

const (
	// EnvPrefix is the prefix for environment overrides, e.g. PARADIGMAS_WEB_LISTEN_PORT.
	EnvPrefix = "PARADIGMAS"

	DefaultListenHost       = "0.0.0.0"
	DefaultListenPort       = 5000
	DefaultStaticMaxAge     = 3600 // seconds, browser caches an hour
	DefaultPageCacheEntries = 64
	DefaultPageCacheExpiry  = 10 * time.Minute

	// client script defaults
	DefaultMobileBreakpoint = 768
	DefaultCopyRevertDelay  = 2 * time.Second
	DefaultRevealThreshold  = 0.1
	DefaultRevealRootMargin = "0px 0px -50px 0px"

	DefaultFlushInterval = 30 * time.Second
	DefaultBatchSize     = 100

	DefaultAnalysisTTL = 60 * time.Second
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// MainConfig holds the main configuration for go-paradigmas
type MainConfig struct {
	Web      WebConfig      `json:"web" mapstructure:"web"`
	UI       UIConfig       `json:"ui" mapstructure:"ui"`
	Database DatabaseConfig `json:"database" mapstructure:"database"`
	Demo     DemoConfig     `json:"demo" mapstructure:"demo"`

	AppVersion string `json:"app_version" mapstructure:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenHost       string        `json:"listen_host" mapstructure:"listen_host"`
	ListenPort       int           `json:"listen_port" mapstructure:"listen_port"`
	SSL              bool          `json:"ssl" mapstructure:"ssl"`
	CertFile         string        `json:"cert_file,omitempty" mapstructure:"cert_file"`
	KeyFile          string        `json:"key_file,omitempty" mapstructure:"key_file"`
	Dev              bool          `json:"dev" mapstructure:"dev"` // read templates/static from disk and live reload
	TemplatesDir     string        `json:"templates_dir" mapstructure:"templates_dir"`
	StaticDir        string        `json:"static_dir" mapstructure:"static_dir"`
	TrustedProxies   []string      `json:"trusted_proxies" mapstructure:"trusted_proxies"`
	AllowedOrigins   []string      `json:"allowed_origins" mapstructure:"allowed_origins"`
	StaticMaxAge     int           `json:"static_max_age" mapstructure:"static_max_age"`
	PageCacheEntries int           `json:"page_cache_entries" mapstructure:"page_cache_entries"`
	PageCacheExpiry  time.Duration `json:"page_cache_expiry" mapstructure:"page_cache_expiry"`
}

// UIConfig is handed to the client script through data attributes on <body>.
type UIConfig struct {
	MobileBreakpoint int           `json:"mobile_breakpoint" mapstructure:"mobile_breakpoint"`
	CopyRevertDelay  time.Duration `json:"copy_revert_delay" mapstructure:"copy_revert_delay"`
	RevealThreshold  float64       `json:"reveal_threshold" mapstructure:"reveal_threshold"`
	RevealRootMargin string        `json:"reveal_root_margin" mapstructure:"reveal_root_margin"`
}

// DatabaseConfig holds page view storage configuration.
// An empty Path keeps the counters in memory.
type DatabaseConfig struct {
	Path          string        `json:"path" mapstructure:"path"`
	FlushInterval time.Duration `json:"flush_interval" mapstructure:"flush_interval"`
	BatchSize     int           `json:"batch_size" mapstructure:"batch_size"`
}

// DemoConfig drives the /api/python-features payload.
type DemoConfig struct {
	AnalysisTTL       time.Duration `json:"analysis_ttl" mapstructure:"analysis_ttl"`
	SampleNumbers     []int         `json:"sample_numbers" mapstructure:"sample_numbers"`
	ProcessorName     string        `json:"processor_name" mapstructure:"processor_name"`
	ProcessorVersion  string        `json:"processor_version" mapstructure:"processor_version"`
	ProcessorFeatures []string      `json:"processor_features" mapstructure:"processor_features"`
	ProcessorInput    string        `json:"processor_input" mapstructure:"processor_input"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	return &MainConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenHost:       DefaultListenHost,
			ListenPort:       DefaultListenPort,
			TemplatesDir:     "internal/web/templates",
			StaticDir:        "internal/web/static",
			TrustedProxies:   []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
			AllowedOrigins:   []string{"*"},
			StaticMaxAge:     DefaultStaticMaxAge,
			PageCacheEntries: DefaultPageCacheEntries,
			PageCacheExpiry:  DefaultPageCacheExpiry,
		},
		UI: UIConfig{
			MobileBreakpoint: DefaultMobileBreakpoint,
			CopyRevertDelay:  DefaultCopyRevertDelay,
			RevealThreshold:  DefaultRevealThreshold,
			RevealRootMargin: DefaultRevealRootMargin,
		},
		Database: DatabaseConfig{
			FlushInterval: DefaultFlushInterval,
			BatchSize:     DefaultBatchSize,
		},
		Demo: DemoConfig{
			AnalysisTTL:       DefaultAnalysisTTL,
			SampleNumbers:     []int{1, 2, 3, 4, 5, 10, 15, 20},
			ProcessorName:     "Flask Presentation Processor",
			ProcessorVersion:  "1.0.0",
			ProcessorFeatures: []string{"Flask", "Jinja2", "POO", "Decoradores", "Context Managers"},
			ProcessorInput:    "API Request Data",
		},
	}
}

// Load overlays an optional config file and PARADIGMAS_* environment variables
// on top of the defaults. Flags bound to v before calling Load win over both.
func Load(v *viper.Viper, path string) (*MainConfig, error) {
	cfg := NewDefaultConfig()
	if v == nil {
		v = viper.New()
	}
	registerDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		log.Printf("[CONFIG]: Using config file: %s", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.AppVersion = AppVersion

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// registerDefaults makes every key known to viper so env variables and
// Unmarshal see them even when no config file is present.
func registerDefaults(v *viper.Viper, cfg *MainConfig) {
	v.SetDefault("web.listen_host", cfg.Web.ListenHost)
	v.SetDefault("web.listen_port", cfg.Web.ListenPort)
	v.SetDefault("web.ssl", cfg.Web.SSL)
	v.SetDefault("web.cert_file", cfg.Web.CertFile)
	v.SetDefault("web.key_file", cfg.Web.KeyFile)
	v.SetDefault("web.dev", cfg.Web.Dev)
	v.SetDefault("web.templates_dir", cfg.Web.TemplatesDir)
	v.SetDefault("web.static_dir", cfg.Web.StaticDir)
	v.SetDefault("web.trusted_proxies", cfg.Web.TrustedProxies)
	v.SetDefault("web.allowed_origins", cfg.Web.AllowedOrigins)
	v.SetDefault("web.static_max_age", cfg.Web.StaticMaxAge)
	v.SetDefault("web.page_cache_entries", cfg.Web.PageCacheEntries)
	v.SetDefault("web.page_cache_expiry", cfg.Web.PageCacheExpiry)

	v.SetDefault("ui.mobile_breakpoint", cfg.UI.MobileBreakpoint)
	v.SetDefault("ui.copy_revert_delay", cfg.UI.CopyRevertDelay)
	v.SetDefault("ui.reveal_threshold", cfg.UI.RevealThreshold)
	v.SetDefault("ui.reveal_root_margin", cfg.UI.RevealRootMargin)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.flush_interval", cfg.Database.FlushInterval)
	v.SetDefault("database.batch_size", cfg.Database.BatchSize)

	v.SetDefault("demo.analysis_ttl", cfg.Demo.AnalysisTTL)
	v.SetDefault("demo.sample_numbers", cfg.Demo.SampleNumbers)
	v.SetDefault("demo.processor_name", cfg.Demo.ProcessorName)
	v.SetDefault("demo.processor_version", cfg.Demo.ProcessorVersion)
	v.SetDefault("demo.processor_features", cfg.Demo.ProcessorFeatures)
	v.SetDefault("demo.processor_input", cfg.Demo.ProcessorInput)
}

// Validate checks value ranges. Every error wraps ErrInvalidConfig.
func (c *MainConfig) Validate() error {
	if c.Web.ListenPort < 1 || c.Web.ListenPort > 65535 {
		return fmt.Errorf("%w: listen_port %d (must be between 1 and 65535)", ErrInvalidConfig, c.Web.ListenPort)
	}
	if c.Web.SSL && (c.Web.CertFile == "" || c.Web.KeyFile == "") {
		return fmt.Errorf("%w: ssl enabled but cert_file or key_file not specified", ErrInvalidConfig)
	}
	if c.Web.StaticMaxAge < 0 {
		return fmt.Errorf("%w: static_max_age %d is negative", ErrInvalidConfig, c.Web.StaticMaxAge)
	}
	if c.UI.MobileBreakpoint <= 0 {
		return fmt.Errorf("%w: mobile_breakpoint %d must be positive", ErrInvalidConfig, c.UI.MobileBreakpoint)
	}
	if c.UI.CopyRevertDelay < 0 {
		return fmt.Errorf("%w: copy_revert_delay %s is negative", ErrInvalidConfig, c.UI.CopyRevertDelay)
	}
	if c.UI.RevealThreshold < 0 || c.UI.RevealThreshold > 1 {
		return fmt.Errorf("%w: reveal_threshold %g (must be within 0..1)", ErrInvalidConfig, c.UI.RevealThreshold)
	}
	if c.Database.Path != "" && c.Database.FlushInterval <= 0 {
		return fmt.Errorf("%w: flush_interval %s must be positive", ErrInvalidConfig, c.Database.FlushInterval)
	}
	if c.Demo.AnalysisTTL < 0 {
		return fmt.Errorf("%w: analysis_ttl %s is negative", ErrInvalidConfig, c.Demo.AnalysisTTL)
	}
	return nil
}

// ListenAddr returns host:port for the HTTP listener.
func (w *WebConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", w.ListenHost, w.ListenPort)
}
