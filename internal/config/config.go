// internal/config/config.go
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for feednav-cli. It is populated by
// viper from the config file, environment variables (FEEDNAV_ prefix),
// and command-line flag overrides.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Page    PageConfig    `mapstructure:"page" yaml:"page"`
}

// LoggerConfig controls the zap logger and the lumberjack file sink.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names used for console log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for launching or attaching to Chrome.
// When RemoteURL is set the exec allocator settings are ignored and the
// session attaches to an already-running browser's DevTools endpoint.
type BrowserConfig struct {
	Headless      bool          `mapstructure:"headless" yaml:"headless"`
	ExecPath      string        `mapstructure:"exec_path" yaml:"exec_path"`
	RemoteURL     string        `mapstructure:"remote_url" yaml:"remote_url"`
	UserDataDir   string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	WindowWidth   int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight  int           `mapstructure:"window_height" yaml:"window_height"`
	NoSandbox     bool          `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	DisableGPU    bool          `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	AttachTimeout time.Duration `mapstructure:"attach_timeout" yaml:"attach_timeout"`
	Args          []string      `mapstructure:"args" yaml:"args"`
}

// PageConfig describes the host-page contract: how posts are discovered,
// how the like toggle is identified, and the geometry of the fixed
// header the focused post is scrolled beneath. The defaults target
// bsky.app but nothing outside this struct knows that.
type PageConfig struct {
	ThreadPathPattern  string        `mapstructure:"thread_path_pattern" yaml:"thread_path_pattern"`
	FeedItemSelector   string        `mapstructure:"feed_item_selector" yaml:"feed_item_selector"`
	ThreadItemSelector string        `mapstructure:"thread_item_selector" yaml:"thread_item_selector"`
	LikeLabelPrefixes  []string      `mapstructure:"like_label_prefixes" yaml:"like_label_prefixes"`
	HighlightClass     string        `mapstructure:"highlight_class" yaml:"highlight_class"`
	HeaderOffsetPx     float64       `mapstructure:"header_offset_px" yaml:"header_offset_px"`
	NavigationTimeout  time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "feednav-cli")
	v.SetDefault("logger.log_file", "feednav.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.window_width", 1280)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.attach_timeout", 20*time.Second)

	// -- Page contract --
	v.SetDefault("page.thread_path_pattern", `^/profile/[^/]+/post/[^/]+$`)
	v.SetDefault("page.feed_item_selector", `div[data-testid^="feedItem-by-"]`)
	v.SetDefault("page.thread_item_selector", `div[data-testid^="postThreadItem-by-"]`)
	v.SetDefault("page.like_label_prefixes", []string{"Like (", "Unlike ("})
	v.SetDefault("page.highlight_class", "feednav-focused")
	v.SetDefault("page.header_offset_px", 60.0)
	v.SetDefault("page.navigation_timeout", 45*time.Second)
}

// NewConfigFromViper creates a validated configuration instance from a
// viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser.window_width and browser.window_height must be positive")
	}
	if c.Browser.AttachTimeout <= 0 {
		return fmt.Errorf("browser.attach_timeout must be a positive duration")
	}
	if err := c.Page.Validate(); err != nil {
		return fmt.Errorf("page configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the host-page contract settings.
func (p *PageConfig) Validate() error {
	if p.FeedItemSelector == "" || p.ThreadItemSelector == "" {
		return fmt.Errorf("page.feed_item_selector and page.thread_item_selector are required")
	}
	if len(p.LikeLabelPrefixes) == 0 {
		return fmt.Errorf("page.like_label_prefixes must name at least one accessible-label prefix")
	}
	if p.HighlightClass == "" {
		return fmt.Errorf("page.highlight_class is required")
	}
	if p.HeaderOffsetPx < 0 {
		return fmt.Errorf("page.header_offset_px must not be negative")
	}
	if _, err := regexp.Compile(p.ThreadPathPattern); err != nil {
		return fmt.Errorf("page.thread_path_pattern does not compile: %w", err)
	}
	if p.NavigationTimeout <= 0 {
		return fmt.Errorf("page.navigation_timeout must be a positive duration")
	}
	return nil
}
