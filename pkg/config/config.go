package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the SRI document downloader
type Config struct {
	// Portal describes the SRI page markup the scraper depends on
	Portal PortalConfig `yaml:"portal" json:"portal"`

	// Browser launch and download preferences
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Output directory layout
	Output OutputConfig `yaml:"output" json:"output"`

	// Timing holds every poll interval, timeout and pause used by the run
	Timing TimingConfig `yaml:"timing" json:"timing"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PortalConfig holds the selectors and id patterns of the receipts page
type PortalConfig struct {
	StartURL      string `yaml:"start_url" json:"start_url"`
	TablePrefix   string `yaml:"table_prefix" json:"table_prefix"`
	XMLLinkSuffix string `yaml:"xml_link_suffix" json:"xml_link_suffix"`
	PDFLinkSuffix string `yaml:"pdf_link_suffix" json:"pdf_link_suffix"`
	NextSelector  string `yaml:"next_selector" json:"next_selector"`
	DisabledClass string `yaml:"disabled_class" json:"disabled_class"`
	InvoiceColumn int    `yaml:"invoice_column" json:"invoice_column"`
}

// BrowserConfig holds Chrome launch configuration
type BrowserConfig struct {
	DownloadDir string `yaml:"download_dir" json:"download_dir"`
	Headless    bool   `yaml:"headless" json:"headless"`
	UserAgent   string `yaml:"user_agent" json:"user_agent"`
	WindowSize  string `yaml:"window_size" json:"window_size"`
}

// OutputConfig holds the organized output directory layout
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	PDFSubdir     string `yaml:"pdf_subdir" json:"pdf_subdir"`
	XMLSubdir     string `yaml:"xml_subdir" json:"xml_subdir"`
}

// TimingConfig holds poll intervals, timeouts and fixed pauses
type TimingConfig struct {
	// DownloadPollInterval is how often the download dir is re-checked
	// for in-progress marker files
	DownloadPollInterval time.Duration `yaml:"download_poll_interval" json:"download_poll_interval"`
	// DownloadTimeout bounds the wait for markers to clear, per file
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
	// RecentWindow is how far back a file's mtime may be for the file
	// to count as part of the current download
	RecentWindow time.Duration `yaml:"recent_window" json:"recent_window"`
	// TriggerPause separates the XML and PDF clicks of one row
	TriggerPause time.Duration `yaml:"trigger_pause" json:"trigger_pause"`
	// RowPause separates consecutive rows
	RowPause time.Duration `yaml:"row_pause" json:"row_pause"`
	// PageSettle is the fixed wait after clicking the paginator
	PageSettle time.Duration `yaml:"page_settle" json:"page_settle"`
	// NavTimeout bounds the initial navigation
	NavTimeout time.Duration `yaml:"nav_timeout" json:"nav_timeout"`
}

// timingConfigYAML mirrors TimingConfig with duration strings, so config
// files can say "250ms" or "15s" instead of nanosecond integers.
type timingConfigYAML struct {
	DownloadPollInterval string `yaml:"download_poll_interval,omitempty"`
	DownloadTimeout      string `yaml:"download_timeout,omitempty"`
	RecentWindow         string `yaml:"recent_window,omitempty"`
	TriggerPause         string `yaml:"trigger_pause,omitempty"`
	RowPause             string `yaml:"row_pause,omitempty"`
	PageSettle           string `yaml:"page_settle,omitempty"`
	NavTimeout           string `yaml:"nav_timeout,omitempty"`
}

// UnmarshalYAML parses timing values as duration strings. Absent keys
// keep whatever value the struct already holds.
func (t *TimingConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw timingConfigYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	set := func(dst *time.Duration, s, key string) error {
		if s == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	for _, f := range []struct {
		dst *time.Duration
		s   string
		key string
	}{
		{&t.DownloadPollInterval, raw.DownloadPollInterval, "download_poll_interval"},
		{&t.DownloadTimeout, raw.DownloadTimeout, "download_timeout"},
		{&t.RecentWindow, raw.RecentWindow, "recent_window"},
		{&t.TriggerPause, raw.TriggerPause, "trigger_pause"},
		{&t.RowPause, raw.RowPause, "row_pause"},
		{&t.PageSettle, raw.PageSettle, "page_settle"},
		{&t.NavTimeout, raw.NavTimeout, "nav_timeout"},
	} {
		if err := set(f.dst, f.s, f.key); err != nil {
			return err
		}
	}

	return nil
}

// MarshalYAML renders timing values as duration strings
func (t TimingConfig) MarshalYAML() (interface{}, error) {
	return timingConfigYAML{
		DownloadPollInterval: t.DownloadPollInterval.String(),
		DownloadTimeout:      t.DownloadTimeout.String(),
		RecentWindow:         t.RecentWindow.String(),
		TriggerPause:         t.TriggerPause.String(),
		RowPause:             t.RowPause.String(),
		PageSettle:           t.PageSettle.String(),
		NavTimeout:           t.NavTimeout.String(),
	}, nil
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultStartURL is the received-receipts consultation page
const DefaultStartURL = "https://srienlinea.sri.gob.ec/comprobantes-electronicos-internet/pages/consultas/recibidos/comprobantesRecibidos.jsf"

// DefaultConfig returns a Config instance with the portal's known markup
// and the timing values the page tolerates
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	downloads := filepath.Join(home, "Downloads")
	return &Config{
		Portal: PortalConfig{
			StartURL:      DefaultStartURL,
			TablePrefix:   "frmPrincipal:tablaCompRecibidos",
			XMLLinkSuffix: "lnkXml",
			PDFLinkSuffix: "lnkPdf",
			NextSelector:  ".ui-paginator-next",
			DisabledClass: "ui-state-disabled",
			InvoiceColumn: 2,
		},
		Browser: BrowserConfig{
			DownloadDir: downloads,
			Headless:    false,
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowSize:  "1440,900",
		},
		Output: OutputConfig{
			BaseDirectory: filepath.Join(downloads, "sri_files"),
			PDFSubdir:     "pdf",
			XMLSubdir:     "xml",
		},
		Timing: TimingConfig{
			DownloadPollInterval: 250 * time.Millisecond,
			DownloadTimeout:      15 * time.Second,
			RecentWindow:         20 * time.Second,
			TriggerPause:         500 * time.Millisecond,
			RowPause:             200 * time.Millisecond,
			PageSettle:           2 * time.Second,
			NavTimeout:           60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if url := os.Getenv("SRISCRAPER_START_URL"); url != "" {
		c.Portal.StartURL = url
	}
	if dir := os.Getenv("SRISCRAPER_DOWNLOAD_DIR"); dir != "" {
		c.Browser.DownloadDir = dir
	}
	if dir := os.Getenv("SRISCRAPER_OUTPUT_DIR"); dir != "" {
		c.Output.BaseDirectory = dir
	}
	if headless := os.Getenv("SRISCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if timeout := os.Getenv("SRISCRAPER_DOWNLOAD_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Timing.DownloadTimeout = d
		}
	}
	if level := os.Getenv("SRISCRAPER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".sriscraper.yaml",
		".sriscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "sriscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "sriscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".sriscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Portal.StartURL == "" {
		errs = append(errs, errors.New("portal start URL is required"))
	}
	if c.Portal.TablePrefix == "" {
		errs = append(errs, errors.New("portal table prefix is required"))
	}
	if c.Portal.NextSelector == "" {
		errs = append(errs, errors.New("paginator selector is required"))
	}
	if c.Portal.InvoiceColumn < 0 {
		errs = append(errs, errors.New("invoice column cannot be negative"))
	}

	if c.Browser.DownloadDir == "" {
		errs = append(errs, errors.New("browser download directory is required"))
	}
	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.PDFSubdir == "" || c.Output.XMLSubdir == "" {
		errs = append(errs, errors.New("output category subdirectories are required"))
	}

	if c.Timing.DownloadPollInterval <= 0 {
		errs = append(errs, errors.New("download poll interval must be positive"))
	}
	if c.Timing.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Timing.RecentWindow <= 0 {
		errs = append(errs, errors.New("recent file window must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// PDFDir returns the destination directory for PDF files
func (c *Config) PDFDir() string {
	return filepath.Join(c.Output.BaseDirectory, c.Output.PDFSubdir)
}

// XMLDir returns the destination directory for XML files
func (c *Config) XMLDir() string {
	return filepath.Join(c.Output.BaseDirectory, c.Output.XMLSubdir)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if url, ok := flags["url"].(string); ok && url != "" {
		c.Portal.StartURL = url
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if downloadDir, ok := flags["download-dir"].(string); ok && downloadDir != "" {
		c.Browser.DownloadDir = downloadDir
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if timeout, ok := flags["download-timeout"].(time.Duration); ok && timeout > 0 {
		c.Timing.DownloadTimeout = timeout
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".sriscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
