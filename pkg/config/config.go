// Package config loads service settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/tugas/pkg/browser"
	"github.com/entrhq/tugas/pkg/logging"
	"github.com/entrhq/tugas/pkg/portal"
	"github.com/entrhq/tugas/pkg/scraper"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// responseMargin covers the browser launch and writing the response.
const responseMargin = time.Minute

// DefaultPort is the listening port when neither the file nor PORT set one.
const DefaultPort = 3000

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Portal  PortalConfig  `yaml:"portal" json:"portal"`
	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Delays  DelayConfig   `yaml:"delays" json:"delays"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig defines the HTTP listener
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// PortalConfig defines the portal being scraped
type PortalConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// BrowserConfig defines how sessions are launched, admitted and filtered
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	Install        bool          `yaml:"install" json:"install"`
	Args           []string      `yaml:"args" json:"args"`
	MaxSessions    int           `yaml:"max_sessions" json:"max_sessions"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" json:"acquire_timeout"`
	LaunchRate     float64       `yaml:"launch_rate" json:"launch_rate"` // launches per second, 0 is unlimited

	BlockedResourceTypes []string `yaml:"blocked_resource_types" json:"blocked_resource_types"`
	BlockedURLs          []string `yaml:"blocked_urls" json:"blocked_urls"` // glob patterns
}

// DelayConfig defines the settle pauses of the flow
type DelayConfig struct {
	PostType   time.Duration `yaml:"post_type" json:"post_type"`
	PostLogin  time.Duration `yaml:"post_login" json:"post_login"`
	PostExpand time.Duration `yaml:"post_expand" json:"post_expand"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// File, when set, receives log output instead of stderr
	File string `yaml:"file" json:"file"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	opts := browser.DefaultOptions()
	delays := scraper.DefaultDelays()

	return &Config{
		Server: ServerConfig{Port: DefaultPort},
		Portal: PortalConfig{BaseURL: portal.DefaultBaseURL},
		Browser: BrowserConfig{
			Headless:             opts.Headless,
			Install:              opts.Install,
			Args:                 opts.Args,
			MaxSessions:          opts.MaxSessions,
			AcquireTimeout:       opts.AcquireTimeout,
			BlockedResourceTypes: append([]string(nil), browser.DefaultBlockedResourceTypes...),
		},
		Delays: DelayConfig{
			PostType:   delays.PostType,
			PostLogin:  delays.PostLogin,
			PostExpand: delays.PostExpand,
		},
		Logging: LoggingConfig{Verbosity: "normal"},
	}
}

// Load reads path (optional) and DefaultEnvFile, applies the environment
// and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, DefaultEnvFile)
}

// LoadWithEnvFile is Load with an explicit .env location. A missing env
// file is not an error.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// godotenv never overrides variables that are already set
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}

	if v, ok := lookup("TIMEOUT"); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TIMEOUT %q: %w", v, err)
		}
		d := time.Duration(ms) * time.Millisecond
		if ms == 0 {
			d = scraper.DefaultSettleDelay
		}
		c.Delays = DelayConfig{PostType: d, PostLogin: d, PostExpand: d}
	}

	if v, ok := lookup("TUGAS_HOST"); ok {
		c.Server.Host = v
	}

	if v, ok := lookup("TUGAS_MAX_SESSIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TUGAS_MAX_SESSIONS %q: %w", v, err)
		}
		c.Browser.MaxSessions = n
	}

	if v, ok := lookup("TUGAS_HEADLESS"); ok && v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TUGAS_HEADLESS %q: %w", v, err)
		}
		c.Browser.Headless = headless
	}

	if v, ok := lookup("TUGAS_LOG_LEVEL"); ok && v != "" {
		c.Logging.Verbosity = v
	}

	if v, ok := lookup("TUGAS_PORTAL_URL"); ok && v != "" {
		c.Portal.BaseURL = v
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Delays.PostType < 0 || c.Delays.PostLogin < 0 || c.Delays.PostExpand < 0 {
		return fmt.Errorf("delays cannot be negative")
	}

	if c.Browser.MaxSessions < 0 {
		return fmt.Errorf("max_sessions cannot be negative")
	}

	if c.Browser.AcquireTimeout < 0 {
		return fmt.Errorf("acquire_timeout cannot be negative")
	}

	if c.Browser.LaunchRate < 0 {
		return fmt.Errorf("launch_rate cannot be negative")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	if _, ok := logging.ParseLevel(c.Logging.Verbosity); !ok {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	if _, err := portal.NewTarget(c.Portal.BaseURL); err != nil {
		return err
	}

	if _, err := c.NetworkPolicy(); err != nil {
		return err
	}

	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Target returns the portal contract for the configured base URL.
func (c *Config) Target() (portal.Target, error) {
	return portal.NewTarget(c.Portal.BaseURL)
}

// BrowserOptions returns the session manager options.
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Headless:       c.Browser.Headless,
		Args:           c.Browser.Args,
		Install:        c.Browser.Install,
		MaxSessions:    c.Browser.MaxSessions,
		AcquireTimeout: c.Browser.AcquireTimeout,
		LaunchRate:     c.Browser.LaunchRate,
	}
}

// NetworkPolicy compiles the request blocking rules.
func (c *Config) NetworkPolicy() (*browser.NetworkPolicy, error) {
	return browser.NewNetworkPolicy(c.Browser.BlockedResourceTypes, c.Browser.BlockedURLs)
}

// WriteTimeout returns the HTTP write bound for the slowest invocation: the
// admission wait, the flow budget and responseMargin. It is 0 (unbounded)
// when a full admission gate waits forever.
func (c *Config) WriteTimeout() time.Duration {
	if c.Browser.MaxSessions > 0 && c.Browser.AcquireTimeout == 0 {
		return 0
	}
	return c.Browser.AcquireTimeout + c.SettleDelays().Budget() + responseMargin
}

// SettleDelays returns the flow's settle pauses.
func (c *Config) SettleDelays() scraper.Delays {
	return scraper.Delays{
		PostType:   c.Delays.PostType,
		PostLogin:  c.Delays.PostLogin,
		PostExpand: c.Delays.PostExpand,
	}
}

// LogLevel returns the parsed verbosity. Validate guarantees it is known.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Verbosity)
	return level
}
