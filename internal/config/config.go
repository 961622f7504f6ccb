// Package config provides configuration management for CraftDeck.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Config file location:
//   - Unix:    ~/.config/craftdeck/config
//   - Windows: %USERPROFILE%\.config\craftdeck\config
//
// INI format:
//
//	[panel]
//	panel_url = https://panel.example.com
//	api_key   = <token>
//	server_id = a1b2c3d4
//
//	[proxy]
//	mode     = no-proxy | system | ntlm
//	host     = proxy.corp.example.com
//	port     = 8080
//	username = DOMAIN\user
//	password = <secret>

// EnvAPIKey is the environment variable consulted when no API key is given
// on the command line.
const EnvAPIKey = "CRAFTDECK_API_KEY"

// Config holds resolved client configuration.
type Config struct {
	// PanelURL is the base URL of the panel, without a trailing slash.
	PanelURL string `ini:"panel_url"`

	// APIKey authenticates every request.
	APIKey string `ini:"api_key"`

	// ServerID selects the target server on multi-server deployments.
	// Empty selects the legacy single-server API surface (no
	// /server/{id} segment in resource paths).
	ServerID string `ini:"server_id"`

	Proxy ProxyConfig
}

// ProxyConfig mirrors the proxy modes supported by the HTTP layer.
type ProxyConfig struct {
	// Mode is one of "no-proxy" (default), "system", "ntlm".
	Mode     string `ini:"mode"`
	Host     string `ini:"host"`
	Port     int    `ini:"port"`
	Username string `ini:"username"`
	Password string `ini:"password"`

	// NoProxy is a comma-separated bypass list (hosts, domains, CIDRs)
	// honored when a proxy is configured.
	NoProxy string `ini:"no_proxy"`
}

// Validation errors.
var (
	ErrNoPanelURL = errors.New("panel URL is empty: set panel_url in the config file or pass --panel-url")
	ErrNoAPIKey   = errors.New("API key is empty: set " + EnvAPIKey + ", api_key in the config file, or pass --api-key")
)

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "craftdeck", "config"), nil
}

// Load reads the config file at path. A missing file yields a zero Config
// rather than an error so that flags and environment variables alone can
// drive the tool.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	file, err := ini.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := file.Section("panel").MapTo(cfg); err != nil {
		return nil, fmt.Errorf("parse [panel] section: %w", err)
	}
	if err := file.Section("proxy").MapTo(&cfg.Proxy); err != nil {
		return nil, fmt.Errorf("parse [proxy] section: %w", err)
	}
	cfg.PanelURL = strings.TrimSuffix(cfg.PanelURL, "/")
	return cfg, nil
}

// ResolveAPIKey applies the key precedence: explicit flag value, then the
// environment, then whatever Load put in the config.
func (c *Config) ResolveAPIKey(flagValue string) {
	if flagValue != "" {
		c.APIKey = flagValue
		return
	}
	if env := os.Getenv(EnvAPIKey); env != "" {
		c.APIKey = env
	}
}

// Validate checks that the config can drive API calls.
func (c *Config) Validate() error {
	if c.PanelURL == "" {
		return ErrNoPanelURL
	}
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	switch strings.ToLower(c.Proxy.Mode) {
	case "", "no-proxy", "system", "ntlm":
	default:
		return fmt.Errorf("unknown proxy mode %q (use no-proxy, system, or ntlm)", c.Proxy.Mode)
	}
	return nil
}

// Save writes the config back to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	file := ini.Empty()
	if err := file.Section("panel").ReflectFrom(cfg); err != nil {
		return fmt.Errorf("encode [panel] section: %w", err)
	}
	if err := file.Section("proxy").ReflectFrom(&cfg.Proxy); err != nil {
		return fmt.Errorf("encode [proxy] section: %w", err)
	}
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}
