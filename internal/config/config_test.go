package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PanelURL != "" || cfg.APIKey != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadParsesSectionsAndTrimsURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	data := `[panel]
panel_url = https://panel.example.com/
api_key   = tok123
server_id = srv1

[proxy]
mode = ntlm
host = proxy.corp
port = 8080
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PanelURL != "https://panel.example.com" {
		t.Errorf("PanelURL = %q, want trailing slash trimmed", cfg.PanelURL)
	}
	if cfg.APIKey != "tok123" || cfg.ServerID != "srv1" {
		t.Errorf("panel section = %+v", cfg)
	}
	if cfg.Proxy.Mode != "ntlm" || cfg.Proxy.Host != "proxy.corp" || cfg.Proxy.Port != 8080 {
		t.Errorf("proxy section = %+v", cfg.Proxy)
	}
}

func TestResolveAPIKeyPrecedence(t *testing.T) {
	cfg := &Config{APIKey: "from-file"}

	t.Setenv(EnvAPIKey, "from-env")
	cfg.ResolveAPIKey("")
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env to beat file", cfg.APIKey)
	}

	cfg.ResolveAPIKey("from-flag")
	if cfg.APIKey != "from-flag" {
		t.Errorf("APIKey = %q, want flag to beat env", cfg.APIKey)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != ErrNoPanelURL {
		t.Errorf("Validate() = %v, want ErrNoPanelURL", err)
	}

	cfg.PanelURL = "https://panel.example.com"
	if err := cfg.Validate(); err != ErrNoAPIKey {
		t.Errorf("Validate() = %v, want ErrNoAPIKey", err)
	}

	cfg.APIKey = "tok"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	cfg.Proxy.Mode = "socks4"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted unknown proxy mode")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config")
	want := &Config{
		PanelURL: "https://panel.example.com",
		APIKey:   "tok",
		ServerID: "srv9",
		Proxy:    ProxyConfig{Mode: "system"},
	}
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PanelURL != want.PanelURL || got.APIKey != want.APIKey ||
		got.ServerID != want.ServerID || got.Proxy.Mode != want.Proxy.Mode {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, want)
	}
}
