package httpclient

import (
	"net/http"
	"testing"

	"github.com/craftdeck/craftdeck/internal/config"
)

func TestBuildProxyURL(t *testing.T) {
	cfg := &config.Config{Proxy: config.ProxyConfig{
		Host: "proxy.corp.example.com",
	}}
	u := buildProxyURL(cfg)
	if u.String() != "http://proxy.corp.example.com:8080" {
		t.Errorf("default port URL = %q", u)
	}

	cfg.Proxy.Port = 3128
	cfg.Proxy.Username = "DOMAIN\\user"
	cfg.Proxy.Password = "secret"
	u = buildProxyURL(cfg)
	if u.Host != "proxy.corp.example.com:3128" {
		t.Errorf("host = %q", u.Host)
	}
	if u.User == nil || u.User.Username() != "DOMAIN\\user" {
		t.Errorf("user = %v", u.User)
	}

	// Credentials are only embedded when both parts are present.
	cfg.Proxy.Password = ""
	if u = buildProxyURL(cfg); u.User != nil {
		t.Errorf("expected no credentials with empty password, got %v", u.User)
	}
}

func TestProxyFuncWithBypass(t *testing.T) {
	cfg := &config.Config{Proxy: config.ProxyConfig{Host: "proxy.corp.example.com"}}
	proxyURL := buildProxyURL(cfg)

	fn := proxyFuncWithBypass(proxyURL, "internal.example.com,10.0.0.0/8")

	req, _ := http.NewRequest(http.MethodGet, "https://panel.example.com/api/fs/files", nil)
	got, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if got == nil || got.Host != "proxy.corp.example.com:8080" {
		t.Errorf("external host proxy = %v, want the configured proxy", got)
	}

	req, _ = http.NewRequest(http.MethodGet, "https://internal.example.com/files", nil)
	if got, err = fn(req); err != nil || got != nil {
		t.Errorf("bypass host proxy = %v, %v, want direct", got, err)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://10.1.2.3/files", nil)
	if got, err = fn(req); err != nil || got != nil {
		t.Errorf("bypass CIDR proxy = %v, %v, want direct", got, err)
	}
}

func TestNewTransportRejectsUnknownMode(t *testing.T) {
	cfg := &config.Config{Proxy: config.ProxyConfig{Mode: "socks5"}}
	if _, err := newTransport(cfg); err == nil {
		t.Fatal("expected error for unsupported proxy mode")
	}
}

func TestNTLMModeRequiresHost(t *testing.T) {
	cfg := &config.Config{Proxy: config.ProxyConfig{Mode: "ntlm"}}
	if _, err := NewStreamClient(cfg); err == nil {
		t.Fatal("expected error for ntlm mode with no host")
	}
}
