// Package httpclient builds the HTTP clients used against the panel:
// a retrying client for plain request/response calls and a streaming client
// for notification channels and upload bodies. Both share the same
// proxy-aware transport configuration.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/http2"

	"github.com/craftdeck/craftdeck/internal/config"
)

const (
	dialTimeout         = 10 * time.Second
	dialKeepAlive       = 30 * time.Second
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 15 * time.Second
	requestTimeout      = 60 * time.Second
)

// newTransport builds the shared transport with the configured proxy mode.
func newTransport(cfg *config.Config) (http.RoundTripper, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: dialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     idleConnTimeout,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	switch strings.ToLower(cfg.Proxy.Mode) {
	case "no-proxy", "":
		transport.Proxy = nil

	case "system":
		transport.Proxy = http.ProxyFromEnvironment

	case "ntlm":
		if cfg.Proxy.Host == "" {
			return nil, fmt.Errorf("proxy mode is ntlm but no proxy host is configured")
		}
		transport.Proxy = proxyFuncWithBypass(buildProxyURL(cfg), cfg.Proxy.NoProxy)
		// NTLM handshakes are negotiated per connection by the wrapper.
		return ntlmssp.Negotiator{RoundTripper: transport}, nil

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", cfg.Proxy.Mode)
	}

	_ = http2.ConfigureTransport(transport)
	return transport, nil
}

// buildProxyURL constructs a proxy URL from config.
func buildProxyURL(cfg *config.Config) *url.URL {
	port := cfg.Proxy.Port
	if port == 0 {
		port = 8080
	}
	proxyURL := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", cfg.Proxy.Host, port),
	}
	// Credentials go in the URL only when both parts are present; an empty
	// password embedded in the URL breaks some proxies.
	if cfg.Proxy.Username != "" && cfg.Proxy.Password != "" {
		proxyURL.User = url.UserPassword(cfg.Proxy.Username, cfg.Proxy.Password)
	}
	return proxyURL
}

// proxyFuncWithBypass returns a proxy function that honors the NoProxy
// bypass list. With an empty list it behaves like http.ProxyURL.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string) func(*http.Request) (*url.URL, error) {
	if noProxy == "" {
		return http.ProxyURL(proxyURL)
	}
	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}
}

// NewRetryClient returns the client used for plain request/response API
// calls. Retries with backoff are handled by retryablehttp; retry noise is
// logged through the given logger at debug level, failures at warn.
func NewRetryClient(cfg *config.Config, log zerolog.Logger) (*http.Client, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}
	rc.RetryMax = 4
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = &retryLogger{log: log}

	return rc.StandardClient(), nil
}

// NewStreamClient returns the client used for notification channels and
// streamed upload bodies. No overall timeout: these requests legitimately
// last as long as the job they belong to. No retries either - replaying a
// triggering request would start the job twice.
func NewStreamClient(cfg *config.Config) (*http.Client, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: transport}, nil
}

// retryLogger adapts zerolog to the retryablehttp.LeveledLogger interface.
type retryLogger struct {
	log zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}
