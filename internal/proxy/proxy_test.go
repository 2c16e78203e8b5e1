package proxy

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/go-resty/resty/v2"

	"narrato/internal/config"
)

func TestController_Apply(t *testing.T) {
	testCases := []struct {
		name          string
		preset        map[string]string
		enabled       bool
		httpURL       string
		httpsURL      string
		expectHTTP    string
		expectHTTPS   string
		expectPresent bool
		expectStored  [2]string
	}{
		{
			name:          "Enabled with both URLs",
			enabled:       true,
			httpURL:       "http://127.0.0.1:7890",
			httpsURL:      "http://127.0.0.1:7891",
			expectHTTP:    "http://127.0.0.1:7890",
			expectHTTPS:   "http://127.0.0.1:7891",
			expectPresent: true,
			expectStored:  [2]string{"http://127.0.0.1:7890", "http://127.0.0.1:7891"},
		},
		{
			name:          "Disabled removes variables",
			preset:        map[string]string{EnvHTTPProxy: "http://old:1", EnvHTTPSProxy: "http://old:2"},
			enabled:       false,
			httpURL:       "http://127.0.0.1:7890",
			httpsURL:      "http://127.0.0.1:7891",
			expectPresent: false,
			expectStored:  [2]string{"http://stored:1", "http://stored:2"},
		},
		{
			name:          "Disabled without variables is fine",
			enabled:       false,
			expectPresent: false,
			expectStored:  [2]string{"http://stored:1", "http://stored:2"},
		},
		{
			name:          "Enabled with one URL changes nothing",
			enabled:       true,
			httpURL:       "http://127.0.0.1:7890",
			expectPresent: false,
			expectStored:  [2]string{"http://stored:1", "http://stored:2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := NewMapEnvironment()
			for key, value := range tc.preset {
				env.Setenv(key, value)
			}
			cfg := config.DefaultConfig()
			cfg.SetProxyURLs("http://stored:1", "http://stored:2")

			settings, err := NewController(env).Apply(cfg, tc.enabled, tc.httpURL, tc.httpsURL)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			httpValue, httpOK := env.LookupEnv(EnvHTTPProxy)
			httpsValue, httpsOK := env.LookupEnv(EnvHTTPSProxy)
			if httpOK != tc.expectPresent || httpsOK != tc.expectPresent {
				t.Fatalf("Expected variables present=%v, got http=%v https=%v", tc.expectPresent, httpOK, httpsOK)
			}
			if tc.expectPresent && (httpValue != tc.expectHTTP || httpsValue != tc.expectHTTPS) {
				t.Errorf("Expected %s/%s, got %s/%s", tc.expectHTTP, tc.expectHTTPS, httpValue, httpsValue)
			}

			if cfg.Proxy.HTTP != tc.expectStored[0] || cfg.Proxy.HTTPS != tc.expectStored[1] {
				t.Errorf("Expected stored %v, got %s/%s", tc.expectStored, cfg.Proxy.HTTP, cfg.Proxy.HTTPS)
			}
			if cfg.Proxy.Enabled != tc.enabled {
				t.Errorf("Expected proxy.enabled %v, got %v", tc.enabled, cfg.Proxy.Enabled)
			}
			if settings.Enabled != tc.expectPresent {
				t.Errorf("Expected settings enabled %v, got %+v", tc.expectPresent, settings)
			}
		})
	}
}

func TestController_DisableIsIdempotent(t *testing.T) {
	env := NewMapEnvironment()
	controller := NewController(env)
	cfg := config.DefaultConfig()

	if _, err := controller.Apply(cfg, true, "http://a:1", "http://a:2"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		settings, err := controller.Apply(cfg, false, "", "")
		if err != nil {
			t.Fatalf("Disable %d failed: %v", i, err)
		}
		if settings != Direct {
			t.Errorf("Expected direct settings, got %+v", settings)
		}
	}

	// re-enabling restores the stored values
	settings, err := controller.Restore(func() *config.Config {
		cfg.SetProxyEnabled(true)
		return cfg
	}())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if settings.HTTP != "http://a:1" || settings.HTTPS != "http://a:2" {
		t.Errorf("Expected restored proxy, got %+v", settings)
	}
}

func TestSettings_ProxyFunc(t *testing.T) {
	settings := Settings{Enabled: true, HTTP: "http://plain:8080", HTTPS: "http://secure:8443"}

	testCases := []struct {
		name     string
		target   string
		expected string
	}{
		{name: "HTTP request", target: "http://example.com/health", expected: "http://plain:8080"},
		{name: "HTTPS request", target: "https://example.com/v1/chat/completions", expected: "http://secure:8443"},
	}

	proxyFunc := settings.ProxyFunc()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target, _ := url.Parse(tc.target)
			proxyURL, err := proxyFunc(&http.Request{URL: target})
			if err != nil {
				t.Fatalf("ProxyFunc failed: %v", err)
			}
			if proxyURL == nil || proxyURL.String() != tc.expected {
				t.Errorf("Expected proxy '%s', got %v", tc.expected, proxyURL)
			}
		})
	}

	if Direct.ProxyFunc() != nil {
		t.Error("Expected nil proxy function for direct settings")
	}

	bad := Settings{Enabled: true, HTTP: "://bad"}
	target, _ := url.Parse("http://example.com")
	if _, err := bad.ProxyFunc()(&http.Request{URL: target}); err == nil {
		t.Error("Expected error for invalid proxy url")
	}
}

func TestSettings_Apply(t *testing.T) {
	settings := Settings{Enabled: true, HTTP: "http://plain:8080", HTTPS: "http://secure:8443"}
	client := settings.Apply(resty.New())

	transport, ok := client.GetClient().Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Expected *http.Transport, got %T", client.GetClient().Transport)
	}
	if transport.Proxy == nil {
		t.Error("Expected proxy function on transport")
	}

	defaults := http.DefaultTransport.(*http.Transport)
	if transport.TLSHandshakeTimeout != defaults.TLSHandshakeTimeout {
		t.Errorf("Expected TLS handshake timeout %v, got %v", defaults.TLSHandshakeTimeout, transport.TLSHandshakeTimeout)
	}
	if transport.IdleConnTimeout != defaults.IdleConnTimeout || transport.MaxIdleConns != defaults.MaxIdleConns {
		t.Errorf("Expected idle connection defaults, got timeout %v and max %d", transport.IdleConnTimeout, transport.MaxIdleConns)
	}
	if transport == defaults {
		t.Error("Expected a copy of the default transport, not the shared one")
	}
}

func TestSettings_ApplyDirect(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://from-env:3128")
	client := Direct.Apply(resty.New())

	transport, ok := client.GetClient().Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Expected *http.Transport, got %T", client.GetClient().Transport)
	}
	if transport.Proxy != nil {
		t.Error("Expected no proxy function for direct settings")
	}
	if transport.TLSHandshakeTimeout == 0 {
		t.Error("Expected default TLS handshake timeout on direct transport")
	}
}
