package proxy

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"narrato/internal/config"
)

// Settings is the outbound proxy configuration handed to HTTP clients
type Settings struct {
	Enabled bool
	HTTP    string
	HTTPS   string
}

// Direct means no proxy
var Direct = Settings{}

// ProxyFunc returns the proxy selector for http.Transport. Disabled settings
// yield a nil function, which is a direct connection.
func (s Settings) ProxyFunc() func(*http.Request) (*url.URL, error) {
	if !s.Enabled {
		return nil
	}
	return func(req *http.Request) (*url.URL, error) {
		raw := s.HTTP
		if req.URL.Scheme == "https" {
			raw = s.HTTPS
		}
		if raw == "" {
			return nil, nil
		}
		proxyURL, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", raw, err)
		}
		return proxyURL, nil
	}
}

// Apply installs the settings on a resty client. The transport keeps the
// net/http defaults except for Proxy, so environment variables are never
// consulted.
func (s Settings) Apply(client *resty.Client) *resty.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = s.ProxyFunc()
	return client.SetTransport(transport)
}

// Controller mirrors the proxy toggle into the configuration and the
// process environment
type Controller struct {
	env Environment
}

// NewController creates a controller; a nil env means the OS environment
func NewController(env Environment) *Controller {
	if env == nil {
		env = OSEnvironment{}
	}
	return &Controller{env: env}
}

// Apply records the toggle state in cfg. When enabled with both URLs set,
// the URLs are stored and exported as HTTP_PROXY/HTTPS_PROXY. When disabled
// both variables are removed and the stored URLs are kept.
func (c *Controller) Apply(cfg *config.Config, enabled bool, httpURL, httpsURL string) (Settings, error) {
	cfg.SetProxyEnabled(enabled)

	if !enabled {
		if err := c.env.Unsetenv(EnvHTTPProxy); err != nil {
			return Direct, fmt.Errorf("failed to unset %s: %w", EnvHTTPProxy, err)
		}
		if err := c.env.Unsetenv(EnvHTTPSProxy); err != nil {
			return Direct, fmt.Errorf("failed to unset %s: %w", EnvHTTPSProxy, err)
		}
		log.Debug("proxy disabled")
		return Direct, nil
	}

	if httpURL != "" && httpsURL != "" {
		cfg.SetProxyURLs(httpURL, httpsURL)
		if err := c.env.Setenv(EnvHTTPProxy, httpURL); err != nil {
			return Direct, fmt.Errorf("failed to set %s: %w", EnvHTTPProxy, err)
		}
		if err := c.env.Setenv(EnvHTTPSProxy, httpsURL); err != nil {
			return Direct, fmt.Errorf("failed to set %s: %w", EnvHTTPSProxy, err)
		}
		log.WithFields(log.Fields{"http": httpURL, "https": httpsURL}).Debug("proxy enabled")
	}

	return c.Current(), nil
}

// Restore re-applies the stored proxy configuration, used at startup
func (c *Controller) Restore(cfg *config.Config) (Settings, error) {
	return c.Apply(cfg, cfg.Proxy.Enabled, cfg.Proxy.HTTP, cfg.Proxy.HTTPS)
}

// Current describes the proxy exported in the environment
func (c *Controller) Current() Settings {
	httpURL, _ := c.env.LookupEnv(EnvHTTPProxy)
	httpsURL, _ := c.env.LookupEnv(EnvHTTPSProxy)
	if httpURL == "" && httpsURL == "" {
		return Direct
	}
	return Settings{Enabled: true, HTTP: httpURL, HTTPS: httpsURL}
}
