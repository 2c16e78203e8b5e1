package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUnknownSection = errors.New("unknown config section")
	ErrUnknownKey     = errors.New("unknown config key")
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: make(map[string]string),
	}
}

// Get returns the value stored under section/key, or def when it is absent
func (c *Config) Get(section, key, def string) string {
	switch section {
	case SectionUI:
		if key == "language" && c.UI.Language != "" {
			return c.UI.Language
		}
	case SectionProxy:
		switch key {
		case "enabled":
			return strconv.FormatBool(c.Proxy.Enabled)
		case "http":
			if c.Proxy.HTTP != "" {
				return c.Proxy.HTTP
			}
		case "https":
			if c.Proxy.HTTPS != "" {
				return c.Proxy.HTTPS
			}
		}
	case SectionApp:
		if value, ok := c.App[key]; ok {
			return value
		}
	}
	return def
}

// Set stores value under section/key
func (c *Config) Set(section, key, value string) error {
	switch section {
	case SectionUI:
		if key != "language" {
			return fmt.Errorf("%w: %s.%s", ErrUnknownKey, section, key)
		}
		c.UI.Language = value
	case SectionProxy:
		switch key {
		case "enabled":
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s.%s: %w", section, key, err)
			}
			c.Proxy.Enabled = enabled
		case "http":
			c.Proxy.HTTP = value
		case "https":
			c.Proxy.HTTPS = value
		default:
			return fmt.Errorf("%w: %s.%s", ErrUnknownKey, section, key)
		}
	case SectionApp:
		if key == "" {
			return fmt.Errorf("%w: empty key in %s", ErrUnknownKey, section)
		}
		if c.App == nil {
			c.App = make(map[string]string)
		}
		c.App[key] = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	return nil
}

// Entries flattens the configuration into sorted section/key/value triples
func (c *Config) Entries() []Entry {
	entries := []Entry{
		{Section: SectionProxy, Key: "enabled", Value: strconv.FormatBool(c.Proxy.Enabled)},
	}
	if c.UI.Language != "" {
		entries = append(entries, Entry{Section: SectionUI, Key: "language", Value: c.UI.Language})
	}
	if c.Proxy.HTTP != "" {
		entries = append(entries, Entry{Section: SectionProxy, Key: "http", Value: c.Proxy.HTTP})
	}
	if c.Proxy.HTTPS != "" {
		entries = append(entries, Entry{Section: SectionProxy, Key: "https", Value: c.Proxy.HTTPS})
	}
	for key, value := range c.App {
		entries = append(entries, Entry{Section: SectionApp, Key: key, Value: value})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Section != entries[j].Section {
			return entries[i].Section < entries[j].Section
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Language returns the stored UI language
func (c *Config) Language() string {
	return c.UI.Language
}

// SetLanguage sets the language for the configuration
func (c *Config) SetLanguage(language string) {
	c.UI.Language = language
}

// SetProxyEnabled records whether the proxy toggle is on
func (c *Config) SetProxyEnabled(enabled bool) {
	c.Proxy.Enabled = enabled
}

// SetProxyURLs sets both proxy URLs
func (c *Config) SetProxyURLs(httpURL, httpsURL string) {
	c.Proxy.HTTP = httpURL
	c.Proxy.HTTPS = httpsURL
}

// ProviderKey builds the app key "{category}_{provider}_{field}". Category and
// provider are lowercased.
func ProviderKey(category, provider, field string) string {
	return fmt.Sprintf("%s_%s_%s", strings.ToLower(category), strings.ToLower(provider), field)
}

// SelectedProviderKey is the app key holding the selected provider of a category
func SelectedProviderKey(category string) string {
	return strings.ToLower(category) + "_llm_provider"
}

// ProviderField gets a stored provider field, empty when unset
func (c *Config) ProviderField(category, provider, field string) string {
	return c.Get(SectionApp, ProviderKey(category, provider, field), "")
}

// SetProviderField sets a provider field
func (c *Config) SetProviderField(category, provider, field, value string) {
	if c.App == nil {
		c.App = make(map[string]string)
	}
	c.App[ProviderKey(category, provider, field)] = value
}

// SelectedProvider returns the lowercased provider id selected for category
func (c *Config) SelectedProvider(category, fallback string) string {
	return strings.ToLower(c.Get(SectionApp, SelectedProviderKey(category), fallback))
}

// SetSelectedProvider stores the lowercased provider id for category
func (c *Config) SetSelectedProvider(category, provider string) {
	if c.App == nil {
		c.App = make(map[string]string)
	}
	c.App[SelectedProviderKey(category)] = strings.ToLower(provider)
}

// MaskSecret hides all but the edges of a secret
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:min(8, len(secret))] + "..." + secret[max(0, len(secret)-4):]
}

// IsSecretKey reports whether an app key holds a credential
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, "_"+FieldAPIKey)
}
