package config

// Section names of the configuration document
const (
	SectionUI    = "ui"
	SectionProxy = "proxy"
	SectionApp   = "app"
)

// Per-provider fields stored in the app section
const (
	FieldAPIKey    = "api_key"
	FieldBaseURL   = "base_url"
	FieldModelName = "model_name"
)

// Fields lists the per-provider fields in panel order
var Fields = []string{FieldAPIKey, FieldBaseURL, FieldModelName}

// UIConfig holds interface settings
type UIConfig struct {
	Language string `yaml:"language" toml:"language"`
}

// ProxyConfig holds the outbound proxy settings
type ProxyConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	HTTP    string `yaml:"http" toml:"http"`
	HTTPS   string `yaml:"https" toml:"https"`
}

// Config holds the main configuration, one field per section
type Config struct {
	UI    UIConfig          `yaml:"ui" toml:"ui"`
	Proxy ProxyConfig       `yaml:"proxy" toml:"proxy"`
	App   map[string]string `yaml:"app" toml:"app"`
}

// Entry is one flattened section/key/value triple
type Entry struct {
	Section string
	Key     string
	Value   string
}
