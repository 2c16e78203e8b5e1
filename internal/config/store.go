package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "config.toml"

// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Store persists a Config
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
	Location() string
	Close() error
}

// OpenStore opens the store named by location. sqlite://, mysql:// and
// postgres:// locations open a SQLStore; anything else is a config file path.
func OpenStore(location string) (Store, error) {
	switch {
	case strings.HasPrefix(location, "sqlite://"):
		return OpenSQLStore(DriverSQLite, strings.TrimPrefix(location, "sqlite://"))
	case strings.HasPrefix(location, "mysql://"):
		return OpenSQLStore(DriverMySQL, strings.TrimPrefix(location, "mysql://"))
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return OpenSQLStore(DriverPostgres, location)
	case location == "":
		return nil, fmt.Errorf("config location cannot be empty")
	default:
		return NewFileStore(location), nil
	}
}

// FileStore keeps the configuration in a TOML or YAML file. The file is
// shared with the rest of the application: sections and keys outside the
// Config document are kept as loaded, and only owned keys are rewritten.
type FileStore struct {
	path string
	raw  map[string]interface{}
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Location() string {
	return s.path
}

func (s *FileStore) Close() error {
	return nil
}

// document mirrors Config but accepts non-string app values, which hand-edited
// config.toml files commonly contain.
type document struct {
	UI    UIConfig               `yaml:"ui" toml:"ui"`
	Proxy ProxyConfig            `yaml:"proxy" toml:"proxy"`
	App   map[string]interface{} `yaml:"app" toml:"app"`
}

// Load loads configuration from file
func (s *FileStore) Load(ctx context.Context) (*Config, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		example := examplePath(s.path)
		if _, err := os.Stat(example); err == nil {
			// Seed config from the example shipped next to it
			data, err := os.ReadFile(example)
			if err != nil {
				return nil, fmt.Errorf("failed to read example config %s: %w", example, err)
			}
			if err := writeFile(s.path, data); err != nil {
				return nil, err
			}
			log.Infof("created %s from %s", s.path, example)
		} else {
			// Create default config if neither file exists
			config := DefaultConfig()
			if err := s.Save(ctx, config); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			return config, nil
		}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var (
		doc document
		raw map[string]interface{}
	)
	switch format(s.path) {
	case "toml":
		if err = toml.Unmarshal(data, &doc); err == nil {
			err = toml.Unmarshal(data, &raw)
		}
	case "yaml":
		if err = yaml.Unmarshal(data, &doc); err == nil {
			err = yaml.Unmarshal(data, &raw)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	s.raw = raw

	config := &Config{
		UI:    doc.UI,
		Proxy: doc.Proxy,
		App:   make(map[string]string, len(doc.App)),
	}
	for key, value := range doc.App {
		config.App[key] = fmt.Sprint(value)
	}

	return config, nil
}

// Save saves configuration to file
func (s *FileStore) Save(ctx context.Context, config *Config) error {
	var (
		data []byte
		err  error
	)
	tree := s.merge(config)
	switch format(s.path) {
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(tree)
		data = buf.Bytes()
	case "yaml":
		data, err = yaml.Marshal(tree)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.path)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return writeFile(s.path, data)
}

// merge writes the keys owned by config into the tree loaded from disk.
// Stored app values keep their type while their text is unchanged.
func (s *FileStore) merge(config *Config) map[string]interface{} {
	if s.raw == nil {
		s.raw = make(map[string]interface{})
	}

	ui := section(s.raw, SectionUI)
	if config.UI.Language != "" {
		ui["language"] = config.UI.Language
	} else {
		delete(ui, "language")
	}

	proxy := section(s.raw, SectionProxy)
	proxy["enabled"] = config.Proxy.Enabled
	proxy["http"] = config.Proxy.HTTP
	proxy["https"] = config.Proxy.HTTPS

	app := section(s.raw, SectionApp)
	for key := range app {
		if _, ok := config.App[key]; !ok {
			delete(app, key)
		}
	}
	for key, value := range config.App {
		if old, ok := app[key]; ok && fmt.Sprint(old) == value {
			continue
		}
		app[key] = value
	}
	return s.raw
}

// section returns the table named name, replacing a non-table value
func section(tree map[string]interface{}, name string) map[string]interface{} {
	if table, ok := tree[name].(map[string]interface{}); ok {
		return table
	}
	table := make(map[string]interface{})
	tree[name] = table
	return table
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	// credentials live in this file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// examplePath maps config.toml to config.example.toml
func examplePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".example" + ext
}
