package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager owns the per-user configuration directory
type Manager struct {
	configDir string
}

// DefaultConfigDir returns ~/.config/narrato
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "narrato"), nil
}

// NewManager creates the manager, creating configDir if needed. An empty
// configDir selects DefaultConfigDir.
func NewManager(configDir string) (*Manager, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &Manager{
		configDir: configDir,
	}, nil
}

func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// StoreLocation is the config file used when no store is given
func (m *Manager) StoreLocation() string {
	return filepath.Join(m.configDir, DefaultConfigFile)
}

// LocaleDir is where user supplied locale files are looked up
func (m *Manager) LocaleDir() string {
	return filepath.Join(m.configDir, "i18n")
}
