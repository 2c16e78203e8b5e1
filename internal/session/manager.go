package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const historyFile = "history"

type Manager struct {
	configDir string
	ids       *IDGen
}

func NewManager(configDir string) (*Manager, error) {
	ids, err := NewIDGen()
	if err != nil {
		return nil, err
	}
	return &Manager{
		configDir: configDir,
		ids:       ids,
	}, nil
}

// NewSession starts an empty session with a fresh id
func (m *Manager) NewSession() *Session {
	return New(m.ids.GenerateString())
}

func (m *Manager) GetSessionDir(sessionID string) string {
	return filepath.Join(m.configDir, "sessions", sessionID)
}

func (m *Manager) EnsureSessionDir(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	sessionDir := m.GetSessionDir(sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return nil
}

// HistoryFile is the readline history file of the session
func (m *Manager) HistoryFile(sessionID string) string {
	return filepath.Join(m.GetSessionDir(sessionID), historyFile)
}

// CleanupOldFiles removes files under every session directory that were not
// modified within retentionDays. Emptied session directories are removed too.
func (m *Manager) CleanupOldFiles(retentionDays int) error {
	sessionsDir := filepath.Join(m.configDir, "sessions")
	if _, err := os.Stat(sessionsDir); os.IsNotExist(err) {
		return nil // No session directory exists
	}

	cutoffTime := time.Now().AddDate(0, 0, -retentionDays)

	err := filepath.Walk(sessionsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && info.ModTime().Before(cutoffTime) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove old file %s: %w", path, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		return fmt.Errorf("failed to read sessions directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(sessionsDir, entry.Name())
		if files, err := os.ReadDir(dir); err == nil && len(files) == 0 {
			_ = os.Remove(dir)
		}
	}
	return nil
}
