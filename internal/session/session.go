package session

import "sync"

// Well known session keys
const (
	KeyUILanguage = "ui_language"
)

// Session is the per-run key/value mirror of settings the user has touched.
// It lives as long as the interactive front end.
type Session struct {
	ID string

	mu     sync.RWMutex
	values map[string]string
}

func New(id string) *Session {
	return &Session{
		ID:     id,
		values: make(map[string]string),
	}
}

func (s *Session) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// GetString returns the value for key or def when absent
func (s *Session) GetString(key, def string) string {
	if value, ok := s.Get(key); ok {
		return value
	}
	return def
}

func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Len returns the number of stored keys
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
