package i18n

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned when a language has no loaded locale
var ErrUnsupportedLanguage = errors.New("language not supported")

// Manager handles internationalization
type Manager struct {
	currentLanguage string
	locales         *Locales
	fallback        *Locales
}

// NewManager creates a new i18n manager over the embedded catalogs
func NewManager(language string) (*Manager, error) {
	return NewManagerWithLocales(language, DefaultLocales())
}

// NewManagerWithLocales creates a manager over a loaded locale set. Messages
// missing from the set fall back to the embedded English catalog.
func NewManagerWithLocales(language string, locales *Locales) (*Manager, error) {
	if language == "" {
		return nil, fmt.Errorf("language cannot be empty")
	}
	if locales == nil {
		locales = DefaultLocales()
	}

	manager := &Manager{
		currentLanguage: language,
		locales:         locales,
		fallback:        DefaultLocales(),
	}

	// Validate that the requested language exists
	if _, exists := locales.Get(language); !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedLanguage, language)
	}

	return manager, nil
}

// Get retrieves a localized message by ID
func (m *Manager) Get(messageID string) string {
	// Try current language first
	if message, ok := lookup(m.locales, m.currentLanguage, messageID); ok {
		return message
	}

	// Fallback to English if message not found in current language
	if message, ok := lookup(m.locales, DefaultLanguage, messageID); ok {
		return message
	}
	if message, ok := lookup(m.fallback, DefaultLanguage, messageID); ok {
		return message
	}

	// Return message ID if not found (for debugging)
	return fmt.Sprintf("[%s]", messageID)
}

func lookup(locales *Locales, language, messageID string) (string, bool) {
	locale, ok := locales.Get(language)
	if !ok {
		return "", false
	}
	message, ok := locale.Translation[messageID]
	return message, ok
}

// GetWithArgs retrieves a localized message by ID and formats it with arguments
func (m *Manager) GetWithArgs(messageID string, args ...interface{}) string {
	message := m.Get(messageID)
	return fmt.Sprintf(message, args...)
}

// SetLanguage changes the current language
func (m *Manager) SetLanguage(language string) error {
	if language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if _, exists := m.locales.Get(language); !exists {
		return fmt.Errorf("%w: '%s'", ErrUnsupportedLanguage, language)
	}

	m.currentLanguage = language
	return nil
}

// GetCurrentLanguage returns the current language
func (m *Manager) GetCurrentLanguage() string {
	return m.currentLanguage
}

// GetAvailableLanguages returns all available languages
func (m *Manager) GetAvailableLanguages() []string {
	return m.locales.Codes()
}

// Locales returns the locale set the manager translates from
func (m *Manager) Locales() *Locales {
	return m.locales
}
