package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.json
var localeFiles embed.FS

// DefaultLanguage is used when neither the session nor the system names a locale.
const DefaultLanguage = "en"

// Locale is a single locale definition file
type Locale struct {
	Code        string            `json:"-" yaml:"-"`
	Language    string            `json:"Language" yaml:"Language"`
	Translation map[string]string `json:"Translation" yaml:"Translation"`
}

// Locales is an ordered set of locale definitions keyed by code
type Locales struct {
	codes   []string
	entries map[string]*Locale
}

func newLocales() *Locales {
	return &Locales{entries: make(map[string]*Locale)}
}

// LoadLocales loads every locale file in dir. A missing directory yields an
// empty set.
func LoadLocales(dir string) *Locales {
	locales, err := loadFS(os.DirFS(dir), ".")
	if err != nil {
		log.WithError(err).Debugf("locale directory %s not loaded", dir)
		return newLocales()
	}
	return locales
}

// DefaultLocales returns the catalogs compiled into the binary
func DefaultLocales() *Locales {
	locales, err := loadFS(localeFiles, "locales")
	if err != nil {
		// embedded files are fixed at build time
		panic(fmt.Sprintf("failed to load embedded locales: %v", err))
	}
	return locales
}

func loadFS(fsys fs.FS, dir string) (*Locales, error) {
	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale files: %w", err)
	}

	locales := newLocales()
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, file.Name()))
		if err != nil {
			log.WithError(err).Warnf("skipping locale file %s", file.Name())
			continue
		}

		locale, ok, err := decodeLocale(file.Name(), content)
		if err != nil {
			log.WithError(err).Warnf("skipping locale file %s", file.Name())
			continue
		}
		if ok {
			locales.add(locale)
		}
	}

	sort.Strings(locales.codes)
	return locales, nil
}

// decodeLocale parses a locale file by extension; ok is false for files that
// are not locale definitions.
func decodeLocale(name string, content []byte) (*Locale, bool, error) {
	ext := path.Ext(name)
	code := strings.TrimSuffix(name, ext)

	var locale Locale
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(content, &locale); err != nil {
			return nil, false, fmt.Errorf("failed to parse locale file %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &locale); err != nil {
			return nil, false, fmt.Errorf("failed to parse locale file %s: %w", name, err)
		}
	default:
		return nil, false, nil
	}

	locale.Code = code
	if locale.Translation == nil {
		locale.Translation = make(map[string]string)
	}
	return &locale, true, nil
}

func (l *Locales) add(locale *Locale) {
	if _, exists := l.entries[locale.Code]; !exists {
		l.codes = append(l.codes, locale.Code)
	}
	l.entries[locale.Code] = locale
}

// Len returns the number of loaded locales
func (l *Locales) Len() int {
	return len(l.codes)
}

// Codes returns the locale codes in display order
func (l *Locales) Codes() []string {
	return append([]string(nil), l.codes...)
}

// Get returns the locale for code
func (l *Locales) Get(code string) (*Locale, bool) {
	locale, ok := l.entries[code]
	return locale, ok
}

// Display returns the "{code} - {Language}" string shown in the selector
func (l *Locales) Display(code string) string {
	locale, ok := l.entries[code]
	if !ok {
		return code
	}
	return fmt.Sprintf("%s - %s", code, locale.Language)
}

// Options returns the display strings of every locale in order
func (l *Locales) Options() []string {
	options := make([]string, 0, len(l.codes))
	for _, code := range l.codes {
		options = append(options, l.Display(code))
	}
	return options
}

// SelectedIndex returns the position of the active locale. The session value
// wins over the system locale; an unknown locale selects the first entry.
func (l *Locales) SelectedIndex(sessionLanguage, systemLocale string) int {
	active := sessionLanguage
	if active == "" {
		active = systemLocale
	}
	for i, code := range l.codes {
		if code == active {
			return i
		}
	}
	return 0
}

// ParseDisplay extracts the locale code from a selector option
func ParseDisplay(option string) string {
	code, _, _ := strings.Cut(option, " - ")
	return strings.TrimSpace(code)
}

// SystemLocale returns the language part of the process locale, e.g. "zh" for
// LANG=zh_CN.UTF-8.
func SystemLocale() string {
	return systemLocale(os.Getenv)
}

func systemLocale(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := getenv(key)
		if i := strings.IndexAny(value, ".@"); i >= 0 {
			value = value[:i]
		}
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		if i := strings.IndexAny(value, "_-"); i >= 0 {
			value = value[:i]
		}
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return DefaultLanguage
}
