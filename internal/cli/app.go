package cli

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"narrato/internal/ai"
	"narrato/internal/config"
	"narrato/internal/i18n"
	"narrato/internal/logging"
	"narrato/internal/proxy"
	"narrato/internal/session"
)

// app holds everything a command needs, wired from the flags
type app struct {
	configMgr *config.Manager
	store     config.Store
	cfg       *config.Config
	tr        *i18n.Manager
	sessions  *session.Manager
	proxy     *proxy.Controller
	tester    *ai.Tester
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	if err := logging.Setup(logging.Options{
		Level: v.GetString(flagLogLevel),
		File:  v.GetString(flagLogFile),
	}); err != nil {
		return nil, err
	}

	configMgr, err := config.NewManager(v.GetString(flagConfigDir))
	if err != nil {
		return nil, err
	}

	location := v.GetString(flagStore)
	if location == "" {
		location = configMgr.StoreLocation()
	}
	store, err := config.OpenStore(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	cfg, err := store.Load(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	locales := loadLocales(v.GetString(flagLocaleDir), configMgr.LocaleDir())
	tr, err := i18n.NewManagerWithLocales(resolveLanguage(cfg.Language(), locales), locales)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sessions, err := session.NewManager(configMgr.GetConfigDir())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	log.WithField("store", store.Location()).Debug("settings loaded")

	return &app{
		configMgr: configMgr,
		store:     store,
		cfg:       cfg,
		tr:        tr,
		sessions:  sessions,
		proxy:     proxy.NewController(nil),
		tester:    ai.NewTester(tr),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close settings store")
	}
	logging.Close()
}

func (a *app) save(ctx context.Context) error {
	if err := a.store.Save(ctx, a.cfg); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// loadLocales prefers the flag directory, then the config directory, then
// the embedded catalogs
func loadLocales(dirs ...string) *i18n.Locales {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if locales := i18n.LoadLocales(dir); locales.Len() > 0 {
			return locales
		}
	}
	return i18n.DefaultLocales()
}

// resolveLanguage returns the stored language, else the system one, else a
// language the set actually has
func resolveLanguage(stored string, locales *i18n.Locales) string {
	for _, code := range []string{stored, i18n.SystemLocale(), i18n.DefaultLanguage} {
		if code == "" {
			continue
		}
		if _, ok := locales.Get(code); ok {
			return code
		}
	}
	return locales.Codes()[0]
}
