package panel

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"narrato/internal/ai"
	"narrato/internal/config"
	"narrato/internal/i18n"
	"narrato/internal/proxy"
	"narrato/internal/session"
)

// TextOpts tweaks how a text field is shown
type TextOpts struct {
	Password bool
	Disabled bool
	Help     string
}

// UI is the widget toolkit the panel renders into. Every call blocks until
// the user has answered; disabled fields return value unchanged.
type UI interface {
	Section(title string)
	Select(label string, options []string, index int) string
	TextInput(label, value string, opts TextOpts) string
	Checkbox(label string, value bool) bool
	Button(label, key string) bool
	Busy(label string, fn func())
	Success(msg string)
	Error(msg string)
}

// ConnectionTester probes a provider
type ConnectionTester interface {
	Test(ctx context.Context, category ai.Category, req ai.Request) ai.Result
}

type Options struct {
	Config       *config.Config
	Session      *session.Session
	Translator   *i18n.Manager
	Proxy        *proxy.Controller
	Tester       ConnectionTester
	SystemLocale string
}

// Panel renders the settings and writes what the user entered back into
// the configuration and the session
type Panel struct {
	cfg          *config.Config
	session      *session.Session
	tr           *i18n.Manager
	proxy        *proxy.Controller
	tester       ConnectionTester
	systemLocale string

	proxySettings proxy.Settings
}

func New(opts Options) *Panel {
	systemLocale := opts.SystemLocale
	if systemLocale == "" {
		systemLocale = i18n.SystemLocale()
	}
	controller := opts.Proxy
	if controller == nil {
		controller = proxy.NewController(nil)
	}
	return &Panel{
		cfg:          opts.Config,
		session:      opts.Session,
		tr:           opts.Translator,
		proxy:        controller,
		tester:       opts.Tester,
		systemLocale: systemLocale,
	}
}

// Render runs one top-to-bottom pass over the panel. The caller persists
// the configuration afterwards.
func (p *Panel) Render(ctx context.Context, ui UI) error {
	ui.Section(p.tr.Get("basic_settings"))

	if err := p.renderLanguage(ui); err != nil {
		return err
	}
	if err := p.renderProxy(ui); err != nil {
		return err
	}
	p.renderProvider(ctx, ui, ai.CategoryVision)
	p.renderProvider(ctx, ui, ai.CategoryText)
	return nil
}

// ProxySettings returns the proxy settings of the last pass
func (p *Panel) ProxySettings() proxy.Settings {
	return p.proxySettings
}

func (p *Panel) renderLanguage(ui UI) error {
	locales := p.tr.Locales()
	if locales.Len() == 0 {
		return nil
	}

	ui.Section(p.tr.Get("language_settings"))
	current := p.session.GetString(session.KeyUILanguage, p.cfg.Language())
	index := locales.SelectedIndex(current, p.systemLocale)
	selected := ui.Select(p.tr.Get("language"), locales.Options(), index)

	code := i18n.ParseDisplay(selected)
	if _, ok := locales.Get(code); !ok {
		return fmt.Errorf("%w: '%s'", i18n.ErrUnsupportedLanguage, code)
	}
	p.session.Set(session.KeyUILanguage, code)
	p.cfg.SetLanguage(code)
	return p.tr.SetLanguage(code)
}

func (p *Panel) renderProxy(ui UI) error {
	ui.Section(p.tr.Get("proxy_settings"))

	enabled := ui.Checkbox(p.tr.Get("enable_proxy"), p.cfg.Proxy.Enabled)
	httpURL, httpsURL := "", ""
	if enabled {
		httpURL = ui.TextInput(p.tr.Get("http_proxy"), p.cfg.Proxy.HTTP, TextOpts{})
		httpsURL = ui.TextInput(p.tr.Get("https_proxy"), p.cfg.Proxy.HTTPS, TextOpts{})
	}

	settings, err := p.proxy.Apply(p.cfg, enabled, httpURL, httpsURL)
	if err != nil {
		return fmt.Errorf("failed to apply proxy settings: %w", err)
	}
	p.proxySettings = settings
	return nil
}

func (p *Panel) renderProvider(ctx context.Context, ui UI, category ai.Category) {
	cat := string(category)
	ui.Section(p.tr.Get(cat + "_model_settings"))

	providers := ai.Providers(category)
	stored := p.cfg.SelectedProvider(cat, string(providers[0]))
	selected := ui.Select(p.tr.Get(cat+"_model_provider"), ai.DisplayNames(providers), ai.IndexOf(providers, stored))

	provider := ai.ParseProvider(selected)
	p.cfg.SetSelectedProvider(cat, string(provider))
	p.session.Set(config.SelectedProviderKey(cat), string(provider))

	desc := ai.Describe(provider)
	apiKey := p.cfg.ProviderField(cat, string(provider), config.FieldAPIKey)
	baseURL := p.cfg.ProviderField(cat, string(provider), config.FieldBaseURL)
	modelName := p.cfg.ProviderField(cat, string(provider), config.FieldModelName)
	if modelName == "" {
		modelName = desc.DefaultModel
	}

	apiKey = ui.TextInput(p.tr.Get(cat+"_api_key"), apiKey, TextOpts{Password: true})
	if desc.RequiresBaseURL {
		opts := TextOpts{}
		if desc.DefaultBaseURL != "" {
			opts.Help = p.tr.GetWithArgs("default_value", desc.DefaultBaseURL)
		}
		baseURL = ui.TextInput(p.tr.Get(cat+"_base_url"), baseURL, opts)
	} else {
		baseURL = ui.TextInput(p.tr.Get(cat+"_base_url"), baseURL, TextOpts{
			Disabled: true,
			Help:     p.tr.Get("gemini_no_base_url"),
		})
	}
	modelName = ui.TextInput(p.tr.Get(cat+"_model_name"), modelName, TextOpts{})

	if ui.Button(p.tr.Get("test_connection"), "test_"+cat+"_connection") {
		var result ai.Result
		ui.Busy(p.tr.Get("testing_connection"), func() {
			result = p.tester.Test(ctx, category, ai.Request{
				Provider: provider,
				APIKey:   apiKey,
				BaseURL:  baseURL,
				Model:    modelName,
				Proxy:    p.proxySettings,
			})
		})
		if result.Success {
			ui.Success(result.Message)
		} else {
			ui.Error(result.Message)
		}
	}

	// empty input never overwrites a stored value
	for field, value := range map[string]string{
		config.FieldAPIKey:    apiKey,
		config.FieldBaseURL:   baseURL,
		config.FieldModelName: modelName,
	} {
		if value == "" {
			continue
		}
		p.cfg.SetProviderField(cat, string(provider), field, value)
		p.session.Set(config.ProviderKey(cat, string(provider), field), value)
	}

	log.WithFields(log.Fields{"category": cat, "provider": provider}).Debug("provider settings rendered")
}
