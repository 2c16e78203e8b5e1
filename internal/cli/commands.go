package cli

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"narrato/internal/ai"
	"narrato/internal/config"
	"narrato/internal/i18n"
	"narrato/internal/panel"
	"narrato/internal/tui"
)

const sessionRetentionDays = 30

func newSettingsCommand(v *viper.Viper, tr *i18n.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: getI18nString(tr, "settings_command_short", "Open the interactive settings panel"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettings(cmd, v)
		},
	}
}

func runSettings(cmd *cobra.Command, v *viper.Viper) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, v)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.sessions.NewSession()
	if err := a.sessions.EnsureSessionDir(sess.ID); err != nil {
		return err
	}
	if err := a.sessions.CleanupOldFiles(sessionRetentionDays); err != nil {
		log.WithError(err).Warn("failed to clean up old sessions")
	}

	if _, err := a.proxy.Restore(a.cfg); err != nil {
		return fmt.Errorf("failed to restore proxy settings: %w", err)
	}

	completer := tui.NewChoiceCompleter()
	rl, err := tui.NewReadline(a.sessions.HistoryFile(sess.ID), completer)
	if err != nil {
		return err
	}

	p := panel.New(panel.Options{
		Config:     a.cfg,
		Session:    sess,
		Translator: a.tr,
		Proxy:      a.proxy,
		Tester:     a.tester,
	})
	settingsApp := tui.NewApp(rl, cmd.OutOrStdout(), p, a.store, a.cfg, a.tr)
	settingsApp.UseCompleter(completer)
	return settingsApp.Run(ctx)
}

func newConfigCommand(v *viper.Viper, tr *i18n.Manager) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: getI18nString(tr, "config_command_short", "Show or change the stored configuration"),
	}

	var plain bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: getI18nString(tr, "config_show_short", "Show the stored configuration with secrets masked"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			summary := panel.Summary(a.cfg, a.tr)
			if plain {
				fmt.Fprint(cmd.OutOrStdout(), summary)
				return nil
			}
			tui.NewMarkdownRenderer(cmd.OutOrStdout(), a.tr).Render(summary)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&plain, "plain", false, "print the markdown without styling")

	getCmd := &cobra.Command{
		Use:   "get <section> <key>",
		Short: getI18nString(tr, "config_get_short", "Print one configuration value"),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Get(args[0], args[1], ""))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <section> <key> <value>",
		Short: getI18nString(tr, "config_set_short", "Set a configuration value"),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, key, value := args[0], args[1], args[2]

			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			if section == config.SectionApp && strings.HasSuffix(key, "_llm_provider") {
				value = strings.ToLower(value)
			}
			if err := a.cfg.Set(section, key, value); err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), a.tr.Get("value_updated"), section, key)
			return nil
		},
	}

	configCmd.AddCommand(showCmd, getCmd, setCmd)
	return configCmd
}

type testFlags struct {
	provider string
	apiKey   string
	baseURL  string
	model    string
}

func newTestCommand(v *viper.Viper, tr *i18n.Manager) *cobra.Command {
	testCmd := &cobra.Command{
		Use:   "test",
		Short: getI18nString(tr, "test_command_short", "Test a model provider connection"),
	}

	for _, category := range []ai.Category{ai.CategoryVision, ai.CategoryText} {
		category := category
		var flags testFlags
		cmd := &cobra.Command{
			Use:   string(category),
			Short: getI18nString(tr, "test_"+string(category)+"_short", ""),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTest(cmd, v, category, flags)
			},
		}
		cmd.Flags().StringVar(&flags.provider, "provider", "", "provider id (default is the stored selection)")
		cmd.Flags().StringVar(&flags.apiKey, "api-key", "", "API key (default is the stored key)")
		cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "base URL (default is the stored URL)")
		cmd.Flags().StringVar(&flags.model, "model", "", "model name (default is the stored model)")
		testCmd.AddCommand(cmd)
	}
	return testCmd
}

func runTest(cmd *cobra.Command, v *viper.Viper, category ai.Category, flags testFlags) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, v)
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := a.proxy.Restore(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to restore proxy settings: %w", err)
	}

	cat := string(category)
	provider := ai.ParseProvider(flags.provider)
	if provider == "" {
		provider = ai.ParseProvider(a.cfg.SelectedProvider(cat, string(ai.Providers(category)[0])))
	}

	req := ai.Request{
		Provider: provider,
		APIKey:   orStored(flags.apiKey, a.cfg.ProviderField(cat, string(provider), config.FieldAPIKey)),
		BaseURL:  orStored(flags.baseURL, a.cfg.ProviderField(cat, string(provider), config.FieldBaseURL)),
		Model:    orStored(flags.model, a.cfg.ProviderField(cat, string(provider), config.FieldModelName)),
		Proxy:    settings,
	}
	if req.Model == "" {
		req.Model = ai.Describe(provider).DefaultModel
	}

	fmt.Fprintln(cmd.OutOrStdout(), a.tr.Get("testing_connection"))
	result := a.tester.Test(ctx, category, req)
	if !result.Success {
		fmt.Fprintln(cmd.OutOrStdout(), "❌ "+result.Message)
		return errors.New(a.tr.Get("connection_test_failed"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ "+result.Message)
	return nil
}

func orStored(flag, stored string) string {
	if flag = strings.TrimSpace(flag); flag != "" {
		return flag
	}
	return stored
}

func newLocalesCommand(v *viper.Viper, tr *i18n.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: getI18nString(tr, "locales_command_short", "List the available interface languages"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			locales := a.tr.Locales()
			current := a.tr.GetCurrentLanguage()
			for _, code := range locales.Codes() {
				line := locales.Display(code)
				if code == current {
					line += " " + a.tr.Get("current_locale_marker")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newVersionCommand(tr *i18n.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: getI18nString(tr, "version_command_short", "Show version information"),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), tr.Get("version_output"), Version, BuildTime, GitCommit)
		},
	}
}
