package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"narrato/internal/i18n"
)

// Version information, set from main
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func SetVersionInfo(version, buildTime, gitCommit string) {
	Version = version
	BuildTime = buildTime
	GitCommit = gitCommit
}

// Flag names, also the viper keys. NARRATO_<NAME> overrides the defaults,
// e.g. NARRATO_LOG_LEVEL=debug.
const (
	flagConfig    = "config"
	flagConfigDir = "config-dir"
	flagStore     = "store"
	flagLocaleDir = "locale-dir"
	flagLogLevel  = "log-level"
	flagLogFile   = "log-file"
)

func Execute() error {
	return NewRootCommand(viper.New()).Execute()
}

// NewRootCommand builds the command tree with its settings bound to v
func NewRootCommand(v *viper.Viper) *cobra.Command {
	tr := commandTranslator()

	rootCmd := &cobra.Command{
		Use:           "narrato",
		Short:         getI18nString(tr, "app_short_description", "Settings panel for the narrato video narration tool"),
		Long:          getI18nString(tr, "app_long_description", ""),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettings(cmd, v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "defaults file for these flags (default is $HOME/.narrato.yaml)")
	flags.String(flagConfigDir, "", "configuration directory (default is $HOME/.config/narrato)")
	flags.String(flagStore, "", "settings store: a .toml/.yaml file, sqlite://path, mysql://dsn or postgres://url")
	flags.String(flagLocaleDir, "", "directory with additional locale files")
	flags.String(flagLogLevel, "warn", "log level (debug, info, warn, error)")
	flags.String(flagLogFile, "", "write logs to this rotating file instead of stderr")
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		newSettingsCommand(v, tr),
		newConfigCommand(v, tr),
		newTestCommand(v, tr),
		newLocalesCommand(v, tr),
		newVersionCommand(tr),
	)
	return rootCmd
}

// commandTranslator picks the help text language from the environment
func commandTranslator() *i18n.Manager {
	tr, err := i18n.NewManager(i18n.SystemLocale())
	if err != nil {
		tr, _ = i18n.NewManager(i18n.DefaultLanguage)
	}
	return tr
}

// getI18nString safely gets an i18n string with fallback
func getI18nString(mgr *i18n.Manager, key, fallback string) string {
	if mgr == nil || key == "" {
		return fallback
	}
	message := mgr.Get(key)
	if message == fmt.Sprintf("[%s]", key) {
		return fallback
	}
	return message
}

func initConfig(v *viper.Viper) error {
	v.SetEnvPrefix("NARRATO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString(flagConfig); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, ".narrato.yaml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
