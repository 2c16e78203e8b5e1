package panel

import (
	"fmt"
	"strings"

	"narrato/internal/config"
	"narrato/internal/i18n"
)

// Summary renders the stored configuration as a markdown table with
// credentials masked
func Summary(cfg *config.Config, tr *i18n.Manager) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", tr.Get("summary_title"))
	fmt.Fprintf(&b, "| %s | %s |\n", tr.Get("summary_setting"), tr.Get("summary_value"))
	b.WriteString("|---|---|\n")

	for _, entry := range cfg.Entries() {
		fmt.Fprintf(&b, "| `%s.%s` | %s |\n", entry.Section, entry.Key, summaryValue(entry, tr))
	}
	return b.String()
}

func summaryValue(entry config.Entry, tr *i18n.Manager) string {
	switch {
	case entry.Section == config.SectionProxy && entry.Key == "enabled":
		if entry.Value == "true" {
			return tr.Get("enabled")
		}
		return tr.Get("disabled")
	case entry.Value == "":
		return tr.Get("not_set")
	case config.IsSecretKey(entry.Key):
		return "`" + config.MaskSecret(entry.Value) + "`"
	default:
		return strings.ReplaceAll(entry.Value, "|", "\\|")
	}
}
