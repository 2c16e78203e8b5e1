package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"narrato/internal/config"
	"narrato/internal/i18n"
	"narrato/internal/panel"
)

// LineReader is the part of *readline.Instance the terminal needs
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	ReadPassword(prompt string) ([]byte, error)
	Close() error
}

// Terminal renders the settings panel as a sequence of prompts. Pressing
// Enter keeps the shown value.
type Terminal struct {
	rl        LineReader
	out       io.Writer
	tr        *i18n.Manager
	err       error
	completer *ChoiceCompleter
}

var _ panel.UI = (*Terminal)(nil)

func NewTerminal(rl LineReader, out io.Writer, tr *i18n.Manager) *Terminal {
	return &Terminal{rl: rl, out: out, tr: tr}
}

// UseCompleter feeds the options of each selection to c
func (t *Terminal) UseCompleter(c *ChoiceCompleter) {
	t.completer = c
}

// Err returns the first read error, typically io.EOF or readline.ErrInterrupt.
// Once set, prompts return their defaults without reading.
func (t *Terminal) Err() error {
	return t.err
}

// Reset clears a recorded read error
func (t *Terminal) Reset() {
	t.err = nil
}

// Prompt reads one trimmed line
func (t *Terminal) Prompt(prompt string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if err != nil {
		t.err = err
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Section(title string) {
	fmt.Fprintf(t.out, "\n%s\n%s\n", title, strings.Repeat("─", min(max(len([]rune(title)), 4), 80)))
}

func (t *Terminal) Select(label string, options []string, index int) string {
	if len(options) == 0 {
		return ""
	}
	if index < 0 || index >= len(options) {
		index = 0
	}
	current := options[index]

	if t.completer != nil {
		t.completer.SetOptions(options)
		defer t.completer.SetOptions(nil)
	}

	for i, option := range options {
		marker := " "
		if i == index {
			marker = "*"
		}
		fmt.Fprintf(t.out, " %s %d. %s\n", marker, i+1, option)
	}

	for {
		answer, err := t.Prompt(fmt.Sprintf("%s [%s]: ", label, current))
		if err != nil || answer == "" {
			return current
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1]
		}
		for _, option := range options {
			if strings.EqualFold(option, answer) || strings.EqualFold(i18n.ParseDisplay(option), answer) {
				return option
			}
		}
		fmt.Fprintf(t.out, t.tr.Get("invalid_choice"), answer)
	}
}

func (t *Terminal) TextInput(label, value string, opts panel.TextOpts) string {
	shown := value
	if opts.Password {
		shown = config.MaskSecret(value)
	}
	if shown == "" {
		shown = t.tr.Get("not_set")
	}

	if opts.Disabled {
		fmt.Fprintf(t.out, "%s: %s", label, shown)
		if opts.Help != "" {
			fmt.Fprintf(t.out, " (%s)", opts.Help)
		}
		fmt.Fprintln(t.out)
		return value
	}
	if opts.Help != "" {
		fmt.Fprintf(t.out, "  %s\n", opts.Help)
	}

	prompt := fmt.Sprintf("%s [%s]: ", label, shown)
	if opts.Password {
		if t.err != nil {
			return value
		}
		secret, err := t.rl.ReadPassword(prompt)
		if err != nil {
			t.err = err
			return value
		}
		if answer := strings.TrimSpace(string(secret)); answer != "" {
			return answer
		}
		return value
	}

	answer, err := t.Prompt(prompt)
	if err != nil || answer == "" {
		return value
	}
	return answer
}

func (t *Terminal) Checkbox(label string, value bool) bool {
	hint := "y/N"
	if value {
		hint = "Y/n"
	}
	for {
		answer, err := t.Prompt(fmt.Sprintf("%s [%s]: ", label, hint))
		if err != nil || answer == "" {
			return value
		}
		if parsed, ok := parseYesNo(answer); ok {
			return parsed
		}
		fmt.Fprintf(t.out, t.tr.Get("invalid_choice"), answer)
	}
}

func (t *Terminal) Button(label, key string) bool {
	answer, err := t.Prompt(fmt.Sprintf("%s? [y/N]: ", label))
	if err != nil {
		return false
	}
	yes, _ := parseYesNo(answer)
	return yes
}

func (t *Terminal) Busy(label string, fn func()) {
	fmt.Fprintln(t.out, label)
	fn()
}

func (t *Terminal) Success(msg string) {
	fmt.Fprintf(t.out, "✅ %s\n", msg)
}

func (t *Terminal) Error(msg string) {
	fmt.Fprintf(t.out, "❌ %s\n", msg)
}

func parseYesNo(answer string) (bool, bool) {
	switch strings.ToLower(answer) {
	case "y", "yes", "true", "1", "on":
		return true, true
	case "n", "no", "false", "0", "off":
		return false, true
	}
	return false, false
}
