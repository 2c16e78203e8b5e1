package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"

	"narrato/internal/config"
	"narrato/internal/i18n"
	"narrato/internal/panel"
)

// App runs the settings panel until the user quits
type App struct {
	term     *Terminal
	panel    *panel.Panel
	store    config.Store
	cfg      *config.Config
	tr       *i18n.Manager
	renderer *MarkdownRenderer
	out      io.Writer
}

// NewReadline opens the interactive line reader with a history file. A non
// nil completer completes selection options on Tab.
func NewReadline(historyFile string, completer *ChoiceCompleter) (*readline.Instance, error) {
	var autoComplete readline.AutoCompleter
	if completer != nil {
		autoComplete = completer
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "narrato > ",
		HistoryFile:     historyFile,
		AutoComplete:    autoComplete,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

func NewApp(rl LineReader, out io.Writer, p *panel.Panel, store config.Store, cfg *config.Config, tr *i18n.Manager) *App {
	return &App{
		term:     NewTerminal(rl, out, tr),
		panel:    p,
		store:    store,
		cfg:      cfg,
		tr:       tr,
		renderer: NewMarkdownRenderer(out, tr),
		out:      out,
	}
}

// UseCompleter wires Tab completion into the selection prompts
func (a *App) UseCompleter(c *ChoiceCompleter) {
	a.term.UseCompleter(c)
}

// Run renders the panel, saves and shows the summary, then asks whether to
// go again. EOF or Ctrl+C ends the loop after saving.
func (a *App) Run(ctx context.Context) error {
	defer a.term.rl.Close()

	for {
		if err := a.panel.Render(ctx, a.term); err != nil {
			return err
		}

		if err := a.store.Save(ctx, a.cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		fmt.Fprintf(a.out, a.tr.Get("config_saved"), a.store.Location())
		a.renderer.Render(panel.Summary(a.cfg, a.tr))

		if err := a.term.Err(); err != nil {
			return quitError(err)
		}

		answer, err := a.term.Prompt(a.tr.Get("review_again"))
		if err != nil {
			return quitError(err)
		}
		if strings.EqualFold(answer, "q") || strings.EqualFold(answer, "quit") {
			return nil
		}
	}
}

// quitError maps the ways a user leaves the prompt to a clean exit
func quitError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
		log.Debug("interactive session ended")
		return nil
	}
	return fmt.Errorf("failed to read input: %w", err)
}
