package tui

import (
	"strings"
	"sync"
)

// ChoiceCompleter offers Tab completion for the options of the selection
// currently on screen. It completes nothing outside a selection.
type ChoiceCompleter struct {
	mu      sync.Mutex
	options []string
}

func NewChoiceCompleter() *ChoiceCompleter {
	return &ChoiceCompleter{}
}

// SetOptions replaces the candidates; nil disables completion
func (c *ChoiceCompleter) SetOptions(options []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = options
}

// Do implements readline.AutoCompleter. Matching ignores case and the
// returned candidates are the remainders after the typed prefix.
func (c *ChoiceCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	c.mu.Lock()
	options := c.options
	c.mu.Unlock()

	typed := []rune(strings.TrimLeft(string(line[:pos]), " "))
	prefix := strings.ToLower(string(typed))

	for _, option := range options {
		runes := []rune(option)
		if len(runes) < len(typed) || strings.ToLower(string(runes[:len(typed)])) != prefix {
			continue
		}
		newLine = append(newLine, runes[len(typed):])
	}
	return newLine, len(typed)
}
