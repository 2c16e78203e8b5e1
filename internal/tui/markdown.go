package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"narrato/internal/i18n"
)

// MarkdownRenderer handles markdown rendering with consistent styling
type MarkdownRenderer struct {
	width int
	out   io.Writer
	tr    *i18n.Manager
}

// NewMarkdownRenderer creates a renderer sized to the terminal on stdout
func NewMarkdownRenderer(out io.Writer, tr *i18n.Manager) *MarkdownRenderer {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 100 // fallback width
	}

	return &MarkdownRenderer{
		width: width,
		out:   out,
		tr:    tr,
	}
}

// Render writes markdown, falling back to plain text if glamour fails
func (mr *MarkdownRenderer) Render(markdown string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(mr.width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		mr.plain(markdown)
		return
	}

	out, err := r.Render(markdown)
	if err != nil {
		mr.plain(markdown)
		return
	}

	fmt.Fprintln(mr.out, strings.Repeat("─", min(mr.width, 80)))
	fmt.Fprint(mr.out, out)
	fmt.Fprintln(mr.out, strings.Repeat("─", min(mr.width, 80)))
}

func (mr *MarkdownRenderer) plain(markdown string) {
	fmt.Fprintln(mr.out, mr.tr.Get("markdown_render_failed"))
	fmt.Fprint(mr.out, markdown)
}
