package tui

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"

	"narrato/internal/ai"
	"narrato/internal/config"
	"narrato/internal/i18n"
	"narrato/internal/panel"
	"narrato/internal/proxy"
	"narrato/internal/session"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// scriptedReader replays lines and returns err once they run out
type scriptedReader struct {
	lines   []string
	err     error
	prompts []string
	closed  bool
}

func (r *scriptedReader) next() (string, error) {
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) Readline() (string, error) {
	return r.next()
}

func (r *scriptedReader) SetPrompt(prompt string) {
	r.prompts = append(r.prompts, prompt)
}

func (r *scriptedReader) ReadPassword(prompt string) ([]byte, error) {
	r.prompts = append(r.prompts, prompt)
	line, err := r.next()
	return []byte(line), err
}

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

func newTestTerminal(t *testing.T, lines ...string) (*Terminal, *scriptedReader, *bytes.Buffer) {
	t.Helper()
	tr, err := i18n.NewManager("en")
	if err != nil {
		t.Fatalf("Failed to create i18n manager: %v", err)
	}
	reader := &scriptedReader{lines: lines}
	var out bytes.Buffer
	return NewTerminal(reader, &out, tr), reader, &out
}

func TestTerminal_Select(t *testing.T) {
	options := []string{"Siliconflow", "Gemini", "QwenVL", "OpenAI"}

	testCases := []struct {
		name     string
		lines    []string
		expected string
	}{
		{name: "Enter keeps current", lines: []string{""}, expected: "Gemini"},
		{name: "By number", lines: []string{"4"}, expected: "OpenAI"},
		{name: "By name", lines: []string{"qwenvl"}, expected: "QwenVL"},
		{name: "Invalid then valid", lines: []string{"9", "mistral", "1"}, expected: "Siliconflow"},
		{name: "EOF keeps current", lines: nil, expected: "Gemini"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			terminal, _, out := newTestTerminal(t, tc.lines...)

			if got := terminal.Select("Vision Model Provider", options, 1); got != tc.expected {
				t.Errorf("Expected '%s', got '%s'", tc.expected, got)
			}
			if !strings.Contains(out.String(), " * 2. Gemini") {
				t.Errorf("Expected current option to be marked:\n%s", out.String())
			}
		})
	}
}

func TestTerminal_SelectIndexOutOfRange(t *testing.T) {
	options := []string{"OpenAI", "Siliconflow", "DeepSeek"}

	for _, index := range []int{-1, 3, 42} {
		terminal, _, out := newTestTerminal(t, "")

		if got := terminal.Select("Text Model Provider", options, index); got != "OpenAI" {
			t.Errorf("Index %d: expected first option, got '%s'", index, got)
		}
		if !strings.Contains(out.String(), " * 1. OpenAI") {
			t.Errorf("Index %d: expected first option to be marked:\n%s", index, out.String())
		}
	}
}

func TestTerminal_SelectLocaleByCode(t *testing.T) {
	terminal, _, _ := newTestTerminal(t, "zh")
	options := []string{"en - English", "zh - 简体中文"}

	if got := terminal.Select("Language", options, 0); got != "zh - 简体中文" {
		t.Errorf("Expected zh option, got '%s'", got)
	}
}

func TestTerminal_TextInput(t *testing.T) {
	testCases := []struct {
		name           string
		lines          []string
		value          string
		opts           panel.TextOpts
		expected       string
		expectedPrompt string
	}{
		{
			name:           "Enter keeps value",
			lines:          []string{""},
			value:          "https://api.openai.com/v1",
			expected:       "https://api.openai.com/v1",
			expectedPrompt: "Text Base URL [https://api.openai.com/v1]: ",
		},
		{
			name:           "Typed value",
			lines:          []string{"  https://api.deepseek.com  "},
			expected:       "https://api.deepseek.com",
			expectedPrompt: "Text Base URL [(not set)]: ",
		},
		{
			name:           "Password is masked",
			lines:          []string{""},
			value:          "sk-1234567890abcdef",
			opts:           panel.TextOpts{Password: true},
			expected:       "sk-1234567890abcdef",
			expectedPrompt: "Text Base URL [sk-12345...cdef]: ",
		},
		{
			name:           "Password replaced",
			lines:          []string{"sk-new"},
			value:          "sk-1234567890abcdef",
			opts:           panel.TextOpts{Password: true},
			expected:       "sk-new",
			expectedPrompt: "Text Base URL [sk-12345...cdef]: ",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			terminal, reader, _ := newTestTerminal(t, tc.lines...)

			if got := terminal.TextInput("Text Base URL", tc.value, tc.opts); got != tc.expected {
				t.Errorf("Expected '%s', got '%s'", tc.expected, got)
			}
			if len(reader.prompts) != 1 || reader.prompts[0] != tc.expectedPrompt {
				t.Errorf("Expected prompt %q, got %v", tc.expectedPrompt, reader.prompts)
			}
		})
	}
}

func TestTerminal_DisabledTextInputDoesNotRead(t *testing.T) {
	terminal, reader, out := newTestTerminal(t, "should not be read")

	got := terminal.TextInput("Vision Base URL", "", panel.TextOpts{Disabled: true, Help: "Gemini API does not require a base URL"})
	if got != "" {
		t.Errorf("Expected unchanged value, got '%s'", got)
	}
	if len(reader.prompts) != 0 {
		t.Errorf("Expected no prompt, got %v", reader.prompts)
	}
	if !strings.Contains(out.String(), "(Gemini API does not require a base URL)") {
		t.Errorf("Expected help text in output:\n%s", out.String())
	}
}

func TestTerminal_CheckboxAndButton(t *testing.T) {
	terminal, _, _ := newTestTerminal(t, "", "maybe", "n", "y", "")

	if !terminal.Checkbox("Enable Proxy", true) {
		t.Error("Expected Enter to keep true")
	}
	if terminal.Checkbox("Enable Proxy", true) {
		t.Error("Expected 'n' after an invalid answer to turn it off")
	}
	if !terminal.Button("Test Connection", "test_text_connection") {
		t.Error("Expected 'y' to press the button")
	}
	if terminal.Button("Test Connection", "test_text_connection") {
		t.Error("Expected Enter not to press the button")
	}
}

func TestTerminal_ErrorStopsReading(t *testing.T) {
	terminal, reader, _ := newTestTerminal(t)
	reader.err = readline.ErrInterrupt

	if got := terminal.TextInput("Text Model Name", "gpt-4o", panel.TextOpts{}); got != "gpt-4o" {
		t.Errorf("Expected default after interrupt, got '%s'", got)
	}
	if terminal.Err() != readline.ErrInterrupt {
		t.Errorf("Expected recorded interrupt, got %v", terminal.Err())
	}

	reader.lines = []string{"ignored"}
	if got := terminal.TextInput("Text Model Name", "gpt-4o", panel.TextOpts{}); got != "gpt-4o" {
		t.Errorf("Expected default once an error is recorded, got '%s'", got)
	}

	terminal.Reset()
	if got := terminal.TextInput("Text Model Name", "gpt-4o", panel.TextOpts{}); got != "ignored" {
		t.Errorf("Expected reading to resume after Reset, got '%s'", got)
	}
}

type staticTester struct{}

func (staticTester) Test(ctx context.Context, category ai.Category, req ai.Request) ai.Result {
	return ai.Result{Success: true, Message: "Text model is available"}
}

func TestApp_Run(t *testing.T) {
	tr, err := i18n.NewManager("en")
	if err != nil {
		t.Fatalf("Failed to create i18n manager: %v", err)
	}
	store := config.NewFileStore(filepath.Join(t.TempDir(), "config.toml"))
	cfg := config.DefaultConfig()

	p := panel.New(panel.Options{
		Config:       cfg,
		Session:      session.New("test"),
		Translator:   tr,
		Proxy:        proxy.NewController(proxy.NewMapEnvironment()),
		Tester:       staticTester{},
		SystemLocale: "en",
	})

	reader := &scriptedReader{lines: []string{
		"",           // language
		"",           // enable proxy
		"2",          // vision provider: Gemini
		"AIza-first", // vision api key
		"",           // vision model name
		"",           // test vision
		"3",          // text provider: DeepSeek
		"sk-deep",    // text api key
		"",           // text base url
		"",           // text model name
		"y",          // test text
		"q",          // quit
	}}
	var out bytes.Buffer

	app := NewApp(reader, &out, p, store, cfg, tr)
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reader.closed {
		t.Error("Expected reader to be closed")
	}
	if !strings.Contains(out.String(), "Configuration saved to "+store.Location()) {
		t.Errorf("Expected save message in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "✅ Text model is available") {
		t.Errorf("Expected test verdict in output:\n%s", out.String())
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.ProviderField("vision", "gemini", config.FieldAPIKey); got != "AIza-first" {
		t.Errorf("Expected saved gemini key, got '%s'", got)
	}
	if got := loaded.SelectedProvider("text", ""); got != "deepseek" {
		t.Errorf("Expected saved text provider 'deepseek', got '%s'", got)
	}
	if got := loaded.ProviderField("vision", "gemini", config.FieldModelName); got != "gemini-2.0-flash-lite" {
		t.Errorf("Expected default gemini model to be saved, got '%s'", got)
	}
}

func TestApp_RunStopsOnEOF(t *testing.T) {
	tr, _ := i18n.NewManager("en")
	store := config.NewFileStore(filepath.Join(t.TempDir(), "config.yaml"))
	cfg := config.DefaultConfig()
	p := panel.New(panel.Options{
		Config:       cfg,
		Session:      session.New("test"),
		Translator:   tr,
		Proxy:        proxy.NewController(proxy.NewMapEnvironment()),
		Tester:       staticTester{},
		SystemLocale: "en",
	})

	var out bytes.Buffer
	app := NewApp(&scriptedReader{}, &out, p, store, cfg, tr)
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Expected clean exit on EOF, got %v", err)
	}

	if _, err := os.Stat(store.Location()); err != nil {
		t.Errorf("Expected configuration to be saved before exit: %v", err)
	}
}
