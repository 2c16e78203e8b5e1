package ai

import (
	"strings"

	"narrato/internal/proxy"
)

// Category is the kind of model a provider is configured for
type Category string

const (
	CategoryVision Category = "vision"
	CategoryText   Category = "text"
)

// Provider represents different AI providers
type Provider string

const (
	ProviderSiliconflow Provider = "siliconflow"
	ProviderGemini      Provider = "gemini"
	ProviderQwenVL      Provider = "qwenvl"
	ProviderOpenAI      Provider = "openai"
	ProviderDeepSeek    Provider = "deepseek"
	ProviderQwen        Provider = "qwen"
	ProviderMoonshot    Provider = "moonshot"
	ProviderNarratoAPI  Provider = "narratoapi"
)

// Descriptor holds the static facts about a provider
type Descriptor struct {
	ID              Provider
	DisplayName     string
	RequiresBaseURL bool
	DefaultModel    string
	DefaultBaseURL  string
}

var descriptors = map[Provider]Descriptor{
	ProviderSiliconflow: {
		ID:              ProviderSiliconflow,
		DisplayName:     "Siliconflow",
		RequiresBaseURL: true,
		DefaultBaseURL:  "https://api.siliconflow.cn/v1",
	},
	ProviderGemini: {
		ID:             ProviderGemini,
		DisplayName:    "Gemini",
		DefaultModel:   "gemini-2.0-flash-lite",
		DefaultBaseURL: "https://generativelanguage.googleapis.com/v1beta",
	},
	ProviderQwenVL: {
		ID:              ProviderQwenVL,
		DisplayName:     "QwenVL",
		RequiresBaseURL: true,
		DefaultModel:    "qwen-vl-max-latest",
		DefaultBaseURL:  "https://dashscope.aliyuncs.com/compatible-mode/v1",
	},
	ProviderOpenAI: {
		ID:              ProviderOpenAI,
		DisplayName:     "OpenAI",
		RequiresBaseURL: true,
		DefaultBaseURL:  "https://api.openai.com/v1",
	},
	ProviderDeepSeek: {
		ID:              ProviderDeepSeek,
		DisplayName:     "DeepSeek",
		RequiresBaseURL: true,
		DefaultBaseURL:  "https://api.deepseek.com",
	},
	ProviderQwen: {
		ID:              ProviderQwen,
		DisplayName:     "Qwen",
		RequiresBaseURL: true,
		DefaultBaseURL:  "https://dashscope.aliyuncs.com/compatible-mode/v1",
	},
	ProviderMoonshot: {
		ID:              ProviderMoonshot,
		DisplayName:     "Moonshot",
		RequiresBaseURL: true,
		DefaultBaseURL:  "https://api.moonshot.cn/v1",
	},
	ProviderNarratoAPI: {
		ID:              ProviderNarratoAPI,
		DisplayName:     "NarratoAPI",
		RequiresBaseURL: true,
	},
}

// Providers offered in the settings panel, in display order
var (
	VisionProviders = []Provider{ProviderSiliconflow, ProviderGemini, ProviderQwenVL, ProviderOpenAI}
	TextProviders   = []Provider{ProviderOpenAI, ProviderSiliconflow, ProviderDeepSeek, ProviderGemini, ProviderQwen, ProviderMoonshot}
)

// Providers returns the selectable providers of a category
func Providers(category Category) []Provider {
	if category == CategoryVision {
		return VisionProviders
	}
	return TextProviders
}

// Describe returns the descriptor of p. Unknown ids get an OpenAI compatible
// descriptor named after the id.
func Describe(p Provider) Descriptor {
	if d, ok := descriptors[p]; ok {
		return d
	}
	return Descriptor{ID: p, DisplayName: string(p), RequiresBaseURL: true}
}

// ParseProvider normalizes a provider id or display name
func ParseProvider(s string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether p has a descriptor
func (p Provider) Known() bool {
	_, ok := descriptors[p]
	return ok
}

func (p Provider) String() string {
	return string(p)
}

// IndexOf finds the stored provider in list case-insensitively, 0 when absent
func IndexOf(list []Provider, stored string) int {
	wanted := ParseProvider(stored)
	for i, p := range list {
		if p == wanted {
			return i
		}
	}
	return 0
}

// DisplayNames maps providers to their display names
func DisplayNames(list []Provider) []string {
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = Describe(p).DisplayName
	}
	return names
}

// Strategy is the probe used to test a provider
type Strategy int

const (
	// StrategyChat posts a text chat completion and expects HTTP 200
	StrategyChat Strategy = iota
	// StrategyOpenAIVision posts a multimodal chat completion and expects a choice
	StrategyOpenAIVision
	// StrategyGemini calls generateContent on the Gemini API
	StrategyGemini
	// StrategyHealth calls the NarratoAPI health endpoint
	StrategyHealth
)

var strategyNames = map[Strategy]string{
	StrategyChat:         "chat",
	StrategyOpenAIVision: "openai_vision",
	StrategyGemini:       "gemini",
	StrategyHealth:       "health",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

var strategies = map[Category]map[Provider]Strategy{
	CategoryVision: {
		ProviderGemini:     StrategyGemini,
		ProviderNarratoAPI: StrategyHealth,
	},
	CategoryText: {
		ProviderGemini: StrategyGemini,
	},
}

// StrategyFor returns the probe for a provider. Providers without an entry
// are treated as OpenAI compatible.
func StrategyFor(category Category, p Provider) Strategy {
	if s, ok := strategies[category][p]; ok {
		return s
	}
	if category == CategoryVision {
		return StrategyOpenAIVision
	}
	return StrategyChat
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// Request is what the user entered for a provider
type Request struct {
	Provider Provider
	APIKey   string
	BaseURL  string
	Model    string
	Proxy    proxy.Settings
}

// Result is the verdict of a connection test
type Result struct {
	Success bool
	Message string
}
