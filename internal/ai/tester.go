package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"narrato/internal/i18n"
	"narrato/internal/proxy"
)

// Prompt sent by every probe
const testPrompt = "直接回复我文本'当前网络可用'"

const (
	healthTimeout  = 10 * time.Second
	defaultTimeout = 60 * time.Second
)

// Translator resolves message ids
type Translator interface {
	Get(messageID string) string
}

// Tester probes a provider with a single request and turns every outcome
// into a Result
type Tester struct {
	tr            Translator
	logger        log.FieldLogger
	geminiBaseURL string
	timeout       time.Duration
}

type Option func(*Tester)

// WithGeminiBaseURL overrides the Gemini API endpoint
func WithGeminiBaseURL(baseURL string) Option {
	return func(t *Tester) {
		t.geminiBaseURL = baseURL
	}
}

func WithLogger(logger log.FieldLogger) Option {
	return func(t *Tester) {
		t.logger = logger
	}
}

// WithTimeout sets the timeout of chat and Gemini probes
func WithTimeout(timeout time.Duration) Option {
	return func(t *Tester) {
		t.timeout = timeout
	}
}

func NewTester(tr Translator, opts ...Option) *Tester {
	if tr == nil {
		// the embedded English catalog always loads
		tr, _ = i18n.NewManager(i18n.DefaultLanguage)
	}
	t := &Tester{
		tr:            tr,
		logger:        log.StandardLogger(),
		geminiBaseURL: Describe(ProviderGemini).DefaultBaseURL,
		timeout:       defaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tester) TestVision(ctx context.Context, req Request) Result {
	return t.Test(ctx, CategoryVision, req)
}

func (t *Tester) TestText(ctx context.Context, req Request) Result {
	return t.Test(ctx, CategoryText, req)
}

// Test runs the probe selected for the category and provider. It always
// returns a verdict.
func (t *Tester) Test(ctx context.Context, category Category, req Request) (result Result) {
	req.Provider = ParseProvider(string(req.Provider))
	strategy := StrategyFor(category, req.Provider)
	logger := t.logger.WithFields(log.Fields{
		"category": category,
		"provider": req.Provider,
		"strategy": strategy,
		"model":    req.Model,
	})

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("connection test panicked: %v", r)
			result = Result{Success: false, Message: fmt.Sprintf("%s: %v", t.tr.Get("connection_failed"), r)}
		}
	}()

	logger.Debug("testing connection")
	switch strategy {
	case StrategyGemini:
		result = t.testGemini(ctx, req, logger)
	case StrategyHealth:
		result = t.testHealth(ctx, req, logger)
	case StrategyOpenAIVision:
		result = t.testVision(ctx, req, logger)
	default:
		result = t.testChat(ctx, req, logger)
	}
	logger.WithField("success", result.Success).Info(result.Message)
	return result
}

func (t *Tester) fail(logger log.FieldLogger, messageID string, err error) Result {
	logger.WithError(err).Error("connection test failed")
	return Result{Success: false, Message: fmt.Sprintf("%s: %v", t.tr.Get(messageID), err)}
}

func (t *Tester) failStatus(logger log.FieldLogger, messageID string, resp *resty.Response) Result {
	logger.WithFields(log.Fields{
		"status": resp.StatusCode(),
		"body":   truncate(resp.String(), 512),
	}).Error("connection test failed")
	return Result{Success: false, Message: fmt.Sprintf("%s: HTTP %d", t.tr.Get(messageID), resp.StatusCode())}
}

func (t *Tester) succeed(messageID string) Result {
	return Result{Success: true, Message: t.tr.Get(messageID)}
}

// newClient builds a client that uses exactly the given proxy settings
func newClient(settings proxy.Settings, timeout time.Duration, logger log.FieldLogger) *resty.Client {
	return settings.Apply(resty.New()).
		SetLogger(logger).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
}

// baseURL strips trailing slashes, falling back to the provider default
func baseURL(req Request) string {
	base := strings.TrimSpace(req.BaseURL)
	if base == "" {
		base = Describe(req.Provider).DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
