package ai

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const geminiTemplate = `{"contents":[{"role":"user","parts":[{"text":""}]}]}`

// testGemini calls generateContent with the test prompt. The base URL field
// is ignored, Gemini always uses its own endpoint.
func (t *Tester) testGemini(ctx context.Context, req Request, logger log.FieldLogger) Result {
	model := req.Model
	if model == "" {
		model = Describe(ProviderGemini).DefaultModel
	}

	body, err := sjson.SetBytes([]byte(geminiTemplate), "contents.0.parts.0.text", testPrompt)
	if err != nil {
		return t.fail(logger, "gemini_model_not_available", fmt.Errorf("failed to build request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(t.geminiBaseURL, "/"), url.PathEscape(model))

	resp, err := newClient(req.Proxy, t.timeout, logger).R().
		SetContext(ctx).
		SetQueryParam("key", req.APIKey).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return t.fail(logger, "gemini_model_not_available", err)
	}
	if resp.IsError() {
		return t.fail(logger, "gemini_model_not_available", geminiError(resp.StatusCode(), resp.Body()))
	}

	return t.succeed("gemini_model_available")
}

// geminiError prefers the message from the API error envelope
func geminiError(status int, body []byte) error {
	if message := gjson.GetBytes(body, "error.message"); message.Exists() {
		return fmt.Errorf("HTTP %d: %s", status, message.String())
	}
	return fmt.Errorf("HTTP %d", status)
}
