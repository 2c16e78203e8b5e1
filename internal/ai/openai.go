package ai

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TestImageURL is the public image sent with the vision probe
const TestImageURL = "https://help-static-aliyun-doc.aliyuncs.com/file-manage-files/zh-CN/20241022/emyrja/dog_and_girl.jpeg"

const visionPrompt = "回复我网络可用即可"

const visionTemplate = `{"model":"","messages":[` +
	`{"role":"system","content":[{"type":"text","text":"You are a helpful assistant."}]},` +
	`{"role":"user","content":[{"type":"image_url","image_url":{"url":""}},{"type":"text","text":""}]}]}`

func visionBody(model string) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(visionTemplate), "model", model)
	if err != nil {
		return nil, fmt.Errorf("failed to set model: %w", err)
	}
	body, err = sjson.SetBytes(body, "messages.1.content.0.image_url.url", TestImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to set image url: %w", err)
	}
	body, err = sjson.SetBytes(body, "messages.1.content.1.text", visionPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to set prompt: %w", err)
	}
	return body, nil
}

// testVision sends one multimodal chat completion and expects at least one choice
func (t *Tester) testVision(ctx context.Context, req Request, logger log.FieldLogger) Result {
	body, err := visionBody(req.Model)
	if err != nil {
		return t.fail(logger, "vision_model_not_available", err)
	}

	resp, err := newClient(req.Proxy, t.timeout, logger).R().
		SetContext(ctx).
		SetAuthToken(req.APIKey).
		SetBody(body).
		Post(baseURL(req) + "/chat/completions")
	if err != nil {
		return t.fail(logger, "vision_model_not_available", err)
	}
	if resp.IsError() {
		message := gjson.GetBytes(resp.Body(), "error.message").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return t.fail(logger, "vision_model_not_available",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode(), message))
	}

	if gjson.GetBytes(resp.Body(), "choices.#").Int() == 0 {
		logger.WithField("body", truncate(resp.String(), 512)).Error("vision model returned no choices")
		return Result{Success: false, Message: t.tr.Get("vision_model_invalid_response")}
	}

	return t.succeed("vision_model_available")
}

// testChat posts a plain chat completion; only HTTP 200 counts as success
func (t *Tester) testChat(ctx context.Context, req Request, logger log.FieldLogger) Result {
	request := ChatRequest{
		Model: req.Model,
		Messages: []ChatMessage{
			{Role: "user", Content: testPrompt},
		},
		Stream: false,
	}

	resp, err := newClient(req.Proxy, t.timeout, logger).R().
		SetContext(ctx).
		SetAuthToken(req.APIKey).
		SetBody(request).
		Post(baseURL(req) + "/chat/completions")
	if err != nil {
		return t.fail(logger, "connection_failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return t.failStatus(logger, "text_model_not_available", resp)
	}

	return t.succeed("text_model_available")
}
