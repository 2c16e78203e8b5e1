package ai

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// testHealth checks the NarratoAPI health endpoint
func (t *Tester) testHealth(ctx context.Context, req Request, logger log.FieldLogger) Result {
	resp, err := newClient(req.Proxy, healthTimeout, logger).R().
		SetContext(ctx).
		SetAuthToken(req.APIKey).
		Get(baseURL(req) + "/health")
	if err != nil {
		return t.fail(logger, "narratoapi_not_available", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return t.failStatus(logger, "narratoapi_not_available", resp)
	}

	return t.succeed("narratoapi_available")
}
