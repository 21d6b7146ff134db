package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/healthchat/internal/errors"
	"github.com/diogo/healthchat/internal/models"
)

// maxErrorBody limits how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// OpenStream posts the conversation to the relay and returns the event
// stream body once the relay has accepted the request. The caller must close
// the returned body.
func (c *RelayClient) OpenStream(ctx context.Context, messages []models.Message) (io.ReadCloser, error) {
	payload, err := json.Marshal(models.RelayRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.publicKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.publicKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("open stream", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, relayErrorMessage(resp.Status, body), string(body))
	}

	return resp.Body, nil
}

// relayErrorMessage prefers the relay's JSON error field over the status line
func relayErrorMessage(status string, body []byte) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}
	if status != "" {
		return status
	}
	return "relay request failed"
}
