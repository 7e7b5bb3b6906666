// Package notify sends customer messages when an order is picked or leaves
// for delivery.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/errorutil"
)

// Gateway delivers a text message to a phone number (digits only).
type Gateway interface {
	Send(ctx context.Context, phone, text, token string) error
}

// HTTPGateway talks to the messaging instance's REST API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates an HTTPGateway. timeout bounds each request.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type textMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Send posts the message. Errors are *errorutil.Error: network failures,
// 429 and 5xx are retryable, other non-2xx answers are not.
func (g *HTTPGateway) Send(ctx context.Context, phone, text, token string) error {
	body, err := json.Marshal(textMessage{To: phone, Text: text})
	if err != nil {
		return errorutil.NonRetriableWithDetails("encode message failed", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/message/text", bytes.NewReader(body))
	if err != nil {
		return errorutil.NonRetriableWithDetails("build request failed", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Instance-Token", token)

	resp, err := g.client.Do(req)
	if err != nil {
		return errorutil.RetriableWithDetails("messaging gateway unreachable", err.Error())
	}
	defer resp.Body.Close()

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return errorutil.RetriableWithDetails(fmt.Sprintf("messaging gateway returned %d", resp.StatusCode), string(detail))
	default:
		return errorutil.NonRetriableWithDetails(fmt.Sprintf("messaging gateway returned %d", resp.StatusCode), string(detail))
	}
}
