package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Sender delivers a rendered notification text. Delivery failures are the
// sender's own problem: callers log and continue, statement mutations never
// fail because of a notification.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// WebhookNotifier posts messages to a chat webhook as {"text": ...} JSON.
type WebhookNotifier struct {
	url    string
	client *retryablehttp.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &WebhookNotifier{url: url, client: client}
}

func (n *WebhookNotifier) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NopNotifier drops every message. Used when notifications are disabled.
type NopNotifier struct{}

func (NopNotifier) Send(ctx context.Context, text string) error { return nil }

// Deliver sends fire-and-forget: failures are logged, never returned.
func Deliver(ctx context.Context, s Sender, text string) {
	if err := s.Send(ctx, text); err != nil {
		log.Printf("notification delivery failed: %v", err)
	}
}
