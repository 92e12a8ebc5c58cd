package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

const (
	headerEventType = "X-Event-Type"
	headerEventKey  = "X-Event-Key"
)

// WebhookPublisher delivers events as JSON callbacks to a single URL.
type WebhookPublisher struct {
	url    string
	client *http.Client
}

func NewWebhookPublisher(callbackURL string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookPublisher{
		url:    callbackURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Publish posts every message in order and stops at the first failure.
func (w *WebhookPublisher) Publish(ctx context.Context, msgs ...domain.Message) error {
	for _, msg := range msgs {
		if err := w.send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (w *WebhookPublisher) send(ctx context.Context, msg domain.Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(msg.Value))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEventType, msg.Type)
	req.Header.Set(headerEventKey, string(msg.Key))

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback to %s failed: %w", w.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback to %s returned status %d", w.url, resp.StatusCode)
	}
	return nil
}

func (w *WebhookPublisher) Close() error {
	w.client.CloseIdleConnections()
	return nil
}
