package alerter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

// EnvWebhookURL holds the endpoint the webhook medium posts to.
const EnvWebhookURL = "WEBHOOK_URL"

// WebhookAlerter POSTs incident events as JSON to a configured URL.
type WebhookAlerter struct {
	name   string
	url    string
	client *http.Client
}

func NewWebhookAlerter(name string) (*WebhookAlerter, error) {
	url := os.Getenv(EnvWebhookURL)
	if url == "" {
		return nil, fmt.Errorf("alerting[%s]: webhook medium requires %s", name, EnvWebhookURL)
	}

	client := cleanhttp.DefaultClient()
	client.Timeout = 5 * time.Second

	return &WebhookAlerter{
		name:   name,
		url:    url,
		client: client,
	}, nil
}

func (w *WebhookAlerter) Name() string { return w.name }

func (w *WebhookAlerter) Dispatch(inc *Incident) error {
	payload, err := json.Marshal(map[string]string{
		"kind":      inc.Kind,
		"subject":   inc.Subject,
		"message":   inc.Message,
		"timestamp": inc.Time.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("webhook payload: %w", err)
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook delivery failed: status %d", resp.StatusCode)
	}
	return nil
}
