package alerter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

const (
	// EnvSpryngToken holds the Spryng API token.
	EnvSpryngToken = "SPRYNG_TOKEN"

	// EnvSpryngRecipients holds a comma-separated list of phone
	// numbers.
	EnvSpryngRecipients = "SPRYNG_RECIPIENTS"

	spryngAPIURL = "https://rest.spryngsms.com/v1/messages"
)

// SpryngAlerter delivers incidents as SMS through the Spryng REST
// gateway.
type SpryngAlerter struct {
	name       string
	token      string
	recipients []string
	apiURL     string
	client     *http.Client
}

func NewSpryngAlerter(name string) (*SpryngAlerter, error) {
	token := os.Getenv(EnvSpryngToken)
	if token == "" {
		return nil, fmt.Errorf("alerting[%s]: spryng medium requires %s", name, EnvSpryngToken)
	}
	raw := os.Getenv(EnvSpryngRecipients)
	if raw == "" {
		return nil, fmt.Errorf("alerting[%s]: spryng medium requires %s", name, EnvSpryngRecipients)
	}

	var recipients []string
	for _, recipient := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(recipient); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}

	client := cleanhttp.DefaultClient()
	client.Timeout = 5 * time.Second

	return &SpryngAlerter{
		name:       name,
		token:      token,
		recipients: recipients,
		apiURL:     spryngAPIURL,
		client:     client,
	}, nil
}

func (s *SpryngAlerter) Name() string { return s.name }

func (s *SpryngAlerter) Dispatch(inc *Incident) error {
	payload, err := json.Marshal(map[string]interface{}{
		"body":       inc.Message,
		"encoding":   "auto",
		"originator": "watchdog",
		"recipients": s.recipients,
		"route":      "business",
	})
	if err != nil {
		return fmt.Errorf("spryng payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("spryng request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("spryng send failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("spryng send failed: status %d", resp.StatusCode)
	}
	return nil
}
