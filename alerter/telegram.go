package alerter

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

const (
	// EnvTelegramToken holds the Telegram bot token.
	EnvTelegramToken = "TELEGRAM_TOKEN"

	// EnvTelegramChat holds the target chat identifier.
	EnvTelegramChat = "TELEGRAM_CHAT"

	telegramAPIBase = "https://api.telegram.org"
)

// TelegramAlerter delivers incidents to a Telegram chat through the
// bot API.
type TelegramAlerter struct {
	name    string
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

func NewTelegramAlerter(name string) (*TelegramAlerter, error) {
	token := os.Getenv(EnvTelegramToken)
	if token == "" {
		return nil, fmt.Errorf("alerting[%s]: telegram medium requires %s", name, EnvTelegramToken)
	}
	chatID := os.Getenv(EnvTelegramChat)
	if chatID == "" {
		return nil, fmt.Errorf("alerting[%s]: telegram medium requires %s", name, EnvTelegramChat)
	}

	client := cleanhttp.DefaultClient()
	client.Timeout = 5 * time.Second

	return &TelegramAlerter{
		name:    name,
		token:   token,
		chatID:  chatID,
		baseURL: telegramAPIBase,
		client:  client,
	}, nil
}

func (t *TelegramAlerter) Name() string { return t.name }

func (t *TelegramAlerter) Dispatch(inc *Incident) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage?chat_id=%s&text=%s",
		t.baseURL, t.token, url.QueryEscape(t.chatID), url.QueryEscape(inc.Message))

	resp, err := t.client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram send failed: status %d", resp.StatusCode)
	}
	return nil
}
