// Package api provides the HTTP client for the watchdog server API.
// It is the only way relays and CLI commands talk to the server.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

const (
	// EnvWatchdogAddr names the environment variable that holds the
	// server base URL.
	EnvWatchdogAddr = "WATCHDOG_ADDR"

	// EnvWatchdogToken names the environment variable that holds the
	// shared bearer token.
	EnvWatchdogToken = "WATCHDOG_TOKEN"

	// DefaultAddress is used when WATCHDOG_ADDR is unset.
	DefaultAddress = "http://127.0.0.1:3030"

	// DefaultTimeout bounds every request issued by the client.
	DefaultTimeout = 5 * time.Second
)

// Config is used to configure the creation of a client.
type Config struct {
	// Address is the base URL of the watchdog server.
	Address string

	// Token is the shared bearer token sent on every request.
	Token string

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient is the client to use. A cleanhttp pooled client is
	// used when nil.
	HTTPClient *http.Client
}

// DefaultConfig returns a client configuration picked up from the
// environment.
func DefaultConfig() *Config {
	conf := &Config{
		Address: DefaultAddress,
		Timeout: DefaultTimeout,
	}
	if addr := os.Getenv(EnvWatchdogAddr); addr != "" {
		conf.Address = addr
	}
	if token := os.Getenv(EnvWatchdogToken); token != "" {
		conf.Token = token
	}
	return conf
}

// Client is the watchdog API client.
type Client struct {
	config Config
	client *http.Client
}

// NewClient returns a client for the given configuration.
func NewClient(conf *Config) (*Client, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	if conf.Address == "" {
		return nil, fmt.Errorf("missing server address")
	}
	if _, err := url.Parse(conf.Address); err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", conf.Address, err)
	}

	httpClient := conf.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	httpClient.Timeout = timeout

	return &Client{
		config: *conf,
		client: httpClient,
	}, nil
}

// Address returns the configured server base URL.
func (c *Client) Address() string {
	return c.config.Address
}

// UnexpectedResponseError is returned when the server replies with a
// non-success status code.
type UnexpectedResponseError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected response code %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected response code %d: %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether the error is a 401 from the server.
func IsAuthError(err error) bool {
	respErr, ok := err.(*UnexpectedResponseError)
	return ok && respErr.StatusCode == http.StatusUnauthorized
}

// IsNotFoundError reports whether the error is a 404 from the server.
func IsNotFoundError(err error) bool {
	respErr, ok := err.(*UnexpectedResponseError)
	return ok && respErr.StatusCode == http.StatusNotFound
}

func (c *Client) newRequest(method, endpoint string, body io.Reader) (*http.Request, error) {
	reqURL := strings.TrimSuffix(c.config.Address, "/") + endpoint
	req, err := http.NewRequest(method, reqURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

func (c *Client) doRequest(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UnexpectedResponseError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// query performs a GET against the endpoint and decodes the JSON
// response into out.
func (c *Client) query(endpoint string, out interface{}) error {
	req, err := c.newRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, out)
}

// write performs a POST with a JSON body and optionally decodes the
// response.
func (c *Client) write(endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(req, out)
}
