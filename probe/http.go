package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

// HTTPProbe issues a GET against the target and succeeds on any 2xx
// or 3xx response.
type HTTPProbe struct {
	target string
	client *http.Client
}

// NewHTTPProbe builds an HTTP probe. A target without a scheme is
// probed over plain http.
func NewHTTPProbe(target string) *HTTPProbe {
	client := cleanhttp.DefaultPooledClient()
	// Redirects are followed; only the final status matters.
	return &HTTPProbe{
		target: target,
		client: client,
	}
}

func (p *HTTPProbe) Kind() string   { return "http" }
func (p *HTTPProbe) Target() string { return p.target }

func (p *HTTPProbe) Run(ctx context.Context) error {
	url := p.target
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("http probe %q: %w", p.target, err)
	}
	req.Header.Set("User-Agent", "watchdog-relay")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("http probe %q: %w", p.target, err)
	}
	defer resp.Body.Close()

	// Drain so the connection returns to the pool.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("http probe %q: unexpected status %d", p.target, resp.StatusCode)
	}
	return nil
}
