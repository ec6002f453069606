package api

import (
	"net/url"

	"github.com/kongbytes/watchdog/config"
)

// ConfigResponse is the normalized configuration tree plus its
// content hash, as served by GET /api/v1/config.
type ConfigResponse struct {
	Hash    string           `json:"hash"`
	Regions []*config.Region `json:"regions"`
}

// FetchConfig retrieves the full configuration from the server.
func (c *Client) FetchConfig() (*ConfigResponse, error) {
	var out ConfigResponse
	if err := c.query("/api/v1/config", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchConfigIfChanged retrieves the configuration only when its hash
// differs from the given one. It returns nil when the config is
// unchanged.
func (c *Client) FetchConfigIfChanged(hash string) (*ConfigResponse, error) {
	endpoint := "/api/v1/config"
	if hash != "" {
		endpoint += "?hash=" + url.QueryEscape(hash)
	}

	var out ConfigResponse
	if err := c.query(endpoint, &out); err != nil {
		if respErr, ok := err.(*UnexpectedResponseError); ok && respErr.StatusCode == 304 {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
