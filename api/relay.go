package api

import (
	"fmt"
	"net/url"
)

const (
	// StatusOK marks a group cycle where every test succeeded.
	StatusOK = "ok"

	// StatusFail marks a group cycle with at least one failing test.
	StatusFail = "fail"
)

// GroupResult is one aggregated group cycle outcome pushed by a
// relay.
type GroupResult struct {
	Group  string `json:"group"`
	Status string `json:"status"`
}

// PushRequest is the body of POST /api/v1/relay/{region}.
type PushRequest struct {
	Results []*GroupResult `json:"results"`
}

// PushResults delivers a batch of group cycle outcomes for a region.
func (c *Client) PushResults(region string, results []*GroupResult) error {
	if region == "" {
		return fmt.Errorf("missing region name")
	}
	endpoint := "/api/v1/relay/" + url.PathEscape(region)
	return c.write(endpoint, &PushRequest{Results: results}, nil)
}
