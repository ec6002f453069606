package api

// RegionSummary is the wire form of a region's runtime state.
// Status is one of initial, up, warn, down. LastUpdate is RFC 3339,
// empty when the region was never observed.
type RegionSummary struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	LastUpdate string `json:"last_update,omitempty"`
}

// GroupSummary is the wire form of a group's runtime state. Status is
// one of initial, up, down, incident.
type GroupSummary struct {
	Name       string `json:"name"`
	Region     string `json:"region"`
	Status     string `json:"status"`
	LastUpdate string `json:"last_update,omitempty"`
}

// IncidentSummary is one ledger entry.
type IncidentSummary struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Analytics is the machine-readable state snapshot returned by
// GET /api/v1/analytics.
type Analytics struct {
	Regions   []*RegionSummary   `json:"regions"`
	Groups    []*GroupSummary    `json:"groups"`
	Incidents []*IncidentSummary `json:"incidents"`
}

// StatusResponse is the operator-facing summary returned by
// GET /api/v1/status.
type StatusResponse struct {
	Regions []*RegionSummary `json:"regions"`
	Groups  []*GroupSummary  `json:"groups"`
}

// Analytics retrieves the full state snapshot.
func (c *Client) Analytics() (*Analytics, error) {
	var out Analytics
	if err := c.query("/api/v1/analytics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status retrieves the region and group summaries.
func (c *Client) Status() (*StatusResponse, error) {
	var out StatusResponse
	if err := c.query("/api/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
