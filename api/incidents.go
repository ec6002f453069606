package api

import "net/url"

// IncidentsResponse is the body of GET /api/v1/incidents.
type IncidentsResponse struct {
	Incidents []*IncidentSummary `json:"incidents"`
}

// Incidents retrieves the full incident ledger.
func (c *Client) Incidents() ([]*IncidentSummary, error) {
	var out IncidentsResponse
	if err := c.query("/api/v1/incidents", &out); err != nil {
		return nil, err
	}
	return out.Incidents, nil
}

// Incident retrieves a single ledger entry by ID.
func (c *Client) Incident(id string) (*IncidentSummary, error) {
	var out IncidentSummary
	if err := c.query("/api/v1/incidents/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
