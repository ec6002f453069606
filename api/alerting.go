package api

// AlertingTest asks the server to fire one test alert per configured
// medium.
func (c *Client) AlertingTest() error {
	return c.write("/api/v1/alerting/test", nil, nil)
}
