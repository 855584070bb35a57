package model

// LeadershipContact is one person found by the leadership research prompt.
type LeadershipContact struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Email string `json:"email,omitempty"`
}

// BusinessData holds business fields discovered while researching an
// organization that was missing them.
type BusinessData struct {
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DefaultEmail string `json:"default_email,omitempty"`
}

// EnrichmentResult is the parsed output of one leadership research query.
type EnrichmentResult struct {
	OrgID       int64               `json:"org_id"`
	Leadership  []LeadershipContact `json:"leadership_contacts"`
	Business    BusinessData        `json:"missing_business_data"`
	QueryTokens int                 `json:"query_tokens,omitempty"`
	CostUSD     float64             `json:"cost_usd,omitempty"`
}
