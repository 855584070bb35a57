package model

// OutreachEmail is a single generated cold email. Icebreaker and CTA
// are kept apart from the body so sequencing tools can slot them into
// separate template variables.
type OutreachEmail struct {
	Subject    string `json:"subject"`
	Icebreaker string `json:"icebreaker,omitempty"`
	Body       string `json:"body"`
	CTAText    string `json:"cta_text,omitempty"`
	CTALink    string `json:"cta_link,omitempty"`
}

// OutreachSequence is the three-email sequence generated for one contact.
type OutreachSequence struct {
	ContactID int64           `json:"contact_id"`
	Emails    []OutreachEmail `json:"emails"`
	Tokens    int             `json:"tokens,omitempty"`
	CostUSD   float64         `json:"cost_usd,omitempty"`
}
