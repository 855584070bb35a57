package model

import (
	"strings"
	"time"
)

// Contact represents a single person at an organization.
type Contact struct {
	ID             int64            `json:"contact_id"`
	OrgID          int64            `json:"org_id"`
	Name           string           `json:"contact_name"`
	RoleTitle      string           `json:"role_title,omitempty"`
	Email          string           `json:"contact_email,omitempty"`
	PredictedEmail string           `json:"predicted_email,omitempty"`
	Status         ValidationStatus `json:"email_validation_status,omitempty"`
	Score          int              `json:"email_validation_score,omitempty"`
	Provider       string           `json:"email_validation_provider,omitempty"`
	ValidatedAt    *time.Time       `json:"email_validation_timestamp,omitempty"`
	LastEnrichedAt *time.Time       `json:"last_enriched_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`

	// Joined organization fields, populated by selector queries.
	CompanyName string `json:"company_name,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`
}

// HasValidatedEmail reports whether the contact already carries an email
// that passed validation.
func (c Contact) HasValidatedEmail() bool {
	return c.Email != "" && c.Status == StatusValid
}

// FirstName returns the first whitespace-separated token of the contact
// name, or "" for an empty name.
func (c Contact) FirstName() string {
	parts := strings.Fields(c.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
