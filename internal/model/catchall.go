package model

import "time"

// ReasonNoValidEmail is the fixed reason code recorded when a contact is
// moved to the catch-all table after exhausting every candidate address.
const ReasonNoValidEmail = "no_valid_email"

// CatchallRecord is an append-only snapshot of a contact at the moment it
// was migrated out of the main contact table. Created once, never mutated.
type CatchallRecord struct {
	ID              int64     `json:"catchall_id"`
	ContactID       int64     `json:"contact_id"`
	OrgID           int64     `json:"org_id"`
	ContactName     string    `json:"contact_name"`
	RoleTitle       string    `json:"role_title,omitempty"`
	CompanyName     string    `json:"company_name"`
	WebsiteURL      string    `json:"website_url,omitempty"`
	AttemptedCount  int       `json:"attempted_count"`
	AttemptedEmails []string  `json:"attempted_emails"`
	Reason          string    `json:"reason"`
	MovedAt         time.Time `json:"moved_at"`
}

// NewCatchallRecord builds the migration snapshot for a contact and the
// list of addresses that were tried against it.
func NewCatchallRecord(c Contact, attempted []string) CatchallRecord {
	return CatchallRecord{
		ContactID:       c.ID,
		OrgID:           c.OrgID,
		ContactName:     c.Name,
		RoleTitle:       c.RoleTitle,
		CompanyName:     c.CompanyName,
		WebsiteURL:      c.WebsiteURL,
		AttemptedCount:  len(attempted),
		AttemptedEmails: attempted,
		Reason:          ReasonNoValidEmail,
	}
}
