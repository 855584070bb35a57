package model

import "time"

// Organization represents a company or program a contact belongs to.
// In the catch-all migration workflow organizations are read-only;
// import and enrichment write them.
type Organization struct {
	ID          int64     `json:"org_id"`
	CompanyName string    `json:"company_name"`
	WebsiteURL  string    `json:"website_url,omitempty"`
	Phone       string    `json:"company_phone,omitempty"`
	Address     string    `json:"full_address,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty"`
	Country     string    `json:"country,omitempty"`
	Categories  string    `json:"categories,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
