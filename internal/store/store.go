// Package store persists organizations, contacts, and catch-all
// migration records. Two backends are provided: Postgres for the shared
// lead database and SQLite for local single-user runs.
package store

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Counts summarizes the state of the lead database for status reporting.
type Counts struct {
	Organizations int64
	Contacts      int64
	Validated     int64
	Catchall      int64
	ByStatus      map[string]int64
}

// Store is the persistence interface shared by the Postgres and SQLite
// backends. All methods are safe for concurrent use.
type Store interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Migrate creates the schema and tables if they do not exist.
	Migrate(ctx context.Context) error

	// SelectUnvalidated returns at most limit contacts lacking a
	// validated email, one per organization. Ordering is stable
	// (org id, then contact id) so limit/offset paging is repeatable.
	SelectUnvalidated(ctx context.Context, limit, offset int) ([]model.Contact, error)

	// GetContact loads a single contact with its organization fields.
	GetContact(ctx context.Context, contactID int64) (*model.Contact, error)

	// SaveValidatedEmail records a deliverable address on the contact
	// and stamps it valid.
	SaveValidatedEmail(ctx context.Context, contactID int64, email string, score int, provider string) error

	// UpdateValidationStatus records a validation outcome without
	// changing the stored address.
	UpdateValidationStatus(ctx context.Context, contactID int64, status model.ValidationStatus, score int, provider string) error

	// MigrateToCatchall moves a contact into the catch-all table and
	// removes it from contacts. Both writes happen in one transaction:
	// either the record lands and the contact is gone, or neither.
	MigrateToCatchall(ctx context.Context, rec model.CatchallRecord) error

	// UpsertOrganizations inserts or updates organizations keyed on
	// website domain, returning the number of rows written.
	UpsertOrganizations(ctx context.Context, orgs []model.Organization) (int64, error)

	// InsertContacts bulk-inserts contacts, returning rows written.
	InsertContacts(ctx context.Context, contacts []model.Contact) (int64, error)

	// UpsertContact inserts a contact or, when one already exists for
	// the same organization and name, fills in its role and email
	// without clearing fields the new record leaves blank.
	UpsertContact(ctx context.Context, c model.Contact) error

	// FindOrgID resolves an organization by website URL, falling back
	// to company name when the website is empty.
	FindOrgID(ctx context.Context, companyName, websiteURL string) (int64, error)

	// ListOrganizations pages through organizations for enrichment.
	ListOrganizations(ctx context.Context, limit, offset int) ([]model.Organization, error)

	// SaveEnrichment applies enriched business data to an organization
	// and stamps the enrichment time on its contacts.
	SaveEnrichment(ctx context.Context, orgID int64, data model.BusinessData) error

	// ListContactsForExport returns contacts joined with organization
	// fields, optionally restricted to validated emails.
	ListContactsForExport(ctx context.Context, validatedOnly bool) ([]model.Contact, error)

	// Counts reports table sizes and the validation status breakdown.
	Counts(ctx context.Context) (*Counts, error)

	// Close releases the underlying connections.
	Close() error
}
