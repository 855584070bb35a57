package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/db"
	"github.com/sells-group/outreach-cli/internal/model"
)

// PostgresStore implements Store using pgxpool. All tables live in a
// dedicated schema (default "leads") so the lead pipeline can share a
// database with other tools.
type PostgresStore struct {
	pool    db.Pool
	schema  string
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString, schema string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	if schema == "" {
		schema = "leads"
	}
	return &PostgresStore{pool: pool, schema: schema, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for use by subsystems that
// need direct bulk-load access (e.g., the CSV importer).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

// Schema returns the schema name the store was configured with.
func (s *PostgresStore) Schema() string {
	return s.schema
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.organizations (
	org_id       BIGSERIAL PRIMARY KEY,
	company_name TEXT NOT NULL,
	website_url  TEXT UNIQUE,
	company_phone TEXT,
	full_address TEXT,
	city         TEXT,
	state        TEXT,
	zip_code     TEXT,
	country      TEXT,
	categories   TEXT,
	description  TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS %[1]s.contacts (
	contact_id                 BIGSERIAL PRIMARY KEY,
	org_id                     BIGINT NOT NULL REFERENCES %[1]s.organizations(org_id),
	contact_name               TEXT NOT NULL,
	role_title                 TEXT,
	contact_email              TEXT,
	predicted_email            TEXT,
	email_validation_status    TEXT,
	email_validation_score     INTEGER,
	email_validation_provider  TEXT,
	email_validation_timestamp TIMESTAMPTZ,
	last_enriched_at           TIMESTAMPTZ,
	created_at                 TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS %[1]s.catchall_contacts (
	catchall_id      BIGSERIAL PRIMARY KEY,
	contact_id       BIGINT NOT NULL,
	org_id           BIGINT NOT NULL,
	contact_name     TEXT NOT NULL,
	role_title       TEXT,
	company_name     TEXT NOT NULL,
	website_url      TEXT,
	attempted_emails TEXT[] NOT NULL DEFAULT '{}',
	attempted_count  INTEGER NOT NULL DEFAULT 0,
	reason           TEXT NOT NULL,
	moved_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contacts_org_id ON %[1]s.contacts(org_id);
CREATE INDEX IF NOT EXISTS idx_contacts_validation_status ON %[1]s.contacts(email_validation_status);
CREATE INDEX IF NOT EXISTS idx_catchall_org_id ON %[1]s.catchall_contacts(org_id);
CREATE INDEX IF NOT EXISTS idx_organizations_website ON %[1]s.organizations(website_url);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(postgresMigration, s.schema))
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// contactColumns is the shared select list for contact queries joined
// with their organization.
const contactColumns = `c.contact_id, c.org_id, c.contact_name,
	COALESCE(c.role_title, ''), COALESCE(c.contact_email, ''),
	COALESCE(c.predicted_email, ''), COALESCE(c.email_validation_status, ''),
	COALESCE(c.email_validation_score, 0), COALESCE(c.email_validation_provider, ''),
	c.email_validation_timestamp, c.last_enriched_at, c.created_at,
	o.company_name, COALESCE(o.website_url, '')`

func (s *PostgresStore) SelectUnvalidated(ctx context.Context, limit, offset int) ([]model.Contact, error) {
	if limit <= 0 {
		limit = 50
	}

	// One contact per organization: DISTINCT ON picks the lowest
	// contact_id for each org, and the outer ordering keeps paging
	// stable across runs.
	query := fmt.Sprintf(`SELECT DISTINCT ON (c.org_id) %s
		FROM %[2]s.contacts c
		JOIN %[2]s.organizations o ON o.org_id = c.org_id
		WHERE c.contact_email IS NULL
		   OR c.contact_email IN ('', 'None')
		   OR c.email_validation_status IS DISTINCT FROM 'valid'
		ORDER BY c.org_id, c.contact_id
		LIMIT $1 OFFSET $2`, contactColumns, s.schema)

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: select unvalidated")
	}
	defer rows.Close()

	return scanContacts(rows)
}

func (s *PostgresStore) GetContact(ctx context.Context, contactID int64) (*model.Contact, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM %[2]s.contacts c
		JOIN %[2]s.organizations o ON o.org_id = c.org_id
		WHERE c.contact_id = $1`, contactColumns, s.schema)

	c, err := scanContact(s.pool.QueryRow(ctx, query, contactID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("contact not found: %d", contactID)
		}
		return nil, eris.Wrapf(err, "postgres: get contact %d", contactID)
	}
	return c, nil
}

func (s *PostgresStore) SaveValidatedEmail(ctx context.Context, contactID int64, email string, score int, provider string) error {
	query := fmt.Sprintf(`UPDATE %s.contacts
		SET contact_email = $1,
		    email_validation_status = $2,
		    email_validation_score = $3,
		    email_validation_provider = $4,
		    email_validation_timestamp = now()
		WHERE contact_id = $5`, s.schema)

	tag, err := s.pool.Exec(ctx, query, email, string(model.StatusValid), score, provider, contactID)
	if err != nil {
		return eris.Wrapf(err, "postgres: save validated email for contact %d", contactID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("contact not found: %d", contactID)
	}
	return nil
}

func (s *PostgresStore) UpdateValidationStatus(ctx context.Context, contactID int64, status model.ValidationStatus, score int, provider string) error {
	query := fmt.Sprintf(`UPDATE %s.contacts
		SET email_validation_status = $1,
		    email_validation_score = $2,
		    email_validation_provider = $3,
		    email_validation_timestamp = now()
		WHERE contact_id = $4`, s.schema)

	tag, err := s.pool.Exec(ctx, query, string(status), score, provider, contactID)
	if err != nil {
		return eris.Wrapf(err, "postgres: update validation status for contact %d", contactID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("contact not found: %d", contactID)
	}
	return nil
}

func (s *PostgresStore) MigrateToCatchall(ctx context.Context, rec model.CatchallRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: migrate to catchall: begin tx")
	}
	defer tx.Rollback(ctx)

	insertSQL := fmt.Sprintf(`INSERT INTO %s.catchall_contacts
		(contact_id, org_id, contact_name, role_title, company_name, website_url,
		 attempted_emails, attempted_count, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, s.schema)

	_, err = tx.Exec(ctx, insertSQL,
		rec.ContactID, rec.OrgID, rec.ContactName, rec.RoleTitle,
		rec.CompanyName, rec.WebsiteURL, rec.AttemptedEmails,
		rec.AttemptedCount, rec.Reason,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert catchall record for contact %d", rec.ContactID)
	}

	deleteSQL := fmt.Sprintf(`DELETE FROM %s.contacts WHERE contact_id = $1`, s.schema)
	tag, err := tx.Exec(ctx, deleteSQL, rec.ContactID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete migrated contact %d", rec.ContactID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("contact not found: %d", rec.ContactID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: migrate to catchall: commit tx")
}

func (s *PostgresStore) UpsertOrganizations(ctx context.Context, orgs []model.Organization) (int64, error) {
	// Organizations with a website key on the unique index. Websiteless
	// ones would all share a '' conflict key (and NULLs never conflict),
	// so they resolve by company name against other websiteless rows.
	var withSite [][]any
	var noSite []model.Organization
	for _, o := range orgs {
		if o.WebsiteURL == "" {
			noSite = append(noSite, o)
			continue
		}
		withSite = append(withSite, []any{
			o.CompanyName, o.WebsiteURL, o.Phone, o.Address,
			o.City, o.State, o.ZipCode, o.Country,
			o.Categories, o.Description,
		})
	}

	var n int64
	if len(withSite) > 0 {
		m, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
			Table: s.schema + ".organizations",
			Columns: []string{
				"company_name", "website_url", "company_phone", "full_address",
				"city", "state", "zip_code", "country", "categories", "description",
			},
			ConflictKeys: []string{"website_url"},
		}, withSite)
		if err != nil {
			return n, eris.Wrap(err, "postgres: upsert organizations")
		}
		n += m
	}

	for _, o := range noSite {
		if err := s.upsertOrgByName(ctx, o); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *PostgresStore) upsertOrgByName(ctx context.Context, o model.Organization) error {
	updateSQL := fmt.Sprintf(`UPDATE %s.organizations SET
		company_phone = $2, full_address = $3, city = $4, state = $5,
		zip_code = $6, country = $7, categories = $8, description = $9
		WHERE website_url IS NULL AND company_name = $1`, s.schema)
	tag, err := s.pool.Exec(ctx, updateSQL, o.CompanyName, o.Phone, o.Address,
		o.City, o.State, o.ZipCode, o.Country, o.Categories, o.Description)
	if err != nil {
		return eris.Wrapf(err, "postgres: update organization %s", o.CompanyName)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	insertSQL := fmt.Sprintf(`INSERT INTO %s.organizations
		(company_name, company_phone, full_address, city, state, zip_code,
		 country, categories, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, s.schema)
	_, err = s.pool.Exec(ctx, insertSQL, o.CompanyName, o.Phone, o.Address,
		o.City, o.State, o.ZipCode, o.Country, o.Categories, o.Description)
	return eris.Wrapf(err, "postgres: insert organization %s", o.CompanyName)
}

func (s *PostgresStore) InsertContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	rows := make([][]any, 0, len(contacts))
	for _, c := range contacts {
		var email any
		if c.Email != "" {
			email = c.Email
		}
		rows = append(rows, []any{c.OrgID, c.Name, c.RoleTitle, email})
	}

	n, err := db.CopyFromSchema(ctx, s.pool, s.schema, "contacts",
		[]string{"org_id", "contact_name", "role_title", "contact_email"}, rows)
	return n, eris.Wrap(err, "postgres: insert contacts")
}

func (s *PostgresStore) UpsertContact(ctx context.Context, c model.Contact) error {
	updateSQL := fmt.Sprintf(`UPDATE %s.contacts SET
		role_title = COALESCE(NULLIF($3, ''), role_title),
		contact_email = COALESCE(NULLIF($4, ''), contact_email)
		WHERE org_id = $1 AND contact_name = $2`, s.schema)
	tag, err := s.pool.Exec(ctx, updateSQL, c.OrgID, c.Name, c.RoleTitle, c.Email)
	if err != nil {
		return eris.Wrapf(err, "postgres: update contact %s", c.Name)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	insertSQL := fmt.Sprintf(`INSERT INTO %s.contacts
		(org_id, contact_name, role_title, contact_email)
		VALUES ($1, $2, $3, NULLIF($4, ''))`, s.schema)
	_, err = s.pool.Exec(ctx, insertSQL, c.OrgID, c.Name, c.RoleTitle, c.Email)
	return eris.Wrapf(err, "postgres: insert contact %s", c.Name)
}

func (s *PostgresStore) FindOrgID(ctx context.Context, companyName, websiteURL string) (int64, error) {
	query := fmt.Sprintf(`SELECT org_id FROM %s.organizations
		WHERE ($2 <> '' AND website_url = $2)
		   OR ($2 = '' AND company_name = $1)
		ORDER BY org_id
		LIMIT 1`, s.schema)

	var id int64
	err := s.pool.QueryRow(ctx, query, companyName, websiteURL).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, eris.Errorf("organization not found: %s", companyName)
	}
	if err != nil {
		return 0, eris.Wrap(err, "postgres: find organization")
	}
	return id, nil
}

func (s *PostgresStore) ListOrganizations(ctx context.Context, limit, offset int) ([]model.Organization, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT org_id, company_name, COALESCE(website_url, ''),
		COALESCE(company_phone, ''), COALESCE(full_address, ''), COALESCE(city, ''),
		COALESCE(state, ''), COALESCE(zip_code, ''), COALESCE(country, ''),
		COALESCE(categories, ''), COALESCE(description, ''), created_at
		FROM %s.organizations
		ORDER BY org_id
		LIMIT $1 OFFSET $2`, s.schema)

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list organizations")
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.CompanyName, &o.WebsiteURL, &o.Phone,
			&o.Address, &o.City, &o.State, &o.ZipCode, &o.Country,
			&o.Categories, &o.Description, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan organization")
		}
		orgs = append(orgs, o)
	}
	return orgs, eris.Wrap(rows.Err(), "postgres: list organizations iterate")
}

func (s *PostgresStore) SaveEnrichment(ctx context.Context, orgID int64, data model.BusinessData) error {
	query := fmt.Sprintf(`UPDATE %s.organizations
		SET company_phone = COALESCE(NULLIF($1, ''), company_phone),
		    full_address = COALESCE(NULLIF($2, ''), full_address)
		WHERE org_id = $3`, s.schema)

	tag, err := s.pool.Exec(ctx, query, data.Phone, data.Address, orgID)
	if err != nil {
		return eris.Wrapf(err, "postgres: save enrichment for org %d", orgID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("organization not found: %d", orgID)
	}

	stamp := fmt.Sprintf(`UPDATE %s.contacts SET last_enriched_at = now() WHERE org_id = $1`, s.schema)
	_, err = s.pool.Exec(ctx, stamp, orgID)
	return eris.Wrapf(err, "postgres: stamp enrichment for org %d", orgID)
}

func (s *PostgresStore) ListContactsForExport(ctx context.Context, validatedOnly bool) ([]model.Contact, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM %[2]s.contacts c
		JOIN %[2]s.organizations o ON o.org_id = c.org_id`, contactColumns, s.schema)
	if validatedOnly {
		query += ` WHERE c.email_validation_status = 'valid'`
	}
	query += ` ORDER BY c.org_id, c.contact_id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts for export")
	}
	defer rows.Close()

	return scanContacts(rows)
}

func (s *PostgresStore) Counts(ctx context.Context) (*Counts, error) {
	query := fmt.Sprintf(`SELECT
		(SELECT COUNT(*) FROM %[1]s.organizations),
		(SELECT COUNT(*) FROM %[1]s.contacts),
		(SELECT COUNT(*) FROM %[1]s.contacts WHERE email_validation_status = 'valid'),
		(SELECT COUNT(*) FROM %[1]s.catchall_contacts)`, s.schema)

	c := &Counts{ByStatus: map[string]int64{}}
	err := s.pool.QueryRow(ctx, query).Scan(&c.Organizations, &c.Contacts, &c.Validated, &c.Catchall)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: counts")
	}

	breakdown := fmt.Sprintf(`SELECT COALESCE(email_validation_status, 'unvalidated'), COUNT(*)
		FROM %s.contacts
		GROUP BY 1
		ORDER BY 2 DESC`, s.schema)

	rows, err := s.pool.Query(ctx, breakdown)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: status breakdown")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status breakdown")
		}
		if status == "" {
			status = "unvalidated"
		}
		c.ByStatus[status] = n
	}
	return c, eris.Wrap(rows.Err(), "postgres: status breakdown iterate")
}

// scanContact reads one joined contact row.
func scanContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	var status string
	err := row.Scan(&c.ID, &c.OrgID, &c.Name, &c.RoleTitle, &c.Email,
		&c.PredictedEmail, &status, &c.Score, &c.Provider,
		&c.ValidatedAt, &c.LastEnrichedAt, &c.CreatedAt,
		&c.CompanyName, &c.WebsiteURL)
	if err != nil {
		return nil, err
	}
	c.Status = model.ValidationStatus(status)
	return &c, nil
}

func scanContacts(rows pgx.Rows) ([]model.Contact, error) {
	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: iterate contacts")
}
