package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite for local runs
// without a shared Postgres. Attempted email lists are stored as JSON
// text since SQLite has no array type.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	org_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	company_name  TEXT NOT NULL,
	website_url   TEXT UNIQUE,
	company_phone TEXT,
	full_address  TEXT,
	city          TEXT,
	state         TEXT,
	zip_code      TEXT,
	country       TEXT,
	categories    TEXT,
	description   TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS contacts (
	contact_id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	org_id                     INTEGER NOT NULL REFERENCES organizations(org_id),
	contact_name               TEXT NOT NULL,
	role_title                 TEXT,
	contact_email              TEXT,
	predicted_email            TEXT,
	email_validation_status    TEXT,
	email_validation_score     INTEGER,
	email_validation_provider  TEXT,
	email_validation_timestamp DATETIME,
	last_enriched_at           DATETIME,
	created_at                 DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS catchall_contacts (
	catchall_id      INTEGER PRIMARY KEY AUTOINCREMENT,
	contact_id       INTEGER NOT NULL,
	org_id           INTEGER NOT NULL,
	contact_name     TEXT NOT NULL,
	role_title       TEXT,
	company_name     TEXT NOT NULL,
	website_url      TEXT,
	attempted_emails TEXT NOT NULL DEFAULT '[]',
	attempted_count  INTEGER NOT NULL DEFAULT 0,
	reason           TEXT NOT NULL,
	moved_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_contacts_org_id ON contacts(org_id);
CREATE INDEX IF NOT EXISTS idx_contacts_validation_status ON contacts(email_validation_status);
CREATE INDEX IF NOT EXISTS idx_catchall_org_id ON catchall_contacts(org_id);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteContactColumns = `c.contact_id, c.org_id, c.contact_name,
	COALESCE(c.role_title, ''), COALESCE(c.contact_email, ''),
	COALESCE(c.predicted_email, ''), COALESCE(c.email_validation_status, ''),
	COALESCE(c.email_validation_score, 0), COALESCE(c.email_validation_provider, ''),
	c.email_validation_timestamp, c.last_enriched_at, c.created_at,
	o.company_name, COALESCE(o.website_url, '')`

// sqliteUnvalidated is the contact filter shared by the selector query
// and its one-per-organization subquery.
const sqliteUnvalidated = `(contact_email IS NULL
	OR contact_email IN ('', 'None')
	OR email_validation_status IS NULL
	OR email_validation_status <> 'valid')`

func (s *SQLiteStore) SelectUnvalidated(ctx context.Context, limit, offset int) ([]model.Contact, error) {
	if limit <= 0 {
		limit = 50
	}

	// SQLite has no DISTINCT ON; the subquery picks the lowest
	// contact id per organization instead.
	query := fmt.Sprintf(`SELECT %s
		FROM contacts c
		JOIN organizations o ON o.org_id = c.org_id
		WHERE c.contact_id IN (
			SELECT MIN(contact_id) FROM contacts
			WHERE %s
			GROUP BY org_id
		)
		ORDER BY c.org_id, c.contact_id
		LIMIT ? OFFSET ?`, sqliteContactColumns, sqliteUnvalidated)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select unvalidated")
	}
	defer rows.Close()

	return scanSQLiteContacts(rows)
}

func (s *SQLiteStore) GetContact(ctx context.Context, contactID int64) (*model.Contact, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM contacts c
		JOIN organizations o ON o.org_id = c.org_id
		WHERE c.contact_id = ?`, sqliteContactColumns)

	c, err := scanSQLiteContact(s.db.QueryRowContext(ctx, query, contactID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("contact not found: %d", contactID)
		}
		return nil, eris.Wrapf(err, "sqlite: get contact %d", contactID)
	}
	return c, nil
}

func (s *SQLiteStore) SaveValidatedEmail(ctx context.Context, contactID int64, email string, score int, provider string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts
		 SET contact_email = ?, email_validation_status = ?,
		     email_validation_score = ?, email_validation_provider = ?,
		     email_validation_timestamp = datetime('now')
		 WHERE contact_id = ?`,
		email, string(model.StatusValid), score, provider, contactID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save validated email for contact %d", contactID)
	}
	return checkRowsAffected(res, "contact", contactID)
}

func (s *SQLiteStore) UpdateValidationStatus(ctx context.Context, contactID int64, status model.ValidationStatus, score int, provider string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts
		 SET email_validation_status = ?, email_validation_score = ?,
		     email_validation_provider = ?, email_validation_timestamp = datetime('now')
		 WHERE contact_id = ?`,
		string(status), score, provider, contactID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update validation status for contact %d", contactID)
	}
	return checkRowsAffected(res, "contact", contactID)
}

func (s *SQLiteStore) MigrateToCatchall(ctx context.Context, rec model.CatchallRecord) error {
	attempted, err := json.Marshal(rec.AttemptedEmails)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal attempted emails")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: migrate to catchall: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO catchall_contacts
		 (contact_id, org_id, contact_name, role_title, company_name, website_url,
		  attempted_emails, attempted_count, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ContactID, rec.OrgID, rec.ContactName, rec.RoleTitle,
		rec.CompanyName, rec.WebsiteURL, string(attempted),
		rec.AttemptedCount, rec.Reason,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert catchall record for contact %d", rec.ContactID)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE contact_id = ?`, rec.ContactID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete migrated contact %d", rec.ContactID)
	}
	if err := checkRowsAffected(res, "contact", rec.ContactID); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: migrate to catchall: commit tx")
}

func (s *SQLiteStore) UpsertOrganizations(ctx context.Context, orgs []model.Organization) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert organizations: begin tx")
	}
	defer tx.Rollback()

	// Organizations with a website key on the unique index. Websiteless
	// ones must not share a conflict key, so they resolve by company
	// name against other websiteless rows instead.
	siteStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO organizations
		 (company_name, website_url, company_phone, full_address, city, state,
		  zip_code, country, categories, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (website_url) DO UPDATE SET
		   company_name = excluded.company_name,
		   company_phone = excluded.company_phone,
		   full_address = excluded.full_address,
		   city = excluded.city,
		   state = excluded.state,
		   zip_code = excluded.zip_code,
		   country = excluded.country,
		   categories = excluded.categories,
		   description = excluded.description`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert organizations: prepare")
	}
	defer siteStmt.Close()

	updStmt, err := tx.PrepareContext(ctx,
		`UPDATE organizations SET
		   company_phone = ?, full_address = ?, city = ?, state = ?,
		   zip_code = ?, country = ?, categories = ?, description = ?
		 WHERE website_url IS NULL AND company_name = ?`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert organizations: prepare update")
	}
	defer updStmt.Close()

	insStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO organizations
		 (company_name, website_url, company_phone, full_address, city, state,
		  zip_code, country, categories, description)
		 VALUES (?, NULL, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert organizations: prepare insert")
	}
	defer insStmt.Close()

	var n int64
	for _, o := range orgs {
		if o.WebsiteURL != "" {
			if _, err := siteStmt.ExecContext(ctx, o.CompanyName, o.WebsiteURL, o.Phone,
				o.Address, o.City, o.State, o.ZipCode, o.Country,
				o.Categories, o.Description); err != nil {
				return 0, eris.Wrapf(err, "sqlite: upsert organization %s", o.CompanyName)
			}
			n++
			continue
		}

		res, err := updStmt.ExecContext(ctx, o.Phone, o.Address, o.City, o.State,
			o.ZipCode, o.Country, o.Categories, o.Description, o.CompanyName)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: update organization %s", o.CompanyName)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: update organization %s", o.CompanyName)
		}
		if rows == 0 {
			if _, err := insStmt.ExecContext(ctx, o.CompanyName, o.Phone, o.Address,
				o.City, o.State, o.ZipCode, o.Country,
				o.Categories, o.Description); err != nil {
				return 0, eris.Wrapf(err, "sqlite: insert organization %s", o.CompanyName)
			}
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: upsert organizations: commit tx")
}

func (s *SQLiteStore) InsertContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert contacts: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO contacts (org_id, contact_name, role_title, contact_email)
		 VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert contacts: prepare")
	}
	defer stmt.Close()

	var n int64
	for _, c := range contacts {
		var email any
		if c.Email != "" {
			email = c.Email
		}
		if _, err := stmt.ExecContext(ctx, c.OrgID, c.Name, c.RoleTitle, email); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert contact %s", c.Name)
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: insert contacts: commit tx")
}

func (s *SQLiteStore) UpsertContact(ctx context.Context, c model.Contact) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET
		   role_title = COALESCE(NULLIF(?, ''), role_title),
		   contact_email = COALESCE(NULLIF(?, ''), contact_email)
		 WHERE org_id = ? AND contact_name = ?`,
		c.RoleTitle, c.Email, c.OrgID, c.Name)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contact %s", c.Name)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contact %s", c.Name)
	}
	if rows > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (org_id, contact_name, role_title, contact_email)
		 VALUES (?, ?, ?, NULLIF(?, ''))`,
		c.OrgID, c.Name, c.RoleTitle, c.Email)
	return eris.Wrapf(err, "sqlite: insert contact %s", c.Name)
}

func (s *SQLiteStore) FindOrgID(ctx context.Context, companyName, websiteURL string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT org_id FROM organizations
		 WHERE (? <> '' AND website_url = ?)
		    OR (? = '' AND company_name = ?)
		 ORDER BY org_id
		 LIMIT 1`,
		websiteURL, websiteURL, websiteURL, companyName,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, eris.Errorf("organization not found: %s", companyName)
	}
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: find organization")
	}
	return id, nil
}

func (s *SQLiteStore) ListOrganizations(ctx context.Context, limit, offset int) ([]model.Organization, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT org_id, company_name, COALESCE(website_url, ''),
		 COALESCE(company_phone, ''), COALESCE(full_address, ''), COALESCE(city, ''),
		 COALESCE(state, ''), COALESCE(zip_code, ''), COALESCE(country, ''),
		 COALESCE(categories, ''), COALESCE(description, ''), created_at
		 FROM organizations
		 ORDER BY org_id
		 LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list organizations")
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.CompanyName, &o.WebsiteURL, &o.Phone,
			&o.Address, &o.City, &o.State, &o.ZipCode, &o.Country,
			&o.Categories, &o.Description, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan organization")
		}
		orgs = append(orgs, o)
	}
	return orgs, eris.Wrap(rows.Err(), "sqlite: list organizations iterate")
}

func (s *SQLiteStore) SaveEnrichment(ctx context.Context, orgID int64, data model.BusinessData) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations
		 SET company_phone = COALESCE(NULLIF(?, ''), company_phone),
		     full_address = COALESCE(NULLIF(?, ''), full_address)
		 WHERE org_id = ?`,
		data.Phone, data.Address, orgID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save enrichment for org %d", orgID)
	}
	if err := checkRowsAffected(res, "organization", orgID); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE contacts SET last_enriched_at = datetime('now') WHERE org_id = ?`, orgID)
	return eris.Wrapf(err, "sqlite: stamp enrichment for org %d", orgID)
}

func (s *SQLiteStore) ListContactsForExport(ctx context.Context, validatedOnly bool) ([]model.Contact, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM contacts c
		JOIN organizations o ON o.org_id = c.org_id`, sqliteContactColumns)
	if validatedOnly {
		query += ` WHERE c.email_validation_status = 'valid'`
	}
	query += ` ORDER BY c.org_id, c.contact_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts for export")
	}
	defer rows.Close()

	return scanSQLiteContacts(rows)
}

func (s *SQLiteStore) Counts(ctx context.Context) (*Counts, error) {
	c := &Counts{ByStatus: map[string]int64{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT
		 (SELECT COUNT(*) FROM organizations),
		 (SELECT COUNT(*) FROM contacts),
		 (SELECT COUNT(*) FROM contacts WHERE email_validation_status = 'valid'),
		 (SELECT COUNT(*) FROM catchall_contacts)`,
	).Scan(&c.Organizations, &c.Contacts, &c.Validated, &c.Catchall)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: counts")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(NULLIF(email_validation_status, ''), 'unvalidated'), COUNT(*)
		 FROM contacts
		 GROUP BY 1
		 ORDER BY 2 DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: status breakdown")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status breakdown")
		}
		c.ByStatus[status] = n
	}
	return c, eris.Wrap(rows.Err(), "sqlite: status breakdown iterate")
}

type sqliteRow interface {
	Scan(dest ...any) error
}

func scanSQLiteContact(row sqliteRow) (*model.Contact, error) {
	var c model.Contact
	var status string
	var validatedAt, enrichedAt sql.NullTime
	err := row.Scan(&c.ID, &c.OrgID, &c.Name, &c.RoleTitle, &c.Email,
		&c.PredictedEmail, &status, &c.Score, &c.Provider,
		&validatedAt, &enrichedAt, &c.CreatedAt,
		&c.CompanyName, &c.WebsiteURL)
	if err != nil {
		return nil, err
	}
	c.Status = model.ValidationStatus(status)
	if validatedAt.Valid {
		t := validatedAt.Time
		c.ValidatedAt = &t
	}
	if enrichedAt.Valid {
		t := enrichedAt.Time
		c.LastEnrichedAt = &t
	}
	return &c, nil
}

func scanSQLiteContacts(rows *sql.Rows) ([]model.Contact, error) {
	var contacts []model.Contact
	for rows.Next() {
		c, err := scanSQLiteContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: iterate contacts")
}

func checkRowsAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %d", kind, id)
	}
	if n == 0 {
		return eris.Errorf("%s not found: %d", kind, id)
	}
	return nil
}
