package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock, schema: "leads"}
	return s, mock
}

func contactRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"contact_id", "org_id", "contact_name", "role_title", "contact_email",
		"predicted_email", "email_validation_status", "email_validation_score",
		"email_validation_provider", "email_validation_timestamp",
		"last_enriched_at", "created_at", "company_name", "website_url",
	})
}

func TestPostgresStore_SelectUnvalidated(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT DISTINCT ON \(c\.org_id\)`).
		WithArgs(50, 0).
		WillReturnRows(contactRows().
			AddRow(int64(101), int64(1), "Jane Doe", "Director", "", "", "", 0, "",
				(*time.Time)(nil), (*time.Time)(nil), created, "Camp Evergreen", "https://campe.org").
			AddRow(int64(205), int64(2), "Sam Reyes", "Owner", "sam@old.example", "", "unknown", 0, "zerobounce",
				(*time.Time)(nil), (*time.Time)(nil), created, "Lakeside Programs", "https://lakeside.org"))

	contacts, err := s.SelectUnvalidated(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, int64(101), contacts[0].ID)
	assert.Equal(t, "Camp Evergreen", contacts[0].CompanyName)
	assert.Equal(t, model.ValidationStatus("unknown"), contacts[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetContact_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`WHERE c\.contact_id = \$1`).
		WithArgs(int64(999)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetContact(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact not found: 999")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveValidatedEmail(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads\.contacts`).
		WithArgs("jdoe@campe.org", "valid", 9, "zerobounce", int64(101)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.SaveValidatedEmail(context.Background(), 101, "jdoe@campe.org", 9, "zerobounce")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveValidatedEmail_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads\.contacts`).
		WithArgs("x@y.org", "valid", 0, "zerobounce", int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SaveValidatedEmail(context.Background(), 404, "x@y.org", 0, "zerobounce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact not found: 404")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MigrateToCatchall_SingleTransaction(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rec := model.CatchallRecord{
		ContactID:       101,
		OrgID:           1,
		ContactName:     "Jane Doe",
		RoleTitle:       "Director",
		CompanyName:     "Camp Evergreen",
		WebsiteURL:      "https://campe.org",
		AttemptedEmails: []string{"jane@campe.org", "doe@campe.org"},
		AttemptedCount:  2,
		Reason:          model.ReasonNoValidEmail,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO leads\.catchall_contacts`).
		WithArgs(int64(101), int64(1), "Jane Doe", "Director", "Camp Evergreen",
			"https://campe.org", rec.AttemptedEmails, 2, "no_valid_email").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM leads\.contacts WHERE contact_id = \$1`).
		WithArgs(int64(101)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := s.MigrateToCatchall(context.Background(), rec)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MigrateToCatchall_RollsBackOnDeleteFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rec := model.NewCatchallRecord(model.Contact{
		ID: 7, OrgID: 3, Name: "Gone Contact", CompanyName: "Acme Camps",
	}, []string{"gone@acme.org"})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO leads\.catchall_contacts`).
		WithArgs(int64(7), int64(3), "Gone Contact", "", "Acme Camps", "",
			rec.AttemptedEmails, 1, "no_valid_email").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM leads\.contacts`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := s.MigrateToCatchall(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact not found: 7")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Counts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads\.organizations`).
		WillReturnRows(pgxmock.NewRows([]string{"orgs", "contacts", "validated", "catchall"}).
			AddRow(int64(120), int64(340), int64(85), int64(40)))
	mock.ExpectQuery(`GROUP BY 1`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("valid", int64(85)).
			AddRow("unvalidated", int64(200)).
			AddRow("catch_all", int64(55)))

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), counts.Organizations)
	assert.Equal(t, int64(85), counts.Validated)
	assert.Equal(t, int64(200), counts.ByStatus["unvalidated"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateValidationStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SET email_validation_status = \$1`).
		WithArgs("catch_all", 4, "zerobounce", int64(55)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateValidationStatus(context.Background(), 55, model.StatusCatchAll, 4, "zerobounce")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindOrgID(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT org_id FROM leads\.organizations`).
		WithArgs("Camp Evergreen", "https://campe.org").
		WillReturnRows(pgxmock.NewRows([]string{"org_id"}).AddRow(int64(7)))

	id, err := s.FindOrgID(context.Background(), "Camp Evergreen", "https://campe.org")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindOrgID_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT org_id FROM leads\.organizations`).
		WithArgs("Nobody", "").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.FindOrgID(context.Background(), "Nobody", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertOrganizations_NoWebsiteByName(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// Websiteless org misses the update and falls through to insert.
	mock.ExpectExec(`UPDATE leads\.organizations SET`).
		WithArgs("Camp Alpha", "", "", "", "", "", "", "", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`INSERT INTO leads\.organizations`).
		WithArgs("Camp Alpha", "", "", "", "", "", "", "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.UpsertOrganizations(context.Background(), []model.Organization{
		{CompanyName: "Camp Alpha"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertContact_UpdatesExisting(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads\.contacts SET`).
		WithArgs(int64(1), "Jane Doe", "Director", "jane@campe.org").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpsertContact(context.Background(), model.Contact{
		OrgID: 1, Name: "Jane Doe", RoleTitle: "Director", Email: "jane@campe.org",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertContact_InsertsWhenMissing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads\.contacts SET`).
		WithArgs(int64(2), "Sam Reyes", "Owner", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`INSERT INTO leads\.contacts`).
		WithArgs(int64(2), "Sam Reyes", "Owner", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertContact(context.Background(), model.Contact{
		OrgID: 2, Name: "Sam Reyes", RoleTitle: "Owner",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
