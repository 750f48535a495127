package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDocumentStore_GetCompanyProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM company_profiles WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"company_name", "employee_count", "locations", "industry"}).
			AddRow("Acme", "500", "{CA,NY}", "Retail"))

	profile, err := store.GetCompanyProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Acme", profile.Name)
	assert.Equal(t, "500", profile.EmployeeCount)
	assert.Equal(t, []string{"CA", "NY"}, profile.Locations)
	assert.Equal(t, "Retail", profile.Industry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStore_GetCompanyProfile_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery("FROM company_profiles").
		WithArgs("user-2").
		WillReturnError(sql.ErrNoRows)

	profile, err := store.GetCompanyProfile(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestDocumentStore_GetCompanyProfile_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery("FROM company_profiles").
		WillReturnError(errors.New("connection reset"))

	_, err := store.GetCompanyProfile(context.Background(), "user-3")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDocumentStoreFailed))
}

func TestDocumentStore_GetAllDocumentTags(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery("FROM documents WHERE user_id = \\$1 ORDER BY name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tag"}).
			AddRow("d1", "2024 Claims.xlsx", "medical claims 2024").
			AddRow("d2", "Survey.pdf", "engagement survey"))

	refs, err := store.GetAllDocumentTags(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []models.DocumentRef{
		{ID: "d1", Name: "2024 Claims.xlsx", Tag: "medical claims 2024"},
		{ID: "d2", Name: "Survey.pdf", Tag: "engagement survey"},
	}, refs)
}

func TestDocumentStore_GetAllDocumentTags_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery("FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tag"}))

	refs, err := store.GetAllDocumentTags(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, refs)
	assert.Empty(t, refs)
}

func TestDocumentStore_GetDocumentsByIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery("id = ANY\\(\\$2\\)").
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"name", "summary"}).
			AddRow("Plan.pdf", "PPO and HDHP options"))

	docs, err := store.GetDocumentsByIDs(context.Background(), "user-1", []string{"d1", "missing"})
	require.NoError(t, err)
	assert.Equal(t, []models.DocumentSummary{{Name: "Plan.pdf", Summary: "PPO and HDHP options"}}, docs)
}

func TestDocumentStore_GetDocumentsByIDs_NoIDsSkipsQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	docs, err := store.GetDocumentsByIDs(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStore_GetDocumentByTag(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery("tag = \\$2").
		WithArgs("user-1", "engagement survey").
		WillReturnRows(sqlmock.NewRows([]string{"name", "summary"}).AddRow("Survey.pdf", "72% satisfied"))
	mock.ExpectQuery("tag = \\$2").
		WithArgs("user-1", "unknown").
		WillReturnError(sql.ErrNoRows)

	doc, err := store.GetDocumentByTag(context.Background(), "user-1", "engagement survey")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "72% satisfied", doc.Summary)

	doc, err = store.GetDocumentByTag(context.Background(), "user-1", "unknown")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDocumentStore_GetAllDocumentSummaries(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, summary FROM documents WHERE user_id = $1 ORDER BY name")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "summary"}).
			AddRow("2024 Claims.xlsx", "Diabetes drives 18% of spend").
			AddRow("Survey.pdf", "72% satisfied"))

	docs, err := store.GetAllDocumentSummaries(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "Survey.pdf", docs[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStore_GetOnboardingStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectQuery("SELECT onboarding_complete").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"onboarding_complete"}).AddRow(true))
	mock.ExpectQuery("SELECT onboarding_complete").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"onboarding_complete"}).AddRow(nil))
	mock.ExpectQuery("SELECT onboarding_complete").
		WithArgs("user-3").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT onboarding_complete").
		WithArgs("user-4").
		WillReturnError(errors.New("connection reset"))

	complete, err := store.GetOnboardingStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, complete)

	complete, err = store.GetOnboardingStatus(context.Background(), "user-2")
	require.NoError(t, err)
	assert.False(t, complete)

	complete, err = store.GetOnboardingStatus(context.Background(), "user-3")
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = store.GetOnboardingStatus(context.Background(), "user-4")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDocumentStoreFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStore_SaveCompanyProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE SET")).
		WithArgs("user-1", "Acme", "500", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO company_profiles").
		WithArgs("user-2", "", "", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SaveCompanyProfile(context.Background(), "user-1", models.CompanyProfile{
		Name: "Acme", EmployeeCount: "500", Locations: []string{"CA", "NY"},
	})
	require.NoError(t, err)

	err = store.SaveCompanyProfile(context.Background(), "user-2", models.CompanyProfile{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStore_SaveCompanyProfile_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDocumentStore(db)

	mock.ExpectExec("INSERT INTO company_profiles").
		WillReturnError(errors.New("read-only transaction"))

	err := store.SaveCompanyProfile(context.Background(), "user-1", models.CompanyProfile{Name: "Acme"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDocumentStoreFailed))
}
