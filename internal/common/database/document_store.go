package database

import (
	"context"
	"database/sql"
	"errors"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/models"

	"github.com/lib/pq"
)

const (
	queryCompanyProfile = `SELECT company_name, employee_count, locations, industry
		FROM company_profiles WHERE user_id = $1`

	queryDocumentCatalog = `SELECT id, name, tag
		FROM documents WHERE user_id = $1 ORDER BY name`

	queryDocumentsByIDs = `SELECT name, summary
		FROM documents WHERE user_id = $1 AND id = ANY($2) ORDER BY name`

	queryDocumentByTag = `SELECT name, summary
		FROM documents WHERE user_id = $1 AND tag = $2 LIMIT 1`

	queryDocumentSummaries = `SELECT name, summary
		FROM documents WHERE user_id = $1 ORDER BY name`

	queryOnboardingStatus = `SELECT onboarding_complete
		FROM company_profiles WHERE user_id = $1`

	// Blank fields keep what is already stored.
	upsertCompanyProfile = `INSERT INTO company_profiles
			(user_id, company_name, employee_count, locations, onboarding_complete)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET
			company_name = COALESCE(EXCLUDED.company_name, company_profiles.company_name),
			employee_count = COALESCE(EXCLUDED.employee_count, company_profiles.employee_count),
			locations = COALESCE(EXCLUDED.locations, company_profiles.locations),
			onboarding_complete = TRUE`
)

// DocumentStore reads the company profile and the pre-summarized uploaded
// documents of a user.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// GetCompanyProfile returns nil without error when the user has no profile.
func (s *DocumentStore) GetCompanyProfile(ctx context.Context, userID string) (*models.CompanyProfile, error) {
	var (
		profile   models.CompanyProfile
		name      sql.NullString
		employees sql.NullString
		industry  sql.NullString
		locations []string
	)
	err := s.db.QueryRowContext(ctx, queryCompanyProfile, userID).
		Scan(&name, &employees, pq.Array(&locations), &industry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDocumentStoreError("get_company_profile", err)
	}

	profile.Name = name.String
	profile.EmployeeCount = employees.String
	profile.Industry = industry.String
	profile.Locations = locations
	return &profile, nil
}

// GetAllDocumentTags lists the user's document catalog.
func (s *DocumentStore) GetAllDocumentTags(ctx context.Context, userID string) ([]models.DocumentRef, error) {
	rows, err := s.db.QueryContext(ctx, queryDocumentCatalog, userID)
	if err != nil {
		return nil, apperrors.NewDocumentStoreError("get_all_document_tags", err)
	}
	defer rows.Close()

	refs := []models.DocumentRef{}
	for rows.Next() {
		var ref models.DocumentRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Tag); err != nil {
			return nil, apperrors.NewDocumentStoreError("get_all_document_tags", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDocumentStoreError("get_all_document_tags", err)
	}
	return refs, nil
}

// GetDocumentsByIDs resolves selected document ids. Unknown ids are skipped.
func (s *DocumentStore) GetDocumentsByIDs(ctx context.Context, userID string, ids []string) ([]models.DocumentSummary, error) {
	if len(ids) == 0 {
		return []models.DocumentSummary{}, nil
	}

	rows, err := s.db.QueryContext(ctx, queryDocumentsByIDs, userID, pq.Array(ids))
	if err != nil {
		return nil, apperrors.NewDocumentStoreError("get_documents_by_ids", err)
	}
	defer rows.Close()

	docs := []models.DocumentSummary{}
	for rows.Next() {
		var doc models.DocumentSummary
		if err := rows.Scan(&doc.Name, &doc.Summary); err != nil {
			return nil, apperrors.NewDocumentStoreError("get_documents_by_ids", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDocumentStoreError("get_documents_by_ids", err)
	}
	return docs, nil
}

// GetDocumentByTag returns nil without error when no document has the tag.
func (s *DocumentStore) GetDocumentByTag(ctx context.Context, userID, tag string) (*models.DocumentSummary, error) {
	var doc models.DocumentSummary
	err := s.db.QueryRowContext(ctx, queryDocumentByTag, userID, tag).Scan(&doc.Name, &doc.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDocumentStoreError("get_document_by_tag", err).WithMetadata("tag", tag)
	}
	return &doc, nil
}

// GetAllDocumentSummaries returns every uploaded document summary of the user.
func (s *DocumentStore) GetAllDocumentSummaries(ctx context.Context, userID string) ([]models.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, queryDocumentSummaries, userID)
	if err != nil {
		return nil, apperrors.NewDocumentStoreError("get_all_document_summaries", err)
	}
	defer rows.Close()

	docs := []models.DocumentSummary{}
	for rows.Next() {
		var doc models.DocumentSummary
		if err := rows.Scan(&doc.Name, &doc.Summary); err != nil {
			return nil, apperrors.NewDocumentStoreError("get_all_document_summaries", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDocumentStoreError("get_all_document_summaries", err)
	}
	return docs, nil
}

// GetOnboardingStatus reports false without error for unknown users.
func (s *DocumentStore) GetOnboardingStatus(ctx context.Context, userID string) (bool, error) {
	var complete sql.NullBool
	err := s.db.QueryRowContext(ctx, queryOnboardingStatus, userID).Scan(&complete)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewDocumentStoreError("get_onboarding_status", err)
	}
	return complete.Bool, nil
}

// SaveCompanyProfile merges the onboarding answers into the stored profile
// and marks onboarding complete. Nil locations keep the stored list.
func (s *DocumentStore) SaveCompanyProfile(ctx context.Context, userID string, profile models.CompanyProfile) error {
	var locations interface{}
	if profile.Locations != nil {
		locations = pq.Array(profile.Locations)
	}
	_, err := s.db.ExecContext(ctx, upsertCompanyProfile,
		userID, profile.Name, profile.EmployeeCount, locations)
	if err != nil {
		return apperrors.NewDocumentStoreError("save_company_profile", err)
	}
	return nil
}
