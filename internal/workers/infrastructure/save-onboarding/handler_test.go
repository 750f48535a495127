// internal/workers/infrastructure/save-onboarding/handler_test.go
package saveonboarding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/logger"
	"benefits-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	complete bool
	err      error
	saved    *models.CompanyProfile
	userID   string
}

func (s *fakeStore) GetOnboardingStatus(_ context.Context, userID string) (bool, error) {
	s.userID = userID
	return s.complete, s.err
}

func (s *fakeStore) SaveCompanyProfile(_ context.Context, userID string, profile models.CompanyProfile) error {
	s.userID = userID
	s.saved = &profile
	return s.err
}

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T, store *fakeStore) *Handler {
	return NewHandler(LoadConfig(), store, logger.NewTestLogger(t))
}

// ==========================
// Save Tests
// ==========================

func TestHandler_Execute_SavesProfile(t *testing.T) {
	store := &fakeStore{}
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{
		"userId": " u1 ",
		"companyName": " Acme ",
		"employeeCount": 1200,
		"locations": ["MA", " ", "TX "]
	}`), &input))

	out, err := createTestHandler(t, store).Execute(context.Background(), &input)
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, "u1", store.userID)
	require.NotNil(t, store.saved)
	assert.Equal(t, "Acme", store.saved.Name)
	assert.Equal(t, "1200", store.saved.EmployeeCount)
	assert.Equal(t, []string{"MA", "TX"}, store.saved.Locations)
}

func TestHandler_Execute_PartialAnswersKeepStoredFields(t *testing.T) {
	store := &fakeStore{}
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"u1","employeeCount":"500"}`), &input))

	_, err := createTestHandler(t, store).Execute(context.Background(), &input)
	require.NoError(t, err)

	assert.Empty(t, store.saved.Name)
	assert.Equal(t, "500", store.saved.EmployeeCount)
	assert.Nil(t, store.saved.Locations)
}

func TestHandler_Execute_Errors(t *testing.T) {
	_, err := createTestHandler(t, &fakeStore{}).Execute(context.Background(), &Input{CompanyName: "Acme"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	store := &fakeStore{err: apperrors.NewDocumentStoreError("save_company_profile", errors.New("read-only"))}
	_, err = createTestHandler(t, store).Execute(context.Background(), &Input{UserID: "u1"})
	assert.ErrorIs(t, err, ErrStoreFailed)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDocumentStoreFailed))
}

func TestHeadcount_Unmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want headcount
	}{
		{`"250"`, "250"},
		{`250`, "250"},
		{`null`, ""},
		{`" 1,000+ "`, "1,000+"},
	}
	for _, tt := range tests {
		var c headcount
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &c), tt.raw)
		assert.Equal(t, tt.want, c, tt.raw)
	}

	var c headcount
	assert.Error(t, json.Unmarshal([]byte(`true`), &c))
}

// ==========================
// Status Tests
// ==========================

func TestHandler_Status(t *testing.T) {
	store := &fakeStore{complete: true}
	out, err := createTestHandler(t, store).Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, out.OnboardingComplete)

	out, err = createTestHandler(t, &fakeStore{}).Status(context.Background(), "new-user")
	require.NoError(t, err)
	assert.False(t, out.OnboardingComplete)

	_, err = createTestHandler(t, store).Status(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = createTestHandler(t, &fakeStore{err: errors.New("down")}).Status(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrStoreFailed)
}
