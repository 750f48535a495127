// internal/workers/infrastructure/save-onboarding/handler.go
package saveonboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/logger"
	"benefits-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "save-onboarding-data"

const msgUserRequired = "User ID is required"

var (
	ErrInvalidInput = errors.New("INPUT_VALIDATION_FAILED")
	ErrStoreFailed  = errors.New("DOCUMENT_STORE_FAILED")
)

type ProfileStore interface {
	GetOnboardingStatus(ctx context.Context, userID string) (bool, error)
	SaveCompanyProfile(ctx context.Context, userID string, profile models.CompanyProfile) error
}

// Handler records the onboarding answers that become the company profile
// every prompt is built around.
type Handler struct {
	config     *Config
	store      ProfileStore
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, store ProfileStore, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job,
			apperrors.NewInputValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// Execute merges the answers into the stored profile. Blank answers keep
// what is already stored.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewInputValidationError(msgUserRequired))
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	profile := models.CompanyProfile{
		Name:          strings.TrimSpace(input.CompanyName),
		EmployeeCount: string(input.EmployeeCount),
		Locations:     cleanLocations(input.Locations),
	}
	if err := h.store.SaveCompanyProfile(ctx, userID, profile); err != nil {
		h.logger.Error("failed to save onboarding data", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}

	h.logger.Info("onboarding data saved", map[string]interface{}{
		"userId":    userID,
		"locations": len(profile.Locations),
	})
	return &Output{Success: true}, nil
}

// Status reports whether the user finished onboarding. Unknown users have not.
func (h *Handler) Status(ctx context.Context, userID string) (*StatusOutput, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewInputValidationError(msgUserRequired))
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	complete, err := h.store.GetOnboardingStatus(ctx, userID)
	if err != nil {
		h.logger.Error("failed to check onboarding status", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return &StatusOutput{OnboardingComplete: complete}, nil
}

// cleanLocations trims entries and drops blanks. Nil stays nil so the stored
// list is kept.
func cleanLocations(locations []string) []string {
	if locations == nil {
		return nil
	}
	out := make([]string, 0, len(locations))
	for _, l := range locations {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
