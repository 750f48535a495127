// internal/workers/infrastructure/build-response/handler.go
package buildresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/logger"
	"benefits-assistant/internal/common/validation"
	"benefits-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "build-response"

var (
	ErrResponseValidationFailed = errors.New("RESPONSE_VALIDATION_FAILED")
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

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

	h.completeJob(client, job, output)
}

// Execute parses the generation output and assembles the chat response.
// Follow-up parse failures are logged and leave the follow-ups empty.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	parsed, err := ParseOutput(input.Raw)
	if err != nil {
		h.logger.Warn("follow-up questions not extracted", map[string]interface{}{
			"requestId": input.RequestID,
			"reason":    err.Error(),
		})
	}

	response := models.ChatResponse{
		QuestionType: models.QuestionType(input.QuestionType),
		Reply:        parsed.ReplyBody,
		Evidence:     input.Evidence,
		FollowUps:    parsed.FollowUpQuestions,
	}

	if err := h.validate(response); err != nil {
		h.logger.Error("response failed schema validation", map[string]interface{}{
			"requestId": input.RequestID,
			"error":     err.Error(),
		})
		return nil, err
	}

	return &Output{Response: response}, nil
}

func (h *Handler) validate(response models.ChatResponse) error {
	if len(h.config.OutputSchema) == 0 {
		return nil
	}
	result, err := validation.Validate(h.config.OutputSchema, response)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResponseValidationFailed, err)
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrResponseValidationFailed, result.Summary())
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
	}
}
