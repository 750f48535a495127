// internal/workers/ai-conversation/notepad-assist/handler.go
package notepadassist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/llm"
	"benefits-assistant/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notepad-assist"
)

const msgMissingFields = "Missing userId or note content."

var (
	ErrInvalidInput     = errors.New("INPUT_VALIDATION_FAILED")
	ErrGenerationFailed = errors.New("GENERATION_FAILED")
)

type Input struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type Output struct {
	AIReply string `json:"aiReply"`
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Handler turns free-form meeting notes into next steps, follow-up
// questions and definitions.
type Handler struct {
	config     *Config
	generator  llm.Generator
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, generator llm.Generator, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		generator:  generator,
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

	output, err := h.execute(ctx, &input)
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
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewInputValidationError(msgMissingFields))
	}

	start := time.Now()
	defer metrics.ObserveStage("notepad", start)

	genCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	raw, err := h.generator.Generate(genCtx, buildPrompt(input.Content), h.config.MaxTokens)
	cancel()
	metrics.RecordGeneration("notepad", err)
	if err != nil {
		h.logger.Error("notepad suggestions failed", map[string]interface{}{
			"userId": input.UserID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, apperrors.NewGenerationError("notepad", err))
	}

	return &Output{AIReply: strings.TrimSpace(raw)}, nil
}

func buildPrompt(notes string) string {
	return fmt.Sprintf(`You are an AI note assistant that helps summarize meeting notes, define keywords, and add actionable top priorities.

The user typed these notes:

%s

Please provide:
1) Three recommended next steps, to-dos or top priorities
2) 1-3 follow up questions for the user to ask
3) Key definitions of any jargon

Please provide your answer in plain text, no special characters.`, strings.TrimSpace(notes))
}
