// internal/workers/ai-conversation/compose-response/handler.go
package composeresponse

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
	"benefits-assistant/internal/common/observability"
	"benefits-assistant/internal/common/tokenizer"
	selecttemplate "benefits-assistant/internal/workers/infrastructure/select-template"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "compose-response"
)

var (
	ErrInvalidInput     = errors.New("INVALID_INPUT")
	ErrGenerationFailed = errors.New("GENERATION_FAILED")
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	generator  llm.Generator
	counter    tokenizer.Counter
	logger     Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
}

func NewHandler(config *Config, generator llm.Generator, counter tokenizer.Counter, log Logger) *Handler {
	if counter == nil {
		counter = tokenizer.Approximate{}
	}
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		generator:  generator,
		counter:    counter,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
		now:        time.Now,
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewInputValidationError("question is required"))
	}

	tmpl := selecttemplate.For(input.Intent.QuestionType, input.Company)

	if guarded, ok := Guard(input.Intent, input.RFPContext); ok {
		h.logger.Info("composition short-circuited", map[string]interface{}{
			"questionType": string(tmpl.QuestionType),
		})
		return &Output{Raw: guarded.ReplyBody, QuestionType: tmpl.QuestionType, Guarded: true}, nil
	}

	start := time.Now()
	defer metrics.ObserveStage("compose", start)
	ctx, span := observability.StartStage(ctx, "compose",
		attribute.String("questionType", string(tmpl.QuestionType)),
		attribute.Int("maxTokens", tmpl.MaxTokens))
	defer span.End()

	evidence := h.budgetEvidence(serializeEvidence(input.Evidence, !tmpl.IncludesLegislation))
	prompt := buildPrompt(input, tmpl, evidence, h.now())

	raw, err := h.generator.Generate(ctx, prompt, tmpl.MaxTokens)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("empty completion")
	}
	metrics.RecordGeneration("compose", err)
	if err != nil {
		h.logger.Error("final generation failed", map[string]interface{}{
			"questionType": string(tmpl.QuestionType),
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, apperrors.NewGenerationError("composer", err))
	}

	h.logger.Info("response composed", map[string]interface{}{
		"questionType": string(tmpl.QuestionType),
		"promptTokens": h.counter.Count(prompt),
		"outputChars":  len(raw),
	})

	return &Output{Raw: raw, QuestionType: tmpl.QuestionType, MaxTokens: tmpl.MaxTokens}, nil
}

// budgetEvidence cuts the serialized evidence to the configured token
// budget.
func (h *Handler) budgetEvidence(evidence string) string {
	budget := h.config.EvidenceTokenBudget
	if budget <= 0 || evidence == "" {
		return evidence
	}
	tokens := h.counter.Count(evidence)
	if tokens <= budget {
		return evidence
	}
	h.logger.Info("evidence truncated to budget", map[string]interface{}{
		"tokens": tokens,
		"budget": budget,
	})
	return h.counter.Truncate(evidence, budget)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
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
