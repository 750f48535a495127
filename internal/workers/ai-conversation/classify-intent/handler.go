// internal/workers/ai-conversation/classify-intent/handler.go
package classifyintent

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
	"benefits-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-intent"
)

var (
	ErrInvalidInput = errors.New("INPUT_VALIDATION_FAILED")
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
	logger     Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
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

// execute only fails on invalid input. Generation and parse failures yield
// the fallback intent.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput,
			apperrors.NewInputValidationError("question is required"))
	}

	start := time.Now()
	defer metrics.ObserveStage("classify", start)

	prompt := buildPrompt(input, h.config.HistoryTurns, h.now())
	genCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	raw, err := h.generator.Generate(genCtx, prompt, h.config.MaxTokens)
	cancel()
	metrics.RecordGeneration("classify", err)
	if err != nil {
		h.logger.Warn("classification generation failed, using fallback intent", map[string]interface{}{
			"error": apperrors.NewClassificationFailedError(err).Error(),
		})
		return &Output{Intent: models.FallbackIntent(), Fallback: true}, nil
	}

	intent, err := ParseIntent(raw, h.config.MaxSearchTerms)
	if err != nil {
		h.logger.Warn("classification output unparseable, using fallback intent", map[string]interface{}{
			"error":     err.Error(),
			"rawLength": len(raw),
		})
		return &Output{Intent: models.FallbackIntent(), Fallback: true}, nil
	}

	h.logger.Info("question classified", map[string]interface{}{
		"questionType":  string(intent.QuestionType),
		"evidenceTypes": intent.EvidenceTypesNeeded,
		"searchTerms":   len(intent.SearchTerms),
		"documentTags":  len(intent.DocumentTags),
	})
	return &Output{Intent: intent}, nil
}

// ParseIntent decodes and normalizes the classifier output. Only a missing or
// undecodable JSON object is an error; unknown values are repaired.
func ParseIntent(raw string, maxSearchTerms int) (models.Intent, error) {
	text := llm.StripCodeFences(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return models.Intent{}, errors.New("no JSON object in classifier output")
	}

	var m modelIntent
	if err := json.Unmarshal([]byte(text[start:end+1]), &m); err != nil {
		return models.Intent{}, fmt.Errorf("decode classifier output: %w", err)
	}

	intent := models.FallbackIntent()
	if goal := firstNonBlank(m.GoalSummary, m.GoalSentence); goal != "" {
		intent.GoalSummary = goal
	}
	if qt, ok := models.ParseQuestionType(m.QuestionType); ok {
		intent.QuestionType = qt
	}
	intent.EvidenceTypesNeeded = normalizeEvidenceTypes(m.EvidenceTypesNeeded, intent.QuestionType)
	intent.SearchTerms = cleanList(orElse(m.SearchTerms, m.RAGQueries), maxSearchTerms)
	intent.DocumentTags = cleanList(orElse(m.DocumentTags, m.DocTags), -1)
	return intent, nil
}

// normalizeEvidenceTypes drops unknown values and duplicates. "none"
// overrides everything except the legislation a compliance question always
// needs.
func normalizeEvidenceTypes(values []string, qt models.QuestionType) []models.EvidenceType {
	out := []models.EvidenceType{}
	seen := map[models.EvidenceType]bool{}
	none := false
	for _, v := range values {
		et, ok := models.ParseEvidenceType(strings.ToLower(strings.TrimSpace(v)))
		if !ok || seen[et] {
			continue
		}
		seen[et] = true
		if et == models.EvidenceNone {
			none = true
			continue
		}
		out = append(out, et)
	}

	if qt == models.QuestionTypeComplianceLaw {
		if none {
			return []models.EvidenceType{models.EvidenceLegislation}
		}
		if !seen[models.EvidenceLegislation] {
			out = append(out, models.EvidenceLegislation)
		}
		return out
	}
	if none {
		return []models.EvidenceType{models.EvidenceNone}
	}
	return out
}

// cleanList trims, drops blanks and duplicates, and caps the list at limit
// entries when limit is non-negative.
func cleanList(values []string, limit int) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		if limit >= 0 && len(out) >= limit {
			break
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func orElse(primary, legacy []string) []string {
	if len(primary) > 0 {
		return primary
	}
	return legacy
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
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
