// internal/workers/ai-conversation/benefits-chat/handler.go
package benefitschat

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
	"benefits-assistant/internal/models"
	classifyintent "benefits-assistant/internal/workers/ai-conversation/classify-intent"
	composeresponse "benefits-assistant/internal/workers/ai-conversation/compose-response"
	gatherevidence "benefits-assistant/internal/workers/ai-conversation/gather-evidence"
	summarizeevidence "benefits-assistant/internal/workers/ai-conversation/summarize-evidence"
	buildresponse "benefits-assistant/internal/workers/infrastructure/build-response"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "benefits-chat"
)

var (
	ErrInvalidInput     = errors.New("INPUT_VALIDATION_FAILED")
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
	stages     Stages
	fastPath   llm.Generator
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler wires the pipeline. fastPath answers questions pinned to
// selected documents.
func NewHandler(config *Config, stages Stages, fastPath llm.Generator, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		stages:     stages,
		fastPath:   fastPath,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeInputValidationFailed)).Inc()
		h.errHandler.HandleJobError(context.Background(), client, job,
			apperrors.NewInputValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.NormalizeError(err).Code)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// execute runs the pipeline. Only invalid input and a failed final
// generation are returned as errors. Every other stage degrades.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		metrics.ChatRequests.WithLabelValues("none", "invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewInputValidationError("User message is required."))
	}

	ctx, span := observability.StartStage(ctx, "chat",
		attribute.Int("selectedDocs", len(input.SelectedDocs)),
		attribute.Bool("useWebSearch", input.UseWebSearch))
	defer span.End()

	company := h.companyProfile(ctx, input.UserID)

	if output, ok, err := h.tryFastPath(ctx, input, company); ok || err != nil {
		return h.finish(output, PathFast, err)
	}

	catalog := h.catalog(ctx, input.UserID)

	classified, err := h.stages.Classifier.Execute(ctx, &classifyintent.Input{
		Question: input.Message,
		Company:  company,
		Catalog:  catalog,
		History:  input.ChatHistory,
	})
	intent := models.FallbackIntent()
	if err != nil {
		h.logger.Warn("classification failed, using fallback intent", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		intent = classified.Intent
	}

	if guarded, ok := composeresponse.Guard(intent, input.RFPContext); ok {
		h.logger.Info("rfp requested without context", map[string]interface{}{
			"questionType": string(intent.QuestionType),
		})
		return h.finish(&Output{Response: models.ChatResponse{
			QuestionType: intent.QuestionType,
			Reply:        guarded.ReplyBody,
			Evidence:     nil,
			FollowUps:    guarded.FollowUpQuestions,
		}}, PathGuarded, nil)
	}

	evidence := h.gather(ctx, input, company, intent)

	summaryCtx, cancelSummary := context.WithCancel(ctx)
	defer cancelSummary()
	summaries := make(chan *summarizeevidence.Output, 1)
	go func() {
		summaries <- h.stages.Summarizer.Summarize(summaryCtx, evidence)
	}()

	composed, err := h.stages.Composer.Execute(ctx, &composeresponse.Input{
		Question:   input.Message,
		Company:    company,
		Intent:     intent,
		Evidence:   evidence,
		History:    input.ChatHistory,
		Catalog:    catalog,
		RFPContext: input.RFPContext,
	})
	if err != nil {
		cancelSummary()
		<-summaries
		return h.finish(nil, PathFull, err)
	}

	result, err := buildresponse.ParseOutput(composed.Raw)
	if err != nil {
		h.logger.Warn("follow-up questions not recovered", map[string]interface{}{
			"error": err.Error(),
		})
	}

	summary := <-summaries
	return h.finish(&Output{Response: models.ChatResponse{
		QuestionType: composed.QuestionType,
		Reply:        result.ReplyBody,
		Evidence:     &summary.Summary,
		FollowUps:    result.FollowUpQuestions,
	}}, PathFull, nil)
}

// companyProfile falls back to the default profile when the user has none
// or the store is unavailable.
func (h *Handler) companyProfile(ctx context.Context, userID string) models.CompanyProfile {
	ctx, cancel := h.storeContext(ctx)
	defer cancel()

	profile, err := h.stages.Store.GetCompanyProfile(ctx, userID)
	if err != nil {
		metrics.RecordEvidenceFailure("company_profile")
		h.logger.Warn("company profile unavailable, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return models.DefaultCompanyProfile()
	}
	if profile == nil {
		return models.DefaultCompanyProfile()
	}
	return profile.WithDefaults()
}

func (h *Handler) catalog(ctx context.Context, userID string) []models.DocumentRef {
	ctx, cancel := h.storeContext(ctx)
	defer cancel()

	refs, err := h.stages.Store.GetAllDocumentTags(ctx, userID)
	if err != nil {
		metrics.RecordEvidenceFailure("document_catalog")
		h.logger.Warn("document catalog unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return []models.DocumentRef{}
	}
	return refs
}

// tryFastPath answers from the selected documents in one generation call.
// ok is false when no selected document resolves, in which case the full
// pipeline runs.
func (h *Handler) tryFastPath(ctx context.Context, input *Input, company models.CompanyProfile) (*Output, bool, error) {
	if len(input.SelectedDocs) == 0 {
		return nil, false, nil
	}

	storeCtx, cancel := h.storeContext(ctx)
	docs, err := h.stages.Store.GetDocumentsByIDs(storeCtx, input.UserID, input.SelectedDocs)
	cancel()
	if err != nil {
		metrics.RecordEvidenceFailure("selected_documents")
		h.logger.Warn("selected documents unavailable, running full pipeline", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false, nil
	}
	if len(docs) == 0 {
		return nil, false, nil
	}

	start := time.Now()
	defer metrics.ObserveStage("fast_path", start)

	genCtx, cancel := context.WithTimeout(ctx, h.config.FastPathTimeout)
	raw, err := h.fastPath.Generate(genCtx, buildFastPathPrompt(input.Message, company, docs), h.config.FastPathMaxTokens)
	cancel()
	reply := llm.StripCodeFences(raw)
	if err == nil && reply == "" {
		err = errors.New("empty completion")
	}
	metrics.RecordGeneration("fast_path", err)
	if err != nil {
		h.logger.Error("fast path generation failed", map[string]interface{}{
			"documents": len(docs),
			"error":     err.Error(),
		})
		return nil, true, fmt.Errorf("%w: %w", ErrGenerationFailed, apperrors.NewGenerationError("fast_path", err))
	}

	notice := DeepResearchNotice
	return &Output{Response: models.ChatResponse{
		QuestionType: models.QuestionTypeInternalAnalysis,
		Reply:        reply,
		Evidence:     &notice,
		FollowUps:    []string{},
	}}, true, nil
}

// storeContext bounds a single document store call.
func (h *Handler) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.config.StoreTimeout)
}

func (h *Handler) gather(ctx context.Context, input *Input, company models.CompanyProfile, intent models.Intent) models.EvidenceBundle {
	gathered, err := h.stages.Gatherer.Execute(ctx, &gatherevidence.Input{
		UserID:       input.UserID,
		Question:     input.Message,
		Company:      company,
		Intent:       intent,
		UseWebSearch: input.UseWebSearch,
	})
	if err != nil {
		h.logger.Warn("evidence gathering failed", map[string]interface{}{
			"error": err.Error(),
		})
		return models.NewEvidenceBundle()
	}
	return gathered.Evidence.Normalize()
}

func (h *Handler) finish(output *Output, path Path, err error) (*Output, error) {
	if err != nil {
		metrics.ChatRequests.WithLabelValues(string(path), "error").Inc()
		if !errors.Is(err, ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		return nil, err
	}

	metrics.ChatRequests.WithLabelValues(string(path), "success").Inc()
	if output.Response.FollowUps == nil {
		output.Response.FollowUps = []string{}
	}
	output.Path = path
	h.logger.Info("chat request answered", map[string]interface{}{
		"path":         string(path),
		"questionType": string(output.Response.QuestionType),
		"followUps":    len(output.Response.FollowUps),
	})
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output.Response)
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
