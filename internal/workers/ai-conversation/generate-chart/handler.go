// internal/workers/ai-conversation/generate-chart/handler.go
package generatechart

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
	"benefits-assistant/internal/common/validation"
	"benefits-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-chart"
)

var (
	ErrInvalidInput          = errors.New("INPUT_VALIDATION_FAILED")
	ErrChartGenerationFailed = errors.New("CHART_GENERATION_FAILED")
)

type DocumentStore interface {
	GetDocumentsByIDs(ctx context.Context, userID string, ids []string) ([]models.DocumentSummary, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query, questionContext string) (string, error)
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	generator  llm.Generator
	documents  DocumentStore
	web        WebSearcher
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the chart handler. documents and web may be nil.
func NewHandler(config *Config, generator llm.Generator, documents DocumentStore, web WebSearcher, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		generator:  generator,
		documents:  documents,
		web:        web,
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
	if strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewInputValidationError("User message is required."))
	}
	kind, ok := ParseKind(input.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput,
			apperrors.NewInputValidationError(fmt.Sprintf("unknown chart kind %q", input.Kind)))
	}

	start := time.Now()
	defer metrics.ObserveStage("chart", start)

	docs := h.selectedDocuments(ctx, input)
	webResults := h.searchWeb(ctx, input)

	genCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	raw, err := h.generator.Generate(genCtx, buildPrompt(kind, input.Message, docs, webResults), h.config.maxTokens(kind))
	cancel()
	metrics.RecordGeneration("chart", err)
	if err != nil {
		return nil, h.failed(kind, err)
	}

	chart, err := extractChart(raw)
	if err != nil {
		return nil, h.failed(kind, err)
	}

	schema, err := chartSchema(kind)
	if err != nil {
		return nil, h.failed(kind, err)
	}
	result, err := validation.Validate(schema, chart)
	if err != nil {
		return nil, h.failed(kind, err)
	}
	if !result.Valid {
		return nil, h.failed(kind, fmt.Errorf("chart does not match schema: %s", result.Summary()))
	}

	h.logger.Info("chart generated", map[string]interface{}{
		"kind":      string(kind),
		"documents": len(docs),
		"webSearch": webResults != "",
	})
	return &Output{Chart: chart, Reply: chartReply(kind, chart)}, nil
}

func (h *Handler) selectedDocuments(ctx context.Context, input *Input) []models.DocumentSummary {
	if h.documents == nil || len(input.SelectedDocs) == 0 {
		return nil
	}
	ctx, cancel := h.adapterContext(ctx)
	defer cancel()

	docs, err := h.documents.GetDocumentsByIDs(ctx, input.UserID, input.SelectedDocs)
	if err != nil {
		metrics.RecordEvidenceFailure("selected_documents")
		h.logger.Warn("selected documents unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return docs
}

func (h *Handler) searchWeb(ctx context.Context, input *Input) string {
	if h.web == nil || !input.UseWebSearch {
		return ""
	}
	ctx, cancel := h.adapterContext(ctx)
	defer cancel()

	text, err := h.web.Search(ctx, input.Message, h.config.SearchContext)
	if err != nil {
		metrics.RecordEvidenceFailure("web_search")
		h.logger.Warn("web search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return text
}

func (h *Handler) adapterContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.AdapterTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.config.AdapterTimeout)
}

func (h *Handler) failed(kind Kind, err error) error {
	h.logger.Error("chart generation failed", map[string]interface{}{
		"kind":  string(kind),
		"error": err.Error(),
	})
	return fmt.Errorf("%w: %w", ErrChartGenerationFailed, apperrors.NewChartGenerationError(string(kind), err))
}

// extractChart takes everything from the first '{' to the last '}'.
func extractChart(raw string) (map[string]interface{}, error) {
	text := llm.StripCodeFences(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, errors.New("no JSON object in chart output")
	}
	var chart map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &chart); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return chart, nil
}

// chartReply joins the chart's bullets with blank lines. Pie charts carry no
// bullets and always get the default sentence.
func chartReply(kind Kind, chart map[string]interface{}) string {
	fallback := fmt.Sprintf("Here is the %s you requested!", kind.Noun())
	if kind == KindPie {
		return fallback
	}
	items, _ := chart["bullets"].([]interface{})
	bullets := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			bullets = append(bullets, strings.TrimSpace(s))
		}
	}
	if len(bullets) == 0 {
		return fallback
	}
	return strings.Join(bullets, "\n\n")
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
