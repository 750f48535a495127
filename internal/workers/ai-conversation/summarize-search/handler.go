// internal/workers/ai-conversation/summarize-search/handler.go
package summarizesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/llm"
	"benefits-assistant/internal/common/metrics"
	"benefits-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "summarize-search"
)

const msgRequiredFields = "Employee Locations and Quarter are required fields."

var (
	ErrInvalidInput     = errors.New("INPUT_VALIDATION_FAILED")
	ErrGenerationFailed = errors.New("GENERATION_FAILED")
)

type WebSearcher interface {
	Search(ctx context.Context, query, questionContext string) (string, error)
}

type LaborStatistics interface {
	LatestFigures(ctx context.Context) (string, error)
}

type DocumentStore interface {
	GetAllDocumentSummaries(ctx context.Context, userID string) ([]models.DocumentSummary, error)
}

// Sources are the research inputs. Any of them may be nil.
type Sources struct {
	Web       WebSearcher
	Labor     LaborStatistics
	Documents DocumentStore
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
	sources    Sources
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, generator llm.Generator, sources Sources, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		generator:  generator,
		sources:    sources,
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

// execute reads the web, BLS and the user's documents concurrently, then asks
// for one consultant-style synthesis. Only the synthesis can fail the call.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.EmployeeLocations) == "" || strings.TrimSpace(input.Quarter) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewInputValidationError(msgRequiredFields))
	}

	start := time.Now()
	defer metrics.ObserveStage("summarize_search", start)

	var (
		wg         sync.WaitGroup
		webResults string
		labor      string
		documents  []models.DocumentSummary
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		webResults = h.searchWeb(ctx, input)
	}()
	go func() {
		defer wg.Done()
		labor = h.laborFigures(ctx)
	}()
	go func() {
		defer wg.Done()
		documents = h.documentSummaries(ctx, input.UserID)
	}()
	wg.Wait()

	genCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	raw, err := h.generator.Generate(genCtx, buildPrompt(input, webResults, labor, documents), h.config.MaxTokens)
	cancel()
	summary := strings.TrimSpace(llm.StripCodeFences(raw))
	if err == nil && summary == "" {
		err = errors.New("empty completion")
	}
	metrics.RecordGeneration("summarize_search", err)
	if err != nil {
		h.logger.Error("search summary failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, apperrors.NewGenerationError("summarize_search", err))
	}

	h.logger.Info("search summarized", map[string]interface{}{
		"webSearch":       webResults != "",
		"laborStatistics": labor != "",
		"documents":       len(documents),
	})
	return &Output{Summary: summary}, nil
}

// SearchQuery is the single web query issued per request.
func SearchQuery(input *Input) string {
	return fmt.Sprintf("Social Determinants of Health Challenges Relevant to %s in %s",
		strings.TrimSpace(input.EmployeeLocations), strings.TrimSpace(input.Quarter))
}

func (h *Handler) searchWeb(ctx context.Context, input *Input) string {
	if h.sources.Web == nil {
		return ""
	}
	ctx, cancel := h.adapterContext(ctx)
	defer cancel()

	text, err := h.sources.Web.Search(ctx, SearchQuery(input), "")
	if err != nil {
		h.sourceFailed("web_search", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (h *Handler) laborFigures(ctx context.Context) string {
	if h.sources.Labor == nil {
		return ""
	}
	ctx, cancel := h.adapterContext(ctx)
	defer cancel()

	figures, err := h.sources.Labor.LatestFigures(ctx)
	if err != nil {
		h.sourceFailed("bls", err)
		return ""
	}
	return strings.TrimSpace(figures)
}

func (h *Handler) documentSummaries(ctx context.Context, userID string) []models.DocumentSummary {
	if h.sources.Documents == nil || strings.TrimSpace(userID) == "" {
		return nil
	}
	ctx, cancel := h.adapterContext(ctx)
	defer cancel()

	docs, err := h.sources.Documents.GetAllDocumentSummaries(ctx, userID)
	if err != nil {
		h.sourceFailed("document_store", err)
		return nil
	}
	return docs
}

func (h *Handler) adapterContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.AdapterTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.config.AdapterTimeout)
}

func (h *Handler) sourceFailed(source string, err error) {
	metrics.RecordEvidenceFailure(source)
	h.logger.Warn("research source failed", map[string]interface{}{
		"source": source,
		"error":  err.Error(),
	})
}

func buildPrompt(input *Input, webResults, labor string, docs []models.DocumentSummary) string {
	var b strings.Builder
	b.WriteString(`You are an expert in social determinants of health (SDOH).
First, read the search results and highlight the specific, quantitative key trends in SDOH that are relevant. Provide sources and organization names where possible.
Next, cross reference them with the relevant Bureau of Labor Statistics figures.
Finally, consult the uploaded document summaries, which represent internal company data, and identify SDOH gaps and vulnerabilities.
Give your response in valid HTML, without the opening and closing html fence.`)

	fmt.Fprintf(&b, "\n\nEmployee Locations: %s\nQuarter: %s", strings.TrimSpace(input.EmployeeLocations), strings.TrimSpace(input.Quarter))
	if v := strings.TrimSpace(input.NumberOfEmployees); v != "" {
		fmt.Fprintf(&b, "\nNumber of Employees: %s", v)
	}
	if v := strings.TrimSpace(input.NAICSCode); v != "" {
		fmt.Fprintf(&b, "\nNAICS Code: %s", v)
	}
	if len(input.PlanTypes) > 0 {
		fmt.Fprintf(&b, "\nPlan Types: %s", strings.Join(input.PlanTypes, ", "))
	}
	if v := strings.TrimSpace(input.AdditionalQuestion); v != "" {
		fmt.Fprintf(&b, "\nAlso answer: %s", v)
	}

	writeSection(&b, "Search Results", webResults)
	writeSection(&b, "BLS Statistics", labor)
	writeSection(&b, "Uploaded Document Summaries", models.FormatDocuments(docs))
	return b.String()
}

func writeSection(b *strings.Builder, label, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(b, "\n\n%s:\n%s", label, strings.TrimSpace(body))
}
