// internal/workers/ai-conversation/gather-evidence/handler.go
package gatherevidence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"benefits-assistant/internal/common/cache"
	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/metrics"
	"benefits-assistant/internal/common/observability"
	"benefits-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "gather-evidence"
)

const (
	sourceDocuments   = "document_store"
	sourceEmbeddings  = "embeddings"
	sourceKnowledge   = "knowledge_index"
	sourceWeb         = "web_search"
	sourceLegislation = "legiscan"
	sourceLabor       = "bls"
	sourceLawPlanner  = "law_planner"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	sources    Sources
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, sources Sources, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
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

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// execute fetches each requested evidence type concurrently. Source
// failures leave that contribution empty and never fail the call.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	bundle := models.NewEvidenceBundle()
	intent := input.Intent
	if !intent.NeedsAny() {
		return &Output{Evidence: bundle}, nil
	}

	start := time.Now()
	defer metrics.ObserveStage("gather", start)

	var wg sync.WaitGroup
	var mu sync.Mutex
	run := func(fn func(context.Context, *models.EvidenceBundle)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			part := models.NewEvidenceBundle()
			fn(ctx, &part)
			mu.Lock()
			merge(&bundle, part)
			mu.Unlock()
		}()
	}

	if intent.Needs(models.EvidenceInternal) && len(intent.DocumentTags) > 0 {
		run(func(ctx context.Context, b *models.EvidenceBundle) {
			b.InternalDocumentSummaries = h.gatherInternal(ctx, input.UserID, intent.DocumentTags)
		})
	}

	if intent.Needs(models.EvidenceExternal) {
		if len(intent.SearchTerms) > 0 {
			run(func(ctx context.Context, b *models.EvidenceBundle) {
				b.ExternalSnippets = h.gatherKnowledge(ctx, intent.SearchTerms)
			})
		}
		if input.UseWebSearch && len(intent.SearchTerms) > 0 {
			run(func(ctx context.Context, b *models.EvidenceBundle) {
				b.WebResults = h.gatherWeb(ctx, intent.SearchTerms[0], input.Question)
			})
		}
		run(func(ctx context.Context, b *models.EvidenceBundle) {
			b.LaborStatistics = h.gatherLabor(ctx)
		})
	}

	if intent.Needs(models.EvidenceLegislation) {
		run(func(ctx context.Context, b *models.EvidenceBundle) {
			b.Jurisdiction, b.LegislativeBills = h.gatherLegislation(ctx, input)
		})
	}

	wg.Wait()

	h.logger.Info("evidence gathered", map[string]interface{}{
		"internalDocuments": len(bundle.InternalDocumentSummaries),
		"externalTerms":     len(bundle.ExternalSnippets),
		"webResults":        bundle.WebResults != "",
		"bills":             len(bundle.LegislativeBills),
		"laborStatistics":   bundle.LaborStatistics != "",
	})

	return &Output{Evidence: bundle.Normalize()}, nil
}

func merge(dst *models.EvidenceBundle, part models.EvidenceBundle) {
	dst.InternalDocumentSummaries = append(dst.InternalDocumentSummaries, part.InternalDocumentSummaries...)
	dst.ExternalSnippets = append(dst.ExternalSnippets, part.ExternalSnippets...)
	dst.LegislativeBills = append(dst.LegislativeBills, part.LegislativeBills...)
	if part.WebResults != "" {
		dst.WebResults = part.WebResults
	}
	if part.LaborStatistics != "" {
		dst.LaborStatistics = part.LaborStatistics
	}
	if part.Jurisdiction != "" {
		dst.Jurisdiction = part.Jurisdiction
	}
}

func (h *Handler) gatherInternal(ctx context.Context, userID string, tags []string) []models.DocumentSummary {
	docs := []models.DocumentSummary{}
	if h.sources.Documents == nil {
		return docs
	}
	ctx, span := observability.StartStage(ctx, "evidence.internal", attribute.Int("tags", len(tags)))
	defer span.End()

	for _, tag := range tags {
		actx, cancel := h.adapterContext(ctx)
		doc, err := h.sources.Documents.GetDocumentByTag(actx, userID, tag)
		cancel()
		if err != nil {
			h.sourceFailed(sourceDocuments, err, map[string]interface{}{"tag": tag})
			continue
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs
}

// gatherKnowledge embeds and searches one term at a time.
func (h *Handler) gatherKnowledge(ctx context.Context, terms []string) []models.ExternalSnippets {
	snippets := []models.ExternalSnippets{}
	if h.sources.Embedder == nil || h.sources.Knowledge == nil {
		return snippets
	}
	ctx, span := observability.StartStage(ctx, "evidence.external", attribute.Int("terms", len(terms)))
	defer span.End()

	for _, term := range terms {
		actx, cancel := h.adapterContext(ctx)
		vector, err := h.sources.Embedder.Embed(actx, term)
		if err != nil {
			cancel()
			h.sourceFailed(sourceEmbeddings, err, map[string]interface{}{"term": term})
			continue
		}
		matches, err := h.sources.Knowledge.Search(actx, vector, h.config.RAGTopK)
		cancel()
		if err != nil {
			h.sourceFailed(sourceKnowledge, err, map[string]interface{}{"term": term})
			continue
		}
		if matches == nil {
			matches = []string{}
		}
		snippets = append(snippets, models.ExternalSnippets{QueryTerm: term, Matches: matches})
	}
	return snippets
}

func (h *Handler) gatherWeb(ctx context.Context, term, question string) string {
	if h.sources.Web == nil {
		return ""
	}
	ctx, span := observability.StartStage(ctx, "evidence.web")
	defer span.End()

	actx, cancel := h.adapterContext(ctx)
	defer cancel()
	text, err := h.sources.Web.Search(actx, term, question)
	if err != nil {
		h.sourceFailed(sourceWeb, err, map[string]interface{}{"term": term})
		return ""
	}
	return strings.TrimSpace(text)
}

func (h *Handler) gatherLabor(ctx context.Context) string {
	if h.sources.Labor == nil {
		return ""
	}
	actx, cancel := h.adapterContext(ctx)
	defer cancel()
	figures, err := h.sources.Labor.LatestFigures(actx)
	if err != nil {
		h.sourceFailed(sourceLabor, err, nil)
		return ""
	}
	return figures
}

// gatherLegislation plans the search, then queries the planned jurisdiction
// and the federal one, each through the cache.
func (h *Handler) gatherLegislation(ctx context.Context, input *Input) (string, []models.Bill) {
	bills := []models.Bill{}
	if h.sources.Legislation == nil {
		return "", bills
	}
	ctx, span := observability.StartStage(ctx, "evidence.legislation")
	defer span.End()

	plan := h.planLawSearch(ctx, input)
	if len(plan.LawQueries) == 0 {
		return plan.Jurisdiction, bills
	}

	lc := h.sources.Cache
	if lc == nil || h.config.CacheScope == CacheScopeRequest {
		lc = cache.NewMemoryLegislationCache(h.config.CacheTTL)
	}

	for _, jurisdiction := range h.jurisdictions(plan.Jurisdiction) {
		key := cache.LegislationKey(jurisdiction, plan.LawQueries)
		if cached, ok := lc.Get(ctx, key); ok {
			metrics.RecordCacheLookup(true)
			bills = append(bills, cached...)
			continue
		}
		metrics.RecordCacheLookup(false)

		actx, cancel := h.adapterContext(ctx)
		found, err := h.sources.Legislation.Search(actx, jurisdiction, plan.LawQueries, h.config.MaxBillsPerJurisdiction)
		cancel()
		if err != nil {
			h.sourceFailed(sourceLegislation, err, map[string]interface{}{"jurisdiction": jurisdiction})
			continue
		}
		lc.Put(ctx, key, found)
		bills = append(bills, found...)
	}
	return plan.Jurisdiction, bills
}

func (h *Handler) jurisdictions(planned string) []string {
	out := []string{}
	for _, j := range []string{planned, h.config.FederalJurisdiction} {
		j = strings.ToUpper(strings.TrimSpace(j))
		if j == "" || (len(out) > 0 && out[0] == j) {
			continue
		}
		out = append(out, j)
	}
	return out
}

// planLawSearch asks the model for a jurisdiction and search phrases. When
// the plan is unusable it falls back to the company's first location and
// the classifier's search terms.
func (h *Handler) planLawSearch(ctx context.Context, input *Input) lawPlan {
	fallback := lawPlan{
		Jurisdiction: firstLocation(input.Company.Locations),
		LawQueries:   capList(input.Intent.SearchTerms, h.config.MaxLawQueries),
	}
	if h.sources.Planner == nil {
		return fallback
	}

	actx, cancel := h.adapterContext(ctx)
	defer cancel()
	raw, err := h.sources.Planner.Generate(actx, buildLawPrompt(input), h.config.PlannerMaxTokens)
	metrics.RecordGeneration("law_planner", err)
	if err != nil {
		h.sourceFailed(sourceLawPlanner, err, nil)
		return fallback
	}

	plan, err := parseLawPlan(raw, h.config.MaxLawQueries)
	if err != nil {
		h.logger.Warn("law search plan unparseable", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback
	}
	if plan.Jurisdiction == "" {
		plan.Jurisdiction = fallback.Jurisdiction
	}
	if len(plan.LawQueries) == 0 {
		plan.LawQueries = fallback.LawQueries
	}
	return plan
}

func (h *Handler) adapterContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.AdapterTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.config.AdapterTimeout)
}

func (h *Handler) sourceFailed(source string, err error, fields map[string]interface{}) {
	metrics.RecordEvidenceFailure(source)

	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		stdErr = apperrors.NewEvidenceSourceError(source, err)
	}
	logFields := map[string]interface{}{
		"source":    source,
		"errorCode": string(stdErr.Code),
		"error":     err.Error(),
	}
	for k, v := range fields {
		logFields[k] = v
	}
	h.logger.Warn("evidence source failed", logFields)
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
