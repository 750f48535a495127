// internal/workers/ai-conversation/enrich-web-search/handler.go
package enrichwebsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "benefits-assistant/internal/common/errors"
	commonhttp "benefits-assistant/internal/common/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType   = "enrich-web-search"
	sourceName = "web_search"
)

var (
	ErrEmptyQuery = errors.New("EMPTY_QUERY")
)

var whitespaceRe = regexp.MustCompile(`\s+`)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	client     *commonhttp.Client
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, client *commonhttp.Client, log Logger) *Handler {
	if client == nil {
		client = commonhttp.NewClient(config.Timeout)
	}
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		client:     client,
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
		if errors.Is(err, ErrEmptyQuery) || apperrors.HasCode(err, apperrors.ErrCodeEvidenceSourceTimeout) {
			h.errHandler.HandleJobError(ctx, client, job, err)
			return
		}
		h.logger.Warn("web search failed, returning empty results", map[string]interface{}{
			"error": err.Error(),
		})
		output = &Output{WebData: WebData{Sources: []Source{}}}
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Search runs one query and returns the ranked results as prompt-ready text.
func (h *Handler) Search(ctx context.Context, query, questionContext string) (string, error) {
	out, err := h.execute(ctx, &Input{Query: query, Context: questionContext})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	query := h.buildQuery(input.Query, input.Context)
	if query == "" {
		return nil, fmt.Errorf("%w: %w", ErrEmptyQuery, apperrors.NewInputValidationError("query is required"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.buildSearchURL(query), nil)
	if err != nil {
		return nil, apperrors.NewEvidenceSourceError(sourceName, err)
	}

	resp, err := h.client.DoWithContext(ctx, req)
	if err != nil {
		return nil, apperrors.NewEvidenceSourceError(sourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewEvidenceSourceError(sourceName,
			fmt.Errorf("search API returned %d", resp.StatusCode))
	}

	var apiResponse searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, apperrors.NewEvidenceSourceError(sourceName, fmt.Errorf("decode search response: %w", err))
	}

	sources := h.processResults(apiResponse.Items)

	h.logger.Info("web search completed", map[string]interface{}{
		"query":       query,
		"resultCount": len(sources),
	})

	return &Output{
		WebData: WebData{
			Sources: sources,
			Summary: h.generateSummary(sources),
		},
		Text: formatResults(query, sources),
	}, nil
}

// buildQuery joins the search term with the question it serves, collapsing
// whitespace and capping the length the API accepts.
func (h *Handler) buildQuery(query, questionContext string) string {
	q := whitespaceRe.ReplaceAllString(strings.TrimSpace(query+" "+questionContext), " ")
	if h.config.MaxQueryLength > 0 && len(q) > h.config.MaxQueryLength {
		n := h.config.MaxQueryLength
		for n > 0 && !utf8.RuneStart(q[n]) {
			n--
		}
		q = strings.TrimSpace(q[:n])
	}
	return q
}

func (h *Handler) buildSearchURL(query string) string {
	params := url.Values{}
	params.Add("key", h.config.SearchAPIKey)
	params.Add("cx", h.config.SearchEngineID)
	params.Add("q", query)
	params.Add("num", strconv.Itoa(h.numResults()))

	base, err := url.Parse(h.config.SearchAPIBaseURL)
	if err != nil {
		return h.config.SearchAPIBaseURL + "?" + params.Encode()
	}
	base.RawQuery = params.Encode()
	return base.String()
}

// numResults is clamped to the 1..10 range the Custom Search API accepts.
func (h *Handler) numResults() int {
	n := h.config.MaxResults
	if n <= 0 {
		return 5
	}
	if n > 10 {
		return 10
	}
	return n
}

func (h *Handler) processResults(items []searchItem) []Source {
	seen := make(map[string]bool)
	sources := []Source{}

	for _, item := range items {
		if item.Mime != "" && !strings.Contains(item.Mime, "html") {
			continue
		}
		if item.Link == "" || seen[item.Link] {
			continue
		}
		seen[item.Link] = true

		relevance := 1.0
		if strings.Contains(item.Link, ".gov") || strings.Contains(item.Link, ".edu") {
			relevance += 0.2
		}
		if strings.Contains(strings.ToLower(item.Title), "official") {
			relevance += 0.1
		}
		if relevance < h.config.MinRelevance {
			continue
		}

		snippet := plainText(item.HTMLSnippet)
		if snippet == "" {
			snippet = whitespaceRe.ReplaceAllString(strings.TrimSpace(item.Snippet), " ")
		}
		sources = append(sources, Source{
			URL:       item.Link,
			Title:     strings.TrimSpace(item.Title),
			Snippet:   snippet,
			Relevance: relevance,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Relevance > sources[j].Relevance
	})

	if h.config.MaxResults > 0 && len(sources) > h.config.MaxResults {
		sources = sources[:h.config.MaxResults]
	}
	return sources
}

// plainText drops the markup the API puts in htmlSnippet.
func plainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(doc.Text()), " ")
}

func (h *Handler) generateSummary(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}
	return sources[0].Snippet
}

func formatResults(query string, sources []Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top web results for %q:\n", query)
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, s.Title, s.URL, s.Snippet)
	}
	return strings.TrimRight(b.String(), "\n")
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
