// internal/workers/ai-conversation/summarize-evidence/handler.go
package summarizeevidence

import (
	"context"
	"encoding/json"
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
	TaskType = "summarize-evidence"
)

const (
	NoResearchSummary  = "No additional research was needed to answer this question."
	UnavailableSummary = "An evidence summary is not available for this response."
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

	output := h.Summarize(ctx, input.Evidence)

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
	return h.Summarize(ctx, input.Evidence), nil
}

// Summarize never fails. An empty bundle skips the model call and a failed
// call yields UnavailableSummary.
func (h *Handler) Summarize(ctx context.Context, evidence models.EvidenceBundle) *Output {
	if evidence.IsEmpty() {
		return &Output{Summary: NoResearchSummary}
	}

	start := time.Now()
	defer metrics.ObserveStage("summarize", start)

	genCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	raw, err := h.generator.Generate(genCtx, buildPrompt(evidence), h.config.MaxTokens)
	cancel()
	summary := strings.TrimSpace(strings.ReplaceAll(raw, "```", ""))
	if err == nil && summary == "" {
		err = fmt.Errorf("empty completion")
	}
	metrics.RecordGeneration("summarize", err)
	if err != nil {
		h.logger.Warn("evidence summary failed", map[string]interface{}{
			"error": err.Error(),
		})
		return &Output{Summary: UnavailableSummary}
	}

	return &Output{Summary: summary, Generated: true}
}

func buildPrompt(e models.EvidenceBundle) string {
	var b strings.Builder
	b.WriteString(`Summarize the following content in the style of a benefits consultant in employee benefits and public health.
Use a formal, structured and precise tone suitable for a research paper.
Include quantitative (numerical, statistical) insights as well as qualitative ones. Be as specific as possible.
Begin by explaining what this evidence summary is for, in first person ("I used [sources] to provide deep research to gather evidence to answer your question").
Start each point with a short title on the same line, separated by a colon.
End with the list of sources in a valid citation format. For company documents use the document name, and always include the company documents you used.
Do not add any extra commentary or conclusion.`)

	writeSection(&b, "Documents from My Company", models.FormatDocuments(e.InternalDocumentSummaries))
	writeSection(&b, "External/Public Data", models.FormatSnippets(e.ExternalSnippets))
	writeSection(&b, "Bureau of Labor Statistics", e.LaborStatistics)
	writeSection(&b, "Relevant Laws & Legislation", models.FormatBills(e.LegislativeBills))
	writeSection(&b, "Google Search Results", e.WebResults)

	b.WriteString("\n\nSummarized Insights (plain text, no bold font, bullet points only):")
	return b.String()
}

func writeSection(b *strings.Builder, label, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(b, "\n\n%s:\n%s", label, strings.TrimSpace(body))
}
