// internal/workers/ai-conversation/summarize-evidence/handler_test.go
package summarizeevidence

import (
	"context"
	"errors"
	"testing"
	"time"

	"benefits-assistant/internal/common/llm"
	"benefits-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(map[string]interface{}) Logger { return l }

func evidence() models.EvidenceBundle {
	b := models.NewEvidenceBundle()
	b.InternalDocumentSummaries = []models.DocumentSummary{{Name: "2025 Claims", Summary: "Diabetes drives 18% of spend."}}
	b.LegislativeBills = []models.Bill{{BillID: 9, BillNumber: "S12", Title: "Insulin Cost Cap", Jurisdiction: "MA"}}
	return b
}

func TestHandler_Summarize_EmptyBundleSkipsModel(t *testing.T) {
	calls := 0
	gen := llm.GeneratorFunc(func(context.Context, string, int) (string, error) {
		calls++
		return "x", nil
	})
	h := NewHandler(LoadConfig(), gen, &TestLogger{t: t})

	for _, b := range []models.EvidenceBundle{{}, models.NewEvidenceBundle(), {ExternalSnippets: []models.ExternalSnippets{{QueryTerm: "a"}}}} {
		out := h.Summarize(context.Background(), b)
		assert.Equal(t, NoResearchSummary, out.Summary)
		assert.False(t, out.Generated)
	}
	assert.Equal(t, 0, calls)
}

func TestHandler_Summarize_Success(t *testing.T) {
	var prompt string
	var maxTokens int
	gen := llm.GeneratorFunc(func(_ context.Context, p string, n int) (string, error) {
		prompt, maxTokens = p, n
		return "```\nI used your 2025 Claims report.\nSpend: diabetes leads.\n```", nil
	})
	h := NewHandler(LoadConfig(), gen, &TestLogger{t: t})

	out, err := h.Execute(context.Background(), &Input{Evidence: evidence()})
	require.NoError(t, err)

	assert.True(t, out.Generated)
	assert.Equal(t, "I used your 2025 Claims report.\nSpend: diabetes leads.", out.Summary)
	assert.Equal(t, 1000, maxTokens)
	assert.Contains(t, prompt, "Documents from My Company:\nDOC NAME: 2025 Claims")
	assert.Contains(t, prompt, "Relevant Laws & Legislation:\n1. Bill Title: Insulin Cost Cap")
	assert.Contains(t, prompt, "always include the company documents")
	assert.NotContains(t, prompt, "Google Search Results")
	assert.NotContains(t, prompt, "External/Public Data")
}

func TestHandler_Summarize_FailureIsNotFatal(t *testing.T) {
	for _, gen := range []llm.Generator{
		llm.GeneratorFunc(func(context.Context, string, int) (string, error) { return "", errors.New("429") }),
		llm.GeneratorFunc(func(context.Context, string, int) (string, error) { return "```", nil }),
	} {
		out, err := NewHandler(LoadConfig(), gen, &TestLogger{t: t}).Execute(context.Background(), &Input{Evidence: evidence()})
		require.NoError(t, err)
		assert.Equal(t, UnavailableSummary, out.Summary)
		assert.False(t, out.Generated)
	}
}

func TestHandler_Summarize_TimeoutIsNotFatal(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, _ string, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	cfg := LoadConfig()
	cfg.Timeout = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	out := NewHandler(cfg, gen, &TestLogger{t: t}).Summarize(ctx, evidence())

	assert.Equal(t, UnavailableSummary, out.Summary)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, ctx.Err())
}
