// internal/workers/ai-conversation/compose-response/handler_test.go
package composeresponse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/llm"
	"benefits-assistant/internal/common/tokenizer"
	"benefits-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

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

// ==========================
// Test Helper Functions
// ==========================

type recordingGenerator struct {
	calls     int
	prompt    string
	maxTokens int
	reply     string
	err       error
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	g.calls++
	g.prompt, g.maxTokens = prompt, maxTokens
	return g.reply, g.err
}

func newTestHandler(t *testing.T, gen llm.Generator) *Handler {
	h := NewHandler(LoadConfig(), gen, tokenizer.Approximate{}, &TestLogger{t: t})
	h.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return h
}

func vendorInput() *Input {
	return &Input{
		Question: "What are vendor options for diabetes management?",
		Company: models.CompanyProfile{
			Name: "Acme", EmployeeCount: "1200", Locations: []string{"MA"}, Industry: "Manufacturing",
		},
		Intent: models.Intent{
			QuestionType:        models.QuestionTypeVendorRecommendation,
			EvidenceTypesNeeded: []models.EvidenceType{models.EvidenceExternal},
			SearchTerms:         []string{"diabetes management"},
		},
		Evidence: models.EvidenceBundle{
			ExternalSnippets: []models.ExternalSnippets{
				{QueryTerm: "diabetes management", Matches: []string{"Virta reverses type 2 diabetes."}},
			},
			WebResults:                "1. Livongo (https://livongo.com)",
			InternalDocumentSummaries: []models.DocumentSummary{},
			LegislativeBills:          []models.Bill{},
		},
		History: []models.ConversationTurn{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "<p>Earlier answer</p>"},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_VendorTemplate(t *testing.T) {
	gen := &recordingGenerator{reply: `<table>...</table> {"followUps":["A?","B?"]}`}
	h := newTestHandler(t, gen)

	out, err := h.Execute(context.Background(), vendorInput())
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, gen.reply, out.Raw)
	assert.Equal(t, models.QuestionTypeVendorRecommendation, out.QuestionType)
	assert.Equal(t, 3500, gen.maxTokens)
	assert.Equal(t, out.MaxTokens, gen.maxTokens)

	p := gen.prompt
	assert.Contains(t, p, "Today's date is March 14, 2026.")
	assert.Contains(t, p, `"Acme" which has 1200 employees`)
	assert.Contains(t, p, `"What are vendor options for diabetes management?"`)
	assert.Contains(t, p, "Suggest 3 point solution vendors")
	assert.Contains(t, p, "20% of your reply")
	assert.Contains(t, p, "Google Search Results:\n1. Livongo")
	assert.Contains(t, p, "=== Results for [diabetes management]:\nVirta reverses type 2 diabetes.")
	assert.Contains(t, p, "Your previous reply, for continuity:\n<p>Earlier answer</p>")
	assert.True(t, strings.HasSuffix(p, `{ "followUps": ["Follow-up question 1?", "Follow-up question 2?"] }`))

	assert.NotContains(t, p, "Documents from My Company")
	assert.NotContains(t, p, "Relevant Laws & Legislation")
	assert.NotContains(t, p, "RFP context")
}

func TestHandler_Execute_SectionOrder(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	_, err := newTestHandler(t, gen).Execute(context.Background(), vendorInput())
	require.NoError(t, err)

	order := []string{"You are an expert", "First, answer", "Next, continue", "Your previous reply", "Response format:", "Evidence:", "list the name of each source", "follow-up questions"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(gen.prompt, marker)
		require.NotEqual(t, -1, idx, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
}

func TestHandler_Execute_ComplianceCarriesLegislationInInstructions(t *testing.T) {
	in := vendorInput()
	in.Intent.QuestionType = models.QuestionTypeComplianceLaw
	in.Evidence.LegislativeBills = []models.Bill{{BillID: 7, BillNumber: "H123", Title: "Paid Family Leave", Jurisdiction: "MA"}}

	gen := &recordingGenerator{reply: "ok"}
	_, err := newTestHandler(t, gen).Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(gen.prompt, "Relevant Laws & Legislation:"))
	assert.Less(t, strings.Index(gen.prompt, "Paid Family Leave"), strings.Index(gen.prompt, "Response format:"))
}

func TestHandler_Execute_LegislationInEvidenceForOtherTemplates(t *testing.T) {
	in := vendorInput()
	in.Evidence.LegislativeBills = []models.Bill{{BillID: 7, Title: "Paid Family Leave"}}

	gen := &recordingGenerator{reply: "ok"}
	_, err := newTestHandler(t, gen).Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Greater(t, strings.Index(gen.prompt, "Paid Family Leave"), strings.Index(gen.prompt, "Evidence:"))
}

func TestHandler_Execute_InternalAnalysisListsCatalog(t *testing.T) {
	in := vendorInput()
	in.Intent.QuestionType = "not-a-type"
	in.Catalog = []models.DocumentRef{{Name: "2025 Claims", Tag: "claims"}, {Name: "Census", Tag: "census"}}

	gen := &recordingGenerator{reply: "ok"}
	out, err := newTestHandler(t, gen).Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.QuestionTypeInternalAnalysis, out.QuestionType)
	assert.Contains(t, gen.prompt, "All of my uploaded documents:\n- 2025 Claims (claims)\n- Census (census)")
}

func TestHandler_Execute_EvidenceBudget(t *testing.T) {
	in := vendorInput()
	in.Evidence.WebResults = strings.Repeat("word ", 2000)

	gen := &recordingGenerator{reply: "ok"}
	h := newTestHandler(t, gen)
	h.config.EvidenceTokenBudget = 100

	_, err := h.Execute(context.Background(), in)
	require.NoError(t, err)

	evidence := gen.prompt[strings.Index(gen.prompt, "Evidence:"):]
	evidence = evidence[:strings.Index(evidence, "After that, list")]
	assert.LessOrEqual(t, tokenizer.Approximate{}.Count(evidence), 100+10)
	assert.NotContains(t, gen.prompt, "Virta")
}

// ==========================
// RFP Guard Tests
// ==========================

func TestGuard(t *testing.T) {
	rfp := models.Intent{QuestionType: models.QuestionTypeRFPGeneration}

	res, ok := Guard(rfp, "")
	require.True(t, ok)
	assert.Contains(t, res.ReplyBody, "no RFP context was provided")
	assert.Equal(t, []string{}, res.FollowUpQuestions)

	_, ok = Guard(rfp, "   \n")
	assert.True(t, ok)

	_, ok = Guard(rfp, "Sourcing an EAP for 900 hourly staff")
	assert.False(t, ok)

	_, ok = Guard(models.Intent{QuestionType: models.QuestionTypeEmailDraft}, "")
	assert.False(t, ok)
}

func TestHandler_Execute_RFPWithoutContextMakesNoCall(t *testing.T) {
	in := vendorInput()
	in.Intent.QuestionType = models.QuestionTypeRFPGeneration

	gen := &recordingGenerator{reply: "should not be used"}
	out, err := newTestHandler(t, gen).Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 0, gen.calls)
	assert.True(t, out.Guarded)
	assert.Equal(t, RFPClarificationReply, out.Raw)
}

func TestHandler_Execute_RFPWithContext(t *testing.T) {
	in := vendorInput()
	in.Intent.QuestionType = models.QuestionTypeRFPGeneration
	in.RFPContext = "Musculoskeletal program for 900 warehouse staff"

	gen := &recordingGenerator{reply: "ok"}
	_, err := newTestHandler(t, gen).Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "RFP context:\nMusculoskeletal program for 900 warehouse staff")
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_GenerationFailureIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		gen      *recordingGenerator
		wantCode apperrors.ErrorCode
	}{
		{"provider error", &recordingGenerator{err: errors.New("500")}, apperrors.ErrCodeGenerationFailed},
		{"timeout", &recordingGenerator{err: context.DeadlineExceeded}, apperrors.ErrCodeGenerationTimeout},
		{"empty completion", &recordingGenerator{reply: "  "}, apperrors.ErrCodeGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newTestHandler(t, tt.gen).Execute(context.Background(), vendorInput())
			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.True(t, apperrors.HasCode(err, tt.wantCode))
		})
	}
}

func TestHandler_Execute_EmptyQuestion(t *testing.T) {
	gen := &recordingGenerator{}
	in := vendorInput()
	in.Question = " "

	_, err := newTestHandler(t, gen).Execute(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, gen.calls)
}

// ==========================
// Prompt Builder Tests
// ==========================

func TestPromptBuilder(t *testing.T) {
	b := &promptBuilder{}
	b.add(true, "", "intro").
		add(false, "Skipped", "body").
		add(true, "Blank", "  ").
		add(true, "Kept", " body ")

	assert.Equal(t, "intro\n\nKept:\nbody", b.String())
}

func TestSerializeEvidence_EmptyBundle(t *testing.T) {
	assert.Equal(t, "", serializeEvidence(models.NewEvidenceBundle(), true))
}
