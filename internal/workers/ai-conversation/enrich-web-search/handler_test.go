// internal/workers/ai-conversation/enrich-web-search/handler_test.go
package enrichwebsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	apperrors "benefits-assistant/internal/common/errors"
	commonhttp "benefits-assistant/internal/common/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	all := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	return all
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		SearchAPIBaseURL: "http://localhost:8080/search",
		SearchAPIKey:     "test-api-key",
		SearchEngineID:   "test-engine-id",
		Timeout:          3 * time.Second,
		MaxResults:       5,
		MinRelevance:     0.5,
		MaxQueryLength:   256,
	}
}

func searchServer(t *testing.T, items []map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(map[string]interface{}{"items": items})
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
}

func newTestHandler(t *testing.T, baseURL string) *Handler {
	config := createTestConfig()
	config.SearchAPIBaseURL = baseURL
	return NewHandler(config, commonhttp.NewClient(time.Second), NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-engine-id", r.URL.Query().Get("cx"))
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"items":[
			{"link":"https://www.shrm.org/diabetes","title":"Diabetes programs","snippet":"Plain snippet",
			 "htmlSnippet":"<b>Diabetes</b> management &amp; prevention","mime":"text/html"},
			{"link":"https://example.com/report.pdf","title":"PDF report","snippet":"PDF content","mime":"application/pdf"}
		]}`))
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)
	output, err := handler.Execute(context.Background(), &Input{
		Query:   "diabetes management",
		Context: "What are vendor options for diabetes management?",
	})
	require.NoError(t, err)

	assert.Equal(t, "diabetes management What are vendor options for diabetes management?", gotQuery)
	require.Len(t, output.WebData.Sources, 1)
	assert.Equal(t, "Diabetes management & prevention", output.WebData.Sources[0].Snippet)
	assert.Equal(t, "Diabetes management & prevention", output.WebData.Summary)
	assert.Contains(t, output.Text, "1. Diabetes programs (https://www.shrm.org/diabetes)")
}

func TestHandler_Search_ReturnsText(t *testing.T) {
	server := searchServer(t, []map[string]interface{}{
		{"link": "https://a.example.com", "title": "A", "snippet": "First"},
		{"link": "https://b.example.com", "title": "B", "snippet": "Second"},
	})
	defer server.Close()

	text, err := newTestHandler(t, server.URL).Search(context.Background(), "glp-1 coverage", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, `Top web results for "glp-1 coverage":`))
	assert.Contains(t, text, "2. B (https://b.example.com)\n   Second")
}

func TestHandler_Search_NoResults(t *testing.T) {
	server := searchServer(t, nil)
	defer server.Close()

	text, err := newTestHandler(t, server.URL).Search(context.Background(), "nothing", "")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	output, err := newTestHandler(t, server.URL).Execute(ctx, &Input{Query: "test"})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEvidenceSourceTimeout), "got: %v", err)
	assert.Nil(t, output)
}

func TestHandler_Execute_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	output, err := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Query: "test"})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEvidenceSourceFailed))
	assert.Nil(t, output)
}

func TestHandler_Execute_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>quota page</html>"))
	}))
	defer server.Close()

	_, err := newTestHandler(t, server.URL).Execute(context.Background(), &Input{Query: "test"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEvidenceSourceFailed))
}

func TestHandler_Execute_EmptyQuery(t *testing.T) {
	handler := newTestHandler(t, "http://127.0.0.1:1")

	_, err := handler.Execute(context.Background(), &Input{Query: "   ", Context: "\n"})
	assert.True(t, errors.Is(err, ErrEmptyQuery))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInputValidationFailed))
}

// ==========================
// Unit Tests
// ==========================

func TestHandler_BuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		context string
		want    string
	}{
		{"term only", "paid leave", "", "paid leave"},
		{"term and question", "paid leave", "Do we comply?", "paid leave Do we comply?"},
		{"whitespace cleanup", "  multiple   spaces ", "\tand\ttabs ", "multiple spaces and tabs"},
		{"question only", "", "What is a PBM?", "What is a PBM?"},
	}

	handler := newTestHandler(t, "http://localhost")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handler.buildQuery(tt.query, tt.context))
		})
	}
}

func TestHandler_BuildQuery_Capped(t *testing.T) {
	handler := newTestHandler(t, "http://localhost")
	handler.config.MaxQueryLength = 10

	assert.Equal(t, "abcde fghi", handler.buildQuery("abcde fghij klmno", ""))
}

func TestHandler_BuildQuery_CapKeepsWholeRunes(t *testing.T) {
	handler := newTestHandler(t, "http://localhost")
	handler.config.MaxQueryLength = 4

	got := handler.buildQuery("café crème", "")

	assert.Equal(t, "caf", got)
	assert.True(t, utf8.ValidString(got))
}

func TestHandler_BuildSearchURL(t *testing.T) {
	handler := newTestHandler(t, "http://localhost/search")
	url := handler.buildSearchURL("test query")

	assert.Contains(t, url, "key=test-api-key")
	assert.Contains(t, url, "cx=test-engine-id")
	assert.Contains(t, url, "q=test+query")
	assert.Contains(t, url, "num=5")
}

func TestHandler_NumResultsClamped(t *testing.T) {
	handler := newTestHandler(t, "http://localhost")

	handler.config.MaxResults = 50
	assert.Equal(t, 10, handler.numResults())
	handler.config.MaxResults = 0
	assert.Equal(t, 5, handler.numResults())
}

func TestHandler_ProcessResults(t *testing.T) {
	handler := newTestHandler(t, "http://localhost")

	sources := handler.processResults([]searchItem{
		{Link: "https://example.com/page", Title: "HTML", Snippet: "Content", Mime: "text/html"},
		{Link: "https://example.com/doc.pdf", Title: "PDF", Snippet: "PDF", Mime: "application/pdf"},
		{Link: "https://example.com/page", Title: "Duplicate", Snippet: "Dup", Mime: "text/html"},
		{Link: "", Title: "No link", Snippet: "x"},
		{Link: "https://www.dol.gov/fmla", Title: "Official FMLA guidance", Snippet: "Gov content"},
	})

	require.Len(t, sources, 2)
	assert.Equal(t, "https://www.dol.gov/fmla", sources[0].URL)
	assert.InDelta(t, 1.3, sources[0].Relevance, 0.001)
	assert.Equal(t, "https://example.com/page", sources[1].URL)
}

func TestHandler_ProcessResults_MaxResults(t *testing.T) {
	handler := newTestHandler(t, "http://localhost")

	items := make([]searchItem, 10)
	for i := range items {
		items[i] = searchItem{Link: "https://example.com/" + string(rune('a'+i)), Title: "Page", Snippet: "Content"}
	}
	assert.Len(t, handler.processResults(items), 5)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "", plainText(""))
	assert.Equal(t, "HSA limits for 2026 rise", plainText("<b>HSA</b> limits for<br>\n2026 <i>rise</i>"))
}

func TestHandler_GenerateSummary(t *testing.T) {
	handler := newTestHandler(t, "http://localhost")

	assert.Empty(t, handler.generateSummary([]Source{}))
	assert.Equal(t, "First snippet", handler.generateSummary([]Source{{Snippet: "First snippet"}, {Snippet: "Second"}}))
}
