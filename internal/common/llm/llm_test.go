package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/common/logger"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"html fence", "```html\n<h4>Hi</h4>\n```", "<h4>Hi</h4>"},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\ntext\n```", "text"},
		{"inline fence", "<p>x</p>```json {\"followUps\":[]}```", `<p>x</p> {"followUps":[]}`},
		{"no fence", "  plain  ", "plain"},
		{"word after closing fence", "<p>x</p>```Sources: KFF", "<p>x</p>Sources: KFF"},
		{"inline labelled opening fence", "Here:```xml\n<a/>```", "Here:<a/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var body map[string]interface{}
	url := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"<p>Answer</p>"}}]}`))
	})

	g := NewOpenAIGenerator("sk-test", url, "gpt-4o-mini", option.WithMaxRetries(0))
	text, err := g.Generate(context.Background(), "What is an HSA?", 1000)
	require.NoError(t, err)
	assert.Equal(t, "<p>Answer</p>", text)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 1000, body["max_completion_tokens"])
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "What is an HSA?", messages[0].(map[string]interface{})["content"])
}

func TestOpenAIGenerator_ErrorIsNormalized(t *testing.T) {
	url := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad","type":"invalid_request_error"}}`))
	})

	g := NewOpenAIGenerator("sk-test", url, "gpt-4o-mini", option.WithMaxRetries(0))
	_, err := g.Generate(context.Background(), "q", 10)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed))
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	url := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5]}],
			"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	})

	e := NewOpenAIEmbedder("sk-test", url, "text-embedding-3-small", option.WithMaxRetries(0))
	vec, err := e.Embed(context.Background(), "glp-1 coverage")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -0.5}, vec)
}

func TestFallbackGenerator(t *testing.T) {
	failing := GeneratorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", errors.New("primary down")
	})
	backup := GeneratorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "from backup", nil
	})

	f := NewFallbackGenerator(failing, backup, logger.NewNoOpLogger())
	text, err := f.Generate(context.Background(), "p", 10)
	require.NoError(t, err)
	assert.Equal(t, "from backup", text)

	noBackup := NewFallbackGenerator(failing, nil, logger.NewNoOpLogger())
	_, err = noBackup.Generate(context.Background(), "p", 10)
	assert.EqualError(t, err, "primary down")
}

func TestFallbackGenerator_SkipsBackupWhenContextDone(t *testing.T) {
	calls := 0
	failing := GeneratorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", ctx.Err()
	})
	backup := GeneratorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		return "x", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFallbackGenerator(failing, backup, logger.NewNoOpLogger()).Generate(ctx, "p", 10)
	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), " ", "")
	assert.Error(t, err)
}
