package llm

import (
	"context"
	"errors"
	"strings"

	apperrors "benefits-assistant/internal/common/errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// OpenAIGenerator calls the chat completions API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, baseURL, model string, extra ...option.RequestOption) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(clientOptions(apiKey, baseURL, extra)...),
		model:  model,
	}
}

func clientOptions(apiKey, baseURL string, extra []option.RequestOption) []option.RequestOption {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return append(opts, extra...)
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(maxTokens))
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", apperrors.NewGenerationError("openai", err)
	}
	if len(completion.Choices) == 0 {
		return "", apperrors.NewGenerationError("openai", errors.New("no choices returned"))
	}
	return completion.Choices[0].Message.Content, nil
}

// OpenAIEmbedder calls the embeddings API.
type OpenAIEmbedder struct {
	client openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(apiKey, baseURL, model string, extra ...option.RequestOption) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: openai.NewClient(clientOptions(apiKey, baseURL, extra)...),
		model:  openai.EmbeddingModel(model),
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, apperrors.NewEvidenceSourceError("embeddings", err)
	}
	if len(resp.Data) == 0 {
		return nil, apperrors.NewEvidenceSourceError("embeddings", errors.New("no embedding returned"))
	}
	return resp.Data[0].Embedding, nil
}
