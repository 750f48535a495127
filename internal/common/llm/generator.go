// Package llm wraps the text-generation and embedding providers.
package llm

import (
	"context"
	"regexp"
	"strings"
)

// Generator produces text for a prompt with an output-token ceiling.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f(ctx, prompt, maxTokens)
}

// A label is only removed on a fence line, before a newline, or when it is
// html or json; a word glued to a closing fence stays.
var fenceRe = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z]*[ \t]*$\n?|```(?:html|json)\\b|```[a-zA-Z]+[ \t]*\n|```")

// StripCodeFences removes ``` fences, with or without a language label,
// that models wrap around HTML and JSON.
func StripCodeFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}
