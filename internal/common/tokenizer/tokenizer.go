// Package tokenizer bounds the evidence payload sent to the composer.
package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts and truncates text by model tokens.
type Counter interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// Tiktoken counts with the BPE encoding of a model.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken resolves model as a model name first and as an encoding name
// second.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(model)
		if err != nil {
			return nil, err
		}
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	ids := t.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return t.enc.Decode(ids[:maxTokens])
}

// Approximate assumes four characters per token. It is used when the BPE
// tables cannot be loaded.
type Approximate struct{}

const charsPerToken = 4

func (Approximate) Count(text string) int {
	n := len([]rune(text))
	return (n + charsPerToken - 1) / charsPerToken
}

func (Approximate) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	runes := []rune(text)
	limit := maxTokens * charsPerToken
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \n\t"); i > limit/2 {
		cut = cut[:i]
	}
	return cut
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// New returns a tiktoken counter for model, or Approximate when the encoding
// is unavailable.
func New(model string, log Logger) Counter {
	t, err := NewTiktoken(model)
	if err != nil {
		if log != nil {
			log.Warn("tokenizer unavailable, using approximate counts", map[string]interface{}{
				"model": model,
				"error": err.Error(),
			})
		}
		return Approximate{}
	}
	return t
}
