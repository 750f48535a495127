package llm

import (
	"context"
)

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// FallbackGenerator tries the primary provider and, when it fails, the
// secondary one. A nil secondary disables the fallback.
type FallbackGenerator struct {
	primary   Generator
	secondary Generator
	logger    Logger
}

func NewFallbackGenerator(primary, secondary Generator, log Logger) *FallbackGenerator {
	return &FallbackGenerator{primary: primary, secondary: secondary, logger: log}
}

func (f *FallbackGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	text, err := f.primary.Generate(ctx, prompt, maxTokens)
	if err == nil || f.secondary == nil || ctx.Err() != nil {
		return text, err
	}

	f.logger.Warn("primary generator failed, using fallback", map[string]interface{}{
		"error": err.Error(),
	})
	return f.secondary.Generate(ctx, prompt, maxTokens)
}
