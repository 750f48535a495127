// internal/workers/ai-conversation/classify-intent/config.go
package classifyintent

import "time"

type Config struct {
	Timeout        time.Duration
	MaxTokens      int
	HistoryTurns   int
	MaxSearchTerms int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		MaxTokens:      1000,
		HistoryTurns:   10,
		MaxSearchTerms: 3,
	}
}
