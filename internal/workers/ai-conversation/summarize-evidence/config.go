// internal/workers/ai-conversation/summarize-evidence/config.go
package summarizeevidence

import "time"

type Config struct {
	Timeout   time.Duration
	MaxTokens int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   60 * time.Second,
		MaxTokens: 1000,
	}
}
