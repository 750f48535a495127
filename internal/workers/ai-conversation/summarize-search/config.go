// internal/workers/ai-conversation/summarize-search/config.go
package summarizesearch

import "time"

type Config struct {
	Timeout        time.Duration
	AdapterTimeout time.Duration
	MaxTokens      int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        90 * time.Second,
		AdapterTimeout: 20 * time.Second,
		MaxTokens:      3000,
	}
}
