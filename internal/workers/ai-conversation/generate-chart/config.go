// internal/workers/ai-conversation/generate-chart/config.go
package generatechart

import "time"

type Config struct {
	Timeout        time.Duration
	AdapterTimeout time.Duration
	MaxTokens      int
	LineMaxTokens  int
	SearchContext  string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        60 * time.Second,
		AdapterTimeout: 20 * time.Second,
		MaxTokens:      500,
		LineMaxTokens:  700,
		SearchContext:  "statistical trends",
	}
}

func (c *Config) maxTokens(k Kind) int {
	if k == KindLine {
		return c.LineMaxTokens
	}
	return c.MaxTokens
}
