// internal/workers/ai-conversation/enrich-web-search/config.go
package enrichwebsearch

import "time"

type Config struct {
	SearchAPIBaseURL string
	SearchAPIKey     string
	SearchEngineID   string
	Timeout          time.Duration
	MaxResults       int
	MinRelevance     float64
	MaxQueryLength   int
}

func LoadConfig() *Config {
	return &Config{
		SearchAPIBaseURL: "https://www.googleapis.com/customsearch/v1",
		Timeout:          10 * time.Second,
		MaxResults:       5,
		MinRelevance:     0.5,
		MaxQueryLength:   256,
	}
}
