// internal/workers/ai-conversation/compose-response/config.go
package composeresponse

import "time"

type Config struct {
	Timeout             time.Duration
	EvidenceTokenBudget int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             90 * time.Second,
		EvidenceTokenBudget: 6000,
	}
}
