// internal/workers/ai-conversation/gather-evidence/config.go
package gatherevidence

import "time"

const (
	CacheScopeProcess = "process"
	CacheScopeRequest = "request"
)

type Config struct {
	Timeout                 time.Duration
	AdapterTimeout          time.Duration
	RAGTopK                 int
	MaxBillsPerJurisdiction int
	MaxLawQueries           int
	FederalJurisdiction     string
	PlannerMaxTokens        int
	CacheScope              string
	CacheTTL                time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:                 60 * time.Second,
		AdapterTimeout:          20 * time.Second,
		RAGTopK:                 5,
		MaxBillsPerJurisdiction: 10,
		MaxLawQueries:           3,
		FederalJurisdiction:     "US",
		PlannerMaxTokens:        1000,
		CacheScope:              CacheScopeProcess,
		CacheTTL:                24 * time.Hour,
	}
}
