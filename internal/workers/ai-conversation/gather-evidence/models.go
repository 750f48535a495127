// internal/workers/ai-conversation/gather-evidence/models.go
package gatherevidence

import "benefits-assistant/internal/models"

type Input struct {
	UserID       string                `json:"userId"`
	Question     string                `json:"question"`
	Company      models.CompanyProfile `json:"company"`
	Intent       models.Intent         `json:"intent"`
	UseWebSearch bool                  `json:"useWebSearch"`
}

type Output struct {
	Evidence models.EvidenceBundle `json:"evidence"`
}

// lawPlan is the planner's answer: where to search and for what.
type lawPlan struct {
	Jurisdiction string   `json:"jurisdiction"`
	State        string   `json:"state"`
	LawQueries   []string `json:"lawQueries"`
}
