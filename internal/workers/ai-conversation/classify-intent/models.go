// internal/workers/ai-conversation/classify-intent/models.go
package classifyintent

import "benefits-assistant/internal/models"

type Input struct {
	Question string                    `json:"question"`
	Company  models.CompanyProfile     `json:"company"`
	Catalog  []models.DocumentRef      `json:"catalog"`
	History  []models.ConversationTurn `json:"chatHistory"`
}

type Output struct {
	Intent   models.Intent `json:"intent"`
	Fallback bool          `json:"fallback"`
}

// modelIntent is the JSON object the model is asked to emit. The older
// key names are still accepted.
type modelIntent struct {
	GoalSummary         string   `json:"goalSummary"`
	GoalSentence        string   `json:"goalSentence"`
	QuestionType        string   `json:"questionType"`
	EvidenceTypesNeeded []string `json:"evidenceTypesNeeded"`
	SearchTerms         []string `json:"searchTerms"`
	RAGQueries          []string `json:"ragQueries"`
	DocumentTags        []string `json:"documentTags"`
	DocTags             []string `json:"docTags"`
}
