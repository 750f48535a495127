// internal/workers/ai-conversation/compose-response/models.go
package composeresponse

import "benefits-assistant/internal/models"

type Input struct {
	Question   string                    `json:"question"`
	Company    models.CompanyProfile     `json:"company"`
	Intent     models.Intent             `json:"intent"`
	Evidence   models.EvidenceBundle     `json:"evidence"`
	History    []models.ConversationTurn `json:"chatHistory"`
	Catalog    []models.DocumentRef      `json:"catalog"`
	RFPContext string                    `json:"rfpContext"`
}

type Output struct {
	Raw          string              `json:"raw"`
	QuestionType models.QuestionType `json:"questionType"`
	MaxTokens    int                 `json:"maxTokens"`
	Guarded      bool                `json:"guarded"`
}
