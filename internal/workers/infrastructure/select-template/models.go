// internal/workers/infrastructure/select-template/models.go
package selecttemplate

import "benefits-assistant/internal/models"

type Input struct {
	QuestionType string                `json:"questionType"`
	Company      models.CompanyProfile `json:"company"`
}

type Output struct {
	Template Template `json:"template"`
	Fallback bool     `json:"fallback"`
}

// Template is the instruction block the composer places after the direct
// answer, with the output budget that fits it.
type Template struct {
	QuestionType models.QuestionType `json:"questionType"`
	Body         string              `json:"body"`
	MaxTokens    int                 `json:"maxTokens"`
	// RequiresRFPContext marks templates that must not run without the
	// caller's RFP context.
	RequiresRFPContext bool `json:"requiresRfpContext"`
	// IncludesCatalog asks the composer to list every uploaded document.
	IncludesCatalog bool `json:"includesCatalog"`
	// IncludesLegislation places the bill list inside the instructions.
	IncludesLegislation bool `json:"includesLegislation"`
}
