// internal/workers/infrastructure/build-response/models.go
package buildresponse

import "benefits-assistant/internal/models"

type Input struct {
	RequestID    string  `json:"requestId,omitempty"`
	QuestionType string  `json:"questionType"`
	Raw          string  `json:"raw"`
	Evidence     *string `json:"evidence"`
}

type Output struct {
	Response models.ChatResponse `json:"response"`
}
