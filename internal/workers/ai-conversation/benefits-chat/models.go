// internal/workers/ai-conversation/benefits-chat/models.go
package benefitschat

import "benefits-assistant/internal/models"

type Input struct {
	UserID       string                    `json:"userId"`
	Message      string                    `json:"message"`
	ChatHistory  []models.ConversationTurn `json:"chatHistory"`
	UseWebSearch bool                      `json:"useWebSearch"`
	SelectedDocs []string                  `json:"selectedDocs"`
	RFPContext   string                    `json:"rfpContext,omitempty"`
}

// Path names the route a request took through the pipeline.
type Path string

const (
	PathFast    Path = "fast"
	PathGuarded Path = "guarded"
	PathFull    Path = "full"
)

type Output struct {
	Response models.ChatResponse `json:"response"`
	Path     Path                `json:"path"`
}
