// internal/workers/ai-conversation/compose-response/guard.go
package composeresponse

import (
	"strings"

	"benefits-assistant/internal/models"
	selecttemplate "benefits-assistant/internal/workers/infrastructure/select-template"
)

const RFPClarificationReply = "<p>I can draft a Request for Proposals, but no RFP context was provided. " +
	"Please share the type of point solution you are sourcing, the population it should serve, " +
	"your goals and budget, and your timeline, then ask again.</p>"

// Guard answers without a model call when the selected template cannot run
// with what the caller supplied. Today that is an RFP request with no RFP
// context.
func Guard(intent models.Intent, rfpContext string) (*models.GenerationResult, bool) {
	tmpl := selecttemplate.For(intent.QuestionType, models.CompanyProfile{})
	if !tmpl.RequiresRFPContext || strings.TrimSpace(rfpContext) != "" {
		return nil, false
	}
	return &models.GenerationResult{
		ReplyBody:         RFPClarificationReply,
		FollowUpQuestions: []string{},
	}, true
}
