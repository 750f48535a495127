package benefitschat

import (
	"context"

	"benefits-assistant/internal/models"
	classifyintent "benefits-assistant/internal/workers/ai-conversation/classify-intent"
	composeresponse "benefits-assistant/internal/workers/ai-conversation/compose-response"
	gatherevidence "benefits-assistant/internal/workers/ai-conversation/gather-evidence"
	summarizeevidence "benefits-assistant/internal/workers/ai-conversation/summarize-evidence"
)

// ProfileStore is the read side of the document store used by the pipeline.
type ProfileStore interface {
	GetCompanyProfile(ctx context.Context, userID string) (*models.CompanyProfile, error)
	GetAllDocumentTags(ctx context.Context, userID string) ([]models.DocumentRef, error)
	GetDocumentsByIDs(ctx context.Context, userID string, ids []string) ([]models.DocumentSummary, error)
}

type IntentClassifier interface {
	Execute(ctx context.Context, input *classifyintent.Input) (*classifyintent.Output, error)
}

type EvidenceGatherer interface {
	Execute(ctx context.Context, input *gatherevidence.Input) (*gatherevidence.Output, error)
}

type ResponseComposer interface {
	Execute(ctx context.Context, input *composeresponse.Input) (*composeresponse.Output, error)
}

type EvidenceSummarizer interface {
	Summarize(ctx context.Context, evidence models.EvidenceBundle) *summarizeevidence.Output
}

// Stages are the pipeline collaborators. All members are required.
type Stages struct {
	Store      ProfileStore
	Classifier IntentClassifier
	Gatherer   EvidenceGatherer
	Composer   ResponseComposer
	Summarizer EvidenceSummarizer
}
