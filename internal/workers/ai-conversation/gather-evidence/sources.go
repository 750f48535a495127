package gatherevidence

import (
	"context"

	"benefits-assistant/internal/common/cache"
	"benefits-assistant/internal/common/llm"
	"benefits-assistant/internal/models"
)

type DocumentStore interface {
	GetDocumentByTag(ctx context.Context, userID, tag string) (*models.DocumentSummary, error)
}

type KnowledgeSearcher interface {
	Search(ctx context.Context, vector []float64, topK int) ([]string, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query, questionContext string) (string, error)
}

type LegislationSource interface {
	Search(ctx context.Context, jurisdiction string, phrases []string, limit int) ([]models.Bill, error)
}

type LaborStatistics interface {
	LatestFigures(ctx context.Context) (string, error)
}

// Sources are the evidence adapters. Nil members are treated as
// unavailable and contribute nothing.
type Sources struct {
	Documents   DocumentStore
	Embedder    llm.Embedder
	Knowledge   KnowledgeSearcher
	Web         WebSearcher
	Legislation LegislationSource
	Labor       LaborStatistics
	Planner     llm.Generator
	Cache       cache.LegislationCache
}
