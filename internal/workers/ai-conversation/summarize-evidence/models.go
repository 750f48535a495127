// internal/workers/ai-conversation/summarize-evidence/models.go
package summarizeevidence

import "benefits-assistant/internal/models"

type Input struct {
	Evidence models.EvidenceBundle `json:"evidence"`
}

type Output struct {
	Summary   string `json:"summary"`
	Generated bool   `json:"generated"`
}
