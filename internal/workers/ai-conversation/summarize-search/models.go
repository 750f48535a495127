// internal/workers/ai-conversation/summarize-search/models.go
package summarizesearch

// Input is the SDOH research request. Only the locations and the quarter are
// required; the rest narrows the consultant's reading when present.
type Input struct {
	UserID             string   `json:"userId"`
	EmployeeLocations  string   `json:"employeeLocations"`
	Quarter            string   `json:"quarter"`
	NumberOfEmployees  string   `json:"numberOfEmployees,omitempty"`
	NAICSCode          string   `json:"naicsCode,omitempty"`
	PlanTypes          []string `json:"planTypes,omitempty"`
	AdditionalQuestion string   `json:"additionalQuestion,omitempty"`
}

type Output struct {
	Summary string `json:"summary"`
}
