package models

import (
	"fmt"
	"strings"
)

type EvidenceType string

const (
	EvidenceInternal    EvidenceType = "internal"
	EvidenceExternal    EvidenceType = "external"
	EvidenceLegislation EvidenceType = "legislation"
	EvidenceNone        EvidenceType = "none"
)

// ParseEvidenceType reports whether s names a known evidence type.
func ParseEvidenceType(s string) (EvidenceType, bool) {
	switch EvidenceType(s) {
	case EvidenceInternal, EvidenceExternal, EvidenceLegislation, EvidenceNone:
		return EvidenceType(s), true
	default:
		return "", false
	}
}

// Intent is the structured classification of a question.
type Intent struct {
	GoalSummary         string         `json:"goalSummary"`
	QuestionType        QuestionType   `json:"questionType"`
	EvidenceTypesNeeded []EvidenceType `json:"evidenceTypesNeeded"`
	SearchTerms         []string       `json:"searchTerms"`
	DocumentTags        []string       `json:"documentTags"`
}

// FallbackIntent is used whenever classification cannot be trusted.
func FallbackIntent() Intent {
	return Intent{
		GoalSummary:         "unknown",
		QuestionType:        QuestionTypeInternalAnalysis,
		EvidenceTypesNeeded: []EvidenceType{},
		SearchTerms:         []string{},
		DocumentTags:        []string{},
	}
}

// Needs reports whether the intent requested evidence of type t.
// "none" or an empty set means nothing is needed.
func (i Intent) Needs(t EvidenceType) bool {
	for _, et := range i.EvidenceTypesNeeded {
		if et == EvidenceNone {
			return false
		}
	}
	for _, et := range i.EvidenceTypesNeeded {
		if et == t {
			return true
		}
	}
	return false
}

// NeedsAny reports whether any fetch is required at all.
func (i Intent) NeedsAny() bool {
	return i.Needs(EvidenceInternal) || i.Needs(EvidenceExternal) || i.Needs(EvidenceLegislation)
}

// Bill is a legislative bill matched by the legislation search.
type Bill struct {
	BillID         int64  `json:"billId"`
	BillNumber     string `json:"billNumber"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Summary        string `json:"summary,omitempty"`
	Jurisdiction   string `json:"jurisdiction"`
	Session        string `json:"session,omitempty"`
	LastActionDate string `json:"lastActionDate"`
	URL            string `json:"url"`
}

// BillURL builds the public LegiScan page for a bill.
func BillURL(jurisdiction, billNumber, session string) string {
	return fmt.Sprintf("https://legiscan.com/%s/bill/%s/%s", jurisdiction, billNumber, session)
}

// ExternalSnippets holds the vector-search matches for one search term.
type ExternalSnippets struct {
	QueryTerm string   `json:"queryTerm"`
	Matches   []string `json:"matches"`
}

// EvidenceBundle is everything gathered for one request. Collections are
// never nil once produced by NewEvidenceBundle.
type EvidenceBundle struct {
	InternalDocumentSummaries []DocumentSummary  `json:"internalDocumentSummaries"`
	ExternalSnippets          []ExternalSnippets `json:"externalSnippets"`
	WebResults                string             `json:"webResults"`
	LegislativeBills          []Bill             `json:"legislativeBills"`
	LaborStatistics           string             `json:"laborStatistics"`
	Jurisdiction              string             `json:"jurisdiction,omitempty"`
}

func NewEvidenceBundle() EvidenceBundle {
	return EvidenceBundle{
		InternalDocumentSummaries: []DocumentSummary{},
		ExternalSnippets:          []ExternalSnippets{},
		LegislativeBills:          []Bill{},
	}
}

// Normalize replaces nil collections with empty ones.
func (b EvidenceBundle) Normalize() EvidenceBundle {
	if b.InternalDocumentSummaries == nil {
		b.InternalDocumentSummaries = []DocumentSummary{}
	}
	if b.ExternalSnippets == nil {
		b.ExternalSnippets = []ExternalSnippets{}
	}
	if b.LegislativeBills == nil {
		b.LegislativeBills = []Bill{}
	}
	return b
}

// IsEmpty reports whether no category holds any evidence.
func (b EvidenceBundle) IsEmpty() bool {
	if len(b.InternalDocumentSummaries) > 0 || len(b.LegislativeBills) > 0 {
		return false
	}
	if b.WebResults != "" || b.LaborStatistics != "" {
		return false
	}
	for _, s := range b.ExternalSnippets {
		if len(s.Matches) > 0 {
			return false
		}
	}
	return true
}

// FormatBills renders bills as a numbered list for prompts.
func FormatBills(bills []Bill) string {
	var b strings.Builder
	for i, bill := range bills {
		url := bill.URL
		if url == "" {
			url = "n/a"
		}
		fmt.Fprintf(&b, "%d. Bill Title: %s\n   Bill ID: %d\n   Bill Number: %s\n   Jurisdiction: %s\n   Description: %s\n   Last Action Date: %s\n   URL: %s\n",
			i+1, bill.Title, bill.BillID, bill.BillNumber, bill.Jurisdiction, bill.Description, bill.LastActionDate, url)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSnippets renders the knowledge-base matches grouped by search term.
// Terms without matches are skipped.
func FormatSnippets(snippets []ExternalSnippets) string {
	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if len(s.Matches) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("=== Results for [%s]:\n%s", s.QueryTerm, strings.Join(s.Matches, "\n\n")))
	}
	return strings.Join(parts, "\n\n")
}

// FormatDocuments renders document summaries with their names.
func FormatDocuments(docs []DocumentSummary) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, fmt.Sprintf("DOC NAME: %s\nSUMMARY: %s", d.Name, d.Summary))
	}
	return strings.Join(parts, "\n\n")
}
