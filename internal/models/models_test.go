package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionType(t *testing.T) {
	tests := []struct {
		in   string
		want QuestionType
		ok   bool
	}{
		{"vendor-recommendation", QuestionTypeVendorRecommendation, true},
		{"a", QuestionTypeVendorRecommendation, true},
		{" B. ", QuestionTypeRFPGeneration, true},
		{`"m"`, QuestionTypeComplianceLaw, true},
		{"Z", QuestionTypeOffTopic, true},
		{"x", "", false},
		{"", "", false},
		{"vendor", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQuestionType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuestionTypes_CodesAreUnique(t *testing.T) {
	all := AllQuestionTypes()
	require.Len(t, all, 16)

	seen := map[string]QuestionType{}
	for _, qt := range all {
		assert.True(t, qt.Valid())
		assert.NotEmpty(t, qt.Description())
		prev, dup := seen[qt.Code()]
		assert.False(t, dup, "%s and %s share code %s", prev, qt, qt.Code())
		seen[qt.Code()] = qt
	}

	all[0] = "mutated"
	assert.Equal(t, QuestionTypeVendorRecommendation, AllQuestionTypes()[0])
}

func TestCompanyProfile_WithDefaults(t *testing.T) {
	got := CompanyProfile{Name: "Acme", Locations: []string{"CA", "NY"}}.WithDefaults()

	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, UnknownEmployeeCount, got.EmployeeCount)
	assert.Equal(t, UnknownIndustry, got.Industry)
	assert.Equal(t, "CA, NY", got.LocationList())
	assert.Equal(t,
		`I am a head of benefits and wellbeing at my company "Acme" which has Unknown Employee Count employees, operates in CA, NY, and operates in Unknown Industry industry.`,
		got.Describe())

	empty := CompanyProfile{}.WithDefaults()
	assert.Equal(t, DefaultCompanyProfile(), empty)
	assert.Equal(t, "unspecified locations", empty.LocationList())
}

func TestConversationHelpers(t *testing.T) {
	history := []ConversationTurn{
		{Role: RoleUser, Content: "one"},
		{Role: RoleAssistant, Content: "first reply"},
		{Role: RoleUser, Content: "  "},
		{Role: RoleUser, Content: "two"},
		{Role: RoleUser, Content: "three"},
		{Role: RoleAssistant, Content: ""},
	}

	recent := RecentUserTurns(history, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)
	assert.Len(t, RecentUserTurns(history, 10), 3)

	last, ok := LastAssistantTurn(history)
	require.True(t, ok)
	assert.Equal(t, "first reply", last.Content)

	_, ok = LastAssistantTurn(history[:1])
	assert.False(t, ok)
}

func TestIntent_Needs(t *testing.T) {
	i := Intent{EvidenceTypesNeeded: []EvidenceType{EvidenceInternal, EvidenceLegislation}}
	assert.True(t, i.Needs(EvidenceInternal))
	assert.False(t, i.Needs(EvidenceExternal))
	assert.True(t, i.NeedsAny())

	none := Intent{EvidenceTypesNeeded: []EvidenceType{EvidenceNone, EvidenceInternal}}
	assert.False(t, none.Needs(EvidenceInternal))
	assert.False(t, none.NeedsAny())

	assert.False(t, FallbackIntent().NeedsAny())
	assert.Equal(t, QuestionTypeInternalAnalysis, FallbackIntent().QuestionType)
}

func TestEvidenceBundle(t *testing.T) {
	var b EvidenceBundle
	assert.True(t, b.IsEmpty())

	data, err := json.Marshal(b.Normalize())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"internalDocumentSummaries":[]`)
	assert.Contains(t, string(data), `"legislativeBills":[]`)

	b.ExternalSnippets = []ExternalSnippets{{QueryTerm: "telehealth"}}
	assert.True(t, b.IsEmpty())

	b.LaborStatistics = "Unemployment rate: 4.1%"
	assert.False(t, b.IsEmpty())
}

func TestFormatters(t *testing.T) {
	bills := []Bill{{BillID: 7, BillNumber: "AB12", Title: "Paid Leave", Jurisdiction: "CA", Description: "Expands leave", LastActionDate: "2024-05-01"}}
	assert.Equal(t,
		"1. Bill Title: Paid Leave\n   Bill ID: 7\n   Bill Number: AB12\n   Jurisdiction: CA\n   Description: Expands leave\n   Last Action Date: 2024-05-01\n   URL: n/a",
		FormatBills(bills))

	snippets := []ExternalSnippets{
		{QueryTerm: "gym", Matches: []string{"a", "b"}},
		{QueryTerm: "empty"},
	}
	assert.Equal(t, "=== Results for [gym]:\na\n\nb", FormatSnippets(snippets))

	docs := []DocumentSummary{{Name: "claims.pdf", Summary: "Diabetes is the top spend."}}
	assert.Equal(t, "DOC NAME: claims.pdf\nSUMMARY: Diabetes is the top spend.", FormatDocuments(docs))

	assert.Equal(t, "https://legiscan.com/CA/bill/AB12/2023", BillURL("CA", "AB12", "2023"))
	_, ok := ParseEvidenceType("legislation")
	assert.True(t, ok)
	_, ok = ParseEvidenceType("news")
	assert.False(t, ok)
}
