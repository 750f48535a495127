package models

import "strings"

// QuestionType is the closed set of response strategies the classifier can
// choose. Every value has a one-letter code used in the classifier prompt.
type QuestionType string

const (
	QuestionTypeVendorRecommendation    QuestionType = "vendor-recommendation"
	QuestionTypeRFPGeneration           QuestionType = "rfp-generation"
	QuestionTypeCostSavingsEstimate     QuestionType = "cost-savings-estimate"
	QuestionTypeEmailDraft              QuestionType = "email-draft"
	QuestionTypeSurveyGeneration        QuestionType = "survey-generation"
	QuestionTypeCommunicationDraft      QuestionType = "communication-draft"
	QuestionTypeRiskProfile             QuestionType = "risk-profile"
	QuestionTypePointSolutionEvaluation QuestionType = "point-solution-evaluation"
	QuestionTypeExternalTrends          QuestionType = "external-trends"
	QuestionTypeInternalAnalysis        QuestionType = "internal-analysis"
	QuestionTypeActionSuggestions       QuestionType = "action-suggestions"
	QuestionTypeIndustryBenchmarking    QuestionType = "industry-benchmarking"
	QuestionTypeComplianceLaw           QuestionType = "compliance-law"
	QuestionTypeMetricsMethodology      QuestionType = "metrics-methodology"
	QuestionTypeAmbiguousScope          QuestionType = "ambiguous-scope"
	QuestionTypeOffTopic                QuestionType = "off-topic"
)

type questionTypeInfo struct {
	code        string
	description string
}

var questionTypes = []QuestionType{
	QuestionTypeVendorRecommendation,
	QuestionTypeRFPGeneration,
	QuestionTypeCostSavingsEstimate,
	QuestionTypeEmailDraft,
	QuestionTypeSurveyGeneration,
	QuestionTypeCommunicationDraft,
	QuestionTypeRiskProfile,
	QuestionTypePointSolutionEvaluation,
	QuestionTypeExternalTrends,
	QuestionTypeInternalAnalysis,
	QuestionTypeActionSuggestions,
	QuestionTypeIndustryBenchmarking,
	QuestionTypeComplianceLaw,
	QuestionTypeMetricsMethodology,
	QuestionTypeAmbiguousScope,
	QuestionTypeOffTopic,
}

var questionTypeInfos = map[QuestionType]questionTypeInfo{
	QuestionTypeVendorRecommendation:    {"a", "Vendor question"},
	QuestionTypeRFPGeneration:           {"b", "RFP question"},
	QuestionTypeCostSavingsEstimate:     {"c", "Cost savings estimation"},
	QuestionTypeEmailDraft:              {"d", "Write an email / create an email campaign"},
	QuestionTypeSurveyGeneration:        {"e", "Make a survey"},
	QuestionTypeCommunicationDraft:      {"f", "Write a communication / proposal / paper / executive summary"},
	QuestionTypeRiskProfile:             {"g", "Create a risk profile"},
	QuestionTypePointSolutionEvaluation: {"h", "Evaluating a point solution"},
	QuestionTypeExternalTrends:          {"i", "Give me external info / understanding benefits trends / bigger picture / other data from external public data"},
	QuestionTypeInternalAnalysis:        {"j", "Give me info specifically about my internal company data"},
	QuestionTypeActionSuggestions:       {"k", "Suggest actions / what can I do about this issue?"},
	QuestionTypeIndustryBenchmarking:    {"l", "Industry benchmarking / what are other companies similar to me doing?"},
	QuestionTypeComplianceLaw:           {"m", "Compliance and/or law related question"},
	QuestionTypeMetricsMethodology:      {"n", "How is a metric defined or calculated / what methodology should I use to measure this?"},
	QuestionTypeAmbiguousScope:          {"y", "The question could be about either my company or public data"},
	QuestionTypeOffTopic:                {"z", "The question is gibberish, doesn't make sense or it's off topic"},
}

// AllQuestionTypes lists every question type in prompt order.
func AllQuestionTypes() []QuestionType {
	out := make([]QuestionType, len(questionTypes))
	copy(out, questionTypes)
	return out
}

// Code is the one-letter code shown to the classifier.
func (q QuestionType) Code() string {
	return questionTypeInfos[q].code
}

func (q QuestionType) Description() string {
	return questionTypeInfos[q].description
}

func (q QuestionType) Valid() bool {
	_, ok := questionTypeInfos[q]
	return ok
}

// ParseQuestionType accepts either a letter code or a tag name.
func ParseQuestionType(s string) (QuestionType, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), `"').`))
	if s == "" {
		return "", false
	}
	if qt := QuestionType(s); qt.Valid() {
		return qt, true
	}
	for _, qt := range questionTypes {
		if questionTypeInfos[qt].code == s {
			return qt, true
		}
	}
	return "", false
}
