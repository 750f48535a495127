// internal/workers/infrastructure/select-template/templates.go
package selecttemplate

import (
	"fmt"

	"benefits-assistant/internal/models"
)

const (
	maxTokensShort    = 600
	maxTokensEmail    = 1500
	maxTokensStandard = 3000
	maxTokensLong     = 3500
	maxTokensReport   = 4500
)

const researchSources = `1. state/federal public health data
2. legislation/regulatory data
3. benefits trends
4. bureau of labor statistics`

// For returns the template for q. Every QuestionType has an arm; the default
// arm serves values outside the closed set.
func For(q models.QuestionType, company models.CompanyProfile) Template {
	c := company.WithDefaults()

	switch q {
	case models.QuestionTypeVendorRecommendation:
		return Template{QuestionType: q, MaxTokens: maxTokensLong, Body: `Suggest 3 point solution vendors (businesses) that target the issues stated above.
Only suggest real vendors that exist. Do not invent vendors or give generic names like "Vendor A".
Give specific expert vendors tailored to the circumstance.
In a table, evaluate the vendors by name (with a clickable link to their website), features, cost, engagement, NPS, user feedback and integration.
After the table, build a matrix of categories to score the vendors, assign a final score with justification, and highlight the top vendor.`}

	case models.QuestionTypeRFPGeneration:
		return Template{QuestionType: q, MaxTokens: maxTokensLong, RequiresRFPContext: true, Body: `Generate a Request for Proposals (RFP) for point solutions using the RFP context provided.
Include these sections: Introduction, Scope of Work, Vendor Requirements, Proposal Guidelines, Evaluation Criteria, Timeline.`}

	case models.QuestionTypeCostSavingsEstimate:
		return Template{QuestionType: q, MaxTokens: maxTokensStandard, Body: `Use scientific, mathematical and financial equations to give a quantifiable, numerical breakdown of cost savings and ROI for the situation above.
Justify every figure and show the equations you used.`}

	case models.QuestionTypeEmailDraft:
		return Template{QuestionType: q, MaxTokens: maxTokensEmail, Body: `Write a highly personalized email that is professional and concise and responds to the situation above.`}

	case models.QuestionTypeSurveyGeneration:
		return Template{QuestionType: q, MaxTokens: maxTokensStandard, Body: `Generate a valid HTML survey that addresses the situation above.
Checkboxes must be clickable and input fields must be real text inputs.`}

	case models.QuestionTypeCommunicationDraft:
		return Template{QuestionType: q, MaxTokens: maxTokensLong, Body: `Generate a detailed communication that serves the goal of the situation above.

You can draw on these sources as needed:
` + researchSources + `

Include, where useful, opportunities for cost savings and efficiency, recommendations, and next steps with an implementation timeline.`}

	case models.QuestionTypeRiskProfile:
		return Template{QuestionType: q, MaxTokens: maxTokensReport, Body: fmt.Sprintf(`Build a risk profile workflow for a company of %s employees operating in %s that predicts and forecasts clinical risk.

First, search the evidence and these sources to build the risk profiles, naming each source:
%s
5. industry benchmark data

Then write these sections:
(1) Persona analysis: segment employees into named groups by age, tenure and generation, with the percentage of employees in each group.
(2) SDOH: segment employees further by state and identify the specific deprivation index risks for each state (income, employment, education, housing, health, access to services, crime).
(3) Clinical risk forecast for each group.
(4) Hypotheses.
(5) Suggested benefits targeting: specific benefits for each population.
(6) KPIs: the success metrics to monitor.`, c.EmployeeCount, c.LocationList(), researchSources)}

	case models.QuestionTypePointSolutionEvaluation:
		return Template{QuestionType: q, MaxTokens: maxTokensReport, Body: fmt.Sprintf(`Write a structured point solution evaluation report with only the following sections.
Each section holds 3-5 specific, accurate bullet points.
1. Identify Needs: for a self-insured company of %s employees operating in %s, how does this point solution fill gaps in current benefits? Score each category with a justification.
2. HR & Implementation Support: onboarding, dedicated account managers, admin burden.
3. Integration Capabilities: compatibility with existing benefits, TPAs and data-sharing systems.
4. Data & Insights: data sources, analytics, update frequency, HIPAA and GDPR compliance.
5. Member Experience: usability, engagement channels (SMS, app), user feedback.
6. Customer Support: live support availability, response times, satisfaction ratings.
7. ROI & Outcomes: calculate cost savings with equations and quantify clinical impact, reporting and behavior change.
8. Scalability & Innovation: long-term adaptability, vendor growth, future-proofing.
9. Scoring Matrix: compare this point solution with real competing vendors (with clickable links) on 3-5 criteria.
10. Final Score: rate the point solution out of 10.
Do not add any other sections.`, c.EmployeeCount, c.LocationList())}

	case models.QuestionTypeExternalTrends:
		return Template{QuestionType: q, MaxTokens: maxTokensLong, Body: `Part 1: Search the evidence and these sources, naming each source:
` + researchSources + `
5. industry benchmark data

Part 2: What strategies are similar companies using successfully? Anonymize company names.

Part 3: Cross-reference my company's internal medical spend trends with the external findings to find correlations and nuanced insights. Reference my internal data specifically.

Part 4: Hypotheses.

Focus on specific, numerical, statistical insights from real sources such as NIH, SHRM and BLS. Do not make up facts.
Provide at least 10 bullet points.`}

	case models.QuestionTypeActionSuggestions:
		return Template{QuestionType: q, MaxTokens: maxTokensLong, Body: `First, tell me what you see: trends, correlations and insights across documents.
Then give at least 5 actionable suggestions as bullets. Each suggestion has:
- a priority (high, medium, low)
- a numerical breakdown of cost savings and ROI with justification
- a short description
- an estimated implementation timeline with steps
Actions can include recommending a vendor, drafting an email campaign, designing a survey and similar.
Tailor the answer to the company's top medical spend using the evidence below.`}

	case models.QuestionTypeIndustryBenchmarking:
		return Template{QuestionType: q, MaxTokens: maxTokensStandard, Body: `Imagine you are the CEO of a company of similar size, location and industry to mine, advising me.
State that the advice is based on companies of similar size and industry.
How would you tackle this issue, which strategies would you use, and what have similar companies done successfully?
Write in a technical, professional, objective tone, in third person passive.`}

	case models.QuestionTypeComplianceLaw:
		return Template{QuestionType: q, MaxTokens: maxTokensLong, IncludesLegislation: true, Body: `State the most up-to-date laws, regulations and state mandates relevant to the question.
For each law, list the bill name, ID, description, introduction date, state, URL (if available) and a justification.
Next, run a gap analysis to assess whether the current plans meet legal requirements.
Finally, if there are compliance risks, suggest specific actions to address them.`}

	case models.QuestionTypeMetricsMethodology:
		return Template{QuestionType: q, MaxTokens: maxTokensStandard, Body: `Define the metric precisely, including its numerator, denominator and time window.
Show the formula and a worked example with realistic numbers.
Explain which data sources are needed, common pitfalls, and how to benchmark the result.`}

	case models.QuestionTypeAmbiguousScope:
		return Template{QuestionType: q, MaxTokens: maxTokensShort, Body: `The question does not say whether it is about my company's data or external context.
Ask me to clarify which one I want answered before going further.`}

	case models.QuestionTypeOffTopic:
		return Template{QuestionType: q, MaxTokens: maxTokensShort, Body: `This question does not make sense or is off topic.
Ask me for clarification.`}

	case models.QuestionTypeInternalAnalysis:
		return internalAnalysis()

	default:
		return internalAnalysis()
	}
}

func internalAnalysis() Template {
	return Template{QuestionType: models.QuestionTypeInternalAnalysis, MaxTokens: maxTokensLong, IncludesCatalog: true, Body: `Look at the company data relevant to my question.
Point out trends, connections, similarities, differences and insights across multiple documents.
Give examples and run statistical or numerical analyses.
Do not only describe what is happening: offer hypotheses for why it is happening and what to do about it.
Focus on specific, quantitative insights.`}
}
