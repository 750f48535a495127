// internal/workers/ai-conversation/compose-response/prompt.go
package composeresponse

import (
	"fmt"
	"strings"
	"time"

	"benefits-assistant/internal/models"
	selecttemplate "benefits-assistant/internal/workers/infrastructure/select-template"
)

type section struct {
	label string
	body  string
}

// promptBuilder collects labeled sections in order. A section is only kept
// when its condition holds and its body is not blank.
type promptBuilder struct {
	sections []section
}

func (b *promptBuilder) add(include bool, label, body string) *promptBuilder {
	if include && strings.TrimSpace(body) != "" {
		b.sections = append(b.sections, section{label: label, body: strings.TrimSpace(body)})
	}
	return b
}

func (b *promptBuilder) String() string {
	parts := make([]string, 0, len(b.sections))
	for _, s := range b.sections {
		if s.label == "" {
			parts = append(parts, s.body)
			continue
		}
		parts = append(parts, s.label+":\n"+s.body)
	}
	return strings.Join(parts, "\n\n")
}

const responseFormat = `- Provide your response in valid HTML only. Use only valid tags; everything else is plain text.
- Do not include backslash characters.
- Use FontAwesome icons for visual structure.
- Use <h4> for headings and <p> for regular text. Keep titles small.
- You can color headings and icons with #007bff and #6a11cb.
- Prefer long, detailed answers over vague bullets.
- Make tables mobile responsive.`

const followUpDirective = `At the very end of your response, generate exactly two follow-up questions in the JSON format below.
They must be detailed, relevant to what you can help with (vendor selection, RFPs, cost savings estimates, emails, surveys, executive summaries, risk profiles, point solution evaluations, benefits trends), and phrased as questions to you, not to the user.
Return only this JSON after the answer, with no markdown and nothing after it:
{ "followUps": ["Follow-up question 1?", "Follow-up question 2?"] }`

// serializeEvidence renders the bundle as labeled sections. Legislation is
// left out when the template carries it itself.
func serializeEvidence(e models.EvidenceBundle, withLegislation bool) string {
	b := &promptBuilder{}
	b.add(e.WebResults != "", "Google Search Results", e.WebResults).
		add(true, "External/Public Data", models.FormatSnippets(e.ExternalSnippets)).
		add(e.LaborStatistics != "", "Bureau of Labor Statistics", e.LaborStatistics).
		add(withLegislation, "Relevant Laws & Legislation", models.FormatBills(e.LegislativeBills)).
		add(true, "Documents from My Company", models.FormatDocuments(e.InternalDocumentSummaries))
	return b.String()
}

func formatCatalog(catalog []models.DocumentRef) string {
	lines := make([]string, 0, len(catalog))
	for _, d := range catalog {
		lines = append(lines, fmt.Sprintf("- %s (%s)", d.Name, d.Tag))
	}
	return strings.Join(lines, "\n")
}

func buildPrompt(input *Input, tmpl selecttemplate.Template, evidence string, today time.Time) string {
	company := input.Company.WithDefaults()
	previous, hasPrevious := models.LastAssistantTurn(input.History)

	intro := fmt.Sprintf("You are an expert in employee benefits.\n%s\nToday's date is %s.\nI have asked you this question: %q",
		company.Describe(), today.Format("January 2, 2006"), input.Question)

	b := &promptBuilder{}
	b.add(true, "", intro).
		add(true, "", "First, answer my question as well as you can. This should be about 20% of your reply.").
		add(true, "", "Next, continue the answer by following these instructions, which should take up the remaining 80% of your reply:\n\n"+tmpl.Body).
		add(tmpl.RequiresRFPContext, "RFP context", input.RFPContext).
		add(tmpl.IncludesLegislation, "Relevant Laws & Legislation", models.FormatBills(input.Evidence.LegislativeBills)).
		add(tmpl.IncludesCatalog, "All of my uploaded documents", formatCatalog(input.Catalog)).
		add(hasPrevious, "Your previous reply, for continuity", previous.Content).
		add(true, "Response format", responseFormat).
		add(true, "Evidence", evidence).
		add(true, "", "After that, list the name of each source you used as bullets. Sources can be internal or external.").
		add(true, "", followUpDirective)
	return b.String()
}
