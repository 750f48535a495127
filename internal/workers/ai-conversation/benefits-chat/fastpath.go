package benefitschat

import (
	"fmt"
	"strings"

	"benefits-assistant/internal/models"
)

// DeepResearchNotice is returned as the evidence of every fast-path answer.
const DeepResearchNotice = "Deep research responses are not provided when asking quick questions about only a specific document. " +
	"For a longer reasoning cycle, try selecting 'None' to allow your AI assistant to browse all files."

func buildFastPathPrompt(question string, company models.CompanyProfile, docs []models.DocumentSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior expert in employee benefits and public health. %s\n\n", company.Describe())
	fmt.Fprintf(&b, "Answer this question based on the document: %q\n\n", question)
	b.WriteString("Be specific and quantitative where the document allows it. Address me in the second person.\n")
	b.WriteString("Format the answer as simple HTML using <p>, <ul> and <li> only, with bullet points for lists.\n\n")
	b.WriteString("Document:\n")
	b.WriteString(models.FormatDocuments(docs))
	return b.String()
}
