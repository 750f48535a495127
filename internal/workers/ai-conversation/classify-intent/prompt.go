package classifyintent

import (
	"fmt"
	"strings"
	"time"

	"benefits-assistant/internal/models"
)

// EmptyCatalogEntry stands in for the catalog of a user with no documents.
var EmptyCatalogEntry = models.DocumentRef{Name: "No docs uploaded", Tag: "n/a"}

func buildPrompt(input *Input, historyTurns int, today time.Time) string {
	catalog := input.Catalog
	if len(catalog) == 0 {
		catalog = []models.DocumentRef{EmptyCatalogEntry}
	}

	var b strings.Builder
	b.WriteString("You are an expert in employee benefits and public health.\n")
	b.WriteString("Read the entire prompt and follow the instructions precisely.\n\n")
	fmt.Fprintf(&b, "Today's date is %s.\n", today.Format("January 2, 2006"))
	b.WriteString(input.Company.Describe())
	b.WriteString("\n")

	if turns := models.RecentUserTurns(input.History, historyTurns); len(turns) > 0 {
		b.WriteString("\nEarlier in this conversation I asked:\n")
		for _, turn := range turns {
			fmt.Fprintf(&b, "User: %s\n", turn.Content)
		}
	}

	fmt.Fprintf(&b, "\nI have asked you this question: %q\n\n", input.Question)

	b.WriteString("Your tasks:\n")
	b.WriteString("1. State my goal in one sentence. Return it as \"goalSummary\".\n")
	b.WriteString("2. Pick the question type. Return exactly ONE code under \"questionType\":\n")
	for _, qt := range models.AllQuestionTypes() {
		fmt.Fprintf(&b, "   %s) %s\n", qt.Code(), qt.Description())
	}
	b.WriteString("3. List the evidence needed under \"evidenceTypesNeeded\", any of:\n")
	b.WriteString("   \"internal\" (my company documents), \"external\" (public benefits research),\n")
	b.WriteString("   \"legislation\" (laws and bills), or [\"none\"] if no research is needed.\n")
	b.WriteString("4. List 1-3 short search terms for the external knowledge base under \"searchTerms\". Leave it empty if no external data is needed.\n")
	b.WriteString("5. From my company documents below, list the tag of EVERY document that could be relevant under \"documentTags\". Be broad. ")
	b.WriteString("The tag is the text in parentheses after the name, for example: ")
	b.WriteString(catalog[0].Tag)
	b.WriteString("\n\nMy company documents:\n")
	for _, doc := range catalog {
		fmt.Fprintf(&b, "%s (%s)\n", doc.Name, doc.Tag)
	}

	b.WriteString("\nReturn a single JSON object exactly like this and nothing else:\n")
	b.WriteString(`{"goalSummary": "...", "questionType": "a", "evidenceTypesNeeded": ["external"], "searchTerms": ["term1"], "documentTags": ["tag1"]}`)
	return b.String()
}
