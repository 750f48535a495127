package gatherevidence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"benefits-assistant/internal/common/llm"
)

var errNoPlan = errors.New("no JSON object in law planner output")

func buildLawPrompt(input *Input) string {
	c := input.Company.WithDefaults()

	var b strings.Builder
	b.WriteString("You are an agent that writes the most relevant queries for the LegiScan API.\n")
	fmt.Fprintf(&b, "Find the laws most relevant to this question: %q\n", input.Question)
	fmt.Fprintf(&b, "I am a head of benefits. My company has %s employees, operates in %s, and operates in %s industry.\n\n",
		c.EmployeeCount, c.LocationList(), c.Industry)
	b.WriteString("First, give the one state to search as its two-letter abbreviation, for example MA.\n")
	b.WriteString("Then give 3 search queries: simple words and short phrases likely to appear in the title or description of a bill. ")
	b.WriteString("Queries must not contain state names. Do not return an empty response.\n\n")
	b.WriteString("Return only this JSON object, with no code fences or other characters:\n")
	b.WriteString(`{"jurisdiction": "MA", "lawQueries": ["first query", "second query", "third query"]}`)
	return b.String()
}

func parseLawPlan(raw string, maxQueries int) (lawPlan, error) {
	text := llm.StripCodeFences(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return lawPlan{}, errNoPlan
	}

	var plan lawPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &plan); err != nil {
		return lawPlan{}, fmt.Errorf("decode law plan: %w", err)
	}

	jurisdiction := plan.Jurisdiction
	if strings.TrimSpace(jurisdiction) == "" {
		jurisdiction = plan.State
	}
	return lawPlan{
		Jurisdiction: strings.ToUpper(strings.TrimSpace(jurisdiction)),
		LawQueries:   capList(plan.LawQueries, maxQueries),
	}, nil
}

func capList(values []string, limit int) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// firstLocation returns the first location that looks like a two-letter
// state code.
func firstLocation(locations []string) string {
	for _, l := range locations {
		l = strings.ToUpper(strings.TrimSpace(l))
		if len(l) == 2 {
			return l
		}
	}
	return ""
}
