// internal/workers/ai-conversation/generate-chart/models.go
package generatechart

import "strings"

type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindPie     Kind = "pie"
	KindCluster Kind = "cluster"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBar, KindLine, KindPie, KindCluster:
		return k, true
	default:
		return "", false
	}
}

// Noun is how replies and errors refer to the chart.
func (k Kind) Noun() string {
	switch k {
	case KindBar:
		return "bar graph"
	case KindLine:
		return "line graph"
	case KindPie:
		return "pie chart"
	default:
		return "cluster chart"
	}
}

type Input struct {
	UserID       string   `json:"userId"`
	Message      string   `json:"message"`
	Kind         string   `json:"kind"`
	UseWebSearch bool     `json:"useWebSearch"`
	SelectedDocs []string `json:"selectedDocs"`
}

type Output struct {
	Chart map[string]interface{} `json:"chart"`
	Reply string                 `json:"reply"`
}
