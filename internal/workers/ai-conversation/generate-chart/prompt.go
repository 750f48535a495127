package generatechart

import (
	"fmt"
	"strings"

	"benefits-assistant/internal/models"
)

const jsonOnly = "Format your response ONLY as valid JSON. No comments, no prose, no code blocks."

var chartFormats = map[Kind]string{
	KindBar: `If there is no data provided, use your expert knowledge to fill in the graph as accurately as possible.
Always generate a graph.

Format your response as JSON like this:
{
  "title": "Graph Title",
  "xAxisLabel": "X Axis Label",
  "yAxisLabel": "Y Axis Label",
  "labels": ["Label1", "Label2"],
  "values": [10, 20],
  "bullets": [
    "What the graph shows",
    "What the labels for axes and values mean",
    "Data source or origin"
  ]
}`,
	KindLine: `If no data is provided, infer it using realistic values. Always return a complete graph with a descriptive title, proper axis labels and 3 bullet points explaining:
1. What the chart shows
2. What the axis labels mean, as specifically as possible (for example cost in millions of dollars)
3. The exact source of the information, with a URL when possible, from the documents, the web or your own knowledge

Return only this JSON format:
{
  "title": "Graph Title",
  "xAxisLabel": "X Axis Label",
  "yAxisLabel": "Y Axis Label",
  "labels": ["2021", "2022", "2023"],
  "datasets": [
    {
      "label": "Series name",
      "data": [5000, 8000, 12000],
      "borderColor": "rgb(75, 192, 192)",
      "backgroundColor": "rgba(75, 192, 192, 0.2)"
    }
  ],
  "bullets": ["What the chart shows", "What the axes mean", "Source"]
}`,
	KindPie: `If there is no data provided, use your expert knowledge to fill in the chart as accurately as possible.
Always generate a chart.

Format your response as JSON like this:
{
  "title": "Chart Title",
  "labels": ["Slice 1", "Slice 2", "Slice 3"],
  "values": [50, 30, 20],
  "colors": ["#FF6384", "#36A2EB", "#FFCE56"]
}`,
	KindCluster: `Chart instructions:
- A cluster chart has multiple data series (clusters) for each label. Draw as many clusters as the data supports.
- Always use non-zero rValues. rValues must align 1:1 with the values array of each cluster.
- Cluster names must be clear and meaningful, for example "High-Risk Group, Low Engagement".
- If no data is available, return an empty clusters array.

Format your response as JSON like this:
{
  "title": "Descriptive chart title",
  "xAxisLabel": "X Axis Label",
  "yAxisLabel": "Y Axis Label",
  "labels": ["Label1", "Label2", "Label3"],
  "clusters": [
    {"name": "Cluster 1 Name", "values": [10, 15, 20], "rValues": [5, 12, 8]}
  ],
  "bullets": [
    "What this chart shows",
    "What the labels for axes and clusters mean",
    "Where the data comes from"
  ]
}`,
}

func buildPrompt(kind Kind, message string, docs []models.DocumentSummary, webResults string) string {
	sections := []string{
		fmt.Sprintf("You are an expert data assistant. The user wants to generate a %s based on their message: %q.", kind.Noun(), message),
		chartFormats[kind],
		jsonOnly,
	}
	if len(docs) > 0 {
		sections = append(sections, "Extract relevant data from these documents to graph:\n"+models.FormatDocuments(docs))
	}
	if strings.TrimSpace(webResults) != "" {
		sections = append(sections, "Extract relevant data from these web search results to graph:\n"+strings.TrimSpace(webResults))
	}
	return strings.Join(sections, "\n\n")
}
