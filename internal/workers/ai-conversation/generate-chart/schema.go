package generatechart

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

func chartSchema(k Kind) (map[string]interface{}, error) {
	data, err := schemaFiles.ReadFile(fmt.Sprintf("schemas/%s.json", k))
	if err != nil {
		return nil, err
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("chart schema %s: %w", k, err)
	}
	return schema, nil
}
