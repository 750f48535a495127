package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "benefits-assistant/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// KnowledgeIndex runs nearest-neighbour searches over the external
// knowledge base of benefits articles and survey excerpts.
type KnowledgeIndex struct {
	client      *elasticsearch.Client
	index       string
	vectorField string
	textField   string
}

func NewKnowledgeIndex(client *elasticsearch.Client, index, vectorField, textField string) *KnowledgeIndex {
	return &KnowledgeIndex{
		client:      client,
		index:       index,
		vectorField: vectorField,
		textField:   textField,
	}
}

type knnSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns the text of the k nearest passages to vector, best first.
func (k *KnowledgeIndex) Search(ctx context.Context, vector []float64, topK int) ([]string, error) {
	if topK <= 0 {
		return []string{}, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          k.vectorField,
			"query_vector":   vector,
			"k":              topK,
			"num_candidates": topK * 10,
		},
		"_source": []string{k.textField},
		"size":    topK,
	})
	if err != nil {
		return nil, apperrors.NewEvidenceSourceError("knowledge_index", err)
	}

	req := esapi.SearchRequest{
		Index: []string{k.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, k.client)
	if err != nil {
		return nil, apperrors.NewEvidenceSourceError("knowledge_index", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewEvidenceSourceError("knowledge_index", fmt.Errorf("search failed: %s", res.Status()))
	}

	var r knnSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewEvidenceSourceError("knowledge_index", err)
	}

	matches := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		text, ok := hit.Source[k.textField].(string)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		matches = append(matches, text)
	}
	return matches, nil
}
