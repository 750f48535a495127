// Package cache holds the legislation search cache shared across requests.
package cache

import (
	"context"
	"sort"
	"strings"

	"benefits-assistant/internal/models"
)

// LegislationCache maps a (jurisdiction, search phrases) key to the bills
// matched for it. Writers racing on one key store equivalent values.
type LegislationCache interface {
	Get(ctx context.Context, key string) ([]models.Bill, bool)
	Put(ctx context.Context, key string, bills []models.Bill)
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// LegislationKey builds the cache key: upper-cased jurisdiction, "::", then
// the trimmed lower-cased phrases sorted and joined by commas.
func LegislationKey(jurisdiction string, phrases []string) string {
	terms := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)
	return strings.ToUpper(strings.TrimSpace(jurisdiction)) + "::" + strings.Join(terms, ",")
}

func cloneBills(bills []models.Bill) []models.Bill {
	out := make([]models.Bill, len(bills))
	copy(out, bills)
	return out
}
