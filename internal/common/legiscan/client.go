// Package legiscan queries the LegiScan legislative API.
package legiscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	apperrors "benefits-assistant/internal/common/errors"
	commonhttp "benefits-assistant/internal/common/http"
	"benefits-assistant/internal/models"
)

const sourceName = "legiscan"

type Client struct {
	http    *commonhttp.Client
	baseURL string
	apiKey  string
}

func NewClient(httpClient *commonhttp.Client, baseURL, apiKey string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, apiKey: apiKey}
}

type masterListResponse struct {
	Status     string                     `json:"status"`
	MasterList map[string]json.RawMessage `json:"masterlist"`
	Alert      *struct {
		Message string `json:"message"`
	} `json:"alert,omitempty"`
}

type sessionInfo struct {
	SessionID   int64  `json:"session_id"`
	SessionName string `json:"session_name"`
	YearStart   int    `json:"year_start"`
}

type masterListEntry struct {
	BillID         int64  `json:"bill_id"`
	Number         string `json:"number"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Summary        string `json:"summary"`
	LastActionDate string `json:"last_action_date"`
	URL            string `json:"url"`
}

// MasterList returns every bill of the jurisdiction's current session in
// the order LegiScan lists them. Entries without an id or title are
// skipped.
func (c *Client) MasterList(ctx context.Context, jurisdiction string) ([]models.Bill, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("op", "getMasterList")
	q.Set("state", jurisdiction)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewEvidenceSourceError(sourceName, err)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, apperrors.NewEvidenceSourceError(sourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewEvidenceSourceError(sourceName, fmt.Errorf("status %d", resp.StatusCode))
	}

	var body masterListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.NewEvidenceSourceError(sourceName, fmt.Errorf("decode masterlist: %w", err))
	}
	if body.Status != "OK" {
		msg := "unknown error"
		if body.Alert != nil && body.Alert.Message != "" {
			msg = body.Alert.Message
		}
		return nil, apperrors.NewEvidenceSourceError(sourceName, errors.New(msg))
	}

	return parseMasterList(jurisdiction, body.MasterList), nil
}

func parseMasterList(jurisdiction string, raw map[string]json.RawMessage) []models.Bill {
	var session sessionInfo
	if s, ok := raw["session"]; ok {
		_ = json.Unmarshal(s, &session)
	}
	sessionLabel := session.SessionName
	if session.YearStart > 0 {
		sessionLabel = strconv.Itoa(session.YearStart)
	}

	keys := make([]int, 0, len(raw))
	for k := range raw {
		if n, err := strconv.Atoi(k); err == nil {
			keys = append(keys, n)
		}
	}
	sort.Ints(keys)

	bills := make([]models.Bill, 0, len(keys))
	for _, k := range keys {
		var e masterListEntry
		if err := json.Unmarshal(raw[strconv.Itoa(k)], &e); err != nil {
			continue
		}
		if e.BillID == 0 || strings.TrimSpace(e.Title) == "" {
			continue
		}
		billURL := e.URL
		if billURL == "" {
			billURL = models.BillURL(jurisdiction, e.Number, sessionLabel)
		}
		bills = append(bills, models.Bill{
			BillID:         e.BillID,
			BillNumber:     e.Number,
			Title:          e.Title,
			Description:    e.Description,
			Summary:        e.Summary,
			Jurisdiction:   jurisdiction,
			Session:        session.SessionName,
			LastActionDate: e.LastActionDate,
			URL:            billURL,
		})
	}
	return bills
}

// Search fetches the jurisdiction's master list and keeps the first limit
// bills whose title, description or summary contains any phrase,
// case-insensitively.
func (c *Client) Search(ctx context.Context, jurisdiction string, phrases []string, limit int) ([]models.Bill, error) {
	bills, err := c.MasterList(ctx, jurisdiction)
	if err != nil {
		return nil, err
	}
	return FilterBills(bills, phrases, limit), nil
}

func FilterBills(bills []models.Bill, phrases []string, limit int) []models.Bill {
	terms := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			terms = append(terms, t)
		}
	}

	matched := []models.Bill{}
	if len(terms) == 0 {
		return matched
	}
	for _, b := range bills {
		if limit > 0 && len(matched) >= limit {
			break
		}
		haystack := strings.ToLower(b.Title + " " + b.Description + " " + b.Summary)
		for _, t := range terms {
			if strings.Contains(haystack, t) {
				matched = append(matched, b)
				break
			}
		}
	}
	return matched
}
