// Package bls reads headline labor figures from the Bureau of Labor
// Statistics time-series API.
package bls

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "benefits-assistant/internal/common/errors"
	commonhttp "benefits-assistant/internal/common/http"
)

const sourceName = "bls"

type Client struct {
	http      *commonhttp.Client
	baseURL   string
	apiKey    string
	seriesIDs []string
}

func NewClient(httpClient *commonhttp.Client, baseURL, apiKey string, seriesIDs []string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, apiKey: apiKey, seriesIDs: seriesIDs}
}

type timeSeriesRequest struct {
	SeriesID        []string `json:"seriesid"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type timeSeriesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year       string `json:"year"`
				PeriodName string `json:"periodName"`
				Value      string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// LatestFigures returns one "series: year-period - value" line per series
// holding data.
func (c *Client) LatestFigures(ctx context.Context) (string, error) {
	if len(c.seriesIDs) == 0 {
		return "", nil
	}

	payload, err := json.Marshal(timeSeriesRequest{SeriesID: c.seriesIDs, RegistrationKey: c.apiKey})
	if err != nil {
		return "", apperrors.NewEvidenceSourceError(sourceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewEvidenceSourceError(sourceName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return "", apperrors.NewEvidenceSourceError(sourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewEvidenceSourceError(sourceName, fmt.Errorf("status %d", resp.StatusCode))
	}

	var body timeSeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperrors.NewEvidenceSourceError(sourceName, fmt.Errorf("decode response: %w", err))
	}
	if body.Status != "" && body.Status != "REQUEST_SUCCEEDED" {
		return "", apperrors.NewEvidenceSourceError(sourceName, fmt.Errorf("%s: %s", body.Status, strings.Join(body.Message, "; ")))
	}

	lines := make([]string, 0, len(body.Results.Series))
	for _, s := range body.Results.Series {
		if len(s.Data) == 0 {
			continue
		}
		latest := s.Data[0]
		lines = append(lines, fmt.Sprintf("%s: %s-%s - %s", s.SeriesID, latest.Year, latest.PeriodName, latest.Value))
	}
	return strings.Join(lines, "\n"), nil
}
