package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// UpstreamError is a non-2xx answer from the geocoding provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("geocoding provider responded %d", e.Status)
}

// OpenMeteoClient queries the Open-Meteo geocoding search endpoint.
type OpenMeteoClient struct {
	baseURL  string
	language string
	http     *http.Client
}

func NewOpenMeteoClient(baseURL, language string, httpClient *http.Client) *OpenMeteoClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenMeteoClient{baseURL: baseURL, language: language, http: httpClient}
}

type openMeteoResponse struct {
	Results []Candidate `json:"results"`
}

func (c *OpenMeteoClient) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoding base url: %w", err)
	}
	q := u.Query()
	q.Set("name", query)
	q.Set("count", strconv.Itoa(limit))
	q.Set("language", c.language)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	return payload.Results, nil
}
