package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultZodiacType  = "tropical"
	DefaultHouseSystem = "placidus"
	DefaultThemeType   = "light"
	DefaultSize        = 900
)

var ErrMissingAPIKey = errors.New("FREEASTRO_API_KEY is not configured")

// UpstreamError is a non-2xx answer from the chart provider. Response holds
// the provider body as JSON when it parses, or {"raw": "<body>"} otherwise.
type UpstreamError struct {
	Status   int
	Response json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chart provider responded %d", e.Status)
}

// Client talks to the FreeAstro API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

type displaySettings struct {
	Chiron    bool `json:"chiron"`
	Lilith    bool `json:"lilith"`
	NorthNode bool `json:"north_node"`
	SouthNode bool `json:"south_node"`
	Asc       bool `json:"asc"`
	MC        bool `json:"mc"`
}

type chartConfig struct {
	ShowColorBackground        bool    `json:"show_color_background"`
	SignRingThicknessFraction  float64 `json:"sign_ring_thickness_fraction"`
	HouseRingThicknessFraction float64 `json:"house_ring_thickness_fraction"`
	PlanetSymbolScale          float64 `json:"planet_symbol_scale"`
	SignSymbolScale            float64 `json:"sign_symbol_scale"`
}

type birthData struct {
	Name   string  `json:"name"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Day    int     `json:"day"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	City   string  `json:"city"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	TZStr  string  `json:"tz_str"`
}

type svgPayload struct {
	birthData
	ZodiacType      string          `json:"zodiac_type"`
	HouseSystem     string          `json:"house_system"`
	Format          string          `json:"format"`
	Size            int             `json:"size"`
	ThemeType       string          `json:"theme_type"`
	ShowMetadata    bool            `json:"show_metadata"`
	DisplaySettings displaySettings `json:"display_settings"`
	ChartConfig     chartConfig     `json:"chart_config"`
}

type interpretation struct {
	Enable bool   `json:"enable"`
	Style  string `json:"style"`
}

type natalPayload struct {
	birthData
	HouseSystem      string         `json:"house_system"`
	ZodiacType       string         `json:"zodiac_type"`
	IncludeSpeed     bool           `json:"include_speed"`
	IncludeDominants bool           `json:"include_dominants"`
	IncludeFeatures  []string       `json:"include_features"`
	Interpretation   interpretation `json:"interpretation"`
}

func newBirthData(r *ChartRequest) birthData {
	return birthData{
		Name:   r.Name,
		Year:   *r.Year,
		Month:  *r.Month,
		Day:    *r.Day,
		Hour:   *r.Hour,
		Minute: *r.Minute,
		City:   r.City,
		Lat:    *r.Lat,
		Lng:    *r.Lng,
		TZStr:  r.TZStr,
	}
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func newSVGPayload(r *ChartRequest) svgPayload {
	return svgPayload{
		birthData:    newBirthData(r),
		ZodiacType:   orDefault(r.ZodiacType, DefaultZodiacType),
		HouseSystem:  orDefault(r.HouseSystem, DefaultHouseSystem),
		Format:       "svg",
		Size:         orDefault(r.Size, DefaultSize),
		ThemeType:    orDefault(r.ThemeType, DefaultThemeType),
		ShowMetadata: true,
		DisplaySettings: displaySettings{
			Chiron: true, Lilith: true, NorthNode: true, SouthNode: true, Asc: true, MC: true,
		},
		ChartConfig: chartConfig{
			ShowColorBackground:        false,
			SignRingThicknessFraction:  0.17,
			HouseRingThicknessFraction: 0.07,
			PlanetSymbolScale:          0.40,
			SignSymbolScale:            0.62,
		},
	}
}

// newNatalPayload ignores the caller's rendering options: house system and
// zodiac are fixed for the interpretation call.
func newNatalPayload(r *ChartRequest) natalPayload {
	return natalPayload{
		birthData:        newBirthData(r),
		HouseSystem:      DefaultHouseSystem,
		ZodiacType:       DefaultZodiacType,
		IncludeSpeed:     true,
		IncludeDominants: true,
		IncludeFeatures:  []string{"chiron", "lilith", "true_node"},
		Interpretation:   interpretation{Enable: true, Style: "improved"},
	}
}

// RenderSVG returns the chart SVG markup exactly as the provider produced it.
func (c *Client) RenderSVG(ctx context.Context, r *ChartRequest) (string, error) {
	if err := c.precheck(r); err != nil {
		return "", err
	}

	body, err := c.post(ctx, "/natal/experimental", newSVGPayload(r))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// NatalData returns the provider's computed chart and interpretation JSON unmodified.
func (c *Client) NatalData(ctx context.Context, r *ChartRequest) (json.RawMessage, error) {
	if err := c.precheck(r); err != nil {
		return nil, err
	}

	body, err := c.post(ctx, "/natal/calculate", newNatalPayload(r))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("chart provider returned invalid JSON")
	}
	return body, nil
}

// precheck runs before any network call: input first, then server configuration.
func (c *Client) precheck(r *ChartRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Response: parsedOrRaw(body)}
	}

	return body, nil
}

func parsedOrRaw(body []byte) json.RawMessage {
	if len(bytes.TrimSpace(body)) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	raw, _ := json.Marshal(map[string]string{"raw": string(body)})
	return raw
}
