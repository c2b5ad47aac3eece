// Package astro fetches natal chart images from the VedicAstro chart-image
// API.
package astro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production chart-image endpoint.
const DefaultBaseURL = "https://api.vedicastroapi.com/v3-json/horoscope/chart-image"

// Chart defaults matching the bot's configured look.
const (
	DefaultDiv   = "D1" // natal chart
	DefaultStyle = "south"
	DefaultColor = "#893693"
	DefaultLang  = "ru"
)

// Client calls the VedicAstro chart-image API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a chart-image client. The API key may be empty; requests
// will then fail with an explicit error.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 25 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint (tests).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// ChartRequest describes a natal chart to render.
type ChartRequest struct {
	DOB string // DD/MM/YYYY
	TOB string // HH:MM
	Lat float64
	Lon float64
	Tz  string // decimal hours, e.g. "5.5" or "-6"

	// Optional rendering settings; defaults are applied when empty.
	Div   string
	Style string
	Color string
	Lang  string
}

// GetChartSVG requests a chart image and returns it as an SVG string.
func (c *Client) GetChartSVG(ctx context.Context, req ChartRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("vedicastro api key is not configured")
	}

	if req.Div == "" {
		req.Div = DefaultDiv
	}
	if req.Style == "" {
		req.Style = DefaultStyle
	}
	if req.Color == "" {
		req.Color = DefaultColor
	}
	if req.Lang == "" {
		req.Lang = DefaultLang
	}

	params := url.Values{}
	params.Set("dob", req.DOB)
	params.Set("tob", req.TOB)
	params.Set("lat", strconv.FormatFloat(req.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(req.Lon, 'f', -1, 64))
	params.Set("tz", req.Tz)
	params.Set("div", req.Div)
	params.Set("style", req.Style)
	params.Set("color", req.Color)
	params.Set("lang", req.Lang)
	params.Set("api_key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build chart request: %w", err)
	}
	httpReq.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chart-image request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chart-image response: %w", err)
	}

	svg, ok := ExtractSVG(string(body))
	if !ok {
		snippet := strings.ReplaceAll(string(body), "\n", " ")
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		return "", fmt.Errorf("chart-image response is not SVG: %s", snippet)
	}
	return svg, nil
}

// ExtractSVG pulls an SVG document out of a chart-image response. The API
// returns either raw SVG text or a JSON envelope like
// {"status":200,"response":"<?xml...<svg ..."}.
func ExtractSVG(body string) (string, bool) {
	raw := strings.TrimSpace(body)

	var envelope struct {
		Response string `json:"response"`
		Data     string `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil {
		if envelope.Response != "" {
			raw = strings.TrimSpace(envelope.Response)
		} else if envelope.Data != "" {
			raw = strings.TrimSpace(envelope.Data)
		}
	}

	if strings.Contains(raw, "<svg") {
		return raw, true
	}
	return "", false
}

// ISODateToDDMMYYYY converts "YYYY-MM-DD" to the "DD/MM/YYYY" form the API
// expects.
func ISODateToDDMMYYYY(isoDate string) (string, error) {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return "", fmt.Errorf("invalid birth date %q: %w", isoDate, err)
	}
	return t.Format("02/01/2006"), nil
}

// TzMinutesToDecimalHours renders a UTC offset in minutes as decimal hours
// without trailing zeros: 330 -> "5.5", -360 -> "-6", 0 -> "0".
func TzMinutesToDecimalHours(offsetMinutes int) string {
	hours := float64(offsetMinutes) / 60.0
	s := strconv.FormatFloat(hours, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

// ApproxTzOffsetMinutes estimates the UTC offset from longitude alone:
// fifteen degrees per hour, rounded to the nearest half hour. No DST.
func ApproxTzOffsetMinutes(lon float64) int {
	offsetHours := lon / 15.0
	offsetHours = math.Round(offsetHours*2) / 2
	return int(offsetHours * 60)
}
