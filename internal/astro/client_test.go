package astro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSVG(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
		ok       bool
	}{
		{
			name:     "raw svg",
			body:     `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
			expected: `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
			ok:       true,
		},
		{
			name:     "svg with xml prologue",
			body:     "<?xml version=\"1.0\"?>\n<svg></svg>",
			expected: "<?xml version=\"1.0\"?>\n<svg></svg>",
			ok:       true,
		},
		{
			name:     "json envelope with response field",
			body:     `{"status":200,"response":"<?xml version=\"1.0\"?><svg></svg>"}`,
			expected: `<?xml version="1.0"?><svg></svg>`,
			ok:       true,
		},
		{
			name:     "json envelope with data field",
			body:     `{"status":200,"data":"<svg></svg>"}`,
			expected: `<svg></svg>`,
			ok:       true,
		},
		{
			name: "json error envelope",
			body: `{"status":403,"response":"invalid api key"}`,
			ok:   false,
		},
		{
			name: "html error page",
			body: `<html><body>502 Bad Gateway</body></html>`,
			ok:   false,
		},
		{
			name: "empty body",
			body: "",
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svg, ok := ExtractSVG(tc.body)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, svg)
			}
		})
	}
}

func TestTzMinutesToDecimalHours(t *testing.T) {
	testCases := []struct {
		minutes  int
		expected string
	}{
		{330, "5.5"},
		{-360, "-6"},
		{0, "0"},
		{60, "1"},
		{-90, "-1.5"},
		{345, "5.75"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, TzMinutesToDecimalHours(tc.minutes), "minutes=%d", tc.minutes)
	}
}

func TestISODateToDDMMYYYY(t *testing.T) {
	got, err := ISODateToDDMMYYYY("1995-06-15")
	require.NoError(t, err)
	assert.Equal(t, "15/06/1995", got)

	_, err = ISODateToDDMMYYYY("15.06.1995")
	assert.Error(t, err)
}

func TestApproxTzOffsetMinutes(t *testing.T) {
	testCases := []struct {
		lon      float64
		expected int
	}{
		{0, 0},
		{37.6, 150},   // Moscow longitude, 2.5h solar time
		{82.5, 330},   // 5.5h
		{-90, -360},   // 6h west
		{151.2, 600},   // Sydney, 10h
		{-122.4, -480}, // San Francisco, 8h west
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ApproxTzOffsetMinutes(tc.lon), "lon=%f", tc.lon)
	}
}

func TestClient_GetChartSVG(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Write([]byte(`{"status":200,"response":"<svg>chart</svg>"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	svg, err := client.GetChartSVG(context.Background(), ChartRequest{
		DOB: "15/06/1995",
		TOB: "08:30",
		Lat: 55.7558,
		Lon: 37.6173,
		Tz:  "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "<svg>chart</svg>", svg)

	// Defaults are applied to the request
	assert.Equal(t, "15/06/1995", gotQuery["dob"])
	assert.Equal(t, "08:30", gotQuery["tob"])
	assert.Equal(t, "3", gotQuery["tz"])
	assert.Equal(t, DefaultDiv, gotQuery["div"])
	assert.Equal(t, DefaultStyle, gotQuery["style"])
	assert.Equal(t, DefaultColor, gotQuery["color"])
	assert.Equal(t, DefaultLang, gotQuery["lang"])
	assert.Equal(t, "test-key", gotQuery["api_key"])
}

func TestClient_GetChartSVG_NonSVGResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":403,"response":"invalid api key"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	_, err := client.GetChartSVG(context.Background(), ChartRequest{DOB: "01/01/2000", TOB: "12:00", Tz: "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not SVG")
}

func TestClient_GetChartSVG_MissingKey(t *testing.T) {
	client := NewClient("")
	_, err := client.GetChartSVG(context.Background(), ChartRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}
