package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// OpenCageClient реализует Provider поверх OpenCage Geocoding API.
type OpenCageClient struct {
	apiKey      string
	countryCode string
	baseURL     string
	httpClient  *http.Client
}

// NewOpenCageClient создает клиент OpenCage. Таймаут ограничивает каждую
// отдельную попытку геокодирования.
func NewOpenCageClient(apiKey, countryCode, baseURL string, timeout time.Duration) *OpenCageClient {
	return &OpenCageClient{
		apiKey:      apiKey,
		countryCode: countryCode,
		baseURL:     baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Geocode запрашивает у OpenCage единственный лучший результат для запроса,
// ограниченный кодом страны. Пустой список results - не ошибка.
func (c *OpenCageClient) Geocode(ctx context.Context, query string) (Point, bool, error) {
	params := url.Values{
		"q":           {query},
		"key":         {c.apiKey},
		"limit":       {"1"},
		"countrycode": {c.countryCode},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Point{}, false, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, false, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, false, fmt.Errorf("geocode provider returned status %d", resp.StatusCode)
	}

	var body openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Point{}, false, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if len(body.Results) == 0 {
		return Point{}, false, nil
	}

	g := body.Results[0].Geometry
	return Point{Lat: g.Lat, Lng: g.Lng}, true, nil
}

// Ответ OpenCage: results[].geometry.{lat,lng}
type openCageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}
