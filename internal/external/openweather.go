package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"tenki/internal/types"
)

// maxErrorBodyBytes bounds how much of a failing response body is read for
// logging.
const maxErrorBodyBytes = 4096

// WeatherCondition is one entry of the provider's weather array.
type WeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentWeatherPayload is the provider's current-conditions response, kept
// in its nested wire shape. The cache store flattens it on save.
type CurrentWeatherPayload struct {
	Name    string             `json:"name"`
	Weather []WeatherCondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  *int    `json:"pressure"`
		Humidity  *int    `json:"humidity"`
	} `json:"main"`
	Visibility *int `json:"visibility"`
	Wind       struct {
		Speed *float64 `json:"speed"`
		Deg   *int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All *int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
		Country string `json:"country"`
	} `json:"sys"`
	Dt *int64 `json:"dt"`
}

// HourlyPayload is one forecast hour from the provider's hourly endpoint.
// Pop is the precipitation probability in [0, 1].
type HourlyPayload struct {
	Dt      int64              `json:"dt"`
	Temp    float64            `json:"temp"`
	Weather []WeatherCondition `json:"weather"`
	Pop     float64            `json:"pop"`
}

// hourlyResponse is the envelope of the provider's hourly endpoint.
type hourlyResponse struct {
	Hourly []HourlyPayload `json:"hourly"`
}

// OpenWeatherConfig holds the configuration for creating an OpenWeatherClient.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	Logger  *slog.Logger
}

// OpenWeatherClient fetches current conditions and hourly forecasts from the
// OpenWeatherMap API. Failures are logged with status and body context and
// returned as AppErrors; the caller treats them as "no data available".
type OpenWeatherClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewOpenWeatherClient creates a new OpenWeatherClient. The httpClient's
// timeout bounds each request (10s in the default configuration).
func NewOpenWeatherClient(httpClient *http.Client, cfg OpenWeatherConfig) *OpenWeatherClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenWeatherClient{
		base:    NewBaseClient(httpClient, "openweather", "Tenki/1.0", types.ErrCodeUpstreamWeather),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// FetchCurrent retrieves current conditions for the coordinates, localized
// via the provider's language parameter. Temperatures are metric.
func (c *OpenWeatherClient) FetchCurrent(ctx context.Context, lat, lon float64, locale types.Locale) (*CurrentWeatherPayload, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", apiLanguage(locale))

	var payload CurrentWeatherPayload
	if err := c.getJSON(ctx, c.baseURL+"/weather?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	return &payload, nil
}

// FetchHourly retrieves the hourly forecast for the coordinates. The
// provider returns up to 48 hours; filtering to the next 24 happens in the
// cache store, not here.
func (c *OpenWeatherClient) FetchHourly(ctx context.Context, lat, lon float64, locale types.Locale) ([]HourlyPayload, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", apiLanguage(locale))
	params.Set("exclude", "current,minutely,daily,alerts")

	var payload hourlyResponse
	if err := c.getJSON(ctx, c.baseURL+"/onecall?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	return payload.Hourly, nil
}

// getJSON performs a GET and decodes a 200 response into out. Any other
// status is logged with its body and converted to an upstream error.
func (c *OpenWeatherClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build weather request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "weather provider request failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.ErrorContext(ctx, "weather provider returned non-success status",
			"status", resp.StatusCode,
			"body", string(body),
		)
		return types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather provider returned %d", resp.StatusCode),
			nil,
			map[string]any{"status": resp.StatusCode, "body": string(body)},
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.ErrorContext(ctx, "weather provider returned malformed payload", "error", err)
		return types.NewAppError(types.ErrCodeUpstreamWeather, "malformed weather provider payload", err)
	}

	return nil
}

// apiLanguage maps an application locale onto the provider's language code.
// Unlisted locales fall back to English.
func apiLanguage(locale types.Locale) string {
	switch locale {
	case types.LocaleJapanese:
		return "ja"
	case types.LocaleChinese:
		return "zh_cn"
	case types.LocaleEnglish:
		return "en"
	default:
		return "en"
	}
}

// formatCoord renders a coordinate for a query parameter without float
// artifacts.
func formatCoord(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}
