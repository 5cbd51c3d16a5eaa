package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tenki/internal/types"
)

type mockWeatherService struct {
	mock.Mock
}

func (m *mockWeatherService) ListRegions(ctx context.Context) ([]types.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Region), args.Error(1)
}

func (m *mockWeatherService) GetRegionWeather(ctx context.Context, regionID int64, locale types.Locale) (*types.WeatherResult, error) {
	args := m.Called(ctx, regionID, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.WeatherResult), args.Error(1)
}

func (m *mockWeatherService) GetLocationWeather(ctx context.Context, lat, lon float64, locale types.Locale) (*types.WeatherResult, error) {
	args := m.Called(ctx, lat, lon, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.WeatherResult), args.Error(1)
}

func (m *mockWeatherService) GetRegionHourly(ctx context.Context, regionID int64, locale types.Locale) ([]types.HourlyForecast, error) {
	args := m.Called(ctx, regionID, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HourlyForecast), args.Error(1)
}

func (m *mockWeatherService) GetLocationHourly(ctx context.Context, lat, lon float64, locale types.Locale) ([]types.HourlyForecast, error) {
	args := m.Called(ctx, lat, lon, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HourlyForecast), args.Error(1)
}

func newTestRouter(svc WeatherServiceInterface) *chi.Mux {
	h := NewWeatherHandler(svc, types.LocaleJapanese, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHandleListRegions(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("ListRegions", mock.Anything).Return([]types.Region{
		{ID: 1, Name: "東京", Code: "tokyo", Lat: 35.6895, Lon: 139.6917},
	}, nil)

	rec := doRequest(t, newTestRouter(svc), "/regions")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Data []types.Region `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "tokyo", body.Data[0].Code)
}

func TestHandleGetRegionWeather(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetRegionWeather", mock.Anything, int64(3), types.LocaleEnglish).
		Return(&types.WeatherResult{
			Snapshot:  &types.WeatherSnapshot{Condition: "clear sky"},
			FromCache: true,
		}, nil)

	rec := doRequest(t, newTestRouter(svc), "/weather/regions/3?locale=en")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Weather struct {
				Condition string `json:"weather"`
			} `json:"weather"`
			FromCache bool `json:"is_from_cache"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "clear sky", body.Data.Weather.Condition)
	assert.True(t, body.Data.FromCache)
	svc.AssertExpectations(t)
}

func TestHandleGetRegionWeather_DefaultsLocale(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetRegionWeather", mock.Anything, int64(3), types.LocaleJapanese).
		Return(&types.WeatherResult{Snapshot: &types.WeatherSnapshot{}}, nil)

	rec := doRequest(t, newTestRouter(svc), "/weather/regions/3")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandleGetRegionWeather_InvalidID(t *testing.T) {
	svc := new(mockWeatherService)
	router := newTestRouter(svc)

	for _, path := range []string{"/weather/regions/abc", "/weather/regions/0", "/weather/regions/-5"} {
		rec := doRequest(t, router, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "validation_invalid_region_id", decodeError(t, rec))
	}
	svc.AssertNotCalled(t, "GetRegionWeather")
}

func TestHandleGetRegionWeather_NotFound(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetRegionWeather", mock.Anything, int64(99), types.LocaleJapanese).
		Return(nil, types.NewAppError(types.ErrCodeNotFoundRegion, "region not found", nil))

	rec := doRequest(t, newTestRouter(svc), "/weather/regions/99")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found_region", decodeError(t, rec))
}

func TestHandleGetRegionWeather_UpstreamFailure(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetRegionWeather", mock.Anything, int64(1), types.LocaleJapanese).
		Return(nil, types.NewAppError(types.ErrCodeUpstreamWeather, "provider down", nil))

	rec := doRequest(t, newTestRouter(svc), "/weather/regions/1")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_weather_unavailable", decodeError(t, rec))
}

func TestHandleGetLocationWeather(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetLocationWeather", mock.Anything, 35.654, 139.698, types.LocaleChinese).
		Return(&types.WeatherResult{
			Snapshot:    &types.WeatherSnapshot{Condition: "小雨"},
			Coordinates: &types.RawCoordinates{Lat: 35.654, Lon: 139.698},
		}, nil)

	rec := doRequest(t, newTestRouter(svc), "/weather/location?lat=35.654&lon=139.698&locale=zh")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandleGetLocationWeather_Validation(t *testing.T) {
	svc := new(mockWeatherService)
	router := newTestRouter(svc)

	tests := []struct {
		name     string
		path     string
		wantCode string
	}{
		{"missing lat", "/weather/location?lon=139.7", "validation_missing_required_field"},
		{"missing lon", "/weather/location?lat=35.6", "validation_missing_required_field"},
		{"non-numeric lat", "/weather/location?lat=abc&lon=139.7", "validation_invalid_latitude"},
		{"lat out of range", "/weather/location?lat=91&lon=139.7", "validation_invalid_latitude"},
		{"lon out of range", "/weather/location?lat=35.6&lon=181", "validation_invalid_longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, tt.path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec))
		})
	}
	svc.AssertNotCalled(t, "GetLocationWeather")
}

func TestHandleGetRegionHourly(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetRegionHourly", mock.Anything, int64(2), types.LocaleJapanese).
		Return([]types.HourlyForecast{{Temperature: 21.5, Condition: "晴天"}}, nil)

	rec := doRequest(t, newTestRouter(svc), "/weather/regions/2/hourly")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []types.HourlyForecast `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 21.5, body.Data[0].Temperature)
}

func TestHandleGetRegionHourly_NoFutureHours(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetRegionHourly", mock.Anything, int64(2), types.LocaleJapanese).
		Return(nil, types.NewAppError(types.ErrCodeNotFoundHourly, "no forecasts", nil))

	rec := doRequest(t, newTestRouter(svc), "/weather/regions/2/hourly")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found_hourly_forecast", decodeError(t, rec))
}

func TestHandleGetLocationHourly(t *testing.T) {
	svc := new(mockWeatherService)
	svc.On("GetLocationHourly", mock.Anything, 35.654, 139.698, types.LocaleJapanese).
		Return([]types.HourlyForecast{{Temperature: 19}}, nil)

	rec := doRequest(t, newTestRouter(svc), "/weather/location/hourly?lat=35.654&lon=139.698")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
