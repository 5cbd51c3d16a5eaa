// Package handlers contains the HTTP handler implementations for the Tenki
// weather API: region listing, region- and location-based weather lookups,
// and their hourly forecast variants.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tenki/internal/core"
	"tenki/internal/types"
)

// WeatherServiceInterface is the service contract the weather handler
// depends on. Defined locally to keep the handler decoupled from the service
// implementation.
type WeatherServiceInterface interface {
	ListRegions(ctx context.Context) ([]types.Region, error)
	GetRegionWeather(ctx context.Context, regionID int64, locale types.Locale) (*types.WeatherResult, error)
	GetLocationWeather(ctx context.Context, lat, lon float64, locale types.Locale) (*types.WeatherResult, error)
	GetRegionHourly(ctx context.Context, regionID int64, locale types.Locale) ([]types.HourlyForecast, error)
	GetLocationHourly(ctx context.Context, lat, lon float64, locale types.Locale) ([]types.HourlyForecast, error)
}

// WeatherHandler maps HTTP requests to weather service methods.
type WeatherHandler struct {
	service       WeatherServiceInterface
	defaultLocale types.Locale
	logger        *slog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc WeatherServiceInterface, defaultLocale types.Locale, logger *slog.Logger) *WeatherHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherHandler{
		service:       svc,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// RegisterRoutes mounts the weather endpoints onto the mux.
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Get("/regions", h.HandleListRegions)
	r.Get("/weather/regions/{regionID}", h.HandleGetRegionWeather)
	r.Get("/weather/regions/{regionID}/hourly", h.HandleGetRegionHourly)
	r.Get("/weather/location", h.HandleGetLocationWeather)
	r.Get("/weather/location/hourly", h.HandleGetLocationHourly)
}

// HandleListRegions handles GET /api/v1/regions.
func (h *WeatherHandler) HandleListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.ListRegions(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: regions})
}

// HandleGetRegionWeather handles GET /api/v1/weather/regions/{regionID}.
func (h *WeatherHandler) HandleGetRegionWeather(w http.ResponseWriter, r *http.Request) {
	regionID, err := h.parseRegionID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.GetRegionWeather(r.Context(), regionID, h.locale(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}

// HandleGetRegionHourly handles GET /api/v1/weather/regions/{regionID}/hourly.
func (h *WeatherHandler) HandleGetRegionHourly(w http.ResponseWriter, r *http.Request) {
	regionID, err := h.parseRegionID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	forecasts, err := h.service.GetRegionHourly(r.Context(), regionID, h.locale(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: forecasts})
}

// HandleGetLocationWeather handles GET /api/v1/weather/location.
func (h *WeatherHandler) HandleGetLocationWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := h.parseCoordinates(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.GetLocationWeather(r.Context(), lat, lon, h.locale(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}

// HandleGetLocationHourly handles GET /api/v1/weather/location/hourly.
func (h *WeatherHandler) HandleGetLocationHourly(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := h.parseCoordinates(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	forecasts, err := h.service.GetLocationHourly(r.Context(), lat, lon, h.locale(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: forecasts})
}

// locale resolves the request language from the locale query parameter,
// falling back to the configured default.
func (h *WeatherHandler) locale(r *http.Request) types.Locale {
	raw := r.URL.Query().Get("locale")
	if raw == "" {
		return h.defaultLocale
	}
	return types.NormalizeLocale(raw)
}

// parseRegionID extracts and validates the regionID path parameter.
func (h *WeatherHandler) parseRegionID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "regionID")
	regionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || regionID <= 0 {
		return 0, types.NewAppError(
			types.ErrCodeValidationInvalidRegion,
			"region id must be a positive integer",
			err,
		)
	}
	return regionID, nil
}

// parseCoordinates extracts and validates the lat/lon query parameters.
func (h *WeatherHandler) parseCoordinates(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()

	latStr := q.Get("lat")
	if latStr == "" {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"lat query parameter is required",
			nil,
		)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationInvalidLat,
			"lat must be a number between -90 and 90",
			err,
		)
	}

	lonStr := q.Get("lon")
	if lonStr == "" {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"lon query parameter is required",
			nil,
		)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationInvalidLon,
			"lon must be a number between -180 and 180",
			err,
		)
	}

	return lat, lon, nil
}
