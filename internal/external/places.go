package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tenki/internal/types"
)

// maxPlacesRadius is the provider's maximum nearby-search radius in meters.
const maxPlacesRadius = 50000

// placesResponse mirrors the provider's nearby-search envelope.
type placesResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

// placeResult is the subset of place fields consumed by the application.
type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	OpeningHours     *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
	Geometry *struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
	} `json:"photos"`
}

// facilityTypeNames localizes facility category display names.
var facilityTypeNames = map[types.Locale]map[types.FacilityType]string{
	types.LocaleJapanese: {
		types.FacilityPublicToilet:     "公共トイレ",
		types.FacilityConvenienceStore: "コンビニ",
		types.FacilitySupermarket:      "スーパー",
		types.FacilityRestaurant:       "レストラン",
		types.FacilityGasStation:       "ガソリンスタンド",
	},
	types.LocaleEnglish: {
		types.FacilityPublicToilet:     "Public restroom",
		types.FacilityConvenienceStore: "Convenience store",
		types.FacilitySupermarket:      "Supermarket",
		types.FacilityRestaurant:       "Restaurant",
		types.FacilityGasStation:       "Gas station",
	},
	types.LocaleChinese: {
		types.FacilityPublicToilet:     "公共厕所",
		types.FacilityConvenienceStore: "便利店",
		types.FacilitySupermarket:      "超市",
		types.FacilityRestaurant:       "餐厅",
		types.FacilityGasStation:       "加油站",
	},
}

// FacilityTypeDisplay returns the localized display name for a facility
// category, falling back to the raw category for unknown combinations.
func FacilityTypeDisplay(facType types.FacilityType, locale types.Locale) string {
	if names, ok := facilityTypeNames[locale]; ok {
		if name, ok := names[facType]; ok {
			return name
		}
	}
	return string(facType)
}

// PlacesConfig holds the configuration for creating a GooglePlacesClient.
type PlacesConfig struct {
	APIKey  string
	BaseURL string
	Logger  *slog.Logger
}

// GooglePlacesClient searches the Google Places Nearby Search API for
// restroom-capable facilities around a coordinate. An unset API key means
// the feature is not enabled; callers check IsConfigured before searching.
type GooglePlacesClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewGooglePlacesClient creates a new GooglePlacesClient.
func NewGooglePlacesClient(httpClient *http.Client, cfg PlacesConfig) *GooglePlacesClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GooglePlacesClient{
		base:    NewBaseClient(httpClient, "google-places", "Tenki/1.0", types.ErrCodeUpstreamFacility),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// IsConfigured reports whether the provider credentials are present.
func (c *GooglePlacesClient) IsConfigured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// SearchNearby queries the provider for facilities of one category around
// (lat, lng). The radius is clamped to the provider maximum. A ZERO_RESULTS
// status yields an empty slice, not an error.
func (c *GooglePlacesClient) SearchNearby(ctx context.Context, lat, lng float64, radiusMeters int, facType types.FacilityType, locale types.Locale) ([]types.Facility, error) {
	if radiusMeters > maxPlacesRadius {
		radiusMeters = maxPlacesRadius
	}

	params := url.Values{}
	params.Set("location", formatCoord(lat)+","+formatCoord(lng))
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("type", string(facType))
	params.Set("language", placesLanguage(locale))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/maps/api/place/nearbysearch/json?"+params.Encode(), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build facility request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "facility provider request failed",
			"error", err, "type", facType, "lat", lat, "lng", lng)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.ErrorContext(ctx, "facility provider returned non-success status",
			"status", resp.StatusCode,
			"body", string(body),
			"type", facType,
		)
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamFacility,
			fmt.Sprintf("facility provider returned %d", resp.StatusCode),
			nil,
			map[string]any{"status": resp.StatusCode, "body": string(body)},
		)
	}

	var payload placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.ErrorContext(ctx, "facility provider returned malformed payload", "error", err)
		return nil, types.NewAppError(types.ErrCodeUpstreamFacility, "malformed facility provider payload", err)
	}

	switch payload.Status {
	case "OK":
		// fall through to extraction
	case "ZERO_RESULTS":
		return nil, nil
	default:
		c.logger.WarnContext(ctx, "facility provider returned non-OK status",
			"provider_status", payload.Status, "type", facType)
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamFacility,
			fmt.Sprintf("facility provider status %s", payload.Status),
			nil,
			map[string]any{"provider_status": payload.Status},
		)
	}

	facilities := make([]types.Facility, 0, len(payload.Results))
	for _, place := range payload.Results {
		facility := types.Facility{
			PlaceID:          place.PlaceID,
			Name:             place.Name,
			Type:             facType,
			TypeDisplay:      FacilityTypeDisplay(facType, locale),
			Vicinity:         place.Vicinity,
			Rating:           place.Rating,
			UserRatingsTotal: place.UserRatingsTotal,
			PriceLevel:       place.PriceLevel,
		}
		if place.OpeningHours != nil {
			facility.OpenNow = place.OpeningHours.OpenNow
		}
		if place.Geometry != nil {
			facility.Location = &types.FacilityLocation{
				Lat: place.Geometry.Location.Lat,
				Lng: place.Geometry.Location.Lng,
			}
		}
		if len(place.Photos) > 0 {
			facility.Photo = &types.FacilityPhoto{
				PhotoReference: place.Photos[0].PhotoReference,
				Width:          place.Photos[0].Width,
				Height:         place.Photos[0].Height,
			}
		}
		facilities = append(facilities, facility)
	}

	c.logger.InfoContext(ctx, "facility search completed",
		"type", facType, "count", len(facilities), "radius", radiusMeters)

	return facilities, nil
}

// placesLanguage maps an application locale onto the provider's language
// code. Unlisted locales fall back to Japanese, the application default.
func placesLanguage(locale types.Locale) string {
	switch locale {
	case types.LocaleJapanese:
		return "ja"
	case types.LocaleEnglish:
		return "en"
	case types.LocaleChinese:
		return "zh-CN"
	default:
		return "ja"
	}
}
