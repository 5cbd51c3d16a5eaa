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

// Restaurant search range codes in the provider's vocabulary.
const (
	RestaurantRange300m  = 1
	RestaurantRange500m  = 2
	RestaurantRange1000m = 3
	RestaurantRange2000m = 4
	RestaurantRange3000m = 5
)

// hotpepperResponse mirrors the provider's gourmet search envelope.
type hotpepperResponse struct {
	Results struct {
		Shop []hotpepperShop `json:"shop"`
	} `json:"results"`
}

// hotpepperShop is the subset of shop fields consumed by the application.
type hotpepperShop struct {
	Name  string `json:"name"`
	Genre struct {
		Name string `json:"name"`
	} `json:"genre"`
	Address      string `json:"address"`
	StationName  string `json:"station_name"`
	MobileAccess string `json:"mobile_access"`
	PCAccess     string `json:"pc_access"`
	Budget       struct {
		Name string `json:"name"`
	} `json:"budget"`
	Open  string `json:"open"`
	Photo struct {
		Mobile struct {
			S string `json:"s"`
		} `json:"mobile"`
		PC struct {
			S string `json:"s"`
		} `json:"pc"`
	} `json:"photo"`
	URLs struct {
		PC string `json:"pc"`
	} `json:"urls"`
}

// HotpepperConfig holds the configuration for creating a HotpepperClient.
type HotpepperConfig struct {
	APIKey  string
	BaseURL string
	Logger  *slog.Logger
}

// HotpepperClient searches the HotPepper Gourmet API for restaurants around
// a coordinate, filtered by genre code. An unset API key means the feature
// is not enabled; callers check IsConfigured before searching.
type HotpepperClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewHotpepperClient creates a new HotpepperClient.
func NewHotpepperClient(httpClient *http.Client, cfg HotpepperConfig) *HotpepperClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HotpepperClient{
		base:    NewBaseClient(httpClient, "hotpepper", "Tenki/1.0", types.ErrCodeUpstreamRestaurant),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// IsConfigured reports whether the provider credentials are present.
func (c *HotpepperClient) IsConfigured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// Credit returns the attribution metadata the provider's terms of use
// require wherever its data is displayed.
func (c *HotpepperClient) Credit() types.ProviderCredit {
	return types.ProviderCredit{
		PoweredBy: "ホットペッパーグルメ",
		LogoURL:   "http://webservice.recruit.co.jp/banner/hotpepper-s.gif",
		LinkURL:   "http://www.hotpepper.jp/",
		Text:      "Powered by ホットペッパーグルメ Webサービス",
	}
}

// SearchRestaurants queries the provider for up to count restaurants around
// (lat, lng) within the given range code, optionally filtered by genre.
// It returns the minimal shop projection the UI needs. An empty result is
// not an error.
func (c *HotpepperClient) SearchRestaurants(ctx context.Context, lat, lng float64, rangeCode, count int, genre string) ([]types.Restaurant, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("lat", formatCoord(lat))
	params.Set("lng", formatCoord(lng))
	params.Set("range", strconv.Itoa(rangeCode))
	params.Set("count", strconv.Itoa(count))
	params.Set("format", "json")
	if genre != "" {
		params.Set("genre", genre)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/gourmet/v1/?"+params.Encode(), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build restaurant request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "restaurant provider request failed",
			"error", err, "lat", lat, "lng", lng)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.ErrorContext(ctx, "restaurant provider returned non-success status",
			"status", resp.StatusCode,
			"body", string(body),
			"lat", lat,
			"lng", lng,
		)
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamRestaurant,
			fmt.Sprintf("restaurant provider returned %d", resp.StatusCode),
			nil,
			map[string]any{"status": resp.StatusCode, "body": string(body)},
		)
	}

	var payload hotpepperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.ErrorContext(ctx, "restaurant provider returned malformed payload", "error", err)
		return nil, types.NewAppError(types.ErrCodeUpstreamRestaurant, "malformed restaurant provider payload", err)
	}

	restaurants := make([]types.Restaurant, 0, len(payload.Results.Shop))
	for _, shop := range payload.Results.Shop {
		access := shop.MobileAccess
		if access == "" {
			access = shop.PCAccess
		}
		restaurants = append(restaurants, types.Restaurant{
			Name:        shop.Name,
			Genre:       shop.Genre.Name,
			Address:     shop.Address,
			StationName: shop.StationName,
			Access:      access,
			Budget:      shop.Budget.Name,
			Open:        shop.Open,
			Photo: types.RestaurantPhoto{
				Mobile: shop.Photo.Mobile.S,
				PC:     shop.Photo.PC.S,
			},
			URL: shop.URLs.PC,
		})
	}

	c.logger.InfoContext(ctx, "restaurant search completed",
		"count", len(restaurants), "lat", lat, "lng", lng, "range", rangeCode)

	return restaurants, nil
}
