package recommend

import (
	"context"
	"log/slog"

	"tenki/internal/external"
	"tenki/internal/types"
)

// restaurantCount caps how many shops one recommendation carries.
const restaurantCount = 5

// RestaurantSearcher is the slice of the restaurant provider client the
// engine needs.
type RestaurantSearcher interface {
	IsConfigured() bool
	Credit() types.ProviderCredit
	SearchRestaurants(ctx context.Context, lat, lng float64, rangeCode, count int, genre string) ([]types.Restaurant, error)
}

// restaurantUnavailable is the localized message shown when the provider is
// not configured or the search cannot be completed.
var restaurantUnavailable = map[types.Locale]string{
	types.LocaleJapanese: "グルメ情報を取得できませんでした",
	types.LocaleEnglish:  "Restaurant information is not available",
	types.LocaleChinese:  "无法获取餐厅信息",
}

// RestaurantEngine turns a weather condition and a coordinate into a
// restaurant recommendation. It never returns an error: every failure mode
// degrades to a renderable result with HasRecommendations false.
type RestaurantEngine struct {
	client RestaurantSearcher
	logger *slog.Logger
}

// NewRestaurantEngine creates a RestaurantEngine.
func NewRestaurantEngine(client RestaurantSearcher, logger *slog.Logger) *RestaurantEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestaurantEngine{client: client, logger: logger}
}

// Recommend classifies the weather condition into a genre, searches within
// 1km for shops of the primary genre, and widens the same genre search to a
// single 3km pass when the first comes back empty. Provider failures are
// logged and treated as empty results.
func (e *RestaurantEngine) Recommend(ctx context.Context, condition string, lat, lon float64, locale types.Locale) *types.RestaurantRecommendation {
	if !e.client.IsConfigured() {
		return e.emptyResult(locale)
	}

	entry := ClassifyWeather(condition)
	classification := &types.GenreClassification{
		WeatherType: entry.WeatherType,
		Primary:     entry.Primary,
		Secondary:   entry.Secondary,
		Reason:      entry.LocalizedReason(locale),
	}

	restaurants := e.search(ctx, lat, lon, external.RestaurantRange1000m, entry.Primary)
	if len(restaurants) == 0 {
		e.logger.InfoContext(ctx, "widening restaurant search",
			"weather_type", entry.WeatherType, "lat", lat, "lon", lon)
		restaurants = e.search(ctx, lat, lon, external.RestaurantRange3000m, entry.Primary)
	}

	return &types.RestaurantRecommendation{
		HasRecommendations: len(restaurants) > 0,
		Reason:             classification.Reason,
		Genre:              classification,
		Restaurants:        restaurants,
		Credit:             e.client.Credit(),
		SearchParams: &types.RestaurantSearchParams{
			Lat:     lat,
			Lon:     lon,
			Weather: condition,
			Genre:   entry.Primary,
		},
	}
}

// search runs one provider query, converting failure into absence.
func (e *RestaurantEngine) search(ctx context.Context, lat, lon float64, rangeCode int, genre string) []types.Restaurant {
	restaurants, err := e.client.SearchRestaurants(ctx, lat, lon, rangeCode, restaurantCount, genre)
	if err != nil {
		e.logger.WarnContext(ctx, "restaurant search failed",
			"error", err, "range", rangeCode, "genre", genre)
		return nil
	}
	return restaurants
}

// emptyResult is the renderable shape for "no restaurant data". Provider
// attribution is static metadata and still applies.
func (e *RestaurantEngine) emptyResult(locale types.Locale) *types.RestaurantRecommendation {
	reason, ok := restaurantUnavailable[locale]
	if !ok {
		reason = restaurantUnavailable[types.LocaleJapanese]
	}
	return &types.RestaurantRecommendation{
		HasRecommendations: false,
		Reason:             reason,
		Restaurants:        []types.Restaurant{},
		Credit:             e.client.Credit(),
	}
}
