package recommend

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"tenki/internal/geo"
	"tenki/internal/types"
)

// Search radii tried in order. The first radius producing any result wins.
var searchRadii = []int{500, 1000, 2000}

// fallbackRadius is the last-resort radius, searched across every category.
const fallbackRadius = 3000

// adverseConditions are the weather condition groups under which outdoor
// facilities are deprioritized.
var adverseConditions = map[string]bool{
	"Rain":         true,
	"Drizzle":      true,
	"Snow":         true,
	"Sleet":        true,
	"Thunderstorm": true,
}

// Category priority lists, most preferred first. Facilities inherit the
// 1-based index of their category as Priority.
var (
	adversePriorities = []types.FacilityType{
		types.FacilityConvenienceStore,
		types.FacilitySupermarket,
		types.FacilityRestaurant,
	}
	fairPriorities = []types.FacilityType{
		types.FacilityConvenienceStore,
		types.FacilityPublicToilet,
		types.FacilitySupermarket,
		types.FacilityGasStation,
		types.FacilityRestaurant,
	}
)

// facilityReasons localizes the recommendation reason per weather bucket.
var facilityReasons = map[string]map[types.Locale]string{
	"rainy": {
		types.LocaleJapanese: "雨の日は屋根のあるコンビニやスーパーのトイレがおすすめです",
		types.LocaleEnglish:  "On rainy days, covered facilities like convenience stores and supermarkets are recommended",
		types.LocaleChinese:  "雨天推荐使用便利店或超市等有遮蔽的设施",
	},
	"snowy": {
		types.LocaleJapanese: "雪の日は暖かい屋内施設のトイレがおすすめです",
		types.LocaleEnglish:  "On snowy days, warm indoor facilities are recommended",
		types.LocaleChinese:  "雪天推荐使用温暖的室内设施",
	},
	"stormy": {
		types.LocaleJapanese: "悪天候のため、近くの屋内施設をご利用ください",
		types.LocaleEnglish:  "Due to severe weather, please use nearby indoor facilities",
		types.LocaleChinese:  "因恶劣天气，请使用附近的室内设施",
	},
	"clear": {
		types.LocaleJapanese: "晴れの日は公共トイレも含めて幅広くご案内しています",
		types.LocaleEnglish:  "On clear days, all facility types including public restrooms are available",
		types.LocaleChinese:  "晴天时包括公共厕所在内的各类设施均可使用",
	},
	"default": {
		types.LocaleJapanese: "お近くのトイレをご案内しています",
		types.LocaleEnglish:  "Showing restroom facilities near you",
		types.LocaleChinese:  "为您推荐附近的厕所设施",
	},
}

// facilityUnavailable is shown when the facility provider is not configured.
var facilityUnavailable = map[types.Locale]string{
	types.LocaleJapanese: "施設情報を取得できませんでした",
	types.LocaleEnglish:  "Facility information is not available",
	types.LocaleChinese:  "无法获取设施信息",
}

// FacilitySearcher is the slice of the facility provider client the engine
// needs.
type FacilitySearcher interface {
	IsConfigured() bool
	SearchNearby(ctx context.Context, lat, lng float64, radiusMeters int, facType types.FacilityType, locale types.Locale) ([]types.Facility, error)
}

// FacilityEngine finds restroom-capable facilities around a raw coordinate,
// prioritizing categories by the current weather and widening the search
// radius until something is found. Like the restaurant engine it never
// returns an error.
type FacilityEngine struct {
	client FacilitySearcher
	pause  time.Duration
	sleep  func(time.Duration)
	logger *slog.Logger
}

// FacilityOption configures a FacilityEngine.
type FacilityOption func(*FacilityEngine)

// WithSleepFunc replaces the inter-request pause implementation. Tests use
// this to avoid real sleeps.
func WithSleepFunc(fn func(time.Duration)) FacilityOption {
	return func(e *FacilityEngine) {
		e.sleep = fn
	}
}

// NewFacilityEngine creates a FacilityEngine. pause is the delay inserted
// between consecutive category queries to respect provider rate limits.
func NewFacilityEngine(client FacilitySearcher, pause time.Duration, logger *slog.Logger, opts ...FacilityOption) *FacilityEngine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &FacilityEngine{
		client: client,
		pause:  pause,
		sleep:  time.Sleep,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend searches for facilities around the raw coordinate (lat, lng).
// condition is the weather condition group (e.g. "Rain"); it selects the
// category priority list and the recommendation reason. Distances are
// computed from the raw coordinate, not the cache cell.
func (e *FacilityEngine) Recommend(ctx context.Context, lat, lng float64, condition string, locale types.Locale) *types.FacilityRecommendation {
	if !e.client.IsConfigured() {
		reason, ok := facilityUnavailable[locale]
		if !ok {
			reason = facilityUnavailable[types.LocaleJapanese]
		}
		return &types.FacilityRecommendation{
			Prioritized:      []types.Facility{},
			ByType:           map[types.FacilityType][]types.Facility{},
			WeatherCondition: condition,
			Reason:           reason,
		}
	}

	categories := fairPriorities
	if adverseConditions[condition] {
		categories = adversePriorities
	}

	var (
		byType map[types.FacilityType][]types.Facility
		radius int
	)
	for _, r := range searchRadii {
		byType = e.searchCategories(ctx, lat, lng, r, categories, locale)
		if countFacilities(byType) > 0 {
			radius = r
			break
		}
	}

	isFallback := false
	if countFacilities(byType) == 0 {
		e.logger.InfoContext(ctx, "falling back to wide facility search",
			"radius", fallbackRadius, "lat", lat, "lng", lng)
		byType = e.searchCategories(ctx, lat, lng, fallbackRadius, fairPriorities, locale)
		radius = fallbackRadius
		isFallback = true
		categories = fairPriorities
	}

	for facType, list := range byType {
		annotateDistances(lat, lng, list)
		sortByDistance(list)
		byType[facType] = list
	}

	prioritized := make([]types.Facility, 0, countFacilities(byType))
	for _, facType := range categories {
		prioritized = append(prioritized, byType[facType]...)
	}

	return &types.FacilityRecommendation{
		Prioritized:      prioritized,
		ByType:           byType,
		TotalCount:       len(prioritized),
		SearchRadius:     radius,
		IsFallback:       isFallback,
		WeatherCondition: condition,
		Reason:           e.reasonFor(condition, locale),
	}
}

// FilterByOpeningHours keeps only facilities known to be open right now.
// A facility without opening-hours data counts as closed. With openOnly
// false the input is returned unchanged.
func FilterByOpeningHours(facilities []types.Facility, openOnly bool) []types.Facility {
	if !openOnly {
		return facilities
	}
	open := make([]types.Facility, 0, len(facilities))
	for _, f := range facilities {
		if f.OpenNow != nil && *f.OpenNow {
			open = append(open, f)
		}
	}
	return open
}

// searchCategories queries one radius across the given categories, pausing
// between consecutive queries. A failed category is logged and skipped.
func (e *FacilityEngine) searchCategories(ctx context.Context, lat, lng float64, radius int, categories []types.FacilityType, locale types.Locale) map[types.FacilityType][]types.Facility {
	byType := make(map[types.FacilityType][]types.Facility, len(categories))
	for i, facType := range categories {
		results, err := e.client.SearchNearby(ctx, lat, lng, radius, facType, locale)
		if err != nil {
			e.logger.WarnContext(ctx, "facility category search failed",
				"error", err, "type", facType, "radius", radius)
		} else if len(results) > 0 {
			for j := range results {
				results[j].Priority = i + 1
			}
			byType[facType] = results
		}
		if i < len(categories)-1 {
			e.sleep(e.pause)
		}
	}
	return byType
}

// reasonFor maps a weather condition group onto its localized reason.
func (e *FacilityEngine) reasonFor(condition string, locale types.Locale) string {
	bucket := "default"
	switch condition {
	case "Rain", "Drizzle":
		bucket = "rainy"
	case "Snow", "Sleet":
		bucket = "snowy"
	case "Thunderstorm", "Squall", "Tornado":
		bucket = "stormy"
	case "Clear":
		bucket = "clear"
	}
	if reason, ok := facilityReasons[bucket][locale]; ok {
		return reason
	}
	return facilityReasons[bucket][types.LocaleJapanese]
}

func countFacilities(byType map[types.FacilityType][]types.Facility) int {
	total := 0
	for _, list := range byType {
		total += len(list)
	}
	return total
}

// annotateDistances fills distance fields from the raw search origin.
func annotateDistances(lat, lng float64, facilities []types.Facility) {
	for i := range facilities {
		if facilities[i].Location == nil {
			continue
		}
		d := geo.Haversine(lat, lng, facilities[i].Location.Lat, facilities[i].Location.Lng)
		facilities[i].DistanceMeters = &d
		facilities[i].DistanceDisplay = geo.FormatDistance(d)
	}
}

// sortByDistance orders facilities nearest first; facilities without a
// distance sort last. The sort is stable so provider order breaks ties.
func sortByDistance(facilities []types.Facility) {
	sort.SliceStable(facilities, func(i, j int) bool {
		di, dj := facilities[i].DistanceMeters, facilities[j].DistanceMeters
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})
}
