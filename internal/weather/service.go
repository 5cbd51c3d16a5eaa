// Package weather implements the cache-or-fetch orchestration at the core of
// the application: resolve the cache key, serve today's snapshot when one
// exists, otherwise fetch from the provider, persist, and enrich the result
// with recommendations.
package weather

import (
	"context"
	"log/slog"
	"time"

	"tenki/internal/external"
	"tenki/internal/geo"
	"tenki/internal/types"
)

// SnapshotStore is the snapshot cache surface the service depends on.
type SnapshotStore interface {
	Find(ctx context.Context, key types.SnapshotKey, date time.Time, locale types.Locale) (*types.WeatherSnapshot, error)
	Save(ctx context.Context, payload *external.CurrentWeatherPayload, key types.SnapshotKey, locale types.Locale) (*types.WeatherSnapshot, error)
}

// HourlyStore is the hourly forecast cache surface the service depends on.
type HourlyStore interface {
	Find(ctx context.Context, key types.SnapshotKey, locale types.Locale) ([]types.HourlyForecast, error)
	Replace(ctx context.Context, entries []external.HourlyPayload, key types.SnapshotKey, locale types.Locale) error
}

// RegionStore provides the seeded region reference data.
type RegionStore interface {
	GetByID(ctx context.Context, id int64) (*types.Region, error)
	List(ctx context.Context) ([]types.Region, error)
}

// WeatherFetcher is the weather provider surface the service depends on.
type WeatherFetcher interface {
	FetchCurrent(ctx context.Context, lat, lon float64, locale types.Locale) (*external.CurrentWeatherPayload, error)
	FetchHourly(ctx context.Context, lat, lon float64, locale types.Locale) ([]external.HourlyPayload, error)
}

// RestaurantRecommender enriches a weather result with restaurant
// suggestions. It is infallible: failures degrade inside the engine.
type RestaurantRecommender interface {
	Recommend(ctx context.Context, condition string, lat, lon float64, locale types.Locale) *types.RestaurantRecommendation
}

// FacilityRecommender enriches a location-based weather result with nearby
// restroom facilities.
type FacilityRecommender interface {
	Recommend(ctx context.Context, lat, lng float64, condition string, locale types.Locale) *types.FacilityRecommendation
}

// Service orchestrates the per-day weather cache and its enrichments.
//
// The cache discipline is strict: a snapshot found for today's key is served
// as-is with no freshness check, a miss triggers exactly one provider fetch,
// and a lost insert race is converted into reading the winner's row.
type Service struct {
	regions     RegionStore
	snapshots   SnapshotStore
	hourly      HourlyStore
	fetcher     WeatherFetcher
	restaurants RestaurantRecommender
	facilities  FacilityRecommender
	logger      *slog.Logger
	now         func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNowFunc replaces the clock. Tests use this to pin the calendar day.
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a weather Service.
func NewService(
	regions RegionStore,
	snapshots SnapshotStore,
	hourly HourlyStore,
	fetcher WeatherFetcher,
	restaurants RestaurantRecommender,
	facilities FacilityRecommender,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		regions:     regions,
		snapshots:   snapshots,
		hourly:      hourly,
		fetcher:     fetcher,
		restaurants: restaurants,
		facilities:  facilities,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListRegions returns the selectable regions.
func (s *Service) ListRegions(ctx context.Context) ([]types.Region, error) {
	return s.regions.List(ctx)
}

// GetRegionWeather returns today's weather for a seeded region, serving the
// cache when possible, and enriches it with restaurant recommendations around
// the region's coordinates. Facilities are a location-flow feature and stay
// empty here.
func (s *Service) GetRegionWeather(ctx context.Context, regionID int64, locale types.Locale) (*types.WeatherResult, error) {
	region, err := s.regions.GetByID(ctx, regionID)
	if err != nil {
		return nil, err
	}

	result, err := s.getOrFetchSnapshot(ctx, types.RegionKey(region.ID), region.Lat, region.Lon, locale)
	if err != nil {
		return nil, err
	}
	result.Region = region

	condition, lat, lon := result.EnrichmentPoint()
	result.Restaurants = s.restaurants.Recommend(ctx, condition, lat, lon, locale)

	return result, nil
}

// GetLocationWeather returns today's weather for an arbitrary coordinate.
// The cache is keyed on the containing 0.1-degree cell and the provider is
// queried with the cell center, so every user in the cell shares one entry.
// Enrichments use the raw request coordinates: restaurants and facilities
// are recommended around where the user actually is.
func (s *Service) GetLocationWeather(ctx context.Context, lat, lon float64, locale types.Locale) (*types.WeatherResult, error) {
	cell := geo.CellFor(lat, lon)

	result, err := s.getOrFetchSnapshot(ctx, types.CellKey(cell), cell.Lat, cell.Lon, locale)
	if err != nil {
		return nil, err
	}
	result.Coordinates = &types.RawCoordinates{Lat: lat, Lon: lon}

	condition, rawLat, rawLon := result.EnrichmentPoint()
	result.Restaurants = s.restaurants.Recommend(ctx, condition, rawLat, rawLon, locale)
	result.Facilities = s.facilities.Recommend(ctx, rawLat, rawLon, result.Snapshot.ConditionGroup, locale)

	return result, nil
}

// GetRegionHourly returns today's remaining hourly forecast for a region,
// fetching and caching it on a miss.
func (s *Service) GetRegionHourly(ctx context.Context, regionID int64, locale types.Locale) ([]types.HourlyForecast, error) {
	region, err := s.regions.GetByID(ctx, regionID)
	if err != nil {
		return nil, err
	}
	return s.getOrFetchHourly(ctx, types.RegionKey(region.ID), region.Lat, region.Lon, locale)
}

// GetLocationHourly returns today's remaining hourly forecast for a
// coordinate's cache cell, fetching and caching it on a miss.
func (s *Service) GetLocationHourly(ctx context.Context, lat, lon float64, locale types.Locale) ([]types.HourlyForecast, error) {
	cell := geo.CellFor(lat, lon)
	return s.getOrFetchHourly(ctx, types.CellKey(cell), cell.Lat, cell.Lon, locale)
}

// getOrFetchSnapshot implements the check-cache / fetch / persist flow for
// one snapshot key.
func (s *Service) getOrFetchSnapshot(ctx context.Context, key types.SnapshotKey, lat, lon float64, locale types.Locale) (*types.WeatherResult, error) {
	today := truncateToDay(s.now())

	snap, err := s.snapshots.Find(ctx, key, today, locale)
	if err == nil {
		cachedAt := snap.CreatedAt
		return &types.WeatherResult{
			Snapshot:  snap,
			FromCache: true,
			CachedAt:  &cachedAt,
		}, nil
	}
	if !types.IsNotFound(err) {
		return nil, err
	}

	payload, err := s.fetcher.FetchCurrent(ctx, lat, lon, locale)
	if err != nil {
		return nil, err
	}

	snap, err = s.snapshots.Save(ctx, payload, key, locale)
	if types.IsConflict(err) {
		// Lost the insert race; the winner's row is today's cache entry.
		s.logger.InfoContext(ctx, "snapshot insert lost race, reading winner", "locale", locale)
		snap, err = s.snapshots.Find(ctx, key, today, locale)
		if err != nil {
			return nil, err
		}
		cachedAt := snap.CreatedAt
		return &types.WeatherResult{
			Snapshot:  snap,
			FromCache: true,
			CachedAt:  &cachedAt,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	fetchedAt := s.now()
	return &types.WeatherResult{
		Snapshot:  snap,
		FromCache: false,
		FetchedAt: &fetchedAt,
	}, nil
}

// getOrFetchHourly implements the check-cache / fetch / replace flow for one
// hourly forecast key. The post-replace re-read applies the same future-only
// filtering as a plain cache hit, so a provider response with no future hours
// still surfaces as not found.
func (s *Service) getOrFetchHourly(ctx context.Context, key types.SnapshotKey, lat, lon float64, locale types.Locale) ([]types.HourlyForecast, error) {
	forecasts, err := s.hourly.Find(ctx, key, locale)
	if err == nil {
		return forecasts, nil
	}
	if !types.IsNotFound(err) {
		return nil, err
	}

	entries, err := s.fetcher.FetchHourly(ctx, lat, lon, locale)
	if err != nil {
		return nil, err
	}

	if err := s.hourly.Replace(ctx, entries, key, locale); err != nil {
		return nil, err
	}

	return s.hourly.Find(ctx, key, locale)
}

// truncateToDay strips the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
