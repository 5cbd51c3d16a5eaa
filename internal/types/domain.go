// Package types defines the domain model shared across the Tenki weather
// application: regions, cached weather snapshots, hourly forecasts, and the
// composed per-request result types.
package types

import (
	"time"

	"tenki/internal/geo"
)

// Region is a static reference entity: a selectable named place with fixed
// coordinates. Regions are seeded once and read-only to the application.
type Region struct {
	ID   int64   `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	Code string  `json:"code" db:"code"`
	Lat  float64 `json:"lat" db:"lat"`
	Lon  float64 `json:"lon" db:"lon"`
}

// SnapshotKey identifies a weather cache entry. Exactly one of RegionID or
// Cell is set: region-based lookups cache per region, coordinate-based
// lookups cache per rounded 0.1-degree cell.
type SnapshotKey struct {
	RegionID *int64
	Cell     *geo.Cell
}

// RegionKey builds a SnapshotKey for a region-based cache entry.
func RegionKey(regionID int64) SnapshotKey {
	return SnapshotKey{RegionID: &regionID}
}

// CellKey builds a SnapshotKey for a rounded-coordinate cache entry.
func CellKey(cell geo.Cell) SnapshotKey {
	return SnapshotKey{Cell: &cell}
}

// IsRegion reports whether the key addresses a region-based entry.
func (k SnapshotKey) IsRegion() bool {
	return k.RegionID != nil
}

// WeatherSnapshot is one day's cached weather observation for a key+locale.
// Created on the first fetch of the day and never updated; the next calendar
// day naturally produces a new row.
//
// Numeric fields the provider may omit are pointers so that absence survives
// the round trip through the store instead of collapsing to zero.
type WeatherSnapshot struct {
	ID  int64       `json:"-" db:"id"`
	Key SnapshotKey `json:"-" db:"-"`

	LocationName   string   `json:"location_name" db:"location_name"`
	Condition      string   `json:"weather" db:"weather"`
	ConditionGroup string   `json:"condition_group" db:"condition_group"`
	Icon           *string  `json:"icon" db:"icon"`
	Temperature    float64  `json:"temperature" db:"temperature"`
	FeelsLike      float64  `json:"feels_like" db:"feels_like"`
	TempMin        float64  `json:"temp_min" db:"temp_min"`
	TempMax        float64  `json:"temp_max" db:"temp_max"`
	Pressure       *int     `json:"pressure" db:"pressure"`
	Humidity       *int     `json:"humidity" db:"humidity"`
	Visibility     *int     `json:"visibility" db:"visibility"`
	WindSpeed      *float64 `json:"wind_speed" db:"wind_speed"`
	WindDeg        *int     `json:"wind_deg" db:"wind_deg"`
	Clouds         *int     `json:"clouds" db:"clouds"`
	Sunrise        *int64   `json:"sunrise" db:"sunrise"`
	Sunset         *int64   `json:"sunset" db:"sunset"`
	Country        *string  `json:"country" db:"country"`
	APIDt          *int64   `json:"api_dt" db:"api_dt"`

	Date      time.Time `json:"date" db:"date"`
	Locale    Locale    `json:"locale" db:"locale"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HourlyForecast is a single forecast hour belonging to a snapshot key.
// Pop is the precipitation probability in [0, 1].
type HourlyForecast struct {
	ForecastTime time.Time `json:"forecast_time" db:"forecast_time"`
	Temperature  float64   `json:"temperature" db:"temperature"`
	Condition    string    `json:"weather" db:"weather"`
	Icon         *string   `json:"icon" db:"icon"`
	Pop          float64   `json:"pop" db:"pop"`
}

// RawCoordinates are the unrounded coordinates a location-based request
// arrived with. Facility distances are computed from these, never from the
// rounded cache key.
type RawCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherResult is the composed, request-scoped answer to a weather lookup.
//
// Region and Coordinates are mutually exclusive: region-based lookups carry
// the resolved Region, coordinate-based lookups carry the raw request
// coordinates. Facilities are only ever populated for coordinate-based
// results; restaurants are populated for both.
type WeatherResult struct {
	Snapshot    *WeatherSnapshot `json:"weather"`
	Region      *Region          `json:"region,omitempty"`
	Coordinates *RawCoordinates  `json:"coordinates,omitempty"`

	FromCache bool       `json:"is_from_cache"`
	CachedAt  *time.Time `json:"cached_at,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`

	Restaurants *RestaurantRecommendation `json:"restaurants,omitempty"`
	Facilities  *FacilityRecommendation   `json:"facilities,omitempty"`
}

// EnrichmentPoint projects the result onto the common inputs the
// recommendation engines need: the weather condition text and the
// coordinates to search around. For region results the region's seeded
// coordinates are used; for location results the raw request coordinates.
func (r *WeatherResult) EnrichmentPoint() (condition string, lat, lon float64) {
	condition = r.Snapshot.Condition
	if r.Region != nil {
		return condition, r.Region.Lat, r.Region.Lon
	}
	return condition, r.Coordinates.Lat, r.Coordinates.Lon
}
