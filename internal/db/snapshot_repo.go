package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"tenki/internal/external"
	"tenki/internal/types"
)

// conditionUnknown is stored when the provider payload carries no condition
// description.
const conditionUnknown = "unknown"

// SnapshotRepository persists daily weather snapshots. Region-keyed entries
// live in weather_records and cell-keyed entries in weather_locations; both
// tables carry the same flat attribute set and a unique index over
// (key, date, locale), so at most one snapshot exists per key per day.
//
// Rows are insert-only: a snapshot is written on the first fetch of the day
// and naturally superseded by the next day's row.
type SnapshotRepository struct {
	db  DBTX
	now func() time.Time
}

// NewSnapshotRepository creates a new SnapshotRepository backed by the given
// database connection (pool or transaction).
func NewSnapshotRepository(db DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// snapshotColumns is the shared attribute column list, identical for both
// snapshot tables.
const snapshotColumns = `location_name, weather, condition_group, icon,
	temperature, feels_like, temp_min, temp_max,
	pressure, humidity, visibility, wind_speed, wind_deg, clouds,
	sunrise, sunset, country, api_dt, date, locale, created_at`

// scanSnapshot scans the id plus snapshotColumns into a WeatherSnapshot.
func scanSnapshot(row pgx.Row) (*types.WeatherSnapshot, error) {
	var snap types.WeatherSnapshot
	err := row.Scan(
		&snap.ID,
		&snap.LocationName,
		&snap.Condition,
		&snap.ConditionGroup,
		&snap.Icon,
		&snap.Temperature,
		&snap.FeelsLike,
		&snap.TempMin,
		&snap.TempMax,
		&snap.Pressure,
		&snap.Humidity,
		&snap.Visibility,
		&snap.WindSpeed,
		&snap.WindDeg,
		&snap.Clouds,
		&snap.Sunrise,
		&snap.Sunset,
		&snap.Country,
		&snap.APIDt,
		&snap.Date,
		&snap.Locale,
		&snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Find returns the snapshot for the given key, calendar day, and locale,
// or a not_found_snapshot error on a cache miss.
func (r *SnapshotRepository) Find(ctx context.Context, key types.SnapshotKey, date time.Time, locale types.Locale) (*types.WeatherSnapshot, error) {
	var row pgx.Row
	if key.IsRegion() {
		row = r.db.QueryRow(ctx,
			`SELECT id, `+snapshotColumns+`
			 FROM weather_records
			 WHERE region_id = $1 AND date = $2 AND locale = $3`,
			*key.RegionID, date, locale)
	} else {
		row = r.db.QueryRow(ctx,
			`SELECT id, `+snapshotColumns+`
			 FROM weather_locations
			 WHERE lat_rounded = $1 AND lon_rounded = $2 AND date = $3 AND locale = $4`,
			key.Cell.Lat, key.Cell.Lon, date, locale)
	}

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundSnapshot, "no snapshot cached for key", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load weather snapshot", err)
	}

	snap.Key = key
	return snap, nil
}

// Save maps the provider payload's nested fields into flat attributes and
// inserts today's snapshot for the key. Missing payload fields default to
// null (numerics) or "unknown" (condition text) rather than failing.
//
// A concurrent insert racing on the same (key, date, locale) trips the unique
// index and surfaces as a conflict_snapshot_exists error; callers treat that
// as "someone else already cached it" and re-read.
func (r *SnapshotRepository) Save(ctx context.Context, payload *external.CurrentWeatherPayload, key types.SnapshotKey, locale types.Locale) (*types.WeatherSnapshot, error) {
	snap := mapPayload(payload)
	snap.Key = key
	snap.Date = truncateToDay(r.now())
	snap.Locale = locale

	var row pgx.Row
	if key.IsRegion() {
		row = r.db.QueryRow(ctx,
			`INSERT INTO weather_records (
				region_id, `+snapshotColumns+`
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
				$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NOW()
			) RETURNING id, created_at`,
			append([]any{*key.RegionID}, snapshotArgs(snap)...)...)
	} else {
		row = r.db.QueryRow(ctx,
			`INSERT INTO weather_locations (
				lat_rounded, lon_rounded, `+snapshotColumns+`
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
				$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, NOW()
			) RETURNING id, created_at`,
			append([]any{key.Cell.Lat, key.Cell.Lon}, snapshotArgs(snap)...)...)
	}

	if err := row.Scan(&snap.ID, &snap.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, types.NewAppError(types.ErrCodeConflictSnapshotExists,
				"snapshot already cached for key, date, and locale", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to save weather snapshot", err)
	}

	return snap, nil
}

// snapshotArgs returns the insert arguments matching snapshotColumns,
// excluding the trailing created_at which is set to NOW() in SQL.
func snapshotArgs(snap *types.WeatherSnapshot) []any {
	return []any{
		snap.LocationName,
		snap.Condition,
		snap.ConditionGroup,
		snap.Icon,
		snap.Temperature,
		snap.FeelsLike,
		snap.TempMin,
		snap.TempMax,
		snap.Pressure,
		snap.Humidity,
		snap.Visibility,
		snap.WindSpeed,
		snap.WindDeg,
		snap.Clouds,
		snap.Sunrise,
		snap.Sunset,
		snap.Country,
		snap.APIDt,
		snap.Date,
		snap.Locale,
	}
}

// mapPayload flattens the provider's nested payload into snapshot attributes.
func mapPayload(payload *external.CurrentWeatherPayload) *types.WeatherSnapshot {
	snap := &types.WeatherSnapshot{
		LocationName:   payload.Name,
		Condition:      conditionUnknown,
		ConditionGroup: "",
		Temperature:    payload.Main.Temp,
		FeelsLike:      payload.Main.FeelsLike,
		TempMin:        payload.Main.TempMin,
		TempMax:        payload.Main.TempMax,
		Pressure:       payload.Main.Pressure,
		Humidity:       payload.Main.Humidity,
		Visibility:     payload.Visibility,
		WindSpeed:      payload.Wind.Speed,
		WindDeg:        payload.Wind.Deg,
		Clouds:         payload.Clouds.All,
		Sunrise:        payload.Sys.Sunrise,
		Sunset:         payload.Sys.Sunset,
		Country:        nilIfEmpty(payload.Sys.Country),
		APIDt:          payload.Dt,
	}

	if snap.LocationName == "" {
		snap.LocationName = conditionUnknown
	}
	if len(payload.Weather) > 0 {
		if payload.Weather[0].Description != "" {
			snap.Condition = payload.Weather[0].Description
		}
		snap.ConditionGroup = payload.Weather[0].Main
		if payload.Weather[0].Icon != "" {
			icon := payload.Weather[0].Icon
			snap.Icon = &icon
		}
	}

	return snap
}

// truncateToDay strips the time-of-day component, yielding the calendar day
// the cache is keyed on.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
