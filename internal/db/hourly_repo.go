package db

import (
	"context"
	"time"

	"tenki/internal/external"
	"tenki/internal/types"
)

// maxHourlyEntries caps how many future forecast hours are returned to a
// consumer.
const maxHourlyEntries = 24

// HourlyRepository persists per-hour forecast rows belonging to a snapshot
// key. The full set for a (key, locale, day) is always replaced wholesale,
// never merged, so duplicate or stale hours cannot accumulate.
type HourlyRepository struct {
	db  TxStarter
	now func() time.Time
}

// NewHourlyRepository creates a new HourlyRepository. It requires a TxStarter
// (not a bare DBTX) because Replace runs inside a transaction.
func NewHourlyRepository(db TxStarter) *HourlyRepository {
	return &HourlyRepository{db: db, now: time.Now}
}

// Find returns today's cached forecast hours for the key and locale,
// filtered to entries at or after now, ordered ascending, capped at 24.
// An empty result is a not_found_hourly_forecast error: consumers treat it
// as a cache miss.
func (r *HourlyRepository) Find(ctx context.Context, key types.SnapshotKey, locale types.Locale) ([]types.HourlyForecast, error) {
	now := r.now()
	today := truncateToDay(now)

	var (
		query string
		args  []any
	)
	if key.IsRegion() {
		query = `SELECT forecast_time, temperature, weather, icon, pop
			FROM weather_hourly_forecasts
			WHERE region_id = $1 AND locale = $2 AND date = $3 AND forecast_time >= $4
			ORDER BY forecast_time ASC
			LIMIT $5`
		args = []any{*key.RegionID, locale, today, now, maxHourlyEntries}
	} else {
		query = `SELECT forecast_time, temperature, weather, icon, pop
			FROM weather_hourly_forecasts
			WHERE lat_rounded = $1 AND lon_rounded = $2 AND locale = $3 AND date = $4 AND forecast_time >= $5
			ORDER BY forecast_time ASC
			LIMIT $6`
		args = []any{key.Cell.Lat, key.Cell.Lon, locale, today, now, maxHourlyEntries}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query hourly forecasts", err)
	}
	defer rows.Close()

	var forecasts []types.HourlyForecast
	for rows.Next() {
		var f types.HourlyForecast
		if err := rows.Scan(&f.ForecastTime, &f.Temperature, &f.Condition, &f.Icon, &f.Pop); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan hourly forecast row", err)
		}
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating hourly forecast rows", err)
	}

	if len(forecasts) == 0 {
		return nil, types.NewAppError(types.ErrCodeNotFoundHourly, "no future hourly forecasts cached for key", nil)
	}

	return forecasts, nil
}

// Replace deletes all of today's rows for (key, locale) and inserts the
// fresh provider entries, inside a single transaction so a concurrent reader
// never observes the deleted-but-not-yet-inserted state.
func (r *HourlyRepository) Replace(ctx context.Context, entries []external.HourlyPayload, key types.SnapshotKey, locale types.Locale) error {
	today := truncateToDay(r.now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to begin hourly replace transaction", err)
	}
	defer tx.Rollback(ctx)

	if key.IsRegion() {
		_, err = tx.Exec(ctx,
			`DELETE FROM weather_hourly_forecasts
			 WHERE region_id = $1 AND locale = $2 AND date = $3`,
			*key.RegionID, locale, today)
	} else {
		_, err = tx.Exec(ctx,
			`DELETE FROM weather_hourly_forecasts
			 WHERE lat_rounded = $1 AND lon_rounded = $2 AND locale = $3 AND date = $4`,
			key.Cell.Lat, key.Cell.Lon, locale, today)
	}
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete stale hourly forecasts", err)
	}

	for _, entry := range entries {
		condition := conditionUnknown
		var icon *string
		if len(entry.Weather) > 0 {
			if entry.Weather[0].Description != "" {
				condition = entry.Weather[0].Description
			}
			if entry.Weather[0].Icon != "" {
				ic := entry.Weather[0].Icon
				icon = &ic
			}
		}

		var regionID *int64
		var latRounded, lonRounded *float64
		if key.IsRegion() {
			regionID = key.RegionID
		} else {
			latRounded = &key.Cell.Lat
			lonRounded = &key.Cell.Lon
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO weather_hourly_forecasts (
				region_id, lat_rounded, lon_rounded,
				forecast_time, temperature, weather, icon, pop, date, locale, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
			regionID, latRounded, lonRounded,
			time.Unix(entry.Dt, 0).UTC(), entry.Temp, condition, icon, entry.Pop,
			today, locale)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to insert hourly forecast", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to commit hourly replace transaction", err)
	}

	return nil
}
