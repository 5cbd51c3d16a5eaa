package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tenki/internal/types"
)

// RegionRepository provides read access to the regions reference table.
// Regions are seeded once by migrations and never written by the application.
type RegionRepository struct {
	db DBTX
}

// NewRegionRepository creates a new RegionRepository backed by the given
// database connection (pool or transaction).
func NewRegionRepository(db DBTX) *RegionRepository {
	return &RegionRepository{db: db}
}

// GetByID returns the region with the given id, or a not_found_region error.
func (r *RegionRepository) GetByID(ctx context.Context, id int64) (*types.Region, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, code, lat, lon FROM regions WHERE id = $1`, id)

	var region types.Region
	err := row.Scan(&region.ID, &region.Name, &region.Code, &region.Lat, &region.Lon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundRegion, "region not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load region", err)
	}

	return &region, nil
}

// List returns all regions ordered by display name.
func (r *RegionRepository) List(ctx context.Context) ([]types.Region, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, code, lat, lon FROM regions ORDER BY name ASC`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list regions", err)
	}
	defer rows.Close()

	var regions []types.Region
	for rows.Next() {
		var region types.Region
		if err := rows.Scan(&region.ID, &region.Name, &region.Code, &region.Lat, &region.Lon); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan region row", err)
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating region rows", err)
	}

	return regions, nil
}
