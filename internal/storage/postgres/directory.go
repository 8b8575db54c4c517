package postgres

import (
	"context"
	"log/slog"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Directory reads targets from the targets table.
type Directory struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDirectory(pool *pgxpool.Pool, logger *slog.Logger) *Directory {
	return &Directory{pool: pool, logger: logger}
}

func (d *Directory) Lookup(ctx context.Context, key domain.TargetKey) (*domain.DirectoryRecord, error) {
	const op = "postgres.Directory.Lookup"

	const query = `
SELECT primary_key, secondary_key, COALESCE(coordinates, ''), lat, lng, display_name, metadata
FROM targets
WHERE primary_key = $1 AND secondary_key = $2
`

	var rec domain.DirectoryRecord
	err := d.pool.QueryRow(ctx, query, key.PrimaryKey, key.SecondaryKey).Scan(
		&rec.PrimaryKey,
		&rec.SecondaryKey,
		&rec.Coordinates,
		&rec.Lat,
		&rec.Lng,
		&rec.DisplayName,
		&rec.Metadata,
	)
	if err != nil {
		wrapped := e.WrapError(ctx, op, err)
		if !errorsIsNotFound(wrapped) {
			d.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		}
		return nil, wrapped
	}
	return &rec, nil
}

// Upsert inserts or replaces a target.
func (d *Directory) Upsert(ctx context.Context, rec domain.DirectoryRecord) error {
	const op = "postgres.Directory.Upsert"

	const query = `
INSERT INTO targets (primary_key, secondary_key, coordinates, lat, lng, display_name, metadata)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
ON CONFLICT (primary_key, secondary_key) DO UPDATE SET
    coordinates  = EXCLUDED.coordinates,
    lat          = EXCLUDED.lat,
    lng          = EXCLUDED.lng,
    display_name = EXCLUDED.display_name,
    metadata     = EXCLUDED.metadata,
    updated_at   = now()
`

	metadata := rec.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	_, err := d.pool.Exec(ctx, query,
		rec.PrimaryKey, rec.SecondaryKey, rec.Coordinates, rec.Lat, rec.Lng, rec.DisplayName, metadata)
	if err != nil {
		d.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}
