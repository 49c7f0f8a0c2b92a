// Package repository persists toilet records in Postgres/PostGIS with raw SQL.
package repository

import (
	"context"
	"fmt"

	"loolook_backend/internal/geo"
	"loolook_backend/internal/toilets/transport"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const toiletColumns = `id, name, address,
		ST_Y(geom::geometry) AS lat,
		ST_X(geom::geometry) AS lng,
		category, phone, open_time,
		male_toilet, female_toilet,
		male_disabled, female_disabled,
		male_child, female_child,
		emergency_bell, cctv, baby_change`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new toilets repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListAll retrieves every geocoded row, optionally filtered by visibility.
func (r *Repo) ListAll(ctx context.Context, isPublic *bool) ([]transport.Toilet, error) {
	query := `
		SELECT ` + toiletColumns + `
		FROM toilets
		WHERE geom IS NOT NULL`
	args := []any{}
	if isPublic != nil {
		query += ` AND is_public = $1`
		args = append(args, *isPublic)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list toilets: %w", err)
	}
	defer rows.Close()

	return scanToilets(rows)
}

// ListInBounds retrieves geocoded rows intersecting the viewport.
func (r *Repo) ListInBounds(ctx context.Context, box geo.BoundingBox, isPublic *bool) ([]transport.Toilet, error) {
	query := `
		SELECT ` + toiletColumns + `
		FROM toilets
		WHERE geom IS NOT NULL
		  AND geom::geometry && ST_MakeEnvelope($1, $2, $3, $4, 4326)`
	args := []any{box.SouthWest.Lng, box.SouthWest.Lat, box.NorthEast.Lng, box.NorthEast.Lat}
	if isPublic != nil {
		query += ` AND is_public = $5`
		args = append(args, *isPublic)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list toilets in bounds: %w", err)
	}
	defer rows.Close()

	return scanToilets(rows)
}

// ListWithinRadius retrieves geocoded rows within radiusKM of the center.
func (r *Repo) ListWithinRadius(ctx context.Context, center geo.Point, radiusKM float64, isPublic *bool) ([]transport.Toilet, error) {
	query := `
		SELECT ` + toiletColumns + `
		FROM toilets
		WHERE geom IS NOT NULL
		  AND ST_DWithin(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)`
	args := []any{center.Lng, center.Lat, radiusKM * 1000}
	if isPublic != nil {
		query += ` AND is_public = $4`
		args = append(args, *isPublic)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list toilets within radius: %w", err)
	}
	defer rows.Close()

	return scanToilets(rows)
}

// InsertIgnore inserts a user-submitted row, silently skipping conflicts.
// It reports whether a row was actually written.
func (r *Repo) InsertIgnore(ctx context.Context, name, address string, isPublic bool, p geo.Point) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO toilets (name, address, is_public, geom)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography)
		ON CONFLICT DO NOTHING`,
		name, address, isPublic, p.Lng, p.Lat)
	if err != nil {
		return false, fmt.Errorf("insert toilet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Upsert inserts a cleaned record, merging on fingerprint conflict.
// Descriptive fields are last-write-wins; the coordinate is COALESCEd so a
// stored point is never overwritten (geocoding results are expensive,
// newer source exports are not).
func (r *Repo) Upsert(ctx context.Context, rec UpsertRecord) error {
	var lng, lat any
	hasPoint := rec.Point != nil
	if hasPoint {
		lng, lat = rec.Point.Lng, rec.Point.Lat
	}

	_, err := r.pool.Exec(ctx, upsertSQL,
		rec.Name, rec.Address, rec.Source, rec.IsPublic,
		hasPoint, lng, lat,
		rec.Fingerprint,
		rec.Category, rec.Phone, rec.OpenTime,
		rec.MaleToilet, rec.FemaleToilet,
		rec.MaleDisabled, rec.FemaleDisabled,
		rec.MaleChild, rec.FemaleChild,
		rec.EmergencyBell, rec.CCTV, rec.BabyChange)
	if err != nil {
		return fmt.Errorf("upsert toilet: %w", err)
	}
	return nil
}

// upsertSQL merges on the fingerprint: identity fields always take the
// incoming value, descriptive fields only when the incoming value is
// non-null, and a stored geometry is never overwritten.
const upsertSQL = `
		INSERT INTO toilets (
			name, address, source, is_public, geom, fp,
			category, phone, open_time,
			male_toilet, female_toilet,
			male_disabled, female_disabled,
			male_child, female_child,
			emergency_bell, cctv, baby_change
		)
		VALUES (
			$1, $2, $3, $4,
			CASE WHEN $5 THEN ST_SetSRID(ST_MakePoint($6::float8, $7::float8), 4326)::geography ELSE NULL END,
			$8,
			$9, $10, $11,
			NULLIF($12, ''), NULLIF($13, ''),
			NULLIF($14, ''), NULLIF($15, ''),
			NULLIF($16, ''), NULLIF($17, ''),
			$18, $19, $20
		)
		ON CONFLICT (fp) DO UPDATE SET
			name            = EXCLUDED.name,
			address         = EXCLUDED.address,
			source          = EXCLUDED.source,
			is_public       = EXCLUDED.is_public,
			category        = COALESCE(EXCLUDED.category, toilets.category),
			phone           = COALESCE(EXCLUDED.phone, toilets.phone),
			open_time       = COALESCE(EXCLUDED.open_time, toilets.open_time),
			male_toilet     = COALESCE(EXCLUDED.male_toilet, toilets.male_toilet),
			female_toilet   = COALESCE(EXCLUDED.female_toilet, toilets.female_toilet),
			male_disabled   = COALESCE(EXCLUDED.male_disabled, toilets.male_disabled),
			female_disabled = COALESCE(EXCLUDED.female_disabled, toilets.female_disabled),
			male_child      = COALESCE(EXCLUDED.male_child, toilets.male_child),
			female_child    = COALESCE(EXCLUDED.female_child, toilets.female_child),
			emergency_bell  = EXCLUDED.emergency_bell,
			cctv            = EXCLUDED.cctv,
			baby_change     = EXCLUDED.baby_change,
			geom            = COALESCE(toilets.geom, EXCLUDED.geom)`

// Stats computes the aggregate counts over geocoded rows. The four counts
// are independent, so they run concurrently.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, query string) func() error {
		return func() error {
			return r.pool.QueryRow(ctx, query).Scan(dst)
		}
	}

	g.Go(count(&stats.Total, `
		SELECT COUNT(*) FROM toilets WHERE geom IS NOT NULL`))
	g.Go(count(&stats.Public, `
		SELECT COUNT(*) FROM toilets
		WHERE geom IS NOT NULL
		  AND COALESCE(category, '') NOT IN ('매장 내부 화장실', '도어락 잠금 화장실')`))
	g.Go(count(&stats.Disabled, `
		SELECT COUNT(*) FROM toilets
		WHERE geom IS NOT NULL
		  AND (male_disabled = 'O' OR female_disabled = 'O')`))
	g.Go(count(&stats.BabyChange, `
		SELECT COUNT(*) FROM toilets
		WHERE geom IS NOT NULL AND baby_change = true`))

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("toilet stats: %w", err)
	}
	return stats, nil
}

// AreaCentroid averages the coordinates of geocoded rows matching the
// patterns, tried in order from narrowest to widest. No match yields nil.
func (r *Repo) AreaCentroid(ctx context.Context, patterns []string) (*geo.Point, error) {
	for _, pattern := range patterns {
		var lat, lng *float64
		err := r.pool.QueryRow(ctx, `
			SELECT AVG(ST_Y(geom::geometry)), AVG(ST_X(geom::geometry))
			FROM toilets
			WHERE geom IS NOT NULL AND address ILIKE $1`,
			pattern).Scan(&lat, &lng)
		if err != nil {
			return nil, fmt.Errorf("area centroid: %w", err)
		}
		if lat != nil && lng != nil {
			return &geo.Point{Lat: *lat, Lng: *lng}, nil
		}
	}
	return nil, nil
}

// ListMissingCoordinates retrieves rows without geometry whose address is
// plausible enough to geocode.
func (r *Repo) ListMissingCoordinates(ctx context.Context, limit int) ([]MissingAddress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, address
		FROM toilets
		WHERE geom IS NULL
		  AND address IS NOT NULL
		  AND length(address) > 3
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list missing coordinates: %w", err)
	}
	defer rows.Close()

	targets := make([]MissingAddress, 0)
	for rows.Next() {
		var t MissingAddress
		if err := rows.Scan(&t.ID, &t.Address); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// CountMissingCoordinates counts rows without geometry.
func (r *Repo) CountMissingCoordinates(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM toilets WHERE geom IS NULL`).Scan(&count)
	return count, err
}

// UpdateCoordinates sets the geometry of a single row.
func (r *Repo) UpdateCoordinates(ctx context.Context, id int64, p geo.Point) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE toilets
		SET geom = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography
		WHERE id = $1`, id, p.Lng, p.Lat)
	if err != nil {
		return fmt.Errorf("update coordinates: %w", err)
	}
	return nil
}

// OverrideAddresses applies address corrections and clears geometry inside
// one transaction: a mid-batch crash leaves the table in its pre-batch
// state. Rows whose id does not exist are skipped, not fatal.
func (r *Repo) OverrideAddresses(ctx context.Context, overrides []AddressOverride) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin override batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	applied := 0
	for _, o := range overrides {
		tag, err := tx.Exec(ctx, `
			UPDATE toilets
			SET address = $2, geom = NULL
			WHERE id = $1`, o.ID, o.Address)
		if err != nil {
			return 0, fmt.Errorf("override address id=%d: %w", o.ID, err)
		}
		applied += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit override batch: %w", err)
	}
	return applied, nil
}

// CountByNameAndAddress counts rows matching the exact name and an
// ILIKE address pattern.
func (r *Repo) CountByNameAndAddress(ctx context.Context, name, addressPattern string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM toilets
		WHERE name = $1 AND address ILIKE $2`, name, "%"+addressPattern+"%").Scan(&count)
	return count, err
}

// DeleteByNameAndAddress removes rows matching the exact name and an
// ILIKE address pattern, returning the number deleted.
func (r *Repo) DeleteByNameAndAddress(ctx context.Context, name, addressPattern string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM toilets
		WHERE name = $1 AND address ILIKE $2`, name, "%"+addressPattern+"%")
	if err != nil {
		return 0, fmt.Errorf("delete toilets: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanToilets(rows pgx.Rows) ([]transport.Toilet, error) {
	toilets := make([]transport.Toilet, 0)
	for rows.Next() {
		var t transport.Toilet
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Address,
			&t.Lat, &t.Lng,
			&t.Category, &t.Phone, &t.OpenTime,
			&t.MaleToilet, &t.FemaleToilet,
			&t.MaleDisabled, &t.FemaleDisabled,
			&t.MaleChild, &t.FemaleChild,
			&t.EmergencyBell, &t.CCTV, &t.BabyChange,
		); err != nil {
			return nil, err
		}
		toilets = append(toilets, t)
	}
	return toilets, rows.Err()
}
