package repository

import (
	"context"

	"loolook_backend/internal/geo"
	"loolook_backend/internal/toilets/transport"
)

// UpsertRecord is a cleaned, fingerprinted record ready for persistence.
// Facility flags hold "O"/"X" (empty means unknown).
type UpsertRecord struct {
	Name           string
	Address        string
	Source         string
	IsPublic       bool
	Fingerprint    string
	Point          *geo.Point
	Category       *string
	Phone          *string
	OpenTime       *string
	MaleToilet     string
	FemaleToilet   string
	MaleDisabled   string
	FemaleDisabled string
	MaleChild      string
	FemaleChild    string
	EmergencyBell  bool
	CCTV           bool
	BabyChange     bool
}

// MissingAddress identifies a row without coordinates, for backfill.
type MissingAddress struct {
	ID      int64
	Address string
}

// AddressOverride replaces a row's address and clears its geometry so the
// next backfill pass re-geocodes it.
type AddressOverride struct {
	ID      int64
	Address string
}

// Stats are the aggregate counts of geocoded rows.
type Stats struct {
	Total      int64
	Public     int64
	Disabled   int64
	BabyChange int64
}

// Repository is the persistence surface of the toilets context.
type Repository interface {
	ListAll(ctx context.Context, isPublic *bool) ([]transport.Toilet, error)
	ListInBounds(ctx context.Context, box geo.BoundingBox, isPublic *bool) ([]transport.Toilet, error)
	ListWithinRadius(ctx context.Context, center geo.Point, radiusKM float64, isPublic *bool) ([]transport.Toilet, error)
	InsertIgnore(ctx context.Context, name, address string, isPublic bool, p geo.Point) (bool, error)
	Upsert(ctx context.Context, rec UpsertRecord) error
	Stats(ctx context.Context) (Stats, error)
	AreaCentroid(ctx context.Context, patterns []string) (*geo.Point, error)
	ListMissingCoordinates(ctx context.Context, limit int) ([]MissingAddress, error)
	CountMissingCoordinates(ctx context.Context) (int64, error)
	UpdateCoordinates(ctx context.Context, id int64, p geo.Point) error
	OverrideAddresses(ctx context.Context, overrides []AddressOverride) (int, error)
	CountByNameAndAddress(ctx context.Context, name, addressPattern string) (int64, error)
	DeleteByNameAndAddress(ctx context.Context, name, addressPattern string) (int64, error)
}
