// Package service holds the toilets business logic: CSV row cleaning,
// fingerprinting, batch ingest and query dispatch.
package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"loolook_backend/internal/address"
	"loolook_backend/internal/geo"
	"loolook_backend/internal/toilets/repository"
	"loolook_backend/internal/toilets/transport"
	"loolook_backend/platform/apperr"
	"loolook_backend/platform/logger"
	"loolook_backend/platform/phone"
)

// Query modes accepted by List.
const (
	ModeAll    = "all"
	ModeBounds = "bounds"
	ModeRadius = "radius"
)

// Query selects which rows to list. Bounds is required for ModeBounds,
// Center and RadiusKM for ModeRadius.
type Query struct {
	Mode     string
	Bounds   *geo.BoundingBox
	Center   *geo.Point
	RadiusKM float64
	IsPublic *bool
}

// IngestRow is one raw CSV row of the Seoul open-data export, already
// mapped from the Korean column headers. All fields are the untrimmed
// cell values.
type IngestRow struct {
	Name        string
	RoadAddress string
	LotAddress  string
	Lat         string
	Lng         string
	Category    string
	Phone       string
	OpenTime    string
	OpenDetail  string

	MaleStall           string
	MaleUrinal          string
	FemaleStall         string
	MaleDisabledStall   string
	MaleDisabledUrinal  string
	FemaleDisabledStall string
	MaleChildStall      string
	MaleChildUrinal     string
	FemaleChildStall    string

	EmergencyBell string
	CCTV          string
	BabyChange    string
}

// IngestReport summarizes a batch ingest run.
type IngestReport struct {
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	NoGeometry int
}

// Service implements the toilets use cases.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Fingerprint derives the dedup key of a record: md5 of the lowercased
// "name|address" pair. Case differences in source exports must not
// produce duplicate rows.
func Fingerprint(name, addr string) string {
	sum := md5.Sum([]byte(strings.ToLower(name + "|" + addr)))
	return hex.EncodeToString(sum[:])
}

// Truthy reports whether a cell value means "present" in the source
// exports. The vocabulary is wider than Y/N: some files use 있음/예,
// others O or 1.
func Truthy(v string) bool {
	switch strings.TrimSpace(v) {
	case "O", "o", "Y", "y", "YES", "있음", "예", "true", "1":
		return true
	}
	return false
}

// toOX collapses fixture counts to the O/X convention.
func toOX(counts ...string) string {
	total := 0
	for _, c := range counts {
		n, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			continue
		}
		total += n
	}
	if total > 0 {
		return "O"
	}
	return "X"
}

// normalizePhone formats a Korean phone number to its national form.
// Unparseable input is kept verbatim rather than dropped.
func normalizePhone(raw string) *string {
	normalized := phone.NormalizeKR(raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}

func optional(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

// CleanRow converts a raw CSV row into a persistable record: normalized
// address, fingerprint, O/X flags, coordinate validated against the
// Korean bounding box. Rows without any address are rejected.
func CleanRow(row IngestRow, source string) (repository.UpsertRecord, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		name = "공중화장실"
	}

	rawAddr := strings.TrimSpace(row.RoadAddress)
	if rawAddr == "" {
		rawAddr = strings.TrimSpace(row.LotAddress)
	}
	if rawAddr == "" {
		return repository.UpsertRecord{}, apperr.Validation("row has no address")
	}
	addr := address.Normalize(rawAddr)

	var point *geo.Point
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(row.Lat), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(row.Lng), 64)
	if latErr == nil && lngErr == nil && geo.InKorea(lat, lng) {
		point = &geo.Point{Lat: lat, Lng: lng}
	}

	openTime := optional(row.OpenDetail)
	if openTime == nil {
		openTime = optional(row.OpenTime)
	}

	return repository.UpsertRecord{
		Name:           name,
		Address:        addr,
		Source:         source,
		IsPublic:       true,
		Fingerprint:    Fingerprint(name, addr),
		Point:          point,
		Category:       optional(row.Category),
		Phone:          normalizePhone(row.Phone),
		OpenTime:       openTime,
		MaleToilet:     toOX(row.MaleStall, row.MaleUrinal),
		FemaleToilet:   toOX(row.FemaleStall),
		MaleDisabled:   toOX(row.MaleDisabledStall, row.MaleDisabledUrinal),
		FemaleDisabled: toOX(row.FemaleDisabledStall),
		MaleChild:      toOX(row.MaleChildStall, row.MaleChildUrinal),
		FemaleChild:    toOX(row.FemaleChildStall),
		EmergencyBell:  Truthy(row.EmergencyBell),
		CCTV:           Truthy(row.CCTV),
		BabyChange:     Truthy(row.BabyChange),
	}, nil
}

// Ingest upserts a batch of CSV rows. A failing row is logged and
// skipped; the batch always runs to the end. Re-running the same file
// is safe because the upsert is idempotent.
func (s *Service) Ingest(ctx context.Context, rows []IngestRow, source string) (IngestReport, error) {
	report := IngestReport{Total: len(rows)}
	for i, row := range rows {
		rec, err := CleanRow(row, source)
		if err != nil {
			report.Skipped++
			continue
		}
		if err := s.repo.Upsert(ctx, rec); err != nil {
			report.Failed++
			s.log.Error("ingest row failed", "row", i, "address", rec.Address, "error", err)
			continue
		}
		report.Succeeded++
		if rec.Point == nil {
			report.NoGeometry++
		}
	}
	return report, nil
}

// SubmitRecords persists user-submitted rows. Rows missing a name,
// address or an in-range coordinate pair are skipped without error; the
// returned count covers rows actually written.
func (s *Service) SubmitRecords(ctx context.Context, records []transport.NewToilet) (int, error) {
	count := 0
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		addr := strings.TrimSpace(rec.Address)
		if name == "" || addr == "" || rec.Lat == nil || rec.Lng == nil {
			continue
		}
		if !geo.InKorea(*rec.Lat, *rec.Lng) {
			continue
		}
		isPublic := true
		if rec.IsPublic != nil {
			isPublic = *rec.IsPublic
		}
		inserted, err := s.repo.InsertIgnore(ctx, name, addr, isPublic, geo.Point{Lat: *rec.Lat, Lng: *rec.Lng})
		if err != nil {
			return count, apperr.Wrap(apperr.KindInternal, "failed to save toilet", err)
		}
		if inserted {
			count++
		}
	}
	return count, nil
}

// List dispatches a viewport query to the matching repository lookup.
func (s *Service) List(ctx context.Context, q Query) ([]transport.Toilet, error) {
	switch q.Mode {
	case ModeAll, "":
		return s.repo.ListAll(ctx, q.IsPublic)
	case ModeBounds:
		if q.Bounds == nil {
			return nil, apperr.BadRequest("bounds mode requires swLat, swLng, neLat, neLng")
		}
		return s.repo.ListInBounds(ctx, *q.Bounds, q.IsPublic)
	case ModeRadius:
		if q.Center == nil || q.RadiusKM <= 0 {
			return nil, apperr.BadRequest("radius mode requires lat, lng and a positive radius")
		}
		return s.repo.ListWithinRadius(ctx, *q.Center, q.RadiusKM, q.IsPublic)
	default:
		return nil, apperr.BadRequest("unknown mode: " + q.Mode)
	}
}

// Stats returns the aggregate counts for the info pages.
func (s *Service) Stats(ctx context.Context) (transport.StatsResponse, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return transport.StatsResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load stats", err)
	}
	return transport.StatsResponse{
		Total:      stats.Total,
		Public:     stats.Public,
		Disabled:   stats.Disabled,
		BabyChange: stats.BabyChange,
	}, nil
}
