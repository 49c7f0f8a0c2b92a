package geocode

import (
	"context"

	"loolook_backend/internal/address"
	"loolook_backend/internal/geo"
	"loolook_backend/platform/logger"
)

// discrepancyThresholdMeters is the distance above which two providers
// agreeing on "usable" but disagreeing on "where" gets logged.
const discrepancyThresholdMeters = 100

// Resolver turns a raw address into a best-effort coordinate by walking an
// ordered chain of provider strategies. Exhausting the chain yields
// (nil, nil): "no coordinate" is a legal outcome, not an error.
type Resolver struct {
	providers []AddressProvider
	keyword   KeywordProvider
	centroids CentroidSource
	log       *logger.Logger
}

// NewResolver creates a resolver over the given ordered address providers.
// keyword and centroids may be nil; the landmark strategy is skipped then.
func NewResolver(providers []AddressProvider, keyword KeywordProvider, centroids CentroidSource, log *logger.Logger) *Resolver {
	return &Resolver{
		providers: providers,
		keyword:   keyword,
		centroids: centroids,
		log:       log,
	}
}

// Resolve normalizes the raw address and tries, in order: structured
// address lookups, a landmark keyword search biased toward the area
// centroid, and spacing-variant retries of both. Every candidate must lie
// inside the Korea bounding box.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Result, error) {
	cleaned := address.Normalize(raw)
	if cleaned == "" {
		return nil, nil
	}

	if result, err := r.resolveAddress(ctx, cleaned, true); err != nil || result != nil {
		return result, err
	}

	var centroid *geo.Point
	if address.ContainsLandmark(cleaned) {
		centroid = r.areaCentroid(ctx, cleaned)
		if result, err := r.keywordFallback(ctx, cleaned, centroid); err != nil || result != nil {
			return result, err
		}
	}

	for _, variant := range address.Variants(cleaned) {
		if result, err := r.resolveAddress(ctx, variant, false); err != nil || result != nil {
			return result, err
		}
		if centroid == nil {
			centroid = r.areaCentroid(ctx, cleaned)
		}
		if result, err := r.keywordSearch(ctx, variant, centroid); err != nil || result != nil {
			return result, err
		}
	}

	return nil, nil
}

// resolveAddress walks the address providers in order and returns the
// first usable point. When crossCheck is set and the first two providers
// both return usable points more than 100m apart, the discrepancy is
// logged; the first provider's result is still preferred.
func (r *Resolver) resolveAddress(ctx context.Context, addr string, crossCheck bool) (*Result, error) {
	var first *Result

	for i, p := range r.providers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := p.Lookup(ctx, addr)
		if err != nil {
			// Provider failures are soft; the chain continues.
			r.log.Warn("address provider failed", "provider", p.Name(), "error", err)
			continue
		}
		if result == nil {
			continue
		}

		if first == nil {
			first = result
			if !crossCheck || i+1 >= len(r.providers) {
				return first, nil
			}
			continue
		}

		if dist := geo.DistanceMeters(first.Point, result.Point); dist > discrepancyThresholdMeters {
			r.log.Warn("geocode provider discrepancy",
				"address", addr,
				"kept", first.Source,
				"other", result.Source,
				"distance_m", dist,
			)
		}
		return first, nil
	}

	return first, nil
}

// keywordFallback appends toilet-related terms to the address and retries
// through the keyword provider, biased first, unbiased second.
func (r *Resolver) keywordFallback(ctx context.Context, cleaned string, centroid *geo.Point) (*Result, error) {
	for _, suffix := range []string{" 공중화장실", " 화장실"} {
		if result, err := r.keywordSearch(ctx, cleaned+suffix, centroid); err != nil || result != nil {
			return result, err
		}
	}
	return nil, nil
}

func (r *Resolver) keywordSearch(ctx context.Context, query string, bias *geo.Point) (*Result, error) {
	if r.keyword == nil {
		return nil, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if bias != nil {
		if result, err := r.keyword.Search(ctx, query, bias); err == nil && result != nil {
			return result, nil
		} else if err != nil {
			r.log.Warn("keyword provider failed", "query", query, "error", err)
		}
	}

	result, err := r.keyword.Search(ctx, query, nil)
	if err != nil {
		r.log.Warn("keyword provider failed", "query", query, "error", err)
		return nil, nil
	}
	return result, nil
}

// areaCentroid averages coordinates of already-geocoded records sharing
// the address's administrative tokens, widening the pattern until a match
// is found, else the citywide reference point.
func (r *Resolver) areaCentroid(ctx context.Context, addr string) *geo.Point {
	fallback := geo.SeoulCityHall
	if r.centroids == nil {
		return &fallback
	}

	city, gu, dong := address.AreaTokens(addr)
	var patterns []string
	if city != "" && gu != "" && dong != "" {
		patterns = append(patterns, "%"+city+"%"+gu+"%"+dong+"%")
	}
	if city != "" && gu != "" {
		patterns = append(patterns, "%"+city+"%"+gu+"%")
	}
	if gu != "" {
		patterns = append(patterns, "%"+gu+"%")
	}
	if city != "" {
		patterns = append(patterns, "%"+city+"%")
	}

	if len(patterns) > 0 {
		if p, err := r.centroids.AreaCentroid(ctx, patterns); err == nil && p != nil {
			return p
		} else if err != nil {
			r.log.Warn("area centroid lookup failed", "address", addr, "error", err)
		}
	}

	return &fallback
}
