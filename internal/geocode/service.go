package geocode

import (
	"context"
	"errors"
	"strings"

	"loolook_backend/internal/address"
	"loolook_backend/platform/apperr"
	"loolook_backend/platform/logger"
)

// LookupResponse is the payload of a successful geocode lookup.
type LookupResponse struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// Service implements the interactive geocode endpoint: keyword search
// first (station/park/place names), address search second, with a shared
// redis cache in front of the provider when one is configured.
type Service struct {
	kakao *KakaoClient
	cache *RedisCache
	log   *logger.Logger
}

// NewService creates the lookup service. cache may be nil.
func NewService(kakao *KakaoClient, cache *RedisCache, log *logger.Logger) *Service {
	return &Service{kakao: kakao, cache: cache, log: log}
}

// Lookup resolves a free-text query to a point inside the Korea bounding
// box. Errors map to the endpoint's status contract: validation (400),
// misconfiguration (500), no result (404), out-of-range result (500).
func (s *Service) Lookup(ctx context.Context, q string) (*LookupResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.BadRequest("q required")
	}
	if s.kakao == nil || s.kakao.key == "" {
		return nil, apperr.Internal("server misconfigured")
	}

	cacheKey := address.Normalize(q)
	if cacheKey == "" {
		cacheKey = q
	}

	if s.cache != nil {
		if p, err := s.cache.Get(ctx, cacheKey); err != nil {
			s.log.Warn("geocode cache read failed", "error", err)
		} else if p != nil {
			return &LookupResponse{Lat: p.Lat, Lng: p.Lng, Name: q}, nil
		}
	}

	result, err := s.kakao.Search(ctx, q, nil)
	if errors.Is(err, errOutOfRange) {
		return nil, apperr.Internal("invalid geocode")
	}
	if err != nil {
		s.log.Warn("geocode keyword search failed", "query", q, "error", err)
	}
	if result == nil {
		result, err = s.kakao.AddressSearch(ctx, q, "")
		// A document outside the Korea box is a provider fault, not a miss.
		if errors.Is(err, errOutOfRange) {
			return nil, apperr.Internal("invalid geocode")
		}
		if err != nil {
			s.log.Warn("geocode address search failed", "query", q, "error", err)
		}
	}

	if result == nil {
		return nil, apperr.NotFound("no result")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result.Point); err != nil {
			s.log.Warn("geocode cache write failed", "error", err)
		}
	}

	name := result.Name
	if name == "" {
		name = q
	}

	return &LookupResponse{Lat: result.Point.Lat, Lng: result.Point.Lng, Name: name}, nil
}
