package geocode

import (
	"context"

	"loolook_backend/internal/geo"
)

// Result is a single resolved coordinate with its provenance.
type Result struct {
	Point  geo.Point
	Name   string
	Source string
}

// AddressProvider resolves a structured address string to a coordinate.
// A nil result with a nil error means "no usable point" and is not fatal:
// the resolver falls through to the next strategy.
type AddressProvider interface {
	Name() string
	Lookup(ctx context.Context, addr string) (*Result, error)
}

// KeywordProvider resolves a free-text place query, optionally biased
// toward a reference point.
type KeywordProvider interface {
	Name() string
	Search(ctx context.Context, query string, bias *geo.Point) (*Result, error)
}

// CentroidSource computes the average coordinate of already-geocoded
// records matching area patterns (city/district/neighborhood ILIKE).
// Implemented by the toilets repository.
type CentroidSource interface {
	AreaCentroid(ctx context.Context, patterns []string) (*geo.Point, error)
}

// vworldResponse mirrors the relevant parts of the VWorld getCoord payload.
type vworldResponse struct {
	Response struct {
		Status string `json:"status"`
		Result struct {
			Point struct {
				X string `json:"x"`
				Y string `json:"y"`
			} `json:"point"`
		} `json:"result"`
	} `json:"response"`
}

// kakaoDocument mirrors one entry of the Kakao local-search payloads.
// Address and keyword searches share the x/y convention (x=lng, y=lat).
type kakaoDocument struct {
	X           string `json:"x"`
	Y           string `json:"y"`
	PlaceName   string `json:"place_name"`
	AddressName string `json:"address_name"`
	Address     *struct {
		X string `json:"x"`
		Y string `json:"y"`
	} `json:"address"`
	RoadAddress *struct {
		X string `json:"x"`
		Y string `json:"y"`
	} `json:"road_address"`
}

type kakaoResponse struct {
	Documents []kakaoDocument `json:"documents"`
}
