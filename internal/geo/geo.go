// Package geo provides the geographic primitives shared by the toilet map
// service: points, bounding boxes, the valid Korea coordinate range, and
// great-circle distance.
package geo

import "math"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is a rectangular area defined by its south-west and
// north-east corners.
type BoundingBox struct {
	SouthWest Point
	NorthEast Point
}

// Contains reports whether p lies inside the box (inclusive).
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// Korea is the accepted coordinate range for all stored and resolved points.
// Anything outside it is treated as a provider or data error.
var Korea = BoundingBox{
	SouthWest: Point{Lat: 33, Lng: 124},
	NorthEast: Point{Lat: 39, Lng: 132},
}

// SeoulCityHall is the citywide reference point used when no area centroid
// can be computed.
var SeoulCityHall = Point{Lat: 37.5665, Lng: 126.9780}

// InKorea reports whether the pair is finite and inside the Korea range.
func InKorea(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return Korea.Contains(Point{Lat: lat, Lng: lng})
}

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine great-circle distance between two
// points in meters.
func DistanceMeters(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
