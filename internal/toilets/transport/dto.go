// Package transport defines the wire types of the toilets API.
package transport

// Toilet is a single toilet row as returned by the API. Facility flags use
// the source exports' "O"/"X" convention; lat/lng derive from the stored
// geography point and are null when coordinates are unknown.
type Toilet struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	Category       *string  `json:"category"`
	Phone          *string  `json:"phone"`
	OpenTime       *string  `json:"open_time"`
	MaleToilet     *string  `json:"male_toilet"`
	FemaleToilet   *string  `json:"female_toilet"`
	MaleDisabled   *string  `json:"male_disabled"`
	FemaleDisabled *string  `json:"female_disabled"`
	MaleChild      *string  `json:"male_child"`
	FemaleChild    *string  `json:"female_child"`
	EmergencyBell  *bool    `json:"emergency_bell"`
	CCTV           *bool    `json:"cctv"`
	BabyChange     *bool    `json:"baby_change"`
}

// NewToilet is a user-submitted toilet record. Name, address and a numeric
// coordinate pair are required; rows missing any of them are skipped.
type NewToilet struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	IsPublic *bool    `json:"is_public"`
}

// SubmitResponse reports how many submitted rows were persisted.
type SubmitResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// StatsResponse carries the aggregate counts shown on the info pages.
type StatsResponse struct {
	Total      int64 `json:"total"`
	Public     int64 `json:"public"`
	Disabled   int64 `json:"disabled"`
	BabyChange int64 `json:"babyChange"`
}
