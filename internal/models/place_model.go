package models

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a relaxation venue near the user.
type Place struct {
	PlaceID          string   `json:"placeId"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"userRatingsTotal,omitempty"`
	Location         Location `json:"location"`
	OpenNow          *bool    `json:"openNow,omitempty"`
	PhotoReference   string   `json:"photoReference,omitempty"`
	Types            []string `json:"types,omitempty"`
	DistanceMeters   float64  `json:"distanceMeters"`
}

// PlaceDetails extends a place with contact data.
type PlaceDetails struct {
	Place
	PhoneNumber  string   `json:"phoneNumber,omitempty"`
	Website      string   `json:"website,omitempty"`
	OpeningHours []string `json:"openingHours,omitempty"`
	MapsURL      string   `json:"mapsUrl,omitempty"`
}

// Place categories accepted by the nearby search.
const (
	CategoryPark    = "park"
	CategorySpa     = "spa"
	CategoryCafe    = "cafe"
	CategoryLibrary = "library"
	CategoryGym     = "gym"
	CategoryMuseum  = "museum"
)

// NearbyQuery is a nearby-places search around a point. Radius is in meters.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	Radius   int
	Category string
}
