package models

import "time"

// Coordinate is a WGS84 point produced by geolocation, geocoding, or a map
// click. Lat must lie in [-90, 90] and Lng in [-180, 180].
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Endpoint is one end of a candidate ride: free-text address paired with the
// coordinate it resolved to. Coord is nil until the text has been geocoded or
// the point was picked on the map.
type Endpoint struct {
	Address string
	Coord   *Coordinate
}

// FareOption is one ranked candidate returned by the fare endpoint: a ride
// type at an adjusted pickup point with its price. The backend returns options
// ordered ascending by price and that order is authoritative.
type FareOption struct {
	RideType    string
	PickupLabel string // e.g. "Original", "NE 250ft"
	Pickup      Coordinate
	Price       float64
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Label   string
	PlaceID string
}

// SavedAddress is a user-nicknamed destination. The ID is backend-assigned and
// opaque; the backend prepends the user's home address with id "home".
type SavedAddress struct {
	ID       string
	Nickname string
	Address  string
	Coord    Coordinate
}

// HistoryRecord is one completed booking handoff, write-only from this
// client's perspective.
type HistoryRecord struct {
	PickupAddress      string
	DestinationAddress string
	Pickup             Coordinate
	Destination        Coordinate
	Timestamp          time.Time
}

// HistoryEntry is a past trip as read back by the profile view. Timestamp is
// kept verbatim as the backend formats it.
type HistoryEntry struct {
	StartingAddress string `json:"starting_address"`
	FinalAddress    string `json:"final_address"`
	Timestamp       string `json:"timestamp"`
}

// Preferences are user-tunable estimate parameters. SearchRangeFt is the
// pickup search radius in feet.
type Preferences struct {
	SearchRangeFt int     `json:"search_range"`
	PriceRange    float64 `json:"price_range"`
}

// ProfileInfo are the editable account fields.
type ProfileInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	HomeAddress string `json:"home_address"`
}

// User is the authenticated account as reported by the session endpoint.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
