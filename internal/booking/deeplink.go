// Package booking hands a selected fare off to the external ride-hailing app
// via deep link, and records the trip in backend history.
package booking

import (
	"encoding/json"
	"net/url"
)

// BaseURL is the ride-hailing provider's deep-link entry point.
const BaseURL = "https://m.uber.com/looking"

// Place is the JSON object the provider expects for each end of the trip.
// Field order matters for link stability, so Place is marshalled as-is.
type Place struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
}

// BuildDeepLink constructs the provider URL embedding pickup and drop as
// URL-encoded JSON blobs. The parameter order (client_id, pickup, drop[0],
// product_id) is the one the provider documents.
func BuildDeepLink(pickup, drop Place, clientID, productID string) string {
	return BaseURL +
		"?client_id=" + url.QueryEscape(clientID) +
		"&pickup=" + encodePlace(pickup) +
		"&drop[0]=" + encodePlace(drop) +
		"&product_id=" + url.QueryEscape(productID)
}

func encodePlace(p Place) string {
	b, _ := json.Marshal(p) // Place has no unmarshalable fields
	return url.QueryEscape(string(b))
}
