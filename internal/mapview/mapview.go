// Package mapview holds the map layer's decision logic as pure functions:
// which endpoint a click lands on, and which markers to draw. Rendering
// itself belongs to the external map library and is out of scope.
package mapview

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

// LoaderURL builds the Google Maps JS loader URL for the configured basemap:
// the API key plus, when set, the cloud map style id.
func LoaderURL(apiKey, mapID string) string {
	u := "https://maps.googleapis.com/maps/api/js?key=" + url.QueryEscape(apiKey)
	if mapID != "" {
		u += "&map_ids=" + url.QueryEscape(mapID)
	}
	return u
}

// Mode selects which endpoint a map click updates.
type Mode int

const (
	ModeAuto Mode = iota
	ModePickup
	ModeDestination
)

func (m Mode) String() string {
	switch m {
	case ModePickup:
		return "pickup"
	case ModeDestination:
		return "destination"
	default:
		return "auto"
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto":
		return ModeAuto, nil
	case "pickup":
		return ModePickup, nil
	case "destination":
		return ModeDestination, nil
	}
	return ModeAuto, fmt.Errorf("unknown selection mode %q", s)
}

// Target is the endpoint a click resolved to.
type Target int

const (
	TargetPickup Target = iota
	TargetDestination
)

// RouteClick decides which endpoint a map click sets. In auto mode the first
// click with no pickup set goes to pickup; every later click sets or
// overwrites the destination.
func RouteClick(mode Mode, pickupSet bool) Target {
	switch mode {
	case ModePickup:
		return TargetPickup
	case ModeDestination:
		return TargetDestination
	default:
		if !pickupSet {
			return TargetPickup
		}
		return TargetDestination
	}
}

// MarkerKind distinguishes the glyphs the map draws.
type MarkerKind int

const (
	MarkerCurrent MarkerKind = iota
	MarkerPickup
	MarkerDestination
	MarkerOption
)

// Marker is one glyph to place on the basemap.
type Marker struct {
	Kind  MarkerKind
	Label string
	Coord models.Coordinate
}

// Plan lists the markers for the current workflow state: the current-location
// marker when available, pickup and destination when set, and one numbered
// marker per fare option. An option sitting exactly on the current location
// is skipped to avoid a duplicate glyph.
func Plan(current, pickup, dest *models.Coordinate, options []models.FareOption) []Marker {
	markers := make([]Marker, 0, len(options)+3)
	if current != nil {
		markers = append(markers, Marker{Kind: MarkerCurrent, Coord: *current})
	}
	if pickup != nil {
		markers = append(markers, Marker{Kind: MarkerPickup, Label: "P", Coord: *pickup})
	}
	if dest != nil {
		markers = append(markers, Marker{Kind: MarkerDestination, Label: "D", Coord: *dest})
	}
	for i, opt := range options {
		if current != nil && opt.Pickup == *current {
			continue
		}
		markers = append(markers, Marker{
			Kind:  MarkerOption,
			Label: strconv.Itoa(i + 1),
			Coord: opt.Pickup,
		})
	}
	return markers
}
