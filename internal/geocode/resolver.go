// Package geocode wraps the backend's address resolution operations: forward
// and reverse geocoding plus debounced autocomplete suggestions.
package geocode

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmcloughlin/geohash"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
	"github.com/RobertJ1102/SP2025-Group-5/internal/observability"
)

// ErrEmptyQuery is returned when forward geocoding is asked about blank text.
// Callers treat it as "nothing to do", not a failure.
var ErrEmptyQuery = errors.New("empty geocode query")

// geohash precision 9 keys cells of roughly 5m, tight enough that two map
// clicks on the same building share a cache entry.
const cachePrecision = 9

// Geocoder is the slice of the backend client the resolver needs.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Coordinate, error)
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error)
	Autocomplete(ctx context.Context, input string, bias *models.Coordinate) ([]models.Suggestion, error)
}

// Resolver performs forward and reverse geocoding with an optional cache in
// front of the reverse path.
type Resolver struct {
	client Geocoder
	cache  Cache // may be nil
	logger *slog.Logger
}

func NewResolver(client Geocoder, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{client: client, cache: cache, logger: logger}
}

// Reverse resolves a coordinate to its first formatted address.
func (r *Resolver) Reverse(ctx context.Context, coord models.Coordinate) (string, error) {
	key := geohash.EncodeWithPrecision(coord.Lat, coord.Lng, cachePrecision)
	if r.cache != nil {
		if addr, ok := r.cache.Get(key); ok {
			observability.GeocodeCacheHits.Inc()
			return addr, nil
		}
		observability.GeocodeCacheMisses.Inc()
	}
	addr, err := r.client.ReverseGeocode(ctx, coord)
	if err != nil {
		return "", err
	}
	if r.cache != nil {
		r.cache.Set(key, addr)
	}
	return addr, nil
}

// Forward resolves address text to a coordinate. Blank or whitespace-only
// text short-circuits with ErrEmptyQuery before any network call.
func (r *Resolver) Forward(ctx context.Context, text string) (models.Coordinate, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Coordinate{}, ErrEmptyQuery
	}
	return r.client.Geocode(ctx, trimmed)
}
