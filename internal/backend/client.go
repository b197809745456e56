// Package backend is the typed HTTP client for the external FareFinder API.
// It covers auth, geocoding, fare ranking, and profile persistence; all
// computational work (ranking, distance search) happens server-side.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
	"github.com/RobertJ1102/SP2025-Group-5/internal/observability"
)

// Client performs requests against the FareFinder backend. The session cookie
// issued at login lives in the client's jar, so one Client instance is one
// authenticated session.
type Client struct {
	base   *url.URL
	httpc  *http.Client
	logger *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("session cookie jar: %w", err)
	}
	return &Client{
		base: u,
		httpc: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: &requestIDTransport{next: http.DefaultTransport},
		},
		logger: logger,
	}, nil
}

// FareRequest is one (pickup, destination) ranking query. SearchRangeFt is
// the pickup search radius in feet; Limit caps the number of options.
type FareRequest struct {
	Start         models.Coordinate
	End           models.Coordinate
	SearchRangeFt int
	Limit         int
}

// BestFare returns ranked fare options for the request. The backend orders
// options ascending by price; the slice is returned in backend order and must
// not be re-sorted.
func (c *Client) BestFare(ctx context.Context, req FareRequest) ([]models.FareOption, error) {
	q := url.Values{}
	q.Set("start_lat", formatCoord(req.Start.Lat))
	q.Set("start_lon", formatCoord(req.Start.Lng))
	q.Set("end_lat", formatCoord(req.End.Lat))
	q.Set("end_lon", formatCoord(req.End.Lng))
	q.Set("search_range", strconv.Itoa(req.SearchRangeFt))
	q.Set("limit", strconv.Itoa(req.Limit))

	var out struct {
		Options []struct {
			Location  string  `json:"location"`
			PickupLat float64 `json:"pickup_lat"`
			PickupLon float64 `json:"pickup_lon"`
			Price     float64 `json:"price"`
			RideType  string  `json:"ride_type"`
		} `json:"options"`
	}
	if err := c.do(ctx, "best_fare", http.MethodGet, "/uber/best-uber-fare/", q, nil, &out); err != nil {
		return nil, err
	}
	options := make([]models.FareOption, 0, len(out.Options))
	for _, o := range out.Options {
		options = append(options, models.FareOption{
			RideType:    o.RideType,
			PickupLabel: o.Location,
			Pickup:      models.Coordinate{Lat: o.PickupLat, Lng: o.PickupLon},
			Price:       o.Price,
		})
	}
	return options, nil
}

// geocodeEnvelope matches the Google-style result shape the backend proxies.
type geocodeEnvelope struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location models.Coordinate `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves free-text to the first matching coordinate.
func (c *Client) Geocode(ctx context.Context, address string) (models.Coordinate, error) {
	q := url.Values{}
	q.Set("address", address)
	var out geocodeEnvelope
	if err := c.do(ctx, "geocode", http.MethodGet, "/geocode", q, nil, &out); err != nil {
		return models.Coordinate{}, err
	}
	if len(out.Results) == 0 {
		return models.Coordinate{}, fmt.Errorf("geocode %q: %w", address, ErrNotFound)
	}
	return out.Results[0].Geometry.Location, nil
}

// ReverseGeocode resolves a coordinate to the first formatted address.
func (c *Client) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(coord.Lat))
	q.Set("lng", formatCoord(coord.Lng))
	var out geocodeEnvelope
	if err := c.do(ctx, "reverse_geocode", http.MethodGet, "/reverse_geocode", q, nil, &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 {
		return "", fmt.Errorf("reverse geocode: %w", ErrNotFound)
	}
	return out.Results[0].FormattedAddress, nil
}

// Autocomplete returns address suggestions for a partial query, biased toward
// the given coordinate when non-nil.
func (c *Client) Autocomplete(ctx context.Context, input string, bias *models.Coordinate) ([]models.Suggestion, error) {
	q := url.Values{}
	q.Set("input", input)
	if bias != nil {
		q.Set("lat", formatCoord(bias.Lat))
		q.Set("lng", formatCoord(bias.Lng))
	}
	var out struct {
		Predictions []struct {
			Description string `json:"description"`
			PlaceID     string `json:"place_id"`
		} `json:"predictions"`
	}
	if err := c.do(ctx, "autocomplete", http.MethodGet, "/autocomplete", q, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Predictions) == 0 {
		return nil, fmt.Errorf("autocomplete %q: %w", input, ErrNotFound)
	}
	suggestions := make([]models.Suggestion, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		suggestions = append(suggestions, models.Suggestion{Label: p.Description, PlaceID: p.PlaceID})
	}
	return suggestions, nil
}

// Login authenticates with a username or email. On success the backend sets
// the session cookie on the client's jar.
func (c *Client) Login(ctx context.Context, identifier, password string) error {
	body := map[string]string{
		"username": identifier,
		"email":    identifier,
		"password": password,
	}
	return c.do(ctx, "login", http.MethodPost, "/auth/login", nil, body, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil, nil)
}

// CurrentUser returns the account the session cookie belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, "current_user", http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, "register", http.MethodPost, "/auth/register", nil, body, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, "reset_password", http.MethodPost, "/auth/reset-password", nil, map[string]string{"email": email}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	body := map[string]string{"email": email, "old_password": oldPassword, "new_password": newPassword}
	return c.do(ctx, "change_password", http.MethodPost, "/auth/change-password", nil, body, nil)
}

func (c *Client) ProfileInfo(ctx context.Context) (models.ProfileInfo, error) {
	var info models.ProfileInfo
	err := c.do(ctx, "profile_info", http.MethodGet, "/profile/info", nil, nil, &info)
	return info, err
}

func (c *Client) UpdateProfileInfo(ctx context.Context, info models.ProfileInfo) error {
	return c.do(ctx, "profile_info_update", http.MethodPut, "/profile/infoupdate", nil, info, nil)
}

func (c *Client) Preferences(ctx context.Context) (models.Preferences, error) {
	var p models.Preferences
	err := c.do(ctx, "preferences", http.MethodGet, "/profile/preferences", nil, nil, &p)
	return p, err
}

func (c *Client) UpdatePreferences(ctx context.Context, p models.Preferences) error {
	return c.do(ctx, "preferences_update", http.MethodPut, "/profile/preferencesupdate", nil, p, nil)
}

func (c *Client) History(ctx context.Context) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := c.do(ctx, "history", http.MethodGet, "/profile/history", nil, nil, &entries)
	return entries, err
}

// AddHistory appends one trip record. Addresses travel under the backend's
// legacy field names.
func (c *Client) AddHistory(ctx context.Context, rec models.HistoryRecord) error {
	body := map[string]any{
		"written_address": rec.PickupAddress,
		"final_address":   rec.DestinationAddress,
		"latitude_start":  rec.Pickup.Lat,
		"longitude_start": rec.Pickup.Lng,
		"latitude_end":    rec.Destination.Lat,
		"longitude_end":   rec.Destination.Lng,
		"timestamp":       rec.Timestamp.Format(time.RFC3339),
	}
	return c.do(ctx, "history_add", http.MethodPost, "/profile/history/add", nil, body, nil)
}

// savedAddressWire tolerates the backend's mixed id types: saved rows carry
// numeric ids while the prepended home address uses the literal "home".
type savedAddressWire struct {
	ID        json.RawMessage `json:"id"`
	Nickname  string          `json:"nickname"`
	Address   string          `json:"address"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
}

func (c *Client) SavedAddresses(ctx context.Context) ([]models.SavedAddress, error) {
	var wire []savedAddressWire
	if err := c.do(ctx, "saved_addresses", http.MethodGet, "/profile/saved-addresses", nil, nil, &wire); err != nil {
		return nil, err
	}
	addresses := make([]models.SavedAddress, 0, len(wire))
	for _, w := range wire {
		addresses = append(addresses, models.SavedAddress{
			ID:       rawID(w.ID),
			Nickname: w.Nickname,
			Address:  w.Address,
			Coord:    models.Coordinate{Lat: w.Latitude, Lng: w.Longitude},
		})
	}
	return addresses, nil
}

func (c *Client) AddSavedAddress(ctx context.Context, nickname, address string, coord models.Coordinate) error {
	body := map[string]any{
		"nickname":  nickname,
		"address":   address,
		"latitude":  coord.Lat,
		"longitude": coord.Lng,
	}
	return c.do(ctx, "saved_address_add", http.MethodPost, "/profile/saved-addresses/add", nil, body, nil)
}

func (c *Client) DeleteSavedAddress(ctx context.Context, id string) error {
	return c.do(ctx, "saved_address_delete", http.MethodDelete, "/profile/saved-addresses/"+url.PathEscape(id), nil, nil, nil)
}

// do issues one request and decodes the response into out when non-nil.
// Non-2xx responses become RejectedError; transport failures are wrapped and
// detectable via IsNetwork.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		observability.BackendRequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	observability.BackendRequestsTotal.WithLabelValues(op, status).Inc()
	observability.BackendRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	c.logger.Debug("backend_request",
		"operation", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %w", op, &RejectedError{Status: resp.StatusCode, Message: rejectionMessage(resp.Body)})
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

func rejectionMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &payload) == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(b))
}

func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	return strings.Trim(s, `"`)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
