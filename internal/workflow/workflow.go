// Package workflow owns the route estimation screen's state: the pickup and
// destination endpoints, the ranked fare options, and the user's selection.
// Nothing else mutates that state for the duration of one screen visit.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/RobertJ1102/SP2025-Group-5/internal/backend"
	"github.com/RobertJ1102/SP2025-Group-5/internal/booking"
	"github.com/RobertJ1102/SP2025-Group-5/internal/geocode"
	"github.com/RobertJ1102/SP2025-Group-5/internal/location"
	"github.com/RobertJ1102/SP2025-Group-5/internal/mapview"
	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
	"github.com/RobertJ1102/SP2025-Group-5/internal/observability"
)

// State is the workflow's position in the estimation lifecycle.
type State int

const (
	// StateIdle: no coordinates set.
	StateIdle State = iota
	// StateAwaitingLocation: position watch active, pickup not yet prefilled.
	StateAwaitingLocation
	// StateReady: both coordinates present, an estimate can be issued.
	StateReady
	// StateEstimating: estimate request in flight; duplicates rejected.
	StateEstimating
	// StateEstimated: ranked options held until the next explicit estimate.
	StateEstimated
	// StateError: the last estimate failed; prior state is kept and the user
	// may retry.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingLocation:
		return "awaiting_location"
	case StateReady:
		return "ready"
	case StateEstimating:
		return "estimating"
	case StateEstimated:
		return "estimated"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ValidationError reports a user action attempted before its required inputs
// were set. No network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// ErrEstimateInFlight rejects a duplicate estimate submission.
var ErrEstimateInFlight = errors.New("estimate already in flight")

// Estimator is the slice of the backend client the workflow needs for fare
// ranking.
type Estimator interface {
	BestFare(ctx context.Context, req backend.FareRequest) ([]models.FareOption, error)
}

// Resolver converts between address text and coordinates.
type Resolver interface {
	Forward(ctx context.Context, text string) (models.Coordinate, error)
	Reverse(ctx context.Context, coord models.Coordinate) (string, error)
}

// Config carries the estimate parameters. SearchRangeFt may later be
// overridden by the user's stored preference.
type Config struct {
	SearchRangeFt int
	ResultLimit   int
}

// Workflow is the route estimation state machine.
type Workflow struct {
	estimator Estimator
	resolver  Resolver
	logger    *slog.Logger

	mu            sync.Mutex
	state         State
	mode          mapview.Mode
	pickup        models.Endpoint
	dest          models.Endpoint
	options       []models.FareOption
	selection     int
	lastErr       error
	locationErr   error
	searchRangeFt int
	limit         int
}

func New(estimator Estimator, resolver Resolver, cfg Config, logger *slog.Logger) *Workflow {
	if cfg.SearchRangeFt <= 0 {
		cfg.SearchRangeFt = 500
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = 3
	}
	return &Workflow{
		estimator:     estimator,
		resolver:      resolver,
		logger:        logger,
		state:         StateIdle,
		mode:          mapview.ModeAuto,
		searchRangeFt: cfg.SearchRangeFt,
		limit:         cfg.ResultLimit,
	}
}

// ApplyPreferences adopts the user's stored search range when present.
func (w *Workflow) ApplyPreferences(p models.Preferences) {
	if p.SearchRangeFt > 0 {
		w.mu.Lock()
		w.searchRangeFt = p.SearchRangeFt
		w.mu.Unlock()
	}
}

// SetMode changes how map clicks are routed.
func (w *Workflow) SetMode(m mapview.Mode) {
	w.mu.Lock()
	w.mode = m
	w.mu.Unlock()
}

// Start begins position observation to prefill the pickup endpoint. Denial or
// unavailability leaves the workflow fully usable: pickup stays settable by
// text or map click.
func (w *Workflow) Start(ctx context.Context, provider location.Provider) error {
	w.mu.Lock()
	if w.state == StateIdle {
		w.state = StateAwaitingLocation
	}
	w.mu.Unlock()

	updates, err := provider.Watch(ctx)
	if err != nil {
		w.locationFailed(err)
		return err
	}
	go func() {
		for u := range updates {
			if u.Err != nil {
				w.locationFailed(u.Err)
				return
			}
			w.prefillPickup(ctx, u.Coord)
		}
	}()
	return nil
}

func (w *Workflow) locationFailed(err error) {
	w.mu.Lock()
	w.locationErr = err
	if w.state == StateAwaitingLocation {
		w.state = StateIdle
	}
	w.mu.Unlock()
	w.logger.Warn("location unavailable", "error", err)
}

// prefillPickup adopts the first position fix as the pickup point. Later
// fixes never clobber a pickup the user has already set or edited.
func (w *Workflow) prefillPickup(ctx context.Context, coord models.Coordinate) {
	w.mu.Lock()
	if w.pickup.Coord != nil {
		w.mu.Unlock()
		return
	}
	c := coord
	w.pickup.Coord = &c
	w.refreshReadinessLocked()
	w.mu.Unlock()

	addr, err := w.resolver.Reverse(ctx, coord)
	if err != nil {
		w.logger.Warn("pickup prefill reverse geocode failed", "error", err)
		return
	}
	w.mu.Lock()
	if w.pickup.Coord != nil && *w.pickup.Coord == coord && w.pickup.Address == "" {
		w.pickup.Address = addr
	}
	w.mu.Unlock()
}

// HandleMapClick routes a click to pickup or destination per the current
// selection mode and applies it.
func (w *Workflow) HandleMapClick(ctx context.Context, coord models.Coordinate) (mapview.Target, error) {
	w.mu.Lock()
	target := mapview.RouteClick(w.mode, w.pickup.Coord != nil)
	w.mu.Unlock()
	return target, w.setCoordinate(ctx, target, coord)
}

// SetPickupCoordinate places the pickup point and reverse geocodes its text.
func (w *Workflow) SetPickupCoordinate(ctx context.Context, coord models.Coordinate) error {
	return w.setCoordinate(ctx, mapview.TargetPickup, coord)
}

// SetDestinationCoordinate places the destination point and reverse geocodes
// its text.
func (w *Workflow) SetDestinationCoordinate(ctx context.Context, coord models.Coordinate) error {
	return w.setCoordinate(ctx, mapview.TargetDestination, coord)
}

func (w *Workflow) setCoordinate(ctx context.Context, target mapview.Target, coord models.Coordinate) error {
	if !coord.Valid() {
		return &ValidationError{Reason: "coordinate out of range"}
	}
	w.mu.Lock()
	c := coord
	if target == mapview.TargetPickup {
		w.pickup.Coord = &c
	} else {
		w.dest.Coord = &c
	}
	w.refreshReadinessLocked()
	w.mu.Unlock()

	addr, err := w.resolver.Reverse(ctx, coord)
	if err != nil {
		// The coordinate stands even when no address is found for it.
		return err
	}
	w.mu.Lock()
	if target == mapview.TargetPickup {
		if w.pickup.Coord != nil && *w.pickup.Coord == coord {
			w.pickup.Address = addr
		}
	} else {
		if w.dest.Coord != nil && *w.dest.Coord == coord {
			w.dest.Address = addr
		}
	}
	w.mu.Unlock()
	return nil
}

// SetPickupText records edited pickup text and forward geocodes it, as on
// field blur. Blank text is a no-op.
func (w *Workflow) SetPickupText(ctx context.Context, text string) error {
	return w.setText(ctx, mapview.TargetPickup, text)
}

// SetDestinationText records edited destination text and forward geocodes it.
func (w *Workflow) SetDestinationText(ctx context.Context, text string) error {
	return w.setText(ctx, mapview.TargetDestination, text)
}

func (w *Workflow) setText(ctx context.Context, target mapview.Target, text string) error {
	w.mu.Lock()
	if target == mapview.TargetPickup {
		w.pickup.Address = text
	} else {
		w.dest.Address = text
	}
	w.mu.Unlock()

	coord, err := w.resolver.Forward(ctx, text)
	if errors.Is(err, geocode.ErrEmptyQuery) {
		return nil
	}
	if err != nil {
		return err
	}
	w.mu.Lock()
	c := coord
	if target == mapview.TargetPickup {
		w.pickup.Coord = &c
	} else {
		w.dest.Coord = &c
	}
	w.refreshReadinessLocked()
	w.mu.Unlock()
	return nil
}

// UseSavedAddress writes a saved address straight into the destination.
func (w *Workflow) UseSavedAddress(a models.SavedAddress) {
	w.mu.Lock()
	c := a.Coord
	w.dest.Address = a.Address
	w.dest.Coord = &c
	w.refreshReadinessLocked()
	w.mu.Unlock()
}

// refreshReadinessLocked moves Idle/AwaitingLocation to Ready once both
// coordinates are present. Estimated and Error deliberately keep their state:
// the prior option list stays on display until the next explicit estimate.
func (w *Workflow) refreshReadinessLocked() {
	if w.pickup.Coord == nil || w.dest.Coord == nil {
		return
	}
	if w.state == StateIdle || w.state == StateAwaitingLocation {
		w.state = StateReady
	}
}

// EstimateRoute asks the backend for ranked fare options. It requires both
// coordinates, rejects duplicate submissions, replaces the option list
// wholesale on success, and resets the selection to the cheapest option.
// Failures keep all prior state and are never retried automatically.
func (w *Workflow) EstimateRoute(ctx context.Context) ([]models.FareOption, error) {
	w.mu.Lock()
	if w.state == StateEstimating {
		w.mu.Unlock()
		return nil, ErrEstimateInFlight
	}
	if w.pickup.Coord == nil || w.dest.Coord == nil {
		w.mu.Unlock()
		return nil, &ValidationError{Reason: "both pickup and destination must be set"}
	}
	req := backend.FareRequest{
		Start:         *w.pickup.Coord,
		End:           *w.dest.Coord,
		SearchRangeFt: w.searchRangeFt,
		Limit:         w.limit,
	}
	w.state = StateEstimating
	w.mu.Unlock()

	observability.EstimatesTotal.Inc()
	options, err := w.estimator.BestFare(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		observability.EstimateFailures.Inc()
		w.state = StateError
		w.lastErr = err
		w.logger.Warn("estimate failed", "error", err)
		return nil, err
	}
	w.options = options
	w.selection = 0
	w.state = StateEstimated
	w.lastErr = nil
	w.logger.Info("estimate complete", "options", len(options))
	return append([]models.FareOption(nil), options...), nil
}

// Select picks an option from the current result set.
func (w *Workflow) Select(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.options) {
		return &ValidationError{Reason: "selection index out of range"}
	}
	w.selection = i
	return nil
}

// Selected returns the currently selected option, if any.
func (w *Workflow) Selected() (models.FareOption, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection < 0 || w.selection >= len(w.options) {
		return models.FareOption{}, false
	}
	return w.options[w.selection], true
}

// Book hands the selected option to the external provider. Booking is a side
// effect that does not leave Estimated: the option list stays available.
func (w *Workflow) Book(ctx context.Context, h *booking.Handoff) (string, error) {
	w.mu.Lock()
	if w.selection < 0 || w.selection >= len(w.options) {
		w.mu.Unlock()
		return "", &ValidationError{Reason: "no fare option selected"}
	}
	opt := w.options[w.selection]
	pickup, dest := w.pickup, w.dest
	w.mu.Unlock()
	return h.Book(ctx, opt, pickup, dest)
}

// Markers plans the map glyphs for the current state.
func (w *Workflow) Markers(current *models.Coordinate) []mapview.Marker {
	w.mu.Lock()
	defer w.mu.Unlock()
	return mapview.Plan(current, w.pickup.Coord, w.dest.Coord, w.options)
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) Pickup() models.Endpoint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pickup
}

func (w *Workflow) Destination() models.Endpoint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dest
}

// Options returns a copy of the current ranked result set, in backend order.
func (w *Workflow) Options() []models.FareOption {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.FareOption(nil), w.options...)
}

// SelectionIndex returns the index of the selected option.
func (w *Workflow) SelectionIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection
}

// LastErr returns the error from the most recent failed estimate, nil after a
// success.
func (w *Workflow) LastErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// LocationErr reports the terminal position-watch failure, if one occurred.
func (w *Workflow) LocationErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.locationErr
}
