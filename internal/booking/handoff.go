package booking

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
	"github.com/RobertJ1102/SP2025-Group-5/internal/observability"
)

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// HistoryAppender is the slice of the backend client the handoff needs.
type HistoryAppender interface {
	AddHistory(ctx context.Context, rec models.HistoryRecord) error
}

// Handoff opens the external booking link and records the trip in history.
// The two side effects are independent: a failed history append never blocks
// or rolls back the external navigation, and vice versa.
type Handoff struct {
	Opener    Opener
	History   HistoryAppender
	ClientID  string
	ProductID string
	Logger    *slog.Logger

	now func() time.Time // test hook
}

func NewHandoff(opener Opener, history HistoryAppender, clientID, productID string, logger *slog.Logger) *Handoff {
	return &Handoff{
		Opener:    opener,
		History:   history,
		ClientID:  clientID,
		ProductID: productID,
		Logger:    logger,
		now:       time.Now,
	}
}

// ErrUnresolvedEndpoint rejects a booking whose pickup or destination has no
// coordinate yet.
var ErrUnresolvedEndpoint = errors.New("booking requires resolved pickup and destination coordinates")

// Book builds the deep link for the selected option, opens it, and appends a
// history record for the workflow's pickup/destination pair. The link and the
// open error are returned; the history outcome is only logged. Both endpoints
// must carry a coordinate.
func (h *Handoff) Book(ctx context.Context, opt models.FareOption, pickup, dest models.Endpoint) (string, error) {
	if pickup.Coord == nil || dest.Coord == nil {
		return "", ErrUnresolvedEndpoint
	}
	link := BuildDeepLink(
		Place{
			Latitude:     opt.Pickup.Lat,
			Longitude:    opt.Pickup.Lng,
			AddressLine1: pickup.Address,
			AddressLine2: "",
		},
		Place{
			Latitude:     dest.Coord.Lat,
			Longitude:    dest.Coord.Lng,
			AddressLine1: dest.Address,
			AddressLine2: "",
		},
		h.ClientID, h.ProductID,
	)

	openErr := h.Opener.Open(link)
	if openErr != nil {
		h.Logger.Warn("booking link open failed", "error", openErr)
	} else {
		observability.BookingHandoffs.Inc()
	}

	rec := models.HistoryRecord{
		PickupAddress:      pickup.Address,
		DestinationAddress: dest.Address,
		Pickup:             *pickup.Coord,
		Destination:        *dest.Coord,
		Timestamp:          h.now(),
	}
	if err := h.History.AddHistory(ctx, rec); err != nil {
		observability.HistoryAppendFailures.Inc()
		h.Logger.Warn("history append failed", "error", err)
	}

	return link, openErr
}

// BrowserOpener opens URLs with the platform's default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(u string) error {
	cmd := "xdg-open"
	if runtime.GOOS == "darwin" {
		cmd = "open"
	}
	return exec.Command(cmd, u).Start()
}
