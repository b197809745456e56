package geocode

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
	"github.com/RobertJ1102/SP2025-Group-5/internal/observability"
)

// MinQueryLen is the shortest partial text that triggers a suggestion fetch.
const MinQueryLen = 3

// Listener receives suggestion results. err is non-nil when the fetch failed;
// query is the partial text the results belong to.
type Listener func(query string, suggestions []models.Suggestion, err error)

// Autocompleter debounces keystrokes into at most one in-flight suggestion
// request per pause, and guarantees that responses reach the listener in
// request-issue order: each fetch gets a monotonic sequence number, only the
// newest sequence seen so far may deliver, and deliverMu holds the staleness
// check and the listener call in one critical section so an older response
// cannot land behind a newer one that already passed the check.
type Autocompleter struct {
	client   Geocoder
	debounce time.Duration
	listener Listener
	logger   *slog.Logger

	mu     sync.Mutex
	seq    uint64 // last issued request
	timer  *time.Timer
	closed bool

	deliverMu sync.Mutex
	delivered uint64 // newest sequence whose response reached the listener
}

func NewAutocompleter(client Geocoder, debounce time.Duration, listener Listener, logger *slog.Logger) *Autocompleter {
	if debounce < 100*time.Millisecond {
		debounce = 100 * time.Millisecond
	}
	return &Autocompleter{
		client:   client,
		debounce: debounce,
		listener: listener,
		logger:   logger,
	}
}

// Update records the latest partial text. Text shorter than MinQueryLen
// cancels any pending fetch and issues nothing. The fetch runs under ctx (the
// owning view's lifetime); a done ctx discards the response.
func (a *Autocompleter) Update(ctx context.Context, text string, bias *models.Coordinate) {
	trimmed := strings.TrimSpace(text)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if len(trimmed) < MinQueryLen {
		return
	}
	a.seq++
	seq := a.seq
	a.timer = time.AfterFunc(a.debounce, func() {
		a.fetch(ctx, seq, trimmed, bias)
	})
}

// Close stops any pending fetch. In-flight requests may still complete but
// their results are discarded.
func (a *Autocompleter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autocompleter) fetch(ctx context.Context, seq uint64, query string, bias *models.Coordinate) {
	suggestions, err := a.client.Autocomplete(ctx, query, bias)

	a.deliverMu.Lock()
	defer a.deliverMu.Unlock()

	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed || seq <= a.delivered || ctx.Err() != nil {
		observability.AutocompleteDropped.Inc()
		a.logger.Debug("autocomplete response dropped", "query", query, "seq", seq)
		return
	}
	a.delivered = seq

	a.listener(query, suggestions, err)
}
