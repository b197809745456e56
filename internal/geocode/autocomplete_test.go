package geocode

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertJ1102/SP2025-Group-5/internal/logging"
	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

type listenerRecorder struct {
	mu      sync.Mutex
	queries []string
	results [][]models.Suggestion
}

func (l *listenerRecorder) listen(query string, suggestions []models.Suggestion, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, query)
	l.results = append(l.results, suggestions)
}

func (l *listenerRecorder) delivered() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.queries...)
}

func TestAutocompleteShortTextIssuesNothing(t *testing.T) {
	g := &countingGeocoder{suggestions: []models.Suggestion{{Label: "x"}}}
	rec := &listenerRecorder{}
	a := NewAutocompleter(g, 100*time.Millisecond, rec.listen, logging.NewLogger("error"))
	defer a.Close()

	ctx := context.Background()
	a.Update(ctx, "co", nil)
	a.Update(ctx, "  c  ", nil)

	time.Sleep(250 * time.Millisecond)
	assert.Empty(t, rec.delivered())
}

func TestAutocompleteDebouncesBursts(t *testing.T) {
	g := &countingGeocoder{suggestions: []models.Suggestion{{Label: "Kayak's Coffee", PlaceID: "p1"}}}
	rec := &listenerRecorder{}
	a := NewAutocompleter(g, 100*time.Millisecond, rec.listen, logging.NewLogger("error"))
	defer a.Close()

	// Keystrokes inside one debounce window collapse to the final text.
	ctx := context.Background()
	a.Update(ctx, "cof", nil)
	a.Update(ctx, "coff", nil)
	a.Update(ctx, "coffee", nil)

	require.Eventually(t, func() bool { return len(rec.delivered()) == 1 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"coffee"}, rec.delivered())
}

func TestAutocompleteStaleResponseDropped(t *testing.T) {
	slow := make(chan struct{})
	g := &countingGeocoder{
		suggestions: []models.Suggestion{{Label: "match"}},
		blocks:      map[string]chan struct{}{"cof": slow},
	}
	rec := &listenerRecorder{}
	a := NewAutocompleter(g, 100*time.Millisecond, rec.listen, logging.NewLogger("error"))
	defer a.Close()

	// First query's fetch starts and then stalls on the gate.
	ctx := context.Background()
	a.Update(ctx, "cof", nil)
	time.Sleep(150 * time.Millisecond)

	// Newer query completes immediately.
	a.Update(ctx, "coffee", nil)
	require.Eventually(t, func() bool { return len(rec.delivered()) == 1 },
		time.Second, 10*time.Millisecond)

	// Old response finally lands and must be discarded.
	close(slow)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"coffee"}, rec.delivered())
}

func TestAutocompleteDeliveriesKeepIssueOrder(t *testing.T) {
	g := &countingGeocoder{suggestions: []models.Suggestion{{Label: "match"}}}

	var mu sync.Mutex
	var order []string
	entered := make(chan struct{})
	release := make(chan struct{})
	listener := func(query string, _ []models.Suggestion, _ error) {
		if query == "cof" {
			// Stall mid-delivery so a newer response arrives while this
			// one is still with the listener.
			close(entered)
			<-release
		}
		mu.Lock()
		order = append(order, query)
		mu.Unlock()
	}

	a := NewAutocompleter(g, 100*time.Millisecond, listener, logging.NewLogger("error"))
	defer a.Close()

	ctx := context.Background()
	a.Update(ctx, "cof", nil)
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("first delivery never reached the listener")
	}

	a.Update(ctx, "coffee", nil)
	// Let the second fetch complete; it must queue behind the stalled one.
	time.Sleep(200 * time.Millisecond)
	close(release)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"cof", "coffee"}, order)
}

func TestAutocompleteCloseDiscardsPending(t *testing.T) {
	g := &countingGeocoder{suggestions: []models.Suggestion{{Label: "x"}}}
	rec := &listenerRecorder{}
	a := NewAutocompleter(g, 100*time.Millisecond, rec.listen, logging.NewLogger("error"))

	a.Update(context.Background(), "coffee", nil)
	a.Close()

	time.Sleep(250 * time.Millisecond)
	assert.Empty(t, rec.delivered())
}

func TestAutocompleteCancelledContextDiscardsResponse(t *testing.T) {
	g := &countingGeocoder{suggestions: []models.Suggestion{{Label: "x"}}}
	rec := &listenerRecorder{}
	a := NewAutocompleter(g, 100*time.Millisecond, rec.listen, logging.NewLogger("error"))
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	a.Update(ctx, "coffee", nil)
	cancel()

	time.Sleep(250 * time.Millisecond)
	assert.Empty(t, rec.delivered())
}

func TestAutocompleteEnforcesMinimumDebounce(t *testing.T) {
	a := NewAutocompleter(&countingGeocoder{}, time.Millisecond, (&listenerRecorder{}).listen, logging.NewLogger("error"))
	defer a.Close()
	assert.Equal(t, 100*time.Millisecond, a.debounce)
}
