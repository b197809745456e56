package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertJ1102/SP2025-Group-5/internal/logging"
)

var upgrader = websocket.Upgrader{}

func feedServer(t *testing.T, frames []string, hold bool) *FeedProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		if hold {
			// Keep the connection open until the client goes away.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(server.Close)
	return &FeedProvider{
		URL:    "ws" + strings.TrimPrefix(server.URL, "http"),
		Logger: logging.NewLogger("error"),
	}
}

func TestFeedDeliversFrames(t *testing.T) {
	provider := feedServer(t, []string{
		`{"lat":38.6488,"lng":-90.3108,"accuracy":12}`,
		`{"lat":38.6490,"lng":-90.3110,"accuracy":8}`,
	}, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := provider.Watch(ctx)
	require.NoError(t, err)

	u := <-ch
	require.NoError(t, u.Err)
	assert.Equal(t, 38.6488, u.Coord.Lat)
	assert.Equal(t, 12.0, u.AccuracyMeters)

	u = <-ch
	require.NoError(t, u.Err)
	assert.Equal(t, 38.6490, u.Coord.Lat)
}

func TestFeedSkipsInvalidCoordinates(t *testing.T) {
	provider := feedServer(t, []string{
		`{"lat":999,"lng":0,"accuracy":1}`,
		`{"lat":38.6488,"lng":-90.3108,"accuracy":5}`,
	}, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := provider.Watch(ctx)
	require.NoError(t, err)

	u := <-ch
	require.NoError(t, u.Err)
	assert.Equal(t, 38.6488, u.Coord.Lat)
}

func TestFeedServerCloseIsTerminal(t *testing.T) {
	provider := feedServer(t, []string{`{"lat":1,"lng":2,"accuracy":3}`}, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := provider.Watch(ctx)
	require.NoError(t, err)

	u := <-ch
	require.NoError(t, u.Err)

	select {
	case u = <-ch:
		assert.ErrorIs(t, u.Err, ErrUnavailable)
	case <-time.After(2 * time.Second):
		t.Fatal("no terminal update after server close")
	}

	_, open := <-ch
	assert.False(t, open)
}

func TestFeedDialFailure(t *testing.T) {
	provider := &FeedProvider{URL: "ws://127.0.0.1:1/feed", Logger: logging.NewLogger("error")}
	_, err := provider.Watch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
