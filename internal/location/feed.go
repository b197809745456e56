package location

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

// FeedProvider streams position fixes from a websocket feed (a companion app
// or platform bridge publishing geolocation updates). Each frame is a JSON
// object {"lat": .., "lng": .., "accuracy": ..}.
type FeedProvider struct {
	URL    string
	Dialer *websocket.Dialer
	Logger *slog.Logger
}

type feedFrame struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
}

func (f *FeedProvider) Watch(ctx context.Context) (<-chan Update, error) {
	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return nil, ErrUnavailable
	}

	ch := make(chan Update)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			var frame feedFrame
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() != nil {
					return
				}
				f.Logger.Warn("location feed closed", "error", err)
				select {
				case ch <- Update{Err: ErrUnavailable}:
				case <-ctx.Done():
				}
				return
			}
			coord := models.Coordinate{Lat: frame.Lat, Lng: frame.Lng}
			if !coord.Valid() {
				continue
			}
			select {
			case ch <- Update{Coord: coord, AccuracyMeters: frame.Accuracy}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
