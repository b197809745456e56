// Package location observes the device's geographic position. Absence of
// location is a valid, displayable state: consumers that depend on it simply
// stay unprefilled.
package location

import (
	"context"
	"errors"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

// ErrPermissionDenied reports that the user or platform refused position
// access. It is terminal for the watch; no retries are attempted.
var ErrPermissionDenied = errors.New("location permission denied")

// ErrUnavailable reports that no position source exists on this platform.
var ErrUnavailable = errors.New("location services unavailable")

// Update is one position observation. A non-nil Err is terminal: the channel
// closes right after it is delivered.
type Update struct {
	Coord          models.Coordinate
	AccuracyMeters float64
	Err            error
}

// Provider streams position updates until ctx is cancelled. Cancelling ctx is
// the consumer's teardown: the watch goroutine and any underlying connection
// must stop with it.
type Provider interface {
	Watch(ctx context.Context) (<-chan Update, error)
}

// Static emits a single fixed position, then holds the watch open until
// teardown. Used for tests and for CLI runs that pass an explicit coordinate.
type Static struct {
	Coord          models.Coordinate
	AccuracyMeters float64
}

func (s Static) Watch(ctx context.Context) (<-chan Update, error) {
	ch := make(chan Update, 1)
	ch <- Update{Coord: s.Coord, AccuracyMeters: s.AccuracyMeters}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// Denied models a platform where position access was refused: the watch
// reports the terminal error state and ends.
type Denied struct{}

func (Denied) Watch(ctx context.Context) (<-chan Update, error) {
	ch := make(chan Update, 1)
	ch <- Update{Err: ErrPermissionDenied}
	close(ch)
	return ch, nil
}
