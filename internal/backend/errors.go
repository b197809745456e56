package backend

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrNotFound is returned when a geocode or autocomplete call succeeds but
// matches nothing.
var ErrNotFound = errors.New("no results")

// RejectedError is a non-2xx backend response together with the message body
// it carried.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request: status %d", e.Status)
	}
	return fmt.Sprintf("backend rejected request: status %d: %s", e.Status, e.Message)
}

// AsRejected unwraps err to a backend rejection, if it is one.
func AsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsNetwork reports whether err is a transport-level failure (connection
// refused, DNS, timeout) rather than a response the backend produced.
func IsNetwork(err error) bool {
	var ue *url.Error
	return errors.As(err, &ue)
}
