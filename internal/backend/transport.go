package backend

import (
	"net/http"

	"github.com/google/uuid"
)

// requestIDTransport stamps every outgoing request with a fresh X-Request-ID
// so client and backend logs can be correlated.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}
