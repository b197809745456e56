// Package session holds the authenticated user for one application run as an
// explicitly passed object: populated at startup from the backend, cleared on
// logout. The session cookie itself lives in the backend client's jar.
package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/RobertJ1102/SP2025-Group-5/internal/backend"
	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

// Authenticator is the slice of the backend client the session needs.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Session tracks the current user. A nil user means anonymous.
type Session struct {
	auth Authenticator

	mu   sync.Mutex
	user *models.User
}

func New(auth Authenticator) *Session {
	return &Session{auth: auth}
}

// Bootstrap asks the backend who the session cookie belongs to. An
// unauthenticated answer is not an error: the session just stays anonymous.
func (s *Session) Bootstrap(ctx context.Context) error {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		if re, ok := backend.AsRejected(err); ok && re.Status == http.StatusUnauthorized {
			s.set(nil)
			return nil
		}
		return err
	}
	s.set(user)
	return nil
}

// Login authenticates and refreshes the current user.
func (s *Session) Login(ctx context.Context, identifier, password string) error {
	if err := s.auth.Login(ctx, identifier, password); err != nil {
		return err
	}
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	s.set(user)
	return nil
}

// Logout clears the session. The local user is dropped even when the backend
// call fails; the cookie may outlive us but the process treats itself as
// anonymous.
func (s *Session) Logout(ctx context.Context) error {
	err := s.auth.Logout(ctx)
	s.set(nil)
	return err
}

// Current returns the logged-in user, or nil when anonymous.
func (s *Session) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) LoggedIn() bool { return s.Current() != nil }

func (s *Session) set(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}
