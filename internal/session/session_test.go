package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertJ1102/SP2025-Group-5/internal/backend"
	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

type fakeAuth struct {
	loginErr  error
	logoutErr error
	user      *models.User
	userErr   error
	logins    int
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) error {
	f.logins++
	return f.loginErr
}

func (f *fakeAuth) Logout(_ context.Context) error { return f.logoutErr }

func (f *fakeAuth) CurrentUser(_ context.Context) (*models.User, error) {
	return f.user, f.userErr
}

func unauthorized() error {
	return fmt.Errorf("current_user: %w", &backend.RejectedError{Status: http.StatusUnauthorized, Message: "Not authenticated"})
}

func TestBootstrapWithValidCookie(t *testing.T) {
	auth := &fakeAuth{user: &models.User{ID: 1, Username: "rider"}}
	s := New(auth)

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "rider", s.Current().Username)
}

func TestBootstrapUnauthorizedStaysAnonymous(t *testing.T) {
	auth := &fakeAuth{userErr: unauthorized()}
	s := New(auth)

	// 401 is the normal logged-out state, not a failure.
	require.NoError(t, s.Bootstrap(context.Background()))
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.Current())
}

func TestBootstrapNetworkErrorSurfaces(t *testing.T) {
	boom := errors.New("connection refused")
	s := New(&fakeAuth{userErr: boom})

	assert.ErrorIs(t, s.Bootstrap(context.Background()), boom)
	assert.False(t, s.LoggedIn())
}

func TestLoginPopulatesUser(t *testing.T) {
	auth := &fakeAuth{user: &models.User{ID: 2, Username: "rider"}}
	s := New(auth)

	require.NoError(t, s.Login(context.Background(), "rider", "pw"))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, 1, auth.logins)
}

func TestLoginFailureLeavesAnonymous(t *testing.T) {
	auth := &fakeAuth{loginErr: &backend.RejectedError{Status: http.StatusUnauthorized, Message: "bad credentials"}}
	s := New(auth)

	assert.Error(t, s.Login(context.Background(), "rider", "wrong"))
	assert.False(t, s.LoggedIn())
}

func TestLogoutClearsUserEvenOnBackendError(t *testing.T) {
	auth := &fakeAuth{user: &models.User{ID: 3, Username: "rider"}}
	s := New(auth)
	require.NoError(t, s.Bootstrap(context.Background()))
	require.True(t, s.LoggedIn())

	auth.logoutErr = errors.New("backend down")
	assert.Error(t, s.Logout(context.Background()))
	assert.False(t, s.LoggedIn())
}
