package app

import (
	"testing"
	"time"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestAttemptLogin(t *testing.T) {
	t.Parallel()

	request := api.LoginRequest{Username: "alice", Password: "hunter2"}

	t.Run("blocking login fails after two incomplete attempts", func(t *testing.T) {
		t.Parallel()

		s := newTestSession(t, DefaultSettings())
		s.server.loginResults = []api.Result{api.Incomplete, api.Incomplete, api.Success}

		err := s.AttemptLogin(t.Context(), request, true)
		require.ErrorIs(t, err, ErrLoginFailed)
		require.Equal(t, 2, s.server.calls())
		require.Equal(t, UserLoggedOut, s.User.State())

		notification, ok := s.notifier.find("Login Failed")
		require.True(t, ok)
		require.Equal(t, "Please login again.", notification.Detail)
	})

	t.Run("async login succeeds after two incomplete attempts", func(t *testing.T) {
		t.Parallel()

		s := newTestSession(t, DefaultSettings())
		s.server.loginResults = []api.Result{api.Incomplete, api.Incomplete, api.Success}

		require.NoError(t, s.AttemptLogin(t.Context(), request, false))

		require.Eventually(t, s.User.IsLoggedIn, time.Second, time.Millisecond)
		require.Equal(t, 3, s.server.calls())
		require.Equal(t, "alice", s.User.Username())
	})

	t.Run("blocking login succeeds after one incomplete attempt", func(t *testing.T) {
		t.Parallel()

		s := newTestSession(t, DefaultSettings())
		s.server.loginResults = []api.Result{api.Incomplete, api.Success}

		require.NoError(t, s.AttemptLogin(t.Context(), request, true))
		require.True(t, s.User.IsLoggedIn())

		credentials, _, ok := s.User.Credentials()
		require.True(t, ok)
		require.Equal(t, api.Credentials{Username: "alice", APIToken: "mock-token"}, credentials)
	})

	t.Run("failure is surfaced with the server message", func(t *testing.T) {
		t.Parallel()

		s := newTestSession(t, DefaultSettings())

		err := s.AttemptLogin(t.Context(), api.LoginRequest{Username: "alice", APIToken: "stale"}, true)
		require.ErrorIs(t, err, ErrLoginFailed)
		require.ErrorContains(t, err, "invalid token")
		require.False(t, s.User.IsLoggedIn())

		notification, ok := s.notifier.find("Login Failed")
		require.True(t, ok)
		require.Equal(t, NotificationError, notification.Kind)
		require.Equal(t, "invalid token", notification.Detail)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		s := newTestSession(t, DefaultSettings())

		err := s.AttemptLogin(t.Context(), api.LoginRequest{Username: "alice"}, true)
		require.ErrorIs(t, err, domain.ErrNotLoggedIn)
		require.Equal(t, UserLoggedOut, s.User.State())
		require.Empty(t, s.notifier.all())
	})
}

func TestLoginWelcome(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.Hardcore = true

	s := newTestSession(t, settings)
	s.server.score = 12345
	s.server.unread = 3

	s.login()
	welcome, ok := s.notifier.find("Welcome alice")
	require.True(t, ok)
	require.Equal(t, NotificationInfo, welcome.Kind)
	require.Equal(t, "You have 3 new messages\n12,345 points", welcome.Detail)
	require.Equal(t, uint32(12345), s.User.Score())

	require.NoError(t, s.Logout(t.Context()))

	s.server.unread = 1
	s.login()
	welcome, ok = s.notifier.find("Welcome back alice")
	require.True(t, ok)
	require.Equal(t, "You have 1 new message\n12,345 points", welcome.Detail)
}

func TestHandleLoginResponseDiscardsStaleAttempts(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, DefaultSettings())

	epoch := s.User.beginLogin()
	s.User.logout()

	err := s.HandleLoginResponse(t.Context(), epoch, api.LoginResponse{
		Response: api.Response{Result: api.Success},
		Username: "alice",
		APIToken: "mock-token",
	})
	require.ErrorIs(t, err, ErrLoginSuperseded)
	require.False(t, s.User.IsLoggedIn())
	require.Empty(t, s.notifier.all())
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("clears the user", func(t *testing.T) {
		t.Parallel()

		s := newTestSession(t, DefaultSettings()).login()
		s.Trackers.Create(7, "000001")

		require.NoError(t, s.Logout(t.Context()))
		require.Equal(t, UserLoggedOut, s.User.State())
		require.Empty(t, s.User.Username())
		require.Empty(t, s.Trackers.All())
		require.Equal(t, 1, s.notifier.clearCount())

		_, _, ok := s.User.Credentials()
		require.False(t, ok)
	})

	t.Run("not logged in", func(t *testing.T) {
		t.Parallel()

		s := newTestSession(t, DefaultSettings())
		require.ErrorIs(t, s.Logout(t.Context()), domain.ErrNotLoggedIn)
	})
}
