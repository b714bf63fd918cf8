package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/reporting"
)

var (
	ErrLoginFailed     = errors.New("login failed")
	ErrLoginSuperseded = errors.New("login superseded")
	ErrLogoutFailed    = errors.New("logout failed")
)

// AttemptLogin logs in with a password or a stored token.
//
// A blocking login retries once if the server does not answer and fails if it still does not.
// A non-blocking login returns immediately and retries in the background until the server answers,
// the outcome is reported through the notifier.
func (s *Session) AttemptLogin(ctx context.Context, request api.LoginRequest, blocking bool) error {
	if request.Username == "" || (request.Password == "" && request.APIToken == "") {
		return fmt.Errorf("%w: username and password or token required", domain.ErrNotLoggedIn)
	}

	ctx = logging.AddMetaToContext(ctx, slog.String("username", request.Username))
	epoch := s.User.beginLogin()

	if blocking {
		response := api.CallWithRetries(ctx, s.client, request, 1)
		return s.HandleLoginResponse(ctx, epoch, response)
	}

	api.CallAsyncWithRetry(ctx, s.client, request, func(response api.LoginResponse) {
		err := s.HandleLoginResponse(ctx, epoch, response)
		if err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Background login did not complete", "error", err)
		}
	})
	return nil
}

// HandleLoginResponse completes the login started in epoch
func (s *Session) HandleLoginResponse(ctx context.Context, epoch uint64, response api.LoginResponse) error {
	logger := logging.FromContext(ctx)

	if !s.User.IsCurrent(epoch) {
		logger.InfoContext(ctx, "Discarding login completion from a previous attempt")
		return ErrLoginSuperseded
	}

	if !response.Succeeded() {
		s.User.failLogin(epoch)

		message := response.ErrorMessage
		if message == "" {
			message = "Please login again."
		}
		logger.WarnContext(ctx, "Login failed", "result", response.Result.String(), "message", response.ErrorMessage)
		s.notifier.Notify(ctx, Notification{
			Kind:   NotificationError,
			Title:  "Login Failed",
			Detail: message,
		})
		return fmt.Errorf("%w: %s", ErrLoginFailed, message)
	}

	if !s.User.completeLogin(epoch, response) {
		return ErrLoginSuperseded
	}
	ctx = reporting.SetUsernameInContext(ctx, response.Username)

	returning := false
	user, err := s.repo.RegisterUser(ctx, response.Username)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to register user", "error", err)
		reporting.Report(ctx, fmt.Errorf("failed to register user: %w", err))
	} else {
		returning = user.SeenCount > 1
	}

	logger.InfoContext(ctx, "Logged in", "returning", returning)
	s.notifier.Notify(ctx, s.welcome(response, returning))
	return nil
}

func (s *Session) welcome(response api.LoginResponse, returning bool) Notification {
	displayName := s.User.DisplayName()

	title := "Welcome " + displayName
	if returning {
		title = "Welcome back " + displayName
	}

	score := response.SoftcoreScore
	if s.Game.Hardcore() {
		score = response.Score
	}

	lines := []string{}
	switch response.NumUnreadMessages {
	case 0:
	case 1:
		lines = append(lines, "You have 1 new message")
	default:
		lines = append(lines, s.printer.Sprintf("You have %d new messages", response.NumUnreadMessages))
	}
	lines = append(lines, s.printer.Sprintf("%d points", score))

	return Notification{
		Kind:   NotificationInfo,
		Title:  title,
		Detail: strings.Join(lines, "\n"),
	}
}

// Logout ends the session on the server. Local state is only cleared once the server accepted it.
func (s *Session) Logout(ctx context.Context) error {
	credentials, _, ok := s.User.Credentials()
	if !ok {
		return domain.ErrNotLoggedIn
	}

	response := api.CallWithRetries(ctx, s.client, api.LogoutRequest{Credentials: credentials}, 1)
	if !response.Succeeded() {
		return fmt.Errorf("%w: %s: %s", ErrLogoutFailed, response.Result.String(), response.ErrorMessage)
	}

	s.User.logout()
	s.Trackers.Clear()
	s.notifier.ClearPopups()
	logging.FromContext(ctx).InfoContext(ctx, "Logged out")
	return nil
}
