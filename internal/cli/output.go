package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Amund211/cheevo/internal/app"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError carries the exit code the process should end with
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// consoleHost collects notifications and pause requests until they are flushed to w.
// Completions may add to it from other goroutines.
type consoleHost struct {
	mu      sync.Mutex
	w       io.Writer
	pending []string
}

func newConsoleHost(w io.Writer) *consoleHost {
	return &consoleHost{w: w}
}

func (h *consoleHost) add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, line)
}

func (h *consoleHost) Notify(ctx context.Context, notification app.Notification) {
	line := fmt.Sprintf("[%s] %s", notification.Kind, notification.Title)
	if notification.Detail != "" {
		line += ": " + strings.ReplaceAll(notification.Detail, "\n", "; ")
	}
	h.add(line)
}

func (h *consoleHost) ClearPopups() {
	h.add("popups cleared")
}

func (h *consoleHost) Pause() {
	h.add("emulator paused")
}

func (h *consoleHost) flush(indent string) {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	for _, line := range pending {
		fmt.Fprintf(h.w, "%s%s\n", indent, line)
	}
}
