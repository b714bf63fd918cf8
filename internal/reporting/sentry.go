package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Amund211/cheevo/internal/config"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/getsentry/sentry-go"
)

var uuidRx = regexp.MustCompile(`[0-9a-f]{8}-?([0-9a-f]{4}-?){3}[0-9a-f]{12}`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)
var tokenRx = regexp.MustCompile(`([?&](t|token|p|password)=)[^&"\s]*`)

func sanitizeError(err string) string {
	err = uuidRx.ReplaceAllString(err, "<uuid>")
	err = hostRx.ReplaceAllString(err, "<host>")
	err = tokenRx.ReplaceAllString(err, "${1}<redacted>")
	return err
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	logger := logging.FromContext(ctx)
	if hub == nil {
		logger.Warn("Failed to get Sentry hub from context", "Error:", err, "Extras:", extras)
		return
	}

	if err == nil {
		err = errors.New("No error provided")
	}

	logger.Error(
		"Reporting error to Sentry",
		slog.String("error", err.Error()),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags)
		scope.SetTags(meta.gameTags())
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		if meta.username != "" {
			scope.SetUser(sentry.User{
				Username: meta.username,
			})
		}
		if !meta.startedAt.IsZero() {
			scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())
		}

		for _, extra := range extras {
			if extra == nil {
				continue
			}
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

// Binder attaches a Sentry hub and the reporting metadata for a component to a context
type Binder func(ctx context.Context, component string) context.Context

func bindHub(ctx context.Context, component string) context.Context {
	hub := sentry.CurrentHub().Clone()
	ctx = sentry.SetHubOnContext(ctx, hub)
	ctx = AddTagsToContext(ctx, map[string]string{"component": component})
	return setStartedAtInContext(ctx, time.Now())
}

func InitSentry(sentryDSN string, environment string) (Binder, func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		Environment:      environment,
		EnableTracing:    true,
		TracesSampleRate: 1.0 / 100.0,
	})
	if err != nil {
		return nil, nil, err
	}

	flush := func() {
		sentry.Flush(5 * time.Second)
	}

	return bindHub, flush, nil
}

// NewSentryOrMock returns a binder that only adds metadata when no DSN is configured in development
func NewSentryOrMock(config config.Config) (Binder, func(), error) {
	if config.SentryDSN() != "" {
		environment := "staging"
		if config.IsProduction() {
			environment = "production"
		}
		return InitSentry(config.SentryDSN(), environment)
	}

	if config.IsDevelopment() {
		binder := func(ctx context.Context, component string) context.Context {
			ctx = AddTagsToContext(ctx, map[string]string{"component": component})
			return setStartedAtInContext(ctx, time.Now())
		}
		flush := func() {}
		return binder, flush, nil
	}

	return nil, nil, fmt.Errorf("Missing Sentry DSN in non-development environment")
}
