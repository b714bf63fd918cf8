package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

type loggerContextKey struct{}

// Commands print their results on stdout, so the fallback logs to stderr
var fallbackLogger = sync.OnceValue(func() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil)).With(slog.String("logger", "fallback"))
})

func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return fallbackLogger()
	}
	return logger
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

func AddMetaToContext(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return AddToContext(ctx, FromContext(ctx).With(args...))
}

func AddComponentToContext(ctx context.Context, component string) context.Context {
	return AddMetaToContext(ctx, slog.String("component", component))
}
