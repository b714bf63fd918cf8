package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/ratelimiting"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const ClientClosedMessage = "client closed before the request completed"

type apiMetricsCollection struct {
	attemptCount metric.Int64Counter
}

var (
	metrics apiMetricsCollection
	tracer  trace.Tracer
)

func init() {
	const name = "cheevo/api"
	meter := otel.Meter(name)
	tracer = otel.Tracer(name)

	attemptCount, err := meter.Int64Counter(
		"api/attempt_count",
		metric.WithDescription("Number of remote calls, by request kind and result"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create attempt count metric: %w", err))
	}

	metrics = apiMetricsCollection{
		attemptCount: attemptCount,
	}
}

// Client runs requests against a Server.
// Asynchronous requests run on their own goroutine until they complete or the client is closed.
type Client struct {
	server     Server
	limiter    ratelimiting.RateLimiter
	newBackOff func() backoff.BackOff
	afterFunc  func(time.Duration) <-chan time.Time

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type Option func(*Client)

// WithBackOff sets the retry schedule used by CallAsyncWithRetry
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = newBackOff
	}
}

func WithAfterFunc(afterFunc func(time.Duration) <-chan time.Time) Option {
	return func(c *Client) {
		c.afterFunc = afterFunc
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 2 * time.Minute
	return b
}

// NewClient creates a client. limiter throttles attempts per request kind.
func NewClient(server Server, limiter ratelimiting.RateLimiter, opts ...Option) *Client {
	c := &Client{
		server:     server,
		limiter:    limiter,
		newBackOff: defaultBackOff,
		afterFunc:  time.After,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close stops pending retries, completing them with Failure, and waits for their completions to return
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// Wait blocks until every asynchronous request has completed
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func attempt[R any, PR responsePtr[R]](ctx context.Context, c *Client, req Request[R]) R {
	ctx, span := tracer.Start(ctx, "api."+req.Kind().String())
	defer span.End()

	response := req.Call(ctx, c.server)
	result := PR(&response).response().Result

	span.SetAttributes(attribute.String("result", result.String()))
	metrics.attemptCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", req.Kind().String()),
		attribute.String("result", result.String()),
	))

	return response
}

// Call runs the request on the calling goroutine and returns whatever the server returned, including Incomplete
func Call[R any, PR responsePtr[R]](ctx context.Context, c *Client, req Request[R]) R {
	return attempt[R, PR](ctx, c, req)
}

// CallWithRetries is Call with up to retries additional attempts while the result is Incomplete
func CallWithRetries[R any, PR responsePtr[R]](ctx context.Context, c *Client, req Request[R], retries int) R {
	logger := logging.FromContext(ctx)

	response := attempt[R, PR](ctx, c, req)
	for i := 0; i < retries && PR(&response).response().Result == Incomplete; i++ {
		logger.InfoContext(ctx, "Retrying incomplete request", "request", req.Kind().String(), "retry", i+1)
		response = attempt[R, PR](ctx, c, req)
	}
	return response
}

// CallAsyncWithRetry runs the request on a new goroutine, retrying Incomplete results with backoff until
// the server returns Success or Failure. completion is called exactly once, on that goroutine.
// Cancelling ctx does not stop the retries, closing the client does.
func CallAsyncWithRetry[R any, PR responsePtr[R]](ctx context.Context, c *Client, req Request[R], completion func(R)) {
	ctx = context.WithoutCancel(ctx)
	ctx = logging.AddMetaToContext(ctx,
		slog.String("requestId", uuid.NewString()),
		slog.String("request", req.Kind().String()),
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		completion(retry[R, PR](ctx, c, req))
	}()
}

func retry[R any, PR responsePtr[R]](ctx context.Context, c *Client, req Request[R]) R {
	logger := logging.FromContext(ctx)

	b := c.newBackOff()
	b.Reset()

	for attemptNumber := 1; ; attemptNumber++ {
		if c.closed() {
			break
		}

		if c.limiter.Consume(req.Kind().String()) {
			response := attempt[R, PR](ctx, c, req)
			status := PR(&response).response()
			if status.Result != Incomplete {
				return response
			}
			logger.InfoContext(ctx, "Request incomplete", "attempt", attemptNumber, "message", status.ErrorMessage)
		} else {
			logger.InfoContext(ctx, "Request throttled", "attempt", attemptNumber)
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			logger.WarnContext(ctx, "Backoff gave up, resetting schedule")
			b.Reset()
			wait = b.NextBackOff()
		}

		select {
		case <-c.done:
		case <-c.afterFunc(wait):
		}
	}

	var response R
	status := PR(&response).response()
	status.Result = Failure
	status.ErrorMessage = ClientClosedMessage
	return response
}
