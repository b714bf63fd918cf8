package raserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/config"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/ratelimiting"
	"github.com/Amund211/cheevo/internal/reporting"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const UserAgent = "cheevo/1.0"

const requestPath = "/dorequest.php"

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RequestLimiter interface {
	Wait(ctx context.Context) error
}

type raServerMetricsCollection struct {
	requestCount metric.Int64Counter
}

func setupRAServerMetrics(meter metric.Meter) (raServerMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("raserver/request_count")
	if err != nil {
		return raServerMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	return raServerMetricsCollection{
		requestCount: requestCount,
	}, nil
}

type raServer struct {
	httpClient HttpClient
	baseURL    string
	limiter    RequestLimiter

	metrics raServerMetricsCollection
	tracer  trace.Tracer
}

// NewRAServer talks to a server exposing the dorequest api at baseURL
func NewRAServer(httpClient HttpClient, baseURL string, nowFunc func() time.Time, afterFunc func(time.Duration) <-chan time.Time) (*raServer, error) {
	const name = "cheevo/raserver"

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupRAServerMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &raServer{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    ratelimiting.NewWindowLimiter(60, time.Minute, nowFunc, afterFunc),

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// NewHTTPClient creates an instrumented client for the server
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func NewServerOrMock(config config.Config, httpClient HttpClient, nowFunc func() time.Time, afterFunc func(time.Duration) <-chan time.Time) (api.Server, error) {
	if config.ServerURL() != "" {
		return NewRAServer(httpClient, config.ServerURL(), nowFunc, afterFunc)
	}
	if config.IsDevelopment() {
		return NewMockServer(), nil
	}
	return nil, fmt.Errorf("Missing server url in non-development environment")
}

type envelope interface {
	base() *baseResponse
}

func (b *baseResponse) base() *baseResponse {
	return b
}

func isTransientStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func incomplete(format string, args ...any) api.Response {
	return api.Response{Result: api.Incomplete, ErrorMessage: fmt.Sprintf(format, args...)}
}

func failure(message string) api.Response {
	return api.Response{Result: api.Failure, ErrorMessage: message}
}

// do sends one request and decodes the json body into result.
// Problems reaching the server are Incomplete, rejections by the server are Failure.
func (s *raServer) do(ctx context.Context, request string, params url.Values, result envelope) api.Response {
	ctx, span := s.tracer.Start(ctx, "RAServer."+request)
	defer span.End()

	ctx = logging.AddMetaToContext(ctx, slog.String("request", request))
	logger := logging.FromContext(ctx)

	err := s.limiter.Wait(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Did not send request due to rate limiting", "error", err.Error())
		return incomplete("too many requests: %s", err.Error())
	}

	params.Set("r", request)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+requestPath, strings.NewReader(params.Encode()))
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return failure(err.Error())
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "Failed to send request", "error", err.Error())
		return incomplete("failed to reach server: %s", err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read response body", "error", err.Error())
		return incomplete("failed to read response: %s", err.Error())
	}

	logger.InfoContext(ctx, "Request completed", "status", resp.StatusCode, "duration", time.Since(start).String())
	s.metrics.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("request", request),
			attribute.String("status_code", strconv.Itoa(resp.StatusCode)),
		),
	)

	if isTransientStatus(resp.StatusCode) {
		return incomplete("server unavailable (HTTP %d)", resp.StatusCode)
	}

	err = json.Unmarshal(data, result)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return failure(fmt.Sprintf("request failed (HTTP %d)", resp.StatusCode))
		}
		err := fmt.Errorf("failed to parse response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"data":   string(data),
			"status": strconv.Itoa(resp.StatusCode),
		})
		return failure("unexpected response from server")
	}

	base := result.base()
	if !base.Success {
		if base.Error == "" {
			return failure(fmt.Sprintf("request failed (HTTP %d)", resp.StatusCode))
		}
		return failure(base.Error)
	}

	return api.Response{Result: api.Success}
}

func credentialParams(credentials api.Credentials) url.Values {
	return url.Values{
		"u": {credentials.Username},
		"t": {credentials.APIToken},
	}
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (s *raServer) Login(ctx context.Context, request api.LoginRequest) api.LoginResponse {
	params := url.Values{"u": {request.Username}}
	if request.APIToken != "" {
		params.Set("t", request.APIToken)
	} else {
		params.Set("p", request.Password)
	}

	var parsed loginResponse
	response := s.do(ctx, "login2", params, &parsed)
	if !response.Succeeded() {
		return api.LoginResponse{Response: response}
	}

	if parsed.Token == "" {
		reporting.Report(ctx, errors.New("login response without token"))
		return api.LoginResponse{Response: failure("server did not return a token")}
	}

	displayName := parsed.DisplayName
	if displayName == "" {
		displayName = parsed.User
	}

	return api.LoginResponse{
		Response:          response,
		Username:          parsed.User,
		DisplayName:       displayName,
		APIToken:          parsed.Token,
		Score:             parsed.Score,
		SoftcoreScore:     parsed.SoftcoreScore,
		NumUnreadMessages: parsed.Messages,
	}
}

func (s *raServer) Logout(ctx context.Context, request api.LogoutRequest) api.LogoutResponse {
	var parsed baseResponse
	return api.LogoutResponse{Response: s.do(ctx, "logout", credentialParams(request.Credentials), &parsed)}
}

func (s *raServer) FetchGameData(ctx context.Context, request api.FetchGameDataRequest) api.FetchGameDataResponse {
	gameID := strconv.FormatUint(uint64(request.GameID), 10)

	params := credentialParams(request.Credentials)
	params.Set("g", gameID)
	var patch patchResponse
	response := s.do(ctx, "patch", params, &patch)
	if !response.Succeeded() {
		return api.FetchGameDataResponse{Response: response}
	}

	params = credentialParams(request.Credentials)
	params.Set("g", gameID)
	params.Set("h", boolParam(request.Hardcore))
	var unlocks unlocksResponse
	response = s.do(ctx, "unlocks", params, &unlocks)
	if !response.Succeeded() {
		return api.FetchGameDataResponse{Response: response}
	}

	unlocked := unlocks.UserUnlocks
	if unlocked == nil {
		unlocked = []uint32{}
	}

	return api.FetchGameDataResponse{
		Response:             response,
		Game:                 patch.PatchData.toDomain(),
		UnlockedAchievements: unlocked,
	}
}

func (s *raServer) AwardAchievement(ctx context.Context, request api.AwardAchievementRequest) api.AwardAchievementResponse {
	params := credentialParams(request.Credentials)
	params.Set("a", strconv.FormatUint(uint64(request.AchievementID), 10))
	params.Set("h", boolParam(request.Hardcore))
	params.Set("m", request.GameHash)

	var parsed awardAchievementResponse
	response := s.do(ctx, "awardachievement", params, &parsed)
	if !response.Succeeded() {
		return api.AwardAchievementResponse{Response: response}
	}

	return api.AwardAchievementResponse{
		Response:              response,
		NewPlayerScore:        parsed.Score,
		AchievementsRemaining: parsed.AchievementsRemaining,
	}
}

func (s *raServer) SubmitLeaderboardEntry(ctx context.Context, request api.SubmitLeaderboardEntryRequest) api.SubmitLeaderboardEntryResponse {
	params := credentialParams(request.Credentials)
	params.Set("i", strconv.FormatUint(uint64(request.LeaderboardID), 10))
	params.Set("s", strconv.FormatInt(request.Score, 10))
	params.Set("m", request.GameHash)

	var parsed submitLeaderboardEntryResponse
	response := s.do(ctx, "submitlbentry", params, &parsed)
	if !response.Succeeded() {
		return api.SubmitLeaderboardEntryResponse{Response: response}
	}

	return api.SubmitLeaderboardEntryResponse{
		Response:       response,
		SubmittedScore: parsed.Response.Score,
		BestScore:      parsed.Response.BestScore,
		Rank:           parsed.Response.RankInfo.Rank,
		NumEntries:     parsed.Response.RankInfo.NumEntries,
	}
}
