package client

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/William2207/uteshop/cli/pkg/auth"
	"github.com/William2207/uteshop/cli/pkg/config"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// DefaultUserAgent is sent when Config.UserAgent is empty
const DefaultUserAgent = "UTEShop-CLI/0.1.0"

// DefaultTimeout bounds a single HTTP exchange
const DefaultTimeout = 20 * time.Second

// RequestIDHeader carries a per-attempt id for correlating logs
const RequestIDHeader = "X-Request-ID"

// Config holds gateway settings
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// ConfigFromSettings reads the gateway settings from the loaded config.
func ConfigFromSettings() Config {
	return Config{
		BaseURL: config.GetString("api.base_url"),
		Timeout: config.Timeout(),
	}
}

// TokenSource supplies the current access token. An empty token means the
// user is logged out.
type TokenSource interface {
	AccessToken() string
}

// File is a multipart upload part.
type File struct {
	Field string
	Name  string
	Data  []byte
}

// Request describes one API call.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     interface{}
	Files    []File
	FormData map[string]string

	// Public requests carry no token and never trigger a refresh (login,
	// refresh itself, OTP endpoints).
	Public bool
	// NoRefresh requests carry the token but return 401 as is.
	NoRefresh bool
}

// call tracks one Send. retried is set once the request has been re-sent and
// is never cleared, which caps recovery at a single retry.
type call struct {
	req     Request
	retried bool
}

// Gateway is the single HTTP wrapper every API call goes through. It
// attaches the bearer token and resolves token failures with one
// refresh-and-retry.
type Gateway struct {
	http *resty.Client

	mu       sync.RWMutex
	tokens   TokenSource
	recovery *auth.Recovery
}

// New creates a gateway
func New(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", userAgent)
	httpClient.SetHeader("Accept", "application/json")
	httpClient.SetJSONMarshaler(json.Marshal)
	httpClient.SetJSONUnmarshaler(json.Unmarshal)
	if l := logger.GetLogger(); l != nil {
		httpClient.SetLogger(l)
	}

	// Add request/response logging. Tokens are never logged.
	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL, "request_id", req.Header.Get(RequestIDHeader))
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"request_id", resp.Request.Header.Get(RequestIDHeader),
			"duration", resp.Time())
		return nil
	})

	return &Gateway{http: httpClient}
}

// SetTokenSource sets where the bearer token comes from
func (g *Gateway) SetTokenSource(tokens TokenSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens = tokens
}

// SetRecovery enables refresh-and-retry on token failures
func (g *Gateway) SetRecovery(recovery *auth.Recovery) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recovery = recovery
}

// HTTPClient exposes the underlying resty client
func (g *Gateway) HTTPClient() *resty.Client {
	return g.http
}

func (g *Gateway) currentToken() string {
	g.mu.RLock()
	tokens := g.tokens
	g.mu.RUnlock()

	if tokens == nil {
		return ""
	}
	return tokens.AccessToken()
}

func (g *Gateway) getRecovery() *auth.Recovery {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.recovery
}

// Send performs req. A 2xx answer returns the response; anything else is an
// error: *errors.APIError for non-2xx statuses, a network or timeout
// CLIError when no answer arrived.
//
// A 401 the refresh policy accepts is recovered once: the session is
// refreshed (shared with any concurrent refresh) and the request re-sent
// with the new token. If the refresh fails the original 401 is returned. A
// 401 on the retried request is returned as is.
func (g *Gateway) Send(ctx context.Context, req Request) (*resty.Response, error) {
	c := &call{req: req}

	token := ""
	if !req.Public {
		token = g.currentToken()
	}

	resp, err := g.do(ctx, c, token)
	if err == nil || !g.recoverable(c, err) {
		return resp, err
	}

	c.retried = true

	// another request already refreshed while this one was in flight
	if current := g.currentToken(); current != "" && current != token {
		logger.Debug("Retrying with refreshed token", "method", req.Method, "path", req.Path)
		return g.do(ctx, c, current)
	}

	newToken, recoverErr := g.getRecovery().Recover(ctx)
	if recoverErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp, ctxErr
		}
		logger.Debug("Session recovery failed", "error", recoverErr)
		return resp, err
	}

	logger.Debug("Retrying after refresh", "method", req.Method, "path", req.Path)
	return g.do(ctx, c, newToken)
}

func (g *Gateway) recoverable(c *call, err error) bool {
	if c.retried || c.req.Public || c.req.NoRefresh {
		return false
	}
	recovery := g.getRecovery()
	return recovery != nil && recovery.ShouldRefresh(err)
}

func (g *Gateway) do(ctx context.Context, c *call, token string) (*resty.Response, error) {
	r := g.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, uuid.NewString())

	if token != "" {
		r.SetAuthToken(token)
	}
	if c.req.Query != nil {
		r.SetQueryParamsFromValues(c.req.Query)
	}
	if c.req.Body != nil {
		r.SetBody(c.req.Body)
	}
	for _, f := range c.req.Files {
		r.SetFileReader(f.Field, f.Name, bytes.NewReader(f.Data))
	}
	if len(c.req.FormData) > 0 {
		r.SetFormData(c.req.FormData)
	}

	resp, err := r.Execute(c.req.Method, c.req.Path)
	if err != nil {
		return resp, transportError(err)
	}

	if !resp.IsSuccess() {
		return resp, clierrors.ParseError(resp.StatusCode(), resp.Body(), resp.Header().Get("Retry-After"))
	}

	return resp, nil
}

// transportError classifies a request that got no HTTP answer.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return clierrors.TimeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return clierrors.TimeoutError(err)
	}

	return clierrors.NetworkError(err)
}
