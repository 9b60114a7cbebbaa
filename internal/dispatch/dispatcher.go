// Package dispatch is the single egress point for request/response calls to
// the admin API.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
	"github.com/utafrali/DeliveryConsole/pkg/httpclient"
	"github.com/utafrali/DeliveryConsole/pkg/logger"
	"github.com/utafrali/DeliveryConsole/pkg/tracing"
)

// Header names sent on every call.
const (
	HeaderAPIKey        = "x-api-key"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// maxResponseBody bounds how much of a success body is read.
const maxResponseBody = 32 << 20

// sessionExpiredMessage is shown to the operator after a forced logout.
const sessionExpiredMessage = "Session expired. Please login again."

// expiryIndicators are matched case-insensitively against the message of a
// 401/403 response. A match means the token is no longer usable.
var expiryIndicators = []string{
	"jwt expired",
	"expired",
	"invalid",
	"unauthorized",
	"verification failed",
}

// Session is the part of the session store the dispatcher needs.
type Session interface {
	Token() string
	Expire(ctx context.Context) error
}

// ExpiryHook runs after the session has been cleared because the server
// rejected the token. The console uses it to send the operator back to login.
type ExpiryHook func(ctx context.Context)

// Config holds dispatcher settings.
type Config struct {
	BaseURL string
	APIKey  string

	// OnExpired is optional.
	OnExpired ExpiryHook

	// RateLimit caps calls per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Request describes one call. Public requests never carry the bearer token.
type Request struct {
	Method   string
	Endpoint string
	Body     []byte
	Public   bool
}

// key identifies identical calls. A GET and a DELETE on the same path never
// share a result.
func (r Request) key() string {
	return r.Method + " " + r.Endpoint + "\n" + string(r.Body)
}

// NewJSONRequest marshals payload into a request body.
func NewJSONRequest(method, endpoint string, payload any) (Request, error) {
	req := Request{Method: method, Endpoint: endpoint}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s %s body: %w", method, endpoint, err)
	}
	req.Body = body
	return req, nil
}

// Dispatcher sends calls to the admin API. Concurrent identical calls share a
// single network round-trip; nothing is ever retried.
type Dispatcher struct {
	baseURL   string
	apiKey    string
	client    httpclient.Doer
	session   Session
	logger    *slog.Logger
	onExpired ExpiryHook
	limiter   *rate.Limiter
	tracer    trace.Tracer
	inflight  singleflight.Group
}

// New creates a dispatcher. The session is read on every call.
func New(cfg Config, client httpclient.Doer, sess Session, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		client:    client,
		session:   sess,
		logger:    log,
		onExpired: cfg.OnExpired,
		tracer:    tracing.Tracer(tracing.InstrumentationName),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return d
}

// Do sends req, or joins an identical call already in flight, and returns the
// JSON body. The network call runs to completion even if ctx is canceled;
// ctx only bounds how long this caller waits.
func (d *Dispatcher) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	detached := context.WithoutCancel(ctx)
	ch := d.inflight.DoChan(req.key(), func() (any, error) {
		return d.send(detached, req)
	})

	select {
	case res := <-ch:
		if res.Shared {
			apiSharedResults.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		// Each caller gets its own copy of the shared body.
		body := res.Val.(json.RawMessage)
		return append(json.RawMessage(nil), body...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DoJSON sends req and decodes the response into T.
func DoJSON[T any](ctx context.Context, d *Dispatcher, req Request) (*T, error) {
	raw, err := d.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperrors.MalformedResponse(http.StatusOK)
	}
	return &out, nil
}

// Upload posts a single file as multipart form data. Uploads are never
// coalesced; the content type comes from the multipart writer.
func (d *Dispatcher) Upload(ctx context.Context, endpoint, field, filename string, r io.Reader) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	ctx = logger.WithRequestID(ctx, uuid.NewString())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+endpoint, &buf)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("build upload request: %v", err))
	}
	httpReq.Header.Set(HeaderContentType, mw.FormDataContentType())
	d.authorize(httpReq.Header, false)
	return d.execute(ctx, httpReq, false)
}

func (d *Dispatcher) send(ctx context.Context, req Request) (json.RawMessage, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NetworkFailure(err)
		}
	}

	ctx = logger.WithRequestID(ctx, uuid.NewString())

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, d.baseURL+req.Endpoint, body)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set(HeaderContentType, "application/json")
	d.authorize(httpReq.Header, req.Public)
	return d.execute(ctx, httpReq, req.Public)
}

// authorize sets the API key and, for non-public calls with a session, the
// bearer token. A missing token is left for the server to reject.
func (d *Dispatcher) authorize(h http.Header, public bool) {
	h.Set(HeaderAPIKey, d.apiKey)
	if public {
		return
	}
	if token := d.session.Token(); token != "" {
		h.Set(HeaderAuthorization, "Bearer "+token)
	}
}

func (d *Dispatcher) execute(ctx context.Context, httpReq *http.Request, public bool) (json.RawMessage, error) {
	method, path := httpReq.Method, httpReq.URL.Path
	log := logger.WithContext(ctx, d.logger).With(
		slog.String("method", method),
		slog.String("path", path),
	)

	ctx, span := tracing.StartClientSpan(ctx, d.tracer, method, path, httpReq.Header)
	apiRequestsInFlight.Inc()
	defer apiRequestsInFlight.Dec()
	start := time.Now()

	status := 0
	result, outcome, err := func() (json.RawMessage, string, error) {
		resp, err := d.client.Do(ctx, httpReq)
		if err != nil {
			return nil, outcomeNetwork, apperrors.NetworkFailure(err)
		}
		status = resp.StatusCode
		body, err := httpclient.ReadBody(resp, maxResponseBody)
		if err != nil {
			return nil, outcomeNetwork, apperrors.NetworkFailure(err)
		}
		return d.interpret(ctx, status, body, public)
	}()

	elapsed := time.Since(start)
	apiRequestsTotal.WithLabelValues(method, outcome).Inc()
	apiRequestDuration.WithLabelValues(method, outcome).Observe(elapsed.Seconds())
	tracing.EndClientSpan(span, status, err)

	if err != nil {
		log.Debug("api call failed",
			slog.Int("status", status),
			slog.String("outcome", outcome),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	log.Debug("api call completed",
		slog.Int("status", status),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}

// interpret turns a status and body into a result or a classified error.
// Public calls carry no token, so their 401/403 replies never end the session.
func (d *Dispatcher) interpret(ctx context.Context, status int, body []byte, public bool) (json.RawMessage, string, error) {
	if httpclient.IsSuccess(status) {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 {
			return json.RawMessage("{}"), outcomeOK, nil
		}
		if !json.Valid(trimmed) {
			return nil, outcomeMalformed, apperrors.MalformedResponse(status)
		}
		return json.RawMessage(trimmed), outcomeOK, nil
	}

	msg := httpclient.ErrorMessage(body, status)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		if !public && isExpiryMessage(msg) {
			d.expire(ctx, msg)
			return nil, outcomeSessionExpired, apperrors.SessionExpired(sessionExpiredMessage)
		}
		return nil, outcomeDenied, apperrors.AuthorizationDenied(msg, status)
	}
	return nil, outcomeFailed, apperrors.RequestFailed(msg, status)
}

// expire clears the session and hands control to the expiry hook.
func (d *Dispatcher) expire(ctx context.Context, reason string) {
	log := logger.WithContext(ctx, d.logger)
	log.Warn("server rejected session token", slog.String("reason", reason))
	if err := d.session.Expire(ctx); err != nil {
		log.Error("failed to clear expired session", slog.String("error", err.Error()))
	}
	if d.onExpired != nil {
		d.onExpired(ctx)
	}
}

// isExpiryMessage reports whether a 401/403 message means the token is dead.
// Substring matching is loose: any message containing "invalid"
// forces a logout.
func isExpiryMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, indicator := range expiryIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
