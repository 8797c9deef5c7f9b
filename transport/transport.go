// Package transport provides the http.RoundTripper used for every authenticated
// call to the credibuy API.
//
// It attaches the stored access token, and when the API answers 401 it refreshes
// the session once and re-issues the request. A request that was already retried
// is never retried again: its 401 clears the session and is reported as
// *errors.UnauthorizedError.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/internal/metrics"
	"github.com/jrsteele09/credibuy-console/sessions"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"

	contentTypeJSON = "application/json"

	// maxDrain bounds how much of a 401 body is kept.
	maxDrain = 64 << 10
)

// Refresher renews the access token held in the session store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

var _ http.RoundTripper = (*Transport)(nil)

type Transport struct {
	base           http.RoundTripper
	store          sessions.Store
	refresher      Refresher
	onUnauthorized func(ctx context.Context, err error)
}

type Option func(*Transport)

// WithBase sets the RoundTripper that performs the actual requests.
// Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = rt
	}
}

// WithOnUnauthorized registers fn to run when a 401 could not be recovered by a refresh.
func WithOnUnauthorized(fn func(ctx context.Context, err error)) Option {
	return func(t *Transport) {
		t.onUnauthorized = fn
	}
}

func New(store sessions.Store, refresher Refresher, opts ...Option) *Transport {
	t := &Transport{
		base:      http.DefaultTransport,
		store:     store,
		refresher: refresher,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Client returns an http.Client using t with the given timeout.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	defer func() {
		metrics.TransportRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	}()

	ctx := req.Context()
	req, err := rewindable(req)
	if err != nil {
		return nil, err
	}

	requestID := req.Header.Get(headerRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	out, sentToken, err := t.authorize(req, requestID)
	if err != nil {
		closeBody(req)
		return nil, err
	}
	resp, err := t.send(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	rejected := statusError(req, resp)

	logger := log.With().Str("request_id", requestID).Str("method", req.Method).Str("path", req.URL.Path).Logger()
	if Retried(ctx) {
		return nil, t.unauthorized(ctx, rejected)
	}

	// Another request may have refreshed the session while this one was in flight.
	current, _, err := t.store.Get(ctx, sessions.AccessTokenKey)
	if err != nil {
		if callerGone(ctx, err) {
			return nil, err
		}
		return nil, t.unauthorized(ctx, fmt.Errorf("read access token: %w", err))
	}
	if current == "" || current == sentToken {
		logger.Debug().Msg("transport: 401 received, refreshing session")
		if err := t.refresher.Refresh(ctx); err != nil {
			// The exchange keeps running detached and settles the session itself.
			if callerGone(ctx, err) {
				logger.Debug().Err(err).Msg("transport: caller gave up while the session was refreshing")
				return nil, err
			}
			logger.Warn().Err(err).Msg("transport: session refresh failed")
			return nil, t.unauthorized(ctx, err)
		}
	}

	retry := req.Clone(MarkRetried(ctx))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("transport: rewind request body: %w", err)
		}
		retry.Body = body
	}
	out, _, err = t.authorize(retry, requestID)
	if err != nil {
		closeBody(retry)
		return nil, err
	}
	metrics.TransportRetriesTotal.Inc()
	logger.Debug().Msg("transport: retrying request with refreshed token")

	resp, err = t.send(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	logger.Warn().Msg("transport: retried request still unauthorized")
	return nil, t.unauthorized(ctx, statusError(req, resp))
}

// authorize returns a copy of req carrying the current access token, if any.
func (t *Transport) authorize(req *http.Request, requestID string) (*http.Request, string, error) {
	access, _, err := t.store.Get(req.Context(), sessions.AccessTokenKey)
	if err != nil {
		return nil, "", fmt.Errorf("transport: read access token: %w", err)
	}

	out := req.Clone(req.Context())
	out.Body = req.Body
	if out.Header == nil {
		out.Header = http.Header{}
	}
	out.Header.Del(headerAuthorization)
	if access != "" {
		sessions.Session{AccessToken: access}.BearerToken().SetAuthHeader(out)
	}
	out.Header.Set(headerContentType, contentTypeJSON)
	out.Header.Set(headerRequestID, requestID)
	return out, access, nil
}

func (t *Transport) send(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	switch {
	case err != nil:
		metrics.TransportRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.TransportRequestsTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
	default:
		metrics.TransportRequestsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	}
	return resp, err
}

// unauthorized clears the session even when ctx is already done, so the caller
// is never told Unauthorized while the tokens survive.
func (t *Transport) unauthorized(ctx context.Context, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := sessions.ClearAll(ctx, t.store); err != nil {
		log.Err(err).Msg("transport: clearing session")
	}
	err := &errors.UnauthorizedError{Cause: cause}
	if t.onUnauthorized != nil {
		t.onUnauthorized(ctx, err)
	}
	return err
}

// callerGone reports whether err only means the caller stopped waiting. A
// rejected refresh is never treated that way, the session is gone regardless.
func callerGone(ctx context.Context, err error) bool {
	return ctx.Err() != nil && !errors.Is(err, errors.ErrRefreshRejected)
}

func closeBody(req *http.Request) {
	if req != nil && req.Body != nil {
		_ = req.Body.Close()
	}
}

// rewindable makes sure the body of req can be replayed for a retry.
func rewindable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("transport: buffer request body: %w", err)
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(data))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return out, nil
}

// statusError consumes and closes the body of a 401 so the connection can be reused.
func statusError(req *http.Request, resp *http.Response) *errors.StatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()
	return &errors.StatusError{
		Method:     req.Method,
		Path:       req.URL.Path,
		StatusCode: resp.StatusCode,
		Body:       string(data),
	}
}
