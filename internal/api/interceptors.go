// ABOUTME: Outgoing and incoming HTTP interceptors layered as RoundTrippers
// ABOUTME: Attaches the stored bearer token and drops the session on 401

package api

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// TokenStore is the part of durable storage the client needs.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// bearerTransport attaches "Authorization: Bearer <token>" when a token is
// stored. A request without a stored token is sent unauthenticated.
type bearerTransport struct {
	next   http.RoundTripper
	tokens TokenStore
	logger *slog.Logger
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.Token(req.Context())
	if err != nil {
		t.logger.Warn("reading stored token, sending unauthenticated", "error", err)
		token = ""
	}

	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}
	return t.next.RoundTrip(out)
}

// unauthorizedTransport invalidates the session once per 401 response and
// passes every response through unchanged.
type unauthorizedTransport struct {
	next       http.RoundTripper
	invalidate func(ctx context.Context)
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.invalidate(req.Context())
	}
	return resp, nil
}

// throttleTransport delays request issuance to stay under a request rate.
type throttleTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
