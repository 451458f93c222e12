// Package api is the single point of outbound HTTP for the gig client.
//
// # Interceptors
//
// Every request passes through two http.RoundTripper layers:
//
//   - bearerTransport reads the token from durable storage before each
//     request and sets "Authorization: Bearer <token>" when one exists.
//   - unauthorizedTransport watches responses. On HTTP 401 it clears the
//     stored credentials and fires the registered session-invalidated hooks
//     once for that response. There is no token refresh.
//
// Every other status reaches the caller unmodified.
//
// # Errors
//
// Failed calls return *Error, classified as network, unauthorized, client
// (4xx) or server (5xx). Sentinels ErrUnauthorized, ErrNotFound and
// ErrConflict match with errors.Is. UserMessage picks the text to show.
//
// # Usage
//
//	client := api.New(cfg.API.BaseURL, store, api.WithTimeout(cfg.API.Timeout))
//	client.OnUnauthorized(func() { ... })
//	jobs, err := client.ListJobs(ctx)
package api
