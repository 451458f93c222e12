// ABOUTME: Package session owns who is logged in and what they may see
// ABOUTME: Single writer over durable credentials and in-memory user state

// Package session is the client's single source of truth for the signed-in
// user. Only the Manager writes credentials; the API client reaches it
// through the OnUnauthorized hook when the server rejects a token.
package session
