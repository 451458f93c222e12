// ABOUTME: Session manager: login, registration, logout, restore and 401 handling
// ABOUTME: Persists token and user together and announces transitions on the event bus

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/events"
	"github.com/2389/gigboard/internal/model"
	"github.com/2389/gigboard/internal/storage"
)

// Authenticator is the part of the API client the manager uses.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Register(ctx context.Context, u model.NewUser) (*model.User, error)
	OnUnauthorized(fn func())
}

// Manager holds the current session. It is safe for concurrent use.
type Manager struct {
	auth   Authenticator
	store  storage.Store
	bus    *events.Broadcaster
	logger *slog.Logger

	mu      sync.RWMutex
	user    *model.User
	loading bool
}

// New creates a Manager and registers it for 401 notifications from auth.
// bus may be nil when nobody listens for transitions.
func New(auth Authenticator, store storage.Store, bus *events.Broadcaster, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		auth:   auth,
		store:  store,
		bus:    bus,
		logger: logger.With("component", "session"),
	}
	auth.OnUnauthorized(m.HandleUnauthorized)
	return m
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Capabilities returns what the current user may see.
func (m *Manager) Capabilities() Capabilities {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return CapabilitiesFor(m.user)
}

// Loading reports whether Restore is in progress.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Login authenticates, persists the credentials and starts the session.
// On any failure the previous state is kept.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := res.User
	if err := m.store.Save(ctx, storage.Credentials{Token: res.Token, User: &user}); err != nil {
		return nil, fmt.Errorf("saving credentials: %w", err)
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()

	m.logger.Info("logged in", "user_id", user.ID, "user_type", user.UserType)
	m.publish(events.Event{Kind: events.SessionStarted, User: m.User()})
	return m.User(), nil
}

// Register creates an account. It never starts a session.
func (m *Manager) Register(ctx context.Context, u model.NewUser) (*model.User, error) {
	created, err := m.auth.Register(ctx, u)
	if err != nil {
		return nil, err
	}
	m.logger.Info("registered", "user_id", created.ID, "user_type", created.UserType)
	return created, nil
}

// Logout ends the session. It does not fail; storage errors are logged.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("clearing credentials on logout", "error", err)
	}

	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	m.logger.Info("logged out")
	m.publish(events.Event{Kind: events.SessionEnded})
}

// Restore loads stored credentials without contacting the server. A token
// without a user, or a user without a token, is cleared. A corrupt store is
// cleared and the session starts anonymous.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	creds, err := m.store.Load(ctx)
	if errors.Is(err, storage.ErrCorrupt) {
		m.logger.Warn("discarding corrupt stored session", "error", err)
		return m.store.Clear(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if !creds.Complete() {
		if !creds.Empty() {
			m.logger.Warn("discarding incomplete stored session",
				"has_token", creds.Token != "", "has_user", creds.User != nil)
			if err := m.store.Clear(ctx); err != nil {
				return fmt.Errorf("clearing incomplete credentials: %w", err)
			}
		}
		return nil
	}

	m.mu.Lock()
	m.user = creds.User
	m.mu.Unlock()

	m.logger.Debug("session restored", "user_id", creds.User.ID)
	m.publish(events.Event{Kind: events.SessionStarted, User: m.User()})
	return nil
}

// HandleUnauthorized drops in-memory state after the API client has cleared
// storage for a 401. Nothing is published when no one was signed in.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	had := m.user != nil
	m.user = nil
	m.mu.Unlock()

	if !had {
		return
	}
	m.logger.Warn("session invalidated by server")
	m.publish(events.Event{Kind: events.SessionInvalidated})
}

// TokenExpiry reports the exp claim of the stored token without verifying
// it. ok is false when no token is stored or it carries no expiry.
func (m *Manager) TokenExpiry(ctx context.Context) (exp time.Time, ok bool, err error) {
	token, err := m.store.Token(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading token: %w", err)
	}
	if token == "" {
		return time.Time{}, false, nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("decoding token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

func (m *Manager) publish(ev events.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}
