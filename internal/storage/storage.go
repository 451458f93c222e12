// ABOUTME: Credential store interface shared by the file, SQLite and memory backends
// ABOUTME: Encodes a session as two string entries, token and serialized user

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2389/gigboard/internal/model"
)

// Entry keys, one per stored value.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var (
	// ErrCorrupt is returned when stored entries cannot be decoded.
	ErrCorrupt = errors.New("stored session is corrupt")
	// ErrIncomplete is returned by Save when the token or user is missing.
	ErrIncomplete = errors.New("credentials need both a token and a user")
)

// Credentials is the persisted half of a session.
type Credentials struct {
	Token string
	User  *model.User
}

// Complete reports whether both entries are present.
func (c Credentials) Complete() bool {
	return c.Token != "" && c.User != nil
}

// Empty reports whether neither entry is present.
func (c Credentials) Empty() bool {
	return c.Token == "" && c.User == nil
}

// Store is durable storage for session credentials.
type Store interface {
	// Load returns whatever entries are stored. Missing entries are zero.
	Load(ctx context.Context) (Credentials, error)
	// Token returns the stored bearer token, or "" when none is stored.
	Token(ctx context.Context) (string, error)
	// Save replaces both entries. Credentials must be complete.
	Save(ctx context.Context, c Credentials) error
	// Clear removes both entries. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	Close() error
}

// Open creates the named backend. path is ignored by the memory backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func encodeEntries(c Credentials) (map[string]string, error) {
	if !c.Complete() {
		return nil, ErrIncomplete
	}
	user, err := json.Marshal(c.User)
	if err != nil {
		return nil, fmt.Errorf("encoding user: %w", err)
	}
	return map[string]string{
		KeyToken: c.Token,
		KeyUser:  string(user),
	}, nil
}

func decodeEntries(entries map[string]string) (Credentials, error) {
	c := Credentials{Token: entries[KeyToken]}
	if raw, ok := entries[KeyUser]; ok && raw != "" {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return Credentials{}, fmt.Errorf("%w: user entry: %v", ErrCorrupt, err)
		}
		c.User = &u
	}
	return c, nil
}
