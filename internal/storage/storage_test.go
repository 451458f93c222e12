// ABOUTME: Conformance tests run against every credential store backend
// ABOUTME: Covers save/load round trips, paired clearing, and damaged data

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gigboard/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:        1,
		Email:     "a@b.com",
		FullName:  "Asha Worker",
		UserType:  model.UserTypeWorker,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
			require.NoError(t, err)
			return s
		},
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
	}
}

func TestStores_EmptyLoad(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			c, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.True(t, c.Empty())

			token, err := s.Token(context.Background())
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestStores_SaveLoadClear(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer s.Close()

			require.NoError(t, s.Save(ctx, Credentials{Token: "t1", User: testUser()}))

			c, err := s.Load(ctx)
			require.NoError(t, err)
			require.True(t, c.Complete())
			assert.Equal(t, "t1", c.Token)
			assert.Equal(t, *testUser(), *c.User)

			token, err := s.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "t1", token)

			// A second save replaces both entries.
			other := testUser()
			other.ID = 2
			require.NoError(t, s.Save(ctx, Credentials{Token: "t2", User: other}))
			c, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "t2", c.Token)
			assert.Equal(t, int64(2), c.User.ID)

			require.NoError(t, s.Clear(ctx))
			c, err = s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, c.Empty())

			// Clearing twice is fine.
			require.NoError(t, s.Clear(ctx))
		})
	}
}

func TestStores_RejectIncompleteSave(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			err := s.Save(context.Background(), Credentials{Token: "t1"})
			assert.ErrorIs(t, err, ErrIncomplete)
			err = s.Save(context.Background(), Credentials{User: testUser()})
			assert.ErrorIs(t, err, ErrIncomplete)
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(path)
	require.NoError(t, s.Save(context.Background(), Credentials{Token: "t1", User: testUser()}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestMemoryStore_CorruptUserEntry(t *testing.T) {
	s := NewMemoryStore()
	s.Set(KeyToken, "t1")
	s.Set(KeyUser, "{broken")

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSQLiteStore_HalfWrittenSession(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.setEntry(ctx, KeyToken, "orphan"))

	c, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "orphan", c.Token)
	assert.Nil(t, c.User)
	assert.False(t, c.Complete())
	assert.False(t, c.Empty())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendFile, filepath.Join(dir, "s.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(BackendSQLite, filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open("redis", "")
	assert.Error(t, err)
}
