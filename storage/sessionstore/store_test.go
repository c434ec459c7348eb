package sessionstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
)

func sampleSession() session.Session {
	return session.Session{
		ID:        uuid.New(),
		Role:      school.RoleTeacher,
		UserID:    "5",
		Login:     "tnguyen",
		CreatedAt: time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC),
	}
}

// testStore checks the common Store contract.
func testStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, sess.IsAnonymous())

	want := sampleSession()
	require.NoError(t, store.Save(ctx, want))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, session.Logout(ctx, store))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Session{}, got)

	// clearing twice is fine
	require.NoError(t, store.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)
	testStore(t, store)

	require.NoError(t, store.Save(context.Background(), sampleSession()))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "eduportal:session")

	testStore(t, store)
	assert.False(t, mr.Exists("eduportal:session"))

	require.NoError(t, store.Save(ctx, sampleSession()))
	raw, err := mr.Get("eduportal:session")
	require.NoError(t, err)
	assert.Contains(t, raw, `"user_id":"5"`)

	require.NoError(t, mr.Set("eduportal:session", "{not json"))
	_, err = store.Load(ctx)
	assert.Error(t, err)

	mr.Close()
	_, err = store.Load(ctx)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	conf := &core.Config{}

	conf.Session.Store = "memory"
	store, closeFn, err := New(ctx, conf)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, closeFn())

	conf.Session.Store = "file"
	conf.Session.Path = filepath.Join(t.TempDir(), "s.json")
	store, _, err = New(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, conf.Session.Path, store.(*FileStore).Path())

	mr := miniredis.RunT(t)
	conf.Session.Store = "redis"
	conf.Redis.Addr = mr.Addr()
	conf.Redis.Key = "eduportal:session"
	store, closeFn, err = New(ctx, conf)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sampleSession()))
	assert.True(t, mr.Exists("eduportal:session"))
	assert.NoError(t, closeFn())

	mr.Close()
	_, _, err = New(ctx, conf)
	assert.Error(t, err)

	conf.Session.Store = "cookie"
	_, _, err = New(ctx, conf)
	assert.EqualError(t, err, "cookie: unknown session store")
}
