package sessionstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/session"
)

var (
	_ session.Store = (*MemoryStore)(nil)
	_ session.Store = (*FileStore)(nil)
	_ session.Store = (*RedisStore)(nil)

	ErrUnknownStore = errors.New("unknown session store")
)

// New returns the session store selected by conf.Session.Store.
// The returned closer releases the store's resources.
func New(ctx context.Context, conf *core.Config) (session.Store, func() error, error) {
	nop := func() error { return nil }
	switch conf.Session.Store {
	case "memory":
		return NewMemoryStore(), nop, nil
	case "", "file":
		return NewFileStore(conf.Session.Path), nop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nop, errors.Wrap(err, "redis ping")
		}
		return NewRedisStore(client, conf.Redis.Key), client.Close, nil
	}
	return nil, nop, errors.Wrap(ErrUnknownStore, conf.Session.Store)
}

func decode(data []byte) (session.Session, error) {
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding session")
	}
	return sess, nil
}

// =========================================================================
// Memory

type MemoryStore struct {
	mutex sync.RWMutex
	sess  session.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (session.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess session.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sess = sess
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sess = session.Session{}
	return nil
}

// =========================================================================
// File

// FileStore keeps the session as JSON in a file readable by its owner only.
type FileStore struct {
	mutex sync.Mutex
	path  string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(context.Context) (session.Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, errors.Wrap(err, "reading session file")
	}
	return decode(data)
}

func (s *FileStore) Save(_ context.Context, sess session.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "writing session file")
	}
	return nil
}

func (s *FileStore) Clear(context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}

// =========================================================================
// Redis

// RedisStore keeps the session under a single key, so several terminals can share it.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (session.Session, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, errors.Wrap(err, "redis get session")
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, sess session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "redis set session")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, "redis del session")
	}
	return nil
}
